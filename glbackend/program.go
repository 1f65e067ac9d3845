package glbackend

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goraymarch/material"
	"github.com/richinsley/goraymarch/pipeline"
	"github.com/richinsley/goraymarch/shader"
	xlate "github.com/richinsley/goraymarch/translator"
)

// program is a linked material pass with its uniform locations resolved
// against property IDs.
type program struct {
	id        uint32
	state     material.RenderState
	locations map[pipeline.PropertyID]int32
}

type programKey struct {
	material *material.Material
	pass     int
}

// buildProgram translates and links one pass of m. Passes without a vertex
// stage get the full-screen triangle.
func (b *Backend) buildProgram(m *material.Material, index int) (*program, error) {
	pass, err := m.Pass(index)
	if err != nil {
		return nil, err
	}

	uniforms := make(map[string]string)
	vertexSource := shader.FullscreenVertex(b.isGLES)
	if pass.Vertex != "" {
		vs, err := xlate.Translate(pass.Vertex, "vertex", b.isGLES)
		if err != nil {
			return nil, err
		}
		vertexSource = vs.Code
		for k, v := range vs.Uniforms {
			uniforms[k] = v
		}
	}
	fs, err := xlate.Translate(shader.Complete(pass.Fragment), "fragment", b.isGLES)
	if err != nil {
		return nil, err
	}
	for k, v := range fs.Uniforms {
		uniforms[k] = v
	}

	id, err := NewProgram(vertexSource, fs.Code)
	if err != nil {
		return nil, err
	}
	p := &program{
		id:        id,
		state:     pass.State,
		locations: make(map[pipeline.PropertyID]int32),
	}
	for name, mapped := range uniforms {
		loc := gl.GetUniformLocation(id, gl.Str(mapped+"\x00"))
		if loc < 0 {
			continue
		}
		p.locations[pipeline.PropertyToID(name)] = loc
	}
	return p, nil
}

// NewProgram compiles and links a vertex and fragment stage.
func NewProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
