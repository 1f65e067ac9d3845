// Package glbackend executes recorded pipeline commands against an OpenGL
// 4.1 core (or ES 3.0) context. All methods must be called on the thread
// that owns the current context.
package glbackend

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goraymarch/material"
	"github.com/richinsley/goraymarch/pipeline"
)

// ObjectToWorldID receives the matrix of each procedural draw.
var ObjectToWorldID = pipeline.PropertyToID("_ObjectToWorld")

// ClearColor is used when a target binding clears color.
var ClearColor = mgl32.Vec4{0.55, 0.65, 0.8, 1}

type Backend struct {
	isGLES bool
	vao    uint32

	targets    map[pipeline.TargetHandle]*RenderTarget
	nextHandle pipeline.TargetHandle
	current    *RenderTarget

	programs map[programKey]*program
	failed   map[programKey]bool

	matrices map[pipeline.PropertyID]mgl32.Mat4
	vectors  map[pipeline.PropertyID]mgl32.Vec4
	floats   map[pipeline.PropertyID]float32
}

// New creates a backend for the current context. gl.Init must already
// have succeeded.
func New(isGLES bool) *Backend {
	b := &Backend{
		isGLES:   isGLES,
		targets:  make(map[pipeline.TargetHandle]*RenderTarget),
		programs: make(map[programKey]*program),
		failed:   make(map[programKey]bool),
		matrices: make(map[pipeline.PropertyID]mgl32.Mat4),
		vectors:  make(map[pipeline.PropertyID]mgl32.Vec4),
		floats:   make(map[pipeline.PropertyID]float32),
	}
	// Procedural draws need a bound VAO in core profiles, even an empty one.
	gl.GenVertexArrays(1, &b.vao)
	return b
}

// CreateTarget allocates a camera target and returns its handles.
func (b *Backend) CreateTarget(width, height int) (pipeline.Targets, error) {
	rt, err := newRenderTarget(width, height)
	if err != nil {
		return pipeline.Targets{}, err
	}
	b.nextHandle++
	color := b.nextHandle
	b.nextHandle++
	depth := b.nextHandle
	b.targets[color] = rt
	b.targets[depth] = rt
	return pipeline.Targets{Color: color, Depth: depth, Width: width, Height: height}, nil
}

// ResizeTarget reallocates the storage behind t. Handles stay valid.
func (b *Backend) ResizeTarget(t pipeline.Targets, width, height int) (pipeline.Targets, error) {
	rt, ok := b.targets[t.Color]
	if !ok {
		return t, fmt.Errorf("unknown render target %d", t.Color)
	}
	if w, h := rt.Size(); w == width && h == height {
		return t, nil
	}
	if err := rt.allocate(width, height); err != nil {
		return t, err
	}
	t.Width, t.Height = width, height
	return t, nil
}

// Target returns the render target behind a handle.
func (b *Backend) Target(h pipeline.TargetHandle) (*RenderTarget, bool) {
	rt, ok := b.targets[h]
	return rt, ok
}

// ReleaseTarget destroys the target behind t.
func (b *Backend) ReleaseTarget(t pipeline.Targets) {
	rt, ok := b.targets[t.Color]
	if !ok {
		return
	}
	for h, other := range b.targets {
		if other == rt {
			delete(b.targets, h)
		}
	}
	if b.current == rt {
		b.current = nil
	}
	rt.Destroy()
}

// ReleaseMaterial drops the programs built for m, so a replaced material
// does not keep GL programs alive.
func (b *Backend) ReleaseMaterial(m *material.Material) {
	for k, p := range b.programs {
		if k.material == m {
			gl.DeleteProgram(p.id)
			delete(b.programs, k)
		}
	}
	for k := range b.failed {
		if k.material == m {
			delete(b.failed, k)
		}
	}
}

// Execute runs cmds in order. A failing draw does not stop the rest of
// the list; all errors are returned joined.
func (b *Backend) Execute(cmds []pipeline.Command) error {
	var errs []error
	for _, c := range cmds {
		var err error
		switch c := c.(type) {
		case pipeline.SetRenderTarget:
			err = b.setRenderTarget(c)
		case pipeline.ClearRenderTarget:
			err = b.clear(c.Clear, c.Color, c.Depth)
		case pipeline.SetGlobalMatrix:
			b.matrices[c.ID] = c.Value
		case pipeline.SetGlobalVector:
			b.vectors[c.ID] = c.Value
		case pipeline.SetGlobalFloat:
			b.floats[c.ID] = c.Value
		case pipeline.DrawProcedural:
			err = b.draw(c)
		default:
			err = fmt.Errorf("unsupported command %T", c)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Backend) setRenderTarget(c pipeline.SetRenderTarget) error {
	rt, ok := b.targets[c.Color]
	if !ok {
		return fmt.Errorf("unknown color target %d", c.Color)
	}
	if c.Depth != 0 {
		if d, ok := b.targets[c.Depth]; !ok || d != rt {
			return fmt.Errorf("depth target %d does not belong to color target %d", c.Depth, c.Color)
		}
	}
	b.current = rt
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	gl.Viewport(0, 0, int32(rt.width), int32(rt.height))
	return b.clear(c.Clear, ClearColor, 1)
}

func (b *Backend) clear(flags pipeline.ClearFlag, color mgl32.Vec4, depth float32) error {
	if flags == pipeline.ClearNone {
		return nil
	}
	if b.current == nil {
		return errors.New("clear without a render target")
	}
	var mask uint32
	if flags&pipeline.ClearColor != 0 {
		gl.ColorMask(true, true, true, true)
		gl.ClearColor(color[0], color[1], color[2], color[3])
		mask |= gl.COLOR_BUFFER_BIT
	}
	if flags&pipeline.ClearDepth != 0 {
		// Depth clears honour the write mask.
		gl.DepthMask(true)
		gl.ClearDepth(float64(depth))
		mask |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(mask)
	return nil
}

func (b *Backend) draw(d pipeline.DrawProcedural) error {
	if b.current == nil {
		return errors.New("draw without a render target")
	}
	if d.Material == nil {
		return errors.New("draw without a material")
	}
	if d.VertexCount <= 0 || d.InstanceCount <= 0 {
		return nil
	}
	p, err := b.program(d.Material, d.Pass)
	if err != nil || p == nil {
		return err
	}

	applyState(p.state)
	gl.UseProgram(p.id)
	b.uploadGlobals(p)
	if loc, ok := p.locations[ObjectToWorldID]; ok {
		gl.UniformMatrix4fv(loc, 1, false, &d.Matrix[0])
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArraysInstanced(topologyMode(d.Topology), 0, int32(d.VertexCount), int32(d.InstanceCount))
	gl.BindVertexArray(0)
	return nil
}

// program returns the linked program for a material pass. A pass that
// failed once reports its error once and is skipped afterwards.
func (b *Backend) program(m *material.Material, pass int) (*program, error) {
	key := programKey{m, pass}
	if p, ok := b.programs[key]; ok {
		return p, nil
	}
	if b.failed[key] {
		return nil, nil
	}
	p, err := b.buildProgram(m, pass)
	if err != nil {
		b.failed[key] = true
		return nil, fmt.Errorf("material %q pass %d: %w", m.Name, pass, err)
	}
	log.Printf("Built program for material '%s' pass %d (%d uniforms bound)", m.Name, pass, len(p.locations))
	b.programs[key] = p
	return p, nil
}

func (b *Backend) uploadGlobals(p *program) {
	for id, loc := range p.locations {
		if m, ok := b.matrices[id]; ok {
			gl.UniformMatrix4fv(loc, 1, false, &m[0])
		} else if v, ok := b.vectors[id]; ok {
			gl.Uniform4fv(loc, 1, &v[0])
		} else if f, ok := b.floats[id]; ok {
			gl.Uniform1f(loc, f)
		}
	}
}

func applyState(s material.RenderState) {
	if s.ZTest == material.CompareDisabled && !s.ZWrite {
		gl.Disable(gl.DEPTH_TEST)
	} else {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(depthFunc(s.ZTest))
	}
	gl.DepthMask(s.ZWrite)
	color := !s.DepthOnly
	gl.ColorMask(color, color, color, color)
}

func depthFunc(c material.CompareFunc) uint32 {
	switch c {
	case material.CompareNever:
		return gl.NEVER
	case material.CompareLess:
		return gl.LESS
	case material.CompareEqual:
		return gl.EQUAL
	case material.CompareLessEqual:
		return gl.LEQUAL
	case material.CompareGreater:
		return gl.GREATER
	case material.CompareNotEqual:
		return gl.NOTEQUAL
	case material.CompareGreaterEqual:
		return gl.GEQUAL
	default:
		return gl.ALWAYS
	}
}

func topologyMode(t pipeline.Topology) uint32 {
	switch t {
	case pipeline.TopologyTriangleStrip:
		return gl.TRIANGLE_STRIP
	case pipeline.TopologyLines:
		return gl.LINES
	case pipeline.TopologyLineStrip:
		return gl.LINE_STRIP
	case pipeline.TopologyPoints:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

// Destroy releases programs, targets and the VAO.
func (b *Backend) Destroy() {
	for _, p := range b.programs {
		gl.DeleteProgram(p.id)
	}
	b.programs = map[programKey]*program{}
	seen := make(map[*RenderTarget]bool)
	for _, rt := range b.targets {
		if !seen[rt] {
			seen[rt] = true
			rt.Destroy()
		}
	}
	b.targets = map[pipeline.TargetHandle]*RenderTarget{}
	b.current = nil
	gl.DeleteVertexArrays(1, &b.vao)
}
