package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// GetTranslator returns the process-wide translator, creating it on first
// use. Creation is expensive, so every program build shares one instance.
func GetTranslator() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
		if initErr != nil {
			initErr = fmt.Errorf("failed to create shader translator: %w", initErr)
		}
	})
	return translator, initErr
}

// Stage is a translated shader stage with its uniform name mapping.
type Stage struct {
	Code string
	// Uniforms maps a source uniform name to the name in Code.
	Uniforms map[string]string
}

// Translate converts WebGL2 source of the given stage ("vertex" or
// "fragment") to the dialect of the running context.
func Translate(src, stage string, isGLES bool) (*Stage, error) {
	t, err := GetTranslator()
	if err != nil {
		return nil, err
	}
	format := gst.OutputFormatGLSL410
	if isGLES {
		format = gst.OutputFormatESSL
	}
	out, err := t.TranslateShader(src, stage, gst.ShaderSpecWebGL2, format)
	if err != nil {
		return nil, fmt.Errorf("failed to translate %s shader: %w", stage, err)
	}
	s := &Stage{Code: out.Code, Uniforms: make(map[string]string, len(out.Variables))}
	for name, v := range out.Variables {
		s.Uniforms[name] = v.MappedName
	}
	return s, nil
}
