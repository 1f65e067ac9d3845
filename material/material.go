package material

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrPassNotFound    = errors.New("pass not found")
	ErrUnknownMaterial = errors.New("unknown material")
)

// CompareFunc is a depth test comparison.
type CompareFunc int

const (
	CompareDisabled CompareFunc = iota
	CompareNever
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

var compareNames = map[CompareFunc]string{
	CompareDisabled:     "off",
	CompareNever:        "never",
	CompareLess:         "less",
	CompareEqual:        "equal",
	CompareLessEqual:    "lequal",
	CompareGreater:      "greater",
	CompareNotEqual:     "notequal",
	CompareGreaterEqual: "gequal",
	CompareAlways:       "always",
}

func (c CompareFunc) String() string {
	if n, ok := compareNames[c]; ok {
		return n
	}
	return fmt.Sprintf("CompareFunc(%d)", int(c))
}

// ParseCompareFunc accepts the ShaderLab spellings (LEqual, GEqual, ...)
// in any case.
func ParseCompareFunc(s string) (CompareFunc, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "lessequal":
		s = "lequal"
	case "greaterequal":
		s = "gequal"
	case "", "disabled":
		s = "off"
	}
	for c, n := range compareNames {
		if n == s {
			return c, nil
		}
	}
	return CompareDisabled, errors.Errorf("unknown depth compare function %q", s)
}

// UnmarshalText lets yaml decode compare functions from their names.
func (c *CompareFunc) UnmarshalText(b []byte) error {
	v, err := ParseCompareFunc(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c CompareFunc) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// RenderState is the fixed-function state a pass draws with.
type RenderState struct {
	ZWrite bool        `yaml:"zwrite"`
	ZTest  CompareFunc `yaml:"ztest"`
	// WritesDepth is set when the fragment stage outputs its own depth.
	WritesDepth bool `yaml:"writes_depth"`
	// DepthOnly masks out color writes.
	DepthOnly bool `yaml:"depth_only"`
}

// Pass is one named program of a multi-pass shader.
type Pass struct {
	Name  string      `yaml:"name"`
	State RenderState `yaml:",inline"`
	// Vertex is WebGL2 GLSL for the vertex stage. Empty selects the
	// full-screen triangle generated from gl_VertexID.
	Vertex string `yaml:"-"`
	// Fragment is WebGL2 GLSL, translated for the running context.
	Fragment string `yaml:"-"`
}

// Shader is a named collection of passes.
type Shader struct {
	Name   string
	Passes []Pass
}

// Material binds a shader. Materials are compared by pointer; backends
// key compiled programs on the material.
type Material struct {
	Name   string
	Shader *Shader
}

func New(name string, shader *Shader) *Material {
	return &Material{Name: name, Shader: shader}
}

// FindPass returns the index of the named pass, or -1.
func (m *Material) FindPass(name string) int {
	if m == nil || m.Shader == nil {
		return -1
	}
	for i := range m.Shader.Passes {
		if m.Shader.Passes[i].Name == name {
			return i
		}
	}
	return -1
}

// Pass returns the pass at index.
func (m *Material) Pass(index int) (*Pass, error) {
	if m == nil || m.Shader == nil || index < 0 || index >= len(m.Shader.Passes) {
		return nil, errors.Wrapf(ErrPassNotFound, "index %d", index)
	}
	return &m.Shader.Passes[index], nil
}

// PassCount returns the number of passes in the material's shader.
func (m *Material) PassCount() int {
	if m == nil || m.Shader == nil {
		return 0
	}
	return len(m.Shader.Passes)
}

// ShaderName is the shader's name, or "<none>" when unbound.
func (m *Material) ShaderName() string {
	if m == nil || m.Shader == nil {
		return "<none>"
	}
	return m.Shader.Name
}
