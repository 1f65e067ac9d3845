package material

import (
	"io/fs"
	"sort"

	"github.com/pkg/errors"
)

// PassSpec describes a pass in a configuration file. Vertex and Fragment
// are paths to GLSL files; empty paths fall back to the base library.
type PassSpec struct {
	Name     string      `yaml:"name"`
	State    RenderState `yaml:",inline"`
	Vertex   string      `yaml:"vertex,omitempty"`
	Fragment string      `yaml:"fragment,omitempty"`
}

// Spec describes a material in a configuration file.
type Spec struct {
	Name   string     `yaml:"name"`
	Shader string     `yaml:"shader"`
	Passes []PassSpec `yaml:"passes"`
}

// Library is a set of materials addressed by name.
type Library struct {
	materials map[string]*Material
}

func NewLibrary() *Library {
	return &Library{materials: make(map[string]*Material)}
}

// Add registers m, replacing any material with the same name.
func (l *Library) Add(m *Material) {
	l.materials[m.Name] = m
}

func (l *Library) Get(name string) (*Material, error) {
	m, ok := l.materials[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMaterial, "%q", name)
	}
	return m, nil
}

// Names returns the registered material names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.materials))
	for n := range l.materials {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns a library holding the same materials.
func (l *Library) Clone() *Library {
	c := NewLibrary()
	for n, m := range l.materials {
		c.materials[n] = m
	}
	return c
}

// LoadLibrary builds materials from specs on top of base. Source paths are
// resolved in fsys. A pass without a fragment path reuses the sources of
// the same pass of the same material in base.
func LoadLibrary(specs []Spec, fsys fs.FS, base *Library) (*Library, error) {
	lib := NewLibrary()
	if base != nil {
		lib = base.Clone()
	}
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, errors.New("material without a name")
		}
		var prev *Material
		if base != nil {
			prev = base.materials[spec.Name]
		}
		sh := &Shader{Name: spec.Shader}
		if sh.Name == "" {
			sh.Name = spec.Name
			if prev != nil {
				sh.Name = prev.ShaderName()
			}
		}
		for _, ps := range spec.Passes {
			p, err := loadPass(ps, fsys, prev)
			if err != nil {
				return nil, errors.Wrapf(err, "material %q", spec.Name)
			}
			sh.Passes = append(sh.Passes, p)
		}
		lib.Add(New(spec.Name, sh))
	}
	return lib, nil
}

func loadPass(ps PassSpec, fsys fs.FS, prev *Material) (Pass, error) {
	p := Pass{Name: ps.Name, State: ps.State}
	if ps.Name == "" {
		return p, errors.New("pass without a name")
	}
	if idx := prev.FindPass(ps.Name); idx >= 0 {
		inherited := prev.Shader.Passes[idx]
		p.Vertex, p.Fragment = inherited.Vertex, inherited.Fragment
	}
	if ps.Vertex != "" {
		b, err := fs.ReadFile(fsys, ps.Vertex)
		if err != nil {
			return p, errors.Wrapf(err, "pass %q vertex source", ps.Name)
		}
		p.Vertex = string(b)
	}
	if ps.Fragment != "" {
		b, err := fs.ReadFile(fsys, ps.Fragment)
		if err != nil {
			return p, errors.Wrapf(err, "pass %q fragment source", ps.Name)
		}
		p.Fragment = string(b)
	}
	if p.Fragment == "" {
		return p, errors.Errorf("pass %q has no fragment source", ps.Name)
	}
	return p, nil
}
