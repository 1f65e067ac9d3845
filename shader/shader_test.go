package shader

import (
	"strings"
	"testing"
)

func TestRaymarchFragmentContract(t *testing.T) {
	src := RaymarchFragment("")
	for _, want := range []string{
		"#version 300 es",
		"uniform mat4 _InvProjMat;",
		"uniform mat4 _InvViewMat;",
		"uniform mat4 _CameraVP;",
		"uniform vec4 _CameraPos;",
		"uniform vec4 _ScreenParams;",
		"gl_FragDepth",
		"float map(vec3 p)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("raymarch fragment lacks %q", want)
		}
	}
	if strings.Contains(src, "\nin ") {
		t.Error("raymarch fragment must not read varyings")
	}
}

func TestComplete(t *testing.T) {
	scene := "float map(vec3 p) { return length(p) - 1.0; }\nvec3 albedo(vec3 p) { return vec3(1.0); }\n"
	got := Complete(scene)
	if !strings.HasPrefix(got, "#version 300 es") || !strings.Contains(got, scene) {
		t.Errorf("scene snippet not wrapped:\n%s", got)
	}
	if strings.Contains(got, "sdTorus") {
		t.Error("custom scene still carries the default scene")
	}
	if full := "  #version 300 es\nvoid main() {}\n"; Complete(full) != full {
		t.Error("complete stage was rewritten")
	}
}

func TestVertexSources(t *testing.T) {
	tests := []struct {
		isGLES  bool
		version string
	}{
		{false, "#version 410 core"},
		{true, "#version 300 es"},
	}
	for _, tc := range tests {
		if src := FullscreenVertex(tc.isGLES); !strings.HasPrefix(src, tc.version) || !strings.Contains(src, "gl_VertexID") {
			t.Errorf("FullscreenVertex(%v) = %q", tc.isGLES, src)
		}
		for _, flip := range []bool{false, true} {
			src := GetBlitFragmentShader(flip, tc.isGLES)
			if !strings.HasPrefix(src, tc.version) {
				t.Errorf("blit(%v, %v) has wrong version", flip, tc.isGLES)
			}
			if got := strings.Contains(src, "1.0 - frag_uv.y"); got != flip {
				t.Errorf("blit(%v, %v) flips = %v", flip, tc.isGLES, got)
			}
		}
	}
}

func TestBuiltins(t *testing.T) {
	lib := Builtins()
	tests := []struct {
		material string
		pass     string
		index    int
	}{
		{RaymarchMaterial, RaymarchPass, 0},
		{FloorMaterial, DepthOnlyPass, 0},
		{FloorMaterial, ForwardPass, 1},
	}
	for _, tc := range tests {
		m, err := lib.Get(tc.material)
		if err != nil {
			t.Fatal(err)
		}
		if got := m.FindPass(tc.pass); got != tc.index {
			t.Errorf("%s.FindPass(%s) = %d, want %d", tc.material, tc.pass, got, tc.index)
		}
	}

	m, _ := lib.Get(RaymarchMaterial)
	p, err := m.Pass(0)
	if err != nil {
		t.Fatal(err)
	}
	if p.State != depthContract {
		t.Errorf("raymarch pass state = %+v", p.State)
	}
	if m.ShaderName() != RaymarchShader {
		t.Errorf("shader name = %q", m.ShaderName())
	}

	floor, _ := lib.Get(FloorMaterial)
	if p, _ := floor.Pass(0); !p.State.DepthOnly {
		t.Error("floor depth pass writes color")
	}
}
