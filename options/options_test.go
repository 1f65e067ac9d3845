package options

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/richinsley/goraymarch/material"
	"github.com/richinsley/goraymarch/pipeline"
	"github.com/richinsley/goraymarch/raymarch"
	"github.com/richinsley/goraymarch/shader"
)

const sampleConfig = `
feature:
  material: Spheres
  pass_event: AfterRenderingSkybox+5
  game_cameras_only: false
materials:
  - name: Spheres
    shader: Custom/Spheres
    passes:
      - name: RAYMARCH_DEPTH
        zwrite: true
        ztest: LEqual
        writes_depth: true
        fragment: spheres.frag
`

const spheresScene = `
float map(vec3 p) { return length(mod(p, 2.0) - 1.0) - 0.4; }
vec3 albedo(vec3 p) { return vec3(0.8); }
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	f := cfg.Feature
	if f.MaterialName != "Spheres" || f.PassEvent != pipeline.AfterRenderingSkybox+5 || f.GameCamerasOnly {
		t.Errorf("feature = %+v", f)
	}
	if f.PassName != raymarch.DefaultPassName {
		t.Errorf("pass name = %q, want default", f.PassName)
	}
	if len(cfg.Materials) != 1 || cfg.Materials[0].Passes[0].State.ZTest != material.CompareLessEqual {
		t.Errorf("materials = %+v", cfg.Materials)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("materials: []\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Feature != raymarch.DefaultSettings() {
		t.Errorf("feature = %+v, want defaults", cfg.Feature)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []string{
		"feature:\n  pass_event: AfterLunch\n",
		"feature:\n  colour: red\n",
		"materials:\n  - name: m\n    passes:\n      - name: p\n        ztest: sometimes\n",
	}
	for _, src := range tests {
		if _, err := ParseConfig([]byte(src)); err == nil {
			t.Errorf("ParseConfig(%q) succeeded", src)
		}
	}
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "raymarch.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "spheres.frag"), []byte(spheresScene), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(writeConfig(t, dir, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	settings, lib, err := cfg.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if settings.Material == nil || settings.Material.ShaderName() != "Custom/Spheres" {
		t.Fatalf("material = %v", settings.Material)
	}
	if p, _ := settings.Material.Pass(0); !strings.Contains(p.Fragment, "mod(p, 2.0)") {
		t.Errorf("fragment = %q", p.Fragment)
	}
	for _, name := range []string{shader.RaymarchMaterial, shader.FloorMaterial, "Spheres"} {
		if _, err := lib.Get(name); err != nil {
			t.Errorf("library lacks %s: %v", name, err)
		}
	}
}

func TestResolveUnknownMaterial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Feature.MaterialName = "Nope"
	if _, _, err := cfg.Resolve(); !errors.Is(err, material.ErrUnknownMaterial) {
		t.Errorf("Resolve err = %v", err)
	}

	cfg.Feature.MaterialName = ""
	settings, _, err := cfg.Resolve()
	if err != nil || settings.Material != nil {
		t.Errorf("empty material name: %v, %v", settings.Material, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr bool
	}{
		{nil, false},
		{[]string{"-width", "0"}, true},
		{[]string{"-fps", "-1"}, true},
		{[]string{"-watch"}, true},
		{[]string{"-watch", "-config", "x.yaml"}, false},
	}
	for _, tc := range tests {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		o := Register(fs)
		if err := fs.Parse(tc.args); err != nil {
			t.Fatal(err)
		}
		if err := o.Validate(); (err != nil) != tc.wantErr {
			t.Errorf("Validate(%v) = %v", tc.args, err)
		}
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	o := Register(fs)
	_ = fs.Parse([]string{"-headless"})
	if err := o.Validate(); err != nil || !*o.Record {
		t.Errorf("-headless must imply -record (err %v)", err)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "feature:\n  pass_event: AfterRenderingOpaques\n")
	w, err := Watch(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	writeConfig(t, dir, "feature:\n  pass_event: BeforeRenderingTransparents\n")
	select {
	case cfg := <-w.Configs:
		if cfg.Feature.PassEvent != pipeline.BeforeRenderingTransparents {
			t.Errorf("reloaded event = %v", cfg.Feature.PassEvent)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the file changed")
	}

	writeConfig(t, dir, "feature: [broken\n")
	select {
	case cfg := <-w.Configs:
		t.Errorf("broken config delivered: %+v", cfg)
	case <-w.Errors:
	case <-time.After(5 * time.Second):
		t.Fatal("no error for a broken config")
	}
}
