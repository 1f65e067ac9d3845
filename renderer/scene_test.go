package renderer

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goraymarch/camera"
	"github.com/richinsley/goraymarch/material"
	"github.com/richinsley/goraymarch/options"
	"github.com/richinsley/goraymarch/pipeline"
	"github.com/richinsley/goraymarch/shader"
)

func newTestScene(t *testing.T) (*Scene, *pipeline.Recorder) {
	t.Helper()
	rec := &pipeline.Recorder{}
	s := NewScene(rec)
	s.Game().Targets = pipeline.Targets{Color: 1, Depth: 2, Width: 320, Height: 180}
	s.SceneView().Targets = pipeline.Targets{Color: 3, Depth: 4, Width: 80, Height: 45}
	if err := s.ApplyConfig(options.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	return s, rec
}

type drawInfo struct {
	material string
	pass     int
	vertices int
}

func draws(rec *pipeline.Recorder) []drawInfo {
	var out []drawInfo
	for _, d := range rec.Draws() {
		out = append(out, drawInfo{d.Material.Name, d.Pass, d.VertexCount})
	}
	return out
}

func TestSceneFrameOrder(t *testing.T) {
	s, rec := newTestScene(t)
	if err := s.Render(0); err != nil {
		t.Fatal(err)
	}
	want := []drawInfo{
		{shader.FloorMaterial, 0, shader.FloorVertCount},
		{shader.FloorMaterial, 1, shader.FloorVertCount},
		{shader.RaymarchMaterial, 0, 3},
	}
	got := draws(rec)
	if len(got) != len(want) {
		t.Fatalf("draws = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("draw %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSceneViewSkipsRaymarch(t *testing.T) {
	s, rec := newTestScene(t)
	s.Game().Enabled = false
	s.SceneView().Enabled = true
	if err := s.Render(1); err != nil {
		t.Fatal(err)
	}
	for _, d := range draws(rec) {
		if d.material == shader.RaymarchMaterial {
			t.Errorf("scene view camera drew the raymarch pass: %v", d)
		}
	}
	if n := len(rec.Draws()); n != 2 {
		t.Errorf("scene view drew %d times, want the floor passes only", n)
	}

	cfg := options.DefaultConfig()
	cfg.Feature.GameCamerasOnly = false
	if err := s.ApplyConfig(cfg); err != nil {
		t.Fatal(err)
	}
	rec.Reset()
	if err := s.Render(1); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.Draws()); n != 3 {
		t.Errorf("unfiltered scene view drew %d times, want 3", n)
	}
}

func TestSceneSetsAspect(t *testing.T) {
	s, _ := newTestScene(t)
	if err := s.Render(0); err != nil {
		t.Fatal(err)
	}
	if got := s.Game().Camera.Aspect; math32.Abs(got-16.0/9.0) > 1e-6 {
		t.Errorf("aspect = %v", got)
	}
}

func TestApplyConfigReplacesFeature(t *testing.T) {
	s, rec := newTestScene(t)
	first := s.Feature()

	var released []*material.Material
	s.OnRelease = func(m *material.Material) { released = append(released, m) }

	cfg := options.DefaultConfig()
	cfg.Feature.PassEvent = pipeline.AfterRenderingTransparents
	if err := s.ApplyConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if s.Feature() == first {
		t.Fatal("feature not replaced")
	}
	if n := len(s.Pipeline().Features()); n != 1 {
		t.Errorf("%d features installed", n)
	}
	if len(released) != 2 {
		t.Errorf("released %d materials, want the two built-ins", len(released))
	}

	if err := s.Render(0); err != nil {
		t.Fatal(err)
	}
	got := s.Pipeline().Enqueued()
	if len(got) != 1 || got[0].Event != pipeline.AfterRenderingTransparents {
		t.Errorf("enqueued %+v", got)
	}
	if n := len(rec.Draws()); n != 3 {
		t.Errorf("%d draws after reload", n)
	}
}

func TestApplyConfigErrorKeepsFeature(t *testing.T) {
	s, _ := newTestScene(t)
	first := s.Feature()
	cfg := options.DefaultConfig()
	cfg.Feature.MaterialName = "Missing"
	if err := s.ApplyConfig(cfg); err == nil {
		t.Fatal("unknown material accepted")
	}
	if s.Feature() != first {
		t.Error("failed reload replaced the feature")
	}
}

func TestOrbit(t *testing.T) {
	o := Orbit{Target: mgl32.Vec3{0, 1, 0}, Radius: 5, Yaw: 350, Pitch: 20, Speed: 20}
	if yaw, _ := o.Angles(1); math32.Abs(yaw-10) > 1e-4 {
		t.Errorf("yaw after wrap = %v, want 10", yaw)
	}

	cam := camera.New("orbit")
	o.Apply(cam, 0)
	if d := cam.Position.Sub(o.Target).Len(); math32.Abs(d-5) > 1e-4 {
		t.Errorf("distance to target = %v", d)
	}

	o.Drag(0, -1000)
	if o.Pitch != maxPitch {
		t.Errorf("pitch = %v, want clamped to %v", o.Pitch, maxPitch)
	}
	o.Drag(0, 1000)
	if o.Pitch != minPitch {
		t.Errorf("pitch = %v, want clamped to %v", o.Pitch, minPitch)
	}
}

func TestInsetRect(t *testing.T) {
	x, y, w, h := insetRect(1280, 720)
	if w != 320 || h != 180 || x != 1280-320-insetMarginPix || y != 720-180-insetMarginPix {
		t.Errorf("insetRect = %d,%d %dx%d", x, y, w, h)
	}
	if w, h := insetSize(2, 2); w != 1 || h != 1 {
		t.Errorf("insetSize(2, 2) = %dx%d", w, h)
	}
}

func TestMouseDrag(t *testing.T) {
	var m mouseDrag
	if _, _, ok := m.update([4]float32{10, 10, -5, -5}); ok {
		t.Error("drag reported with the button up")
	}
	if _, _, ok := m.update([4]float32{10, 10, 10, 10}); ok {
		t.Error("first sample of a press must not move")
	}
	dx, dy, ok := m.update([4]float32{14, 7, 10, 10})
	if !ok || dx != 4 || dy != -3 {
		t.Errorf("drag = %v, %v, %v", dx, dy, ok)
	}
}
