package raymarch

import (
	"bytes"
	"log"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goraymarch/camera"
	"github.com/richinsley/goraymarch/material"
	"github.com/richinsley/goraymarch/pipeline"
)

var targets = pipeline.Targets{Color: 7, Depth: 8, Width: 640, Height: 360}

func raymarchMaterial() *material.Material {
	return material.New("Raymarch", &material.Shader{
		Name: "Hidden/RaymarchDepth",
		Passes: []material.Pass{
			{Name: "FORWARD", Fragment: "x"},
			{
				Name:     DefaultPassName,
				Fragment: "x",
				State:    material.RenderState{ZWrite: true, ZTest: material.CompareLessEqual, WritesDepth: true},
			},
		},
	})
}

func gameCamera() *camera.Camera {
	c := camera.New("Main Camera")
	c.LookAt(mgl32.Vec3{2, 3, 6}, mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{0, 1, 0})
	return c
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func setup(settings Settings) (*pipeline.Renderer, *pipeline.Recorder, *Feature) {
	rec := &pipeline.Recorder{}
	r := pipeline.NewRenderer(rec)
	f := New(settings)
	r.AddFeature(f)
	return r, rec, f
}

func withMaterial(m *material.Material) Settings {
	s := DefaultSettings()
	s.Material = m
	return s
}

func TestGameCameraDrawsOnce(t *testing.T) {
	r, rec, f := setup(withMaterial(raymarchMaterial()))
	if !f.Valid() {
		t.Fatal("feature not valid")
	}
	if err := r.RenderCamera(gameCamera(), targets); err != nil {
		t.Fatal(err)
	}

	draws := rec.Draws()
	if len(draws) != 1 {
		t.Fatalf("got %d draws, want 1", len(draws))
	}
	d := draws[0]
	if d.VertexCount != 3 || d.InstanceCount != 1 || d.Topology != pipeline.TopologyTriangles {
		t.Errorf("draw = %d vertices, %d instances, %v", d.VertexCount, d.InstanceCount, d.Topology)
	}
	if d.Pass != 1 || d.Material != f.Settings.Material {
		t.Errorf("draw uses pass %d of %v", d.Pass, d.Material)
	}
	if d.Matrix != mgl32.Ident4() {
		t.Errorf("draw matrix = %v, want identity", d.Matrix)
	}
}

func TestDrawTargetsCameraWithoutClear(t *testing.T) {
	r, rec, _ := setup(withMaterial(raymarchMaterial()))
	if err := r.RenderCamera(gameCamera(), targets); err != nil {
		t.Fatal(err)
	}

	// The last target binding before the draw must be the camera's
	// targets, bound without clearing.
	var bound *pipeline.SetRenderTarget
	for _, c := range rec.Commands() {
		switch c := c.(type) {
		case pipeline.SetRenderTarget:
			bound = &c
		case pipeline.DrawProcedural:
			if bound == nil {
				t.Fatal("draw without a bound target")
			}
			if bound.Color != targets.Color || bound.Depth != targets.Depth || bound.Clear != pipeline.ClearNone {
				t.Errorf("draw bound to %+v", *bound)
			}
			return
		}
	}
	t.Fatal("no draw recorded")
}

func TestCameraFilter(t *testing.T) {
	tests := []struct {
		name      string
		camType   camera.Type
		gameOnly  bool
		wantDraws int
	}{
		{"game filtered", camera.Game, true, 1},
		{"scene view filtered", camera.SceneView, true, 0},
		{"preview filtered", camera.Preview, true, 0},
		{"reflection filtered", camera.Reflection, true, 0},
		{"scene view unfiltered", camera.SceneView, false, 1},
		{"preview unfiltered", camera.Preview, false, 1},
	}
	for _, tc := range tests {
		s := withMaterial(raymarchMaterial())
		s.GameCamerasOnly = tc.gameOnly
		r, rec, _ := setup(s)
		cam := gameCamera()
		cam.Type = tc.camType
		if err := r.RenderCamera(cam, targets); err != nil {
			t.Fatal(err)
		}
		if got := len(rec.Draws()); got != tc.wantDraws {
			t.Errorf("%s: %d draws, want %d", tc.name, got, tc.wantDraws)
		}
	}
}

func TestMissingPassDisablesFeature(t *testing.T) {
	buf := captureLog(t)
	s := withMaterial(raymarchMaterial())
	s.PassName = "NOT_THERE"
	s.GameCamerasOnly = false
	r, rec, f := setup(s)

	if f.Valid() {
		t.Error("feature valid with an unknown pass")
	}
	msg := buf.String()
	if !strings.Contains(msg, "Pass 'NOT_THERE' not found on material 'Hidden/RaymarchDepth'") {
		t.Errorf("unexpected log %q", msg)
	}

	for _, typ := range []camera.Type{camera.Game, camera.SceneView, camera.Preview} {
		cam := gameCamera()
		cam.Type = typ
		for i := 0; i < 3; i++ {
			if err := r.RenderCamera(cam, targets); err != nil {
				t.Fatal(err)
			}
		}
	}
	if n := len(rec.Draws()); n != 0 {
		t.Errorf("invalid feature drew %d times", n)
	}
	if n := strings.Count(buf.String(), "not found"); n != 1 {
		t.Errorf("missing pass logged %d times, want once", n)
	}
}

func TestNilMaterialIsNotEnqueued(t *testing.T) {
	r, rec, f := setup(DefaultSettings())
	if f.Valid() {
		t.Error("feature valid without material")
	}
	if err := r.RenderCamera(gameCamera(), targets); err != nil {
		t.Fatal(err)
	}
	if n := len(r.Enqueued()); n != 0 {
		t.Errorf("%d passes enqueued without material", n)
	}
	if n := len(rec.Draws()); n != 0 {
		t.Errorf("%d draws without material", n)
	}
}

func TestEnqueueDescriptor(t *testing.T) {
	s := withMaterial(raymarchMaterial())
	s.PassEvent = pipeline.AfterRenderingSkybox
	r, _, _ := setup(s)
	if err := r.RenderCamera(gameCamera(), targets); err != nil {
		t.Fatal(err)
	}
	got := r.Enqueued()
	want := []pipeline.Descriptor{{Name: profilerTag, Event: pipeline.AfterRenderingSkybox, Input: pipeline.InputDepth}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Enqueued() = %+v, want %+v", got, want)
	}
}

func TestUploadedUniforms(t *testing.T) {
	r, rec, _ := setup(withMaterial(raymarchMaterial()))
	cam := gameCamera()
	if err := r.RenderCamera(cam, targets); err != nil {
		t.Fatal(err)
	}
	mats, vecs := rec.Globals()

	proj := cam.ProjectionMatrix()
	invProj, ok := mats[InvProjID]
	if !ok {
		t.Fatal("_InvProjMat not uploaded")
	}
	if got := proj.Mul4(invProj.Value); !got.ApproxEqualThreshold(mgl32.Ident4(), 1e-5) {
		t.Errorf("projection * invProjection = %v", got)
	}

	if got, want := mats[VPID].Value, proj.Mul4(cam.WorldToCameraMatrix()); got != want {
		t.Errorf("_CameraVP = %v, want %v", got, want)
	}
	if got, want := mats[InvViewID].Value, cam.CameraToWorldMatrix(); got != want {
		t.Errorf("_InvViewMat = %v, want %v", got, want)
	}
	if got, want := vecs[CamPosID].Value, cam.Position.Vec4(1); got != want {
		t.Errorf("_CameraPos = %v, want %v", got, want)
	}
}

func TestSingularProjectionSkipsDraw(t *testing.T) {
	buf := captureLog(t)
	r, rec, _ := setup(withMaterial(raymarchMaterial()))
	cam := gameCamera()
	cam.SetProjectionMatrix(&mgl32.Mat4{})
	if err := r.RenderCamera(cam, targets); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.Draws()); n != 0 {
		t.Errorf("%d draws with singular projection", n)
	}
	mats, vecs := rec.Globals()
	for _, id := range []pipeline.PropertyID{InvProjID, InvViewID, VPID} {
		if _, ok := mats[id]; ok {
			t.Errorf("%s uploaded for singular projection", id)
		}
	}
	if _, ok := vecs[CamPosID]; ok {
		t.Error("_CameraPos uploaded for singular projection")
	}
	if !strings.Contains(buf.String(), "not invertible") {
		t.Errorf("unexpected log %q", buf.String())
	}
}

func TestCleanupLeavesNextFrameUnchanged(t *testing.T) {
	r, rec, f := setup(withMaterial(raymarchMaterial()))
	cam := gameCamera()
	if err := r.RenderCamera(cam, targets); err != nil {
		t.Fatal(err)
	}
	first := rec.Commands()

	// Extra cleanups between frames must not matter.
	cmd := pipeline.NewCommandBuffer("cleanup")
	f.pass.Cleanup(cmd)
	f.pass.Cleanup(nil)
	if cmd.Len() != 0 {
		t.Errorf("Cleanup recorded %d commands", cmd.Len())
	}

	rec.Reset()
	if err := r.RenderCamera(cam, targets); err != nil {
		t.Fatal(err)
	}
	if second := rec.Commands(); !reflect.DeepEqual(first, second) {
		t.Errorf("frames differ after cleanup:\n%v\n%v", first, second)
	}
}

func TestContractWarning(t *testing.T) {
	buf := captureLog(t)
	m := raymarchMaterial()
	m.Shader.Passes[1].State.ZTest = material.CompareLess
	_, _, f := setup(withMaterial(m))
	if !f.Valid() {
		t.Error("render state mismatch must not disable the feature")
	}
	if !strings.Contains(buf.String(), "ZTest LEqual") {
		t.Errorf("expected a render state warning, got %q", buf.String())
	}
}

func TestComputeUniformsOrthographic(t *testing.T) {
	cam := gameCamera()
	cam.Orthographic = true
	u, err := ComputeUniforms(cam)
	if err != nil {
		t.Fatal(err)
	}
	if got := cam.ProjectionMatrix().Mul4(u.InvProjection); !got.ApproxEqualThreshold(mgl32.Ident4(), 1e-5) {
		t.Errorf("P * inv(P) = %v", got)
	}
	if u.CameraPosition != cam.Position {
		t.Errorf("CameraPosition = %v", u.CameraPosition)
	}
}
