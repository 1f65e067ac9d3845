package raymarch

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goraymarch/camera"
	"github.com/richinsley/goraymarch/material"
	"github.com/richinsley/goraymarch/pipeline"
)

const (
	featureName = "RaymarchDepthRendererFeature"
	profilerTag = "Raymarch Depth Pass"
)

// Feature injects a full-screen raymarch draw that writes color and depth
// into the camera targets.
type Feature struct {
	Settings Settings
	pass     *depthPass
}

func New(settings Settings) *Feature {
	return &Feature{Settings: settings}
}

// Create builds the pass. A material without the configured pass leaves
// the feature inert rather than failing.
func (f *Feature) Create() {
	f.pass = newDepthPass(f.Settings.Material, f.Settings.PassName, f.Settings.PassEvent, f.Settings.GameCamerasOnly)
}

// AddRenderPasses enqueues the pass unless no material is configured.
func (f *Feature) AddRenderPasses(r *pipeline.Renderer, data *pipeline.RenderingData) {
	if f.Settings.Material == nil || f.pass == nil {
		return
	}
	r.EnqueuePass(pipeline.Descriptor{
		Name:  profilerTag,
		Event: f.pass.event,
		// The shader may sample scene depth, so make sure it exists.
		Input: pipeline.InputDepth,
	}, f.pass)
}

// Valid reports whether the pass resolved its shader pass and can draw.
func (f *Feature) Valid() bool {
	return f.pass != nil && f.pass.material != nil && f.pass.passIndex >= 0
}

type depthPass struct {
	material        *material.Material
	passName        string
	event           pipeline.RenderPassEvent
	gameCamerasOnly bool
	passIndex       int

	cameraColor pipeline.TargetHandle
	cameraDepth pipeline.TargetHandle
}

func newDepthPass(mat *material.Material, passName string, evt pipeline.RenderPassEvent, gameCamerasOnly bool) *depthPass {
	p := &depthPass{
		material:        mat,
		passName:        passName,
		event:           evt,
		gameCamerasOnly: gameCamerasOnly,
		passIndex:       -1,
	}
	if mat == nil {
		return p
	}
	p.passIndex = mat.FindPass(passName)
	if p.passIndex < 0 {
		log.Printf("[%s] Pass '%s' not found on material '%s'.", featureName, passName, mat.ShaderName())
		return p
	}
	if sp, err := mat.Pass(p.passIndex); err == nil {
		s := sp.State
		if !s.ZWrite || s.ZTest != material.CompareLessEqual || !s.WritesDepth {
			log.Printf("[%s] Pass '%s' on '%s' should use ZWrite On, ZTest LEqual and write depth (has zwrite=%v ztest=%v writes_depth=%v).",
				featureName, passName, mat.ShaderName(), s.ZWrite, s.ZTest, s.WritesDepth)
		}
	}
	return p
}

// Setup binds the camera's color and depth for this pass. Nothing is
// cleared; depth written by opaques must survive.
func (p *depthPass) Setup(cmd *pipeline.CommandBuffer, data *pipeline.RenderingData) {
	p.cameraColor = data.Camera.Targets.Color
	p.cameraDepth = data.Camera.Targets.Depth
}

func (p *depthPass) Execute(ctx *pipeline.Context, data *pipeline.RenderingData) {
	if p.material == nil || p.passIndex < 0 {
		return
	}
	if p.gameCamerasOnly && data.Camera.Type != camera.Game {
		return
	}

	u, err := ComputeUniforms(data.Camera.Camera)
	if err != nil {
		log.Printf("[%s] Skipping camera '%s': %v", featureName, data.Camera.Camera.Name, err)
		return
	}

	cmd := pipeline.GetCommandBuffer(profilerTag)
	cmd.SetRenderTarget(p.cameraColor, p.cameraDepth, pipeline.ClearNone)
	u.Record(cmd)

	// Full-screen triangle; the vertex stage builds it from gl_VertexID.
	cmd.DrawProcedural(mgl32.Ident4(), p.material, p.passIndex, pipeline.TopologyTriangles, 3, 1)

	ctx.ExecuteCommandBuffer(cmd)
	pipeline.ReleaseCommandBuffer(cmd)
}

// Cleanup has nothing to do; the pass allocates no per-frame resources.
func (p *depthPass) Cleanup(cmd *pipeline.CommandBuffer) {}
