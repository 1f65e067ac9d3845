package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goraymarch/material"
	"github.com/richinsley/goraymarch/pipeline"
	"github.com/richinsley/goraymarch/shader"
)

const (
	prepassTag = "Depth Prepass"
	opaquesTag = "Draw Opaque Objects"
)

// Opaques draws the scene's opaque geometry: a procedural floor. Its
// depth-only pass doubles as the depth prepass.
type Opaques struct {
	Material *material.Material
}

// Install registers the prepass and the opaque stage on p.
func (o *Opaques) Install(p *pipeline.Renderer) {
	p.SetDepthPrepass(func(ctx *pipeline.Context, data *pipeline.RenderingData) {
		o.draw(ctx, data, prepassTag, shader.DepthOnlyPass)
	})
	p.AddStage(pipeline.Stage{
		Name:  opaquesTag,
		Event: pipeline.BeforeRenderingOpaques,
		Run: func(ctx *pipeline.Context, data *pipeline.RenderingData) {
			o.draw(ctx, data, opaquesTag, shader.ForwardPass)
		},
	})
}

func (o *Opaques) draw(ctx *pipeline.Context, data *pipeline.RenderingData, tag, passName string) {
	if o.Material == nil {
		return
	}
	pass := o.Material.FindPass(passName)
	if pass < 0 {
		return
	}
	cmd := pipeline.GetCommandBuffer(tag)
	cmd.SetRenderTarget(data.Camera.Targets.Color, data.Camera.Targets.Depth, pipeline.ClearNone)
	cmd.DrawProcedural(mgl32.Ident4(), o.Material, pass, pipeline.TopologyTriangles, shader.FloorVertCount, 1)
	ctx.ExecuteCommandBuffer(cmd)
	pipeline.ReleaseCommandBuffer(cmd)
}
