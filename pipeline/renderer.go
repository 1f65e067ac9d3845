package pipeline

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goraymarch/camera"
)

// CameraData is the per-camera part of RenderingData.
type CameraData struct {
	Camera  *camera.Camera
	Type    camera.Type
	Targets Targets
}

// RenderingData is handed to features and passes for one camera render.
type RenderingData struct {
	Camera     CameraData
	FrameIndex int64
	// DepthPrepass reports whether the host ran its depth prepass for this
	// camera because an enqueued pass asked for InputDepth.
	DepthPrepass bool
}

// RenderPass is the unit a feature injects into a camera render. For every
// camera the host calls Setup, then Execute, then Cleanup, in that order
// and never concurrently.
type RenderPass interface {
	// Setup runs before Execute. Commands recorded into cmd are scheduled
	// ahead of anything Execute submits.
	Setup(cmd *CommandBuffer, data *RenderingData)
	Execute(ctx *Context, data *RenderingData)
	Cleanup(cmd *CommandBuffer)
}

// Descriptor tells the host where and how to schedule a pass.
type Descriptor struct {
	Name  string
	Event RenderPassEvent
	Input PassInput
}

// Feature contributes passes to each camera render.
type Feature interface {
	// Create builds the feature's passes. It is called once when the
	// feature is added to a Renderer.
	Create()
	AddRenderPasses(r *Renderer, data *RenderingData)
}

// Disposer is implemented by features that hold resources beyond a frame.
type Disposer interface {
	Dispose()
}

// StageFunc records the work of a builtin host stage.
type StageFunc func(ctx *Context, data *RenderingData)

// Stage is a host-owned step of the frame, such as drawing opaque geometry.
type Stage struct {
	Name  string
	Event RenderPassEvent
	Run   StageFunc
}

type step struct {
	event RenderPassEvent
	stage *Stage
	desc  Descriptor
	pass  RenderPass
}

// Renderer drives features, builtin stages and injected passes for each
// camera and submits the result to a Backend.
type Renderer struct {
	ctx          *Context
	features     []Feature
	stages       []Stage
	depthPrepass StageFunc
	queue        []step
	enqueued     []Descriptor
	frame        int64
	time         float32
}

func NewRenderer(backend Backend) *Renderer {
	return &Renderer{ctx: NewContext(backend)}
}

// AddFeature calls f.Create and adds f to the renderer.
func (r *Renderer) AddFeature(f Feature) {
	f.Create()
	r.features = append(r.features, f)
}

// RemoveFeature disposes f and removes it. It reports whether f was present.
func (r *Renderer) RemoveFeature(f Feature) bool {
	for i, cur := range r.features {
		if cur != f {
			continue
		}
		if d, ok := f.(Disposer); ok {
			d.Dispose()
		}
		r.features = append(r.features[:i], r.features[i+1:]...)
		return true
	}
	return false
}

// ReplaceFeature swaps old for f at the same position, disposing old and
// creating f. If old is not present f is appended.
func (r *Renderer) ReplaceFeature(old, f Feature) {
	for i, cur := range r.features {
		if cur != old {
			continue
		}
		if d, ok := old.(Disposer); ok {
			d.Dispose()
		}
		f.Create()
		r.features[i] = f
		return
	}
	r.AddFeature(f)
}

func (r *Renderer) Features() []Feature {
	return r.features
}

// AddStage registers a builtin stage. Stages run before injected passes
// with the same event, in registration order.
func (r *Renderer) AddStage(s Stage) {
	r.stages = append(r.stages, s)
}

// SetDepthPrepass registers the stage that produces scene depth when an
// enqueued pass declares InputDepth.
func (r *Renderer) SetDepthPrepass(fn StageFunc) {
	r.depthPrepass = fn
}

// EnqueuePass schedules p for the camera currently being rendered. It is
// meant to be called from Feature.AddRenderPasses.
func (r *Renderer) EnqueuePass(d Descriptor, p RenderPass) {
	r.queue = append(r.queue, step{event: d.Event, desc: d, pass: p})
	r.enqueued = append(r.enqueued, d)
}

// SetTime sets the seconds value published as _Time for following renders.
func (r *Renderer) SetTime(seconds float32) {
	r.time = seconds
}

// Enqueued lists the passes enqueued for the most recent camera.
func (r *Renderer) Enqueued() []Descriptor {
	return r.enqueued
}

// RenderCamera renders one camera into targets.
func (r *Renderer) RenderCamera(cam *camera.Camera, targets Targets) error {
	data := &RenderingData{
		Camera: CameraData{
			Camera:  cam,
			Type:    cam.Type,
			Targets: targets,
		},
		FrameIndex: r.frame,
	}
	r.frame++

	clear(r.queue)
	r.queue = r.queue[:0]
	r.enqueued = r.enqueued[:0]
	for _, f := range r.features {
		f.AddRenderPasses(r, data)
	}

	var inputs PassInput
	for _, s := range r.queue {
		inputs |= s.desc.Input
	}

	steps := make([]step, 0, len(r.stages)+len(r.queue)+1)
	if inputs.Has(InputDepth) && r.depthPrepass != nil {
		data.DepthPrepass = true
		prepass := &Stage{Name: "Depth Prepass", Event: BeforeRenderingPrePasses, Run: r.depthPrepass}
		steps = append(steps, step{event: prepass.Event, stage: prepass})
	}
	for i := range r.stages {
		steps = append(steps, step{event: r.stages[i].Event, stage: &r.stages[i]})
	}
	steps = append(steps, r.queue...)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].event < steps[j].event
	})

	cmd := GetCommandBuffer("Setup Camera")
	cmd.SetRenderTarget(targets.Color, targets.Depth, ClearAll)
	w, h := float32(targets.Width), float32(targets.Height)
	if w > 0 && h > 0 {
		cmd.SetGlobalVector(ScreenParamsID, mgl32.Vec4{w, h, 1 + 1/w, 1 + 1/h})
	}
	t := r.time
	cmd.SetGlobalVector(TimeID, mgl32.Vec4{t / 20, t, t * 2, t * 3})
	setCameraGlobals(cmd, cam)
	r.ctx.ExecuteCommandBuffer(cmd)
	ReleaseCommandBuffer(cmd)

	for _, s := range steps {
		if s.stage != nil {
			s.stage.Run(r.ctx, data)
			continue
		}
		cmd := GetCommandBuffer(s.desc.Name)
		s.pass.Setup(cmd, data)
		r.ctx.ExecuteCommandBuffer(cmd)
		cmd.Clear()
		s.pass.Execute(r.ctx, data)
		s.pass.Cleanup(cmd)
		ReleaseCommandBuffer(cmd)
	}

	if err := r.ctx.Submit(); err != nil {
		return fmt.Errorf("camera %q: %w", cam.Name, err)
	}
	return nil
}

func setCameraGlobals(cmd *CommandBuffer, cam *camera.Camera) {
	view := cam.WorldToCameraMatrix()
	proj := cam.ProjectionMatrix()
	vp := proj.Mul4(view)
	cmd.SetGlobalMatrix(MatrixVID, view)
	cmd.SetGlobalMatrix(MatrixPID, proj)
	cmd.SetGlobalMatrix(MatrixVPID, vp)
	if vp.Det() != 0 {
		cmd.SetGlobalMatrix(MatrixInvVPID, vp.Inv())
	}
	cmd.SetGlobalVector(WorldSpaceCameraPosID, cam.Position.Vec4(1))
}

// Dispose disposes and drops every feature.
func (r *Renderer) Dispose() {
	for _, f := range r.features {
		if d, ok := f.(Disposer); ok {
			d.Dispose()
		}
	}
	r.features = nil
}
