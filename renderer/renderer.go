package renderer

import (
	"fmt"
	"log"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goraymarch/glbackend"
	"github.com/richinsley/goraymarch/graphics"
	"github.com/richinsley/goraymarch/options"
	"github.com/richinsley/goraymarch/shader"
)

// glInitOnce ensures gl.Init() is called only once.
var glInitOnce sync.Once

// Renderer hosts a Scene on an OpenGL context: it owns the backend, the
// camera targets and the presentation to the window.
type Renderer struct {
	context     graphics.Context
	backend     *glbackend.Backend
	scene       *Scene
	vao         uint32
	blitProgram uint32
	width       int
	height      int
	recordMode  bool
	paused      bool
	drag        mouseDrag
}

func NewRenderer(width, height int, recordMode bool, ctx graphics.Context) (*Renderer, error) {
	r := &Renderer{
		context:    ctx,
		width:      width,
		height:     height,
		recordMode: recordMode,
	}

	// Make the context current BEFORE initializing OpenGL.
	r.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	log.Printf("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	isGLES := ctx.IsGLES()
	r.backend = glbackend.New(isGLES)
	r.scene = NewScene(r.backend)
	r.scene.OnRelease = r.backend.ReleaseMaterial

	var err error
	r.blitProgram, err = glbackend.NewProgram(shader.FullscreenVertex(isGLES), shader.GetBlitFragmentShader(false, isGLES))
	if err != nil {
		r.Shutdown()
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	gl.GenVertexArrays(1, &r.vao)

	game := r.scene.Game()
	game.Targets, err = r.backend.CreateTarget(width, height)
	if err != nil {
		r.Shutdown()
		return nil, fmt.Errorf("failed to create camera target: %w", err)
	}
	return r, nil
}

// Scene returns the device-independent half of the host.
func (r *Renderer) Scene() *Scene {
	return r.scene
}

// ApplyConfig swaps in the feature and materials described by cfg.
func (r *Renderer) ApplyConfig(cfg *options.Config) error {
	return r.scene.ApplyConfig(cfg)
}

// SetSceneView enables the inset scene view camera, allocating its target
// on first use.
func (r *Renderer) SetSceneView(enabled bool) error {
	v := r.scene.SceneView()
	if enabled && v.Targets.Color == 0 {
		w, h := insetSize(r.width, r.height)
		t, err := r.backend.CreateTarget(w, h)
		if err != nil {
			return fmt.Errorf("failed to create scene view target: %w", err)
		}
		v.Targets = t
	}
	v.Enabled = enabled
	return nil
}

func (r *Renderer) ToggleSceneView() {
	if err := r.SetSceneView(!r.scene.SceneView().Enabled); err != nil {
		log.Printf("Scene view: %v", err)
	}
}

func (r *Renderer) TogglePause() {
	r.paused = !r.paused
}

// resize follows the window's framebuffer in interactive mode.
func (r *Renderer) resize(width, height int) error {
	if width <= 0 || height <= 0 || (width == r.width && height == r.height) {
		return nil
	}
	r.width, r.height = width, height
	for _, v := range r.scene.views {
		if v.Targets.Color == 0 {
			continue
		}
		w, h := width, height
		if v.Inset {
			w, h = insetSize(width, height)
		}
		t, err := r.backend.ResizeTarget(v.Targets, w, h)
		if err != nil {
			return err
		}
		v.Targets = t
	}
	return nil
}

// present blits the views to the default framebuffer.
func (r *Renderer) present(fbWidth, fbHeight int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Disable(gl.DEPTH_TEST)
	gl.DepthMask(true)
	gl.ColorMask(true, true, true, true)
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.blitProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindVertexArray(r.vao)
	for _, v := range r.scene.views {
		if !v.Enabled || v.Targets.Color == 0 {
			continue
		}
		rt, ok := r.backend.Target(v.Targets.Color)
		if !ok {
			continue
		}
		if v.Inset {
			x, y, w, h := insetRect(fbWidth, fbHeight)
			gl.Viewport(int32(x), int32(y), int32(w), int32(h))
		} else {
			gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		}
		gl.BindTexture(gl.TEXTURE_2D, rt.TextureID())
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindVertexArray(0)
}

// Run is the interactive loop. Configs arriving on watch are applied
// between frames. watch may be nil.
func (r *Renderer) Run(watch *options.Watcher) {
	var configs <-chan *options.Config
	var watchErrs <-chan error
	if watch != nil {
		configs, watchErrs = watch.Configs, watch.Errors
	}

	last := r.context.Time()
	var elapsed float64
	var frame int64
	for !r.context.ShouldClose() {
		select {
		case cfg, ok := <-configs:
			if !ok {
				configs = nil
			} else if err := r.ApplyConfig(cfg); err != nil {
				log.Printf("Reload failed, keeping the previous feature: %v", err)
			}
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
			} else {
				log.Printf("Reload failed, keeping the previous feature: %v", err)
			}
		default:
		}

		now := r.context.Time()
		if !r.paused {
			elapsed += now - last
		}
		last = now

		if dx, dy, ok := r.drag.update(r.context.GetMouseInput()); ok {
			r.scene.Game().Orbit.Drag(dx, dy)
		}

		fbWidth, fbHeight := r.context.GetFramebufferSize()
		if err := r.resize(fbWidth, fbHeight); err != nil {
			log.Printf("Error resizing camera targets: %v", err)
		}
		if err := r.scene.Render(elapsed); err != nil {
			log.Printf("Error rendering frame %d: %v", frame, err)
		}
		r.present(fbWidth, fbHeight)

		r.context.EndFrame()
		frame++
	}
}

func (r *Renderer) Shutdown() {
	if r.scene != nil {
		r.scene.Dispose()
	}
	if r.blitProgram != 0 {
		gl.DeleteProgram(r.blitProgram)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.backend != nil {
		r.backend.Destroy()
	}
}
