package renderer

import (
	"errors"
	"log"

	"github.com/richinsley/goraymarch/material"
	"github.com/richinsley/goraymarch/options"
	"github.com/richinsley/goraymarch/pipeline"
	"github.com/richinsley/goraymarch/raymarch"
	"github.com/richinsley/goraymarch/shader"
)

// Scene is the device-independent part of the host: the render pipeline,
// its stages, the raymarch feature and the camera views.
type Scene struct {
	pipe    *pipeline.Renderer
	opaques Opaques
	feature *raymarch.Feature
	library *material.Library
	views   []*View

	// OnRelease is called for every material a reload drops.
	OnRelease func(*material.Material)
}

func NewScene(backend pipeline.Backend) *Scene {
	s := &Scene{
		pipe:  pipeline.NewRenderer(backend),
		views: []*View{newGameView(), newSceneView()},
	}
	s.opaques.Install(s.pipe)
	return s
}

func (s *Scene) Game() *View      { return s.views[0] }
func (s *Scene) SceneView() *View { return s.views[1] }

func (s *Scene) Feature() *raymarch.Feature { return s.feature }

func (s *Scene) Pipeline() *pipeline.Renderer { return s.pipe }

// ApplyConfig builds materials and a new feature from cfg and swaps them in.
// On error the current feature keeps running.
func (s *Scene) ApplyConfig(cfg *options.Config) error {
	settings, lib, err := cfg.Resolve()
	if err != nil {
		return err
	}
	floor, err := lib.Get(shader.FloorMaterial)
	if err != nil {
		return err
	}

	f := raymarch.New(settings)
	if s.feature == nil {
		s.pipe.AddFeature(f)
	} else {
		s.pipe.ReplaceFeature(s.feature, f)
	}
	s.feature = f
	s.opaques.Material = floor

	if s.library != nil && s.OnRelease != nil {
		for _, name := range s.library.Names() {
			old, _ := s.library.Get(name)
			if cur, err := lib.Get(name); err != nil || cur != old {
				s.OnRelease(old)
			}
		}
	}
	s.library = lib

	name := "<none>"
	if settings.Material != nil {
		name = settings.Material.Name
	}
	log.Printf("Raymarch feature: material '%s', pass '%s' at %v, game cameras only: %v",
		name, settings.PassName, settings.PassEvent, settings.GameCamerasOnly)
	return nil
}

// Render draws every enabled view with targets at time t.
func (s *Scene) Render(t float64) error {
	s.pipe.SetTime(float32(t))
	var errs []error
	for _, v := range s.views {
		if !v.Enabled || v.Targets.Color == 0 {
			continue
		}
		v.Orbit.Apply(v.Camera, t)
		if v.Targets.Height > 0 {
			v.Camera.Aspect = float32(v.Targets.Width) / float32(v.Targets.Height)
		}
		if err := s.pipe.RenderCamera(v.Camera, v.Targets); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispose disposes the features. GL resources belong to the Renderer.
func (s *Scene) Dispose() {
	s.pipe.Dispose()
	s.feature = nil
}
