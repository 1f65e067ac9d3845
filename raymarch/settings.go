package raymarch

import (
	"github.com/richinsley/goraymarch/material"
	"github.com/richinsley/goraymarch/pipeline"
)

// DefaultPassName is the shader pass the feature looks for by default.
const DefaultPassName = "RAYMARCH_DEPTH"

// Settings configure a Feature. They are read once by Create.
type Settings struct {
	// Material must contain a pass named PassName with ZWrite on, ZTest
	// LEqual, and a fragment stage that writes depth.
	Material *material.Material `yaml:"-"`
	// MaterialName selects Material from a library when loading config.
	MaterialName string `yaml:"material"`
	// PassName is the shader pass to execute.
	PassName string `yaml:"pass_name"`
	// PassEvent should come after opaques so scene depth is available for
	// testing.
	PassEvent pipeline.RenderPassEvent `yaml:"pass_event"`
	// GameCamerasOnly skips scene-view, preview and other non-game cameras.
	GameCamerasOnly bool `yaml:"game_cameras_only"`
}

func DefaultSettings() Settings {
	return Settings{
		MaterialName:    "Raymarch",
		PassName:        DefaultPassName,
		PassEvent:       pipeline.AfterRenderingOpaques,
		GameCamerasOnly: true,
	}
}
