package renderer

import (
	"errors"
	"fmt"
	"log"

	"github.com/richinsley/goraymarch/encoder"
)

// RunOffscreen renders duration seconds at the encoder's frame rate and
// pipes every frame of the game view to ffmpeg.
func (r *Renderer) RunOffscreen(cfg encoder.Config, duration float64) error {
	if !r.recordMode {
		return errors.New("renderer was not created for recording")
	}
	game := r.scene.Game()
	rt, ok := r.backend.Target(game.Targets.Color)
	if !ok {
		return errors.New("game view has no render target")
	}
	cfg.Width, cfg.Height = rt.Size()

	enc, err := encoder.Start(cfg)
	if err != nil {
		return fmt.Errorf("failed to start encoder: %w", err)
	}

	log.Println("Starting in record mode...")
	totalFrames := int(duration * float64(cfg.FPS))
	timeStep := 1.0 / float64(cfg.FPS)
	frameSize := cfg.Width * cfg.Height * 4

	var renderErr error
	for i := 0; i < totalFrames; i++ {
		currentTime := float64(i) * timeStep
		if err := r.scene.Render(currentTime); err != nil {
			log.Printf("Error rendering frame %d: %v", i, err)
		}

		// Each frame gets its own buffer; the encoder reads it on another
		// goroutine.
		pixels := make([]byte, frameSize)
		if err := rt.ReadPixels(pixels); err != nil {
			renderErr = fmt.Errorf("frame %d: %w", i, err)
			break
		}
		if err := enc.Send(&encoder.Frame{Pixels: pixels, PTS: int64(i)}); err != nil {
			renderErr = err
			break
		}
		if (i+1)%cfg.FPS == 0 {
			log.Printf("Rendered %d/%d frames", i+1, totalFrames)
		}
	}

	encErr := enc.Close()
	if renderErr != nil {
		return renderErr
	}
	return encErr
}
