package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goraymarch/encoder"
	"github.com/richinsley/goraymarch/glfwcontext"
	"github.com/richinsley/goraymarch/graphics"
	"github.com/richinsley/goraymarch/headless"
	"github.com/richinsley/goraymarch/options"
	"github.com/richinsley/goraymarch/renderer"
)

func init() {
	runtime.LockOSThread()
}

func loadConfig(opts *options.Options) *options.Config {
	if *opts.ConfigFile == "" {
		return options.DefaultConfig()
	}
	cfg, err := options.LoadConfig(*opts.ConfigFile)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	return cfg
}

// newContext opens a window, hidden when recording, or an EGL pbuffer.
func newContext(opts *options.Options) (graphics.Context, func()) {
	if *opts.Headless {
		ctx, err := headless.NewHeadless(*opts.Width, *opts.Height)
		if err != nil {
			log.Fatalf("Failed to create headless context: %v", err)
		}
		return ctx, func() {}
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize GLFW: %v", err)
	}
	ctx, err := glfwcontext.New(opts, !*opts.Record)
	if err != nil {
		glfwcontext.TerminateGraphics()
		log.Fatalf("Failed to create window: %v", err)
	}
	return ctx, glfwcontext.TerminateGraphics
}

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("goraymarch: raymarched SDF scene composited over rasterized geometry")
		flag.PrintDefaults()
		return
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg := loadConfig(opts)

	ctx, terminate := newContext(opts)
	defer terminate()
	defer ctx.Shutdown()

	r, err := renderer.NewRenderer(*opts.Width, *opts.Height, *opts.Record, ctx)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Shutdown()

	if err := r.ApplyConfig(cfg); err != nil {
		log.Fatalf("Failed to apply config: %v", err)
	}
	if *opts.SceneView {
		if err := r.SetSceneView(true); err != nil {
			log.Fatalf("Failed to enable scene view: %v", err)
		}
	}

	if *opts.Record {
		err := r.RunOffscreen(encoder.Config{
			FPS:        *opts.FPS,
			Output:     *opts.OutputFile,
			FFmpegPath: *opts.FFMPEGPath,
			Codec:      *opts.Codec,
			HWAccel:    *opts.HWAccel,
		}, *opts.Duration)
		if err != nil {
			log.Fatalf("Offscreen rendering failed: %v", err)
		}
		log.Printf("Successfully rendered to %s", *opts.OutputFile)
		return
	}

	var watch *options.Watcher
	if *opts.Watch {
		watch, err = options.Watch(*opts.ConfigFile)
		if err != nil {
			log.Fatalf("Failed to watch %s: %v", *opts.ConfigFile, err)
		}
		defer watch.Close()
		log.Printf("Watching %s for changes", *opts.ConfigFile)
	}

	if win, ok := ctx.(*glfwcontext.Context); ok {
		win.RegisterKeyCallback(glfw.KeySpace, r.TogglePause)
		win.RegisterKeyCallback(glfw.KeyV, r.ToggleSceneView)
	}

	log.Println("Starting interactive render loop...")
	r.Run(watch)
}
