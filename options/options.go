package options

import "flag"

// Options holds the command line flags. Fields are flag pointers so the
// defaults stay next to the flag definitions.
type Options struct {
	ConfigFile *string
	Help       *bool
	Width      *int
	Height     *int
	FPS        *int
	Record     *bool
	Duration   *float64
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
	HWAccel    *bool
	Headless   *bool
	SceneView  *bool
	Watch      *bool
}

// Register defines the flags on fs.
func Register(fs *flag.FlagSet) *Options {
	return &Options{
		ConfigFile: fs.String("config", "", "YAML configuration file (feature settings and materials)"),
		Help:       fs.Bool("help", false, "Show help message"),
		Width:      fs.Int("width", 1280, "Width of the output"),
		Height:     fs.Int("height", 720, "Height of the output"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		Record:     fs.Bool("record", false, "Render offscreen and encode to -output"),
		Duration:   fs.Float64("duration", 10.0, "Duration to record in seconds"),
		OutputFile: fs.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      fs.String("codec", "h264", "Video codec for recording (h264 or hevc)"),
		HWAccel:    fs.Bool("hwaccel", false, "Use the platform hardware encoder when recording"),
		Headless:   fs.Bool("headless", false, "Use an EGL pbuffer instead of a window (linux, implies -record)"),
		SceneView:  fs.Bool("scene-view", false, "Also render a scene view camera as an inset"),
		Watch:      fs.Bool("watch", false, "Reload -config when it changes"),
	}
}

// Validate normalises flag combinations.
func (o *Options) Validate() error {
	if *o.Headless {
		*o.Record = true
	}
	if *o.Width <= 0 || *o.Height <= 0 {
		return errInvalidSize
	}
	if *o.FPS <= 0 {
		return errInvalidFPS
	}
	if *o.Watch && *o.ConfigFile == "" {
		return errWatchWithoutConfig
	}
	return nil
}
