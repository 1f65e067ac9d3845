// Package encoder pipes rendered frames into an ffmpeg process.
package encoder

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"runtime"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var errFFmpegExited = errors.New("ffmpeg exited")

// Frame is one rendered frame: tightly packed RGBA rows, bottom row first
// as read back from OpenGL.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// Config selects the output of an Encoder.
type Config struct {
	Width      int
	Height     int
	FPS        int
	Output     string
	FFmpegPath string
	// Codec is "h264" or "hevc".
	Codec string
	// HWAccel prefers the platform hardware encoder.
	HWAccel bool
}

func (c Config) frameSize() int {
	return c.Width * c.Height * 4
}

// videoCodec picks the ffmpeg encoder for the codec preference.
func videoCodec(codec, goos string, hwaccel bool) string {
	hevc := codec == "hevc"
	if hwaccel {
		switch goos {
		case "linux", "windows":
			if hevc {
				return "hevc_nvenc"
			}
			return "h264_nvenc"
		case "darwin":
			if hevc {
				return "hevc_videotoolbox"
			}
			return "h264_videotoolbox"
		}
	}
	if hevc {
		return "libx265"
	}
	return "libx264"
}

// Args returns the ffmpeg input and output arguments for cfg on goos.
func Args(cfg Config, goos string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"r":       fmt.Sprintf("%d", cfg.FPS),
	}
	outputArgs = ffmpeg.KwArgs{
		// GL reads rows bottom to top.
		"vf":      "vflip",
		"c:v":     videoCodec(cfg.Codec, goos, cfg.HWAccel),
		"pix_fmt": "yuv420p",
		"b:v":     "12M",
	}
	if cfg.Codec == "hevc" && strings.EqualFold(filepath.Ext(cfg.Output), ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// Encoder consumes frames on a goroutine and writes them to ffmpeg's
// stdin.
type Encoder struct {
	cfg    Config
	frames chan *Frame
	done   chan error
}

// Start launches ffmpeg for cfg.
func Start(cfg Config) (*Encoder, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FPS <= 0 {
		return nil, fmt.Errorf("invalid encoder config %dx%d@%d", cfg.Width, cfg.Height, cfg.FPS)
	}
	if cfg.Output == "" {
		return nil, errors.New("no output file")
	}

	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := Args(cfg, runtime.GOOS)
	log.Printf("Encoding %dx%d@%d with %s to %s", cfg.Width, cfg.Height, cfg.FPS, outputArgs["c:v"], cfg.Output)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(cfg.Output, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if cfg.FFmpegPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(cfg.FFmpegPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// Unblock the writer if ffmpeg stops reading early.
		pipeReader.CloseWithError(errFFmpegExited)
		errc <- err
	}()

	e := &Encoder{
		cfg:    cfg,
		frames: make(chan *Frame, 3),
		done:   make(chan error, 1),
	}
	go e.run(pipeWriter, errc)
	return e, nil
}

func (e *Encoder) run(w *io.PipeWriter, errc <-chan error) {
	var writeErr error
	for frame := range e.frames {
		if writeErr != nil {
			continue
		}
		if _, err := w.Write(frame.Pixels); err != nil {
			log.Printf("Error writing frame %d to ffmpeg: %v", frame.PTS, err)
			writeErr = err
		}
	}
	w.Close()
	if err := <-errc; err != nil {
		e.done <- fmt.Errorf("ffmpeg failed: %w", err)
		return
	}
	e.done <- writeErr
}

// Send queues a frame. It blocks while the encoder is behind.
func (e *Encoder) Send(frame *Frame) error {
	if len(frame.Pixels) != e.cfg.frameSize() {
		return fmt.Errorf("frame %d has %d bytes, want %d", frame.PTS, len(frame.Pixels), e.cfg.frameSize())
	}
	e.frames <- frame
	return nil
}

// Close flushes queued frames and waits for ffmpeg to finish.
func (e *Encoder) Close() error {
	close(e.frames)
	return <-e.done
}
