package encoder

import "testing"

func TestVideoCodec(t *testing.T) {
	tests := []struct {
		codec   string
		goos    string
		hwaccel bool
		want    string
	}{
		{"h264", "linux", false, "libx264"},
		{"hevc", "linux", false, "libx265"},
		{"h264", "linux", true, "h264_nvenc"},
		{"hevc", "windows", true, "hevc_nvenc"},
		{"h264", "darwin", true, "h264_videotoolbox"},
		{"hevc", "darwin", true, "hevc_videotoolbox"},
		{"h264", "plan9", true, "libx264"},
		{"", "linux", false, "libx264"},
	}
	for _, tc := range tests {
		if got := videoCodec(tc.codec, tc.goos, tc.hwaccel); got != tc.want {
			t.Errorf("videoCodec(%q, %q, %v) = %q, want %q", tc.codec, tc.goos, tc.hwaccel, got, tc.want)
		}
	}
}

func TestArgs(t *testing.T) {
	cfg := Config{Width: 640, Height: 360, FPS: 30, Output: "out.MP4", Codec: "hevc"}
	in, out := Args(cfg, "linux")
	for k, want := range map[string]string{"f": "rawvideo", "pix_fmt": "rgba", "s": "640x360", "r": "30"} {
		if in[k] != want {
			t.Errorf("input %s = %v, want %s", k, in[k], want)
		}
	}
	for k, want := range map[string]string{"vf": "vflip", "c:v": "libx265", "tag:v": "hvc1", "pix_fmt": "yuv420p"} {
		if out[k] != want {
			t.Errorf("output %s = %v, want %s", k, out[k], want)
		}
	}

	cfg.Codec = "h264"
	if _, out := Args(cfg, "linux"); out["tag:v"] != nil {
		t.Errorf("h264 output tagged %v", out["tag:v"])
	}
}

func TestStartRejectsBadConfig(t *testing.T) {
	tests := []Config{
		{Width: 0, Height: 10, FPS: 30, Output: "x.mp4"},
		{Width: 10, Height: 10, FPS: 0, Output: "x.mp4"},
		{Width: 10, Height: 10, FPS: 30},
	}
	for _, cfg := range tests {
		if e, err := Start(cfg); err == nil {
			e.Close()
			t.Errorf("Start(%+v) succeeded", cfg)
		}
	}
}

func TestSendChecksFrameSize(t *testing.T) {
	e := &Encoder{cfg: Config{Width: 2, Height: 2, FPS: 1}, frames: make(chan *Frame, 1)}
	if err := e.Send(&Frame{Pixels: make([]byte, 15)}); err == nil {
		t.Error("short frame accepted")
	}
	if err := e.Send(&Frame{Pixels: make([]byte, 16)}); err != nil {
		t.Errorf("full frame rejected: %v", err)
	}
}
