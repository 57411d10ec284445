package export

import (
	"os"
	"path/filepath"
	"testing"

	"demoreel/internal/recorder"
)

func TestSanitizeClipID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"round3_ace", "round3_ace"},
		{"round 3: ace!", "round3ace"},
		{"../../etc/passwd", "etcpasswd"},
		{"Ünïcode", "ncode"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := SanitizeClipID(tt.in); got != tt.want {
			t.Errorf("SanitizeClipID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolutionSize(t *testing.T) {
	tests := []struct {
		preset string
		width  int
		height int
	}{
		{"720p", 1280, 720},
		{"1080p", 1920, 1080},
		{" 4K ", 3840, 2160},
		{"", 1920, 1080},
		{"potato", 1920, 1080},
	}
	for _, tt := range tests {
		width, height := ResolutionSize(tt.preset)
		if width != tt.width || height != tt.height {
			t.Errorf("ResolutionSize(%q) = %dx%d, want %dx%d", tt.preset, width, height, tt.width, tt.height)
		}
	}
}

func TestOptionsNormalizeDefaults(t *testing.T) {
	demo := filepath.Join(t.TempDir(), "m.dem")
	if err := os.WriteFile(demo, []byte("d"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := Options{
		DemoPath: demo,
		Clips:    []recorder.Clip{{ID: "c1", StartTick: 0, EndTick: 64}},
	}
	if err := opts.normalize(64); err != nil {
		t.Fatal(err)
	}
	if opts.Speed != 1 {
		t.Fatalf("speed default = %g", opts.Speed)
	}
	if opts.TickRate != 64 {
		t.Fatalf("tick rate default = %d", opts.TickRate)
	}
}

func TestOptionsNormalizeRejections(t *testing.T) {
	demo := filepath.Join(t.TempDir(), "m.dem")
	if err := os.WriteFile(demo, []byte("d"), 0o644); err != nil {
		t.Fatal(err)
	}
	valid := []recorder.Clip{{ID: "c1", StartTick: 0, EndTick: 64}}

	tests := []struct {
		name string
		opts Options
	}{
		{"no clips", Options{DemoPath: demo}},
		{"inverted ticks", Options{DemoPath: demo, Clips: []recorder.Clip{{ID: "c1", StartTick: 64, EndTick: 64}}}},
		{"unsafe id only", Options{DemoPath: demo, Clips: []recorder.Clip{{ID: "!!!", StartTick: 0, EndTick: 64}}}},
		{"speed too high", Options{DemoPath: demo, Clips: valid, Speed: 10.5}},
		{"negative fade", Options{DemoPath: demo, Clips: valid, FadeSeconds: -1}},
		{"intro without duration", Options{DemoPath: demo, Clips: valid, Intro: recorder.IntroSpec{Enabled: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if err := opts.normalize(64); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
