package export

import (
	"fmt"
	"os"
	"strings"

	"demoreel/internal/recorder"
)

// Options describes one export session. Validation happens once, up front;
// invalid options abort before any external process is spawned.
type Options struct {
	// DemoPath is the recorded match to replay.
	DemoPath string
	// Clips are recorded in order; at least one is required.
	Clips []recorder.Clip
	// OutputDir overrides the configured default output directory.
	OutputDir string
	// Resolution is a named preset ("720p", "1080p", ...). Empty means 1080p.
	Resolution string
	// Speed is the demo playback speed during capture. Zero means 1x.
	Speed float64
	// Montage stitches the processed clips into one video.
	Montage bool
	// FadeSeconds is the crossfade length between montage clips; 0 concatenates.
	FadeSeconds float64
	// TickRate of the demo. Zero means the configured default.
	TickRate int
	// Intro optionally records a map-overview opener before the first clip.
	Intro recorder.IntroSpec
}

// Result is the terminal outcome of an export. ExportClips always returns one;
// it never returns a Go error to the caller.
type Result struct {
	Success bool
	Clips   []string
	Montage string
	Err     string
}

func failure(format string, args ...any) Result {
	return Result{Err: fmt.Sprintf(format, args...)}
}

// resolutionPresets maps the named presets to window dimensions.
var resolutionPresets = map[string][2]int{
	"480p":  {854, 480},
	"720p":  {1280, 720},
	"1080p": {1920, 1080},
	"1440p": {2560, 1440},
	"4k":    {3840, 2160},
}

// ResolutionSize resolves a preset name to width and height. Unknown or empty
// presets fall back to 1080p.
func ResolutionSize(preset string) (int, int) {
	if size, ok := resolutionPresets[strings.ToLower(strings.TrimSpace(preset))]; ok {
		return size[0], size[1]
	}
	return 1920, 1080
}

// SanitizeClipID strips everything outside [A-Za-z0-9_-] so clip identifiers
// are safe as file and directory names.
func SanitizeClipID(id string) string {
	var builder strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// normalize fills defaulted fields in place and validates the rest. The error
// strings are user-facing; they end up verbatim in Result.Err.
func (o *Options) normalize(defaultTickRate int) error {
	if o.DemoPath == "" {
		return fmt.Errorf("no demo file specified")
	}
	if _, err := os.Stat(o.DemoPath); err != nil {
		return fmt.Errorf("Demo file not found: %s", o.DemoPath)
	}
	if len(o.Clips) == 0 {
		return fmt.Errorf("no clips to record")
	}
	for i, clip := range o.Clips {
		if clip.EndTick <= clip.StartTick {
			return fmt.Errorf("clip %d: end tick %d is not after start tick %d", i+1, clip.EndTick, clip.StartTick)
		}
		if SanitizeClipID(clip.ID) == "" {
			return fmt.Errorf("clip %d: identifier %q has no filesystem-safe characters", i+1, clip.ID)
		}
	}
	if o.Speed == 0 {
		o.Speed = 1
	}
	if o.Speed < 0 || o.Speed > 10 {
		return fmt.Errorf("playback speed must be in (0, 10], got %g", o.Speed)
	}
	if o.FadeSeconds < 0 {
		return fmt.Errorf("fade duration must not be negative, got %g", o.FadeSeconds)
	}
	if o.TickRate == 0 {
		o.TickRate = defaultTickRate
	}
	if o.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", o.TickRate)
	}
	if o.Intro.Enabled && o.Intro.Duration <= 0 {
		return fmt.Errorf("intro duration must be positive when the intro is enabled")
	}
	return nil
}
