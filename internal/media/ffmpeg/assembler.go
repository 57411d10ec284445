package ffmpeg

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"demoreel/internal/logging"
	"demoreel/internal/media/ffprobe"
	"demoreel/internal/services"
)

// Assembler drives ffmpeg for encoding, re-timing, trimming, and montage
// assembly.
type Assembler struct {
	ffmpeg  string
	ffprobe string
	codec   string
	crf     int
	preset  string
	run     Runner
	probe   func(ctx context.Context, path string) (float64, error)
	inspect func(ctx context.Context, path string) (ffprobe.Result, error)
	logger  *slog.Logger
}

// Option configures the assembler.
type Option func(*Assembler)

// WithRunner injects a custom runner (primarily for tests).
func WithRunner(run Runner) Option {
	return func(a *Assembler) {
		if run != nil {
			a.run = run
		}
	}
}

// WithDurationProber overrides duration probing (primarily for tests).
func WithDurationProber(probe func(ctx context.Context, path string) (float64, error)) Option {
	return func(a *Assembler) {
		if probe != nil {
			a.probe = probe
		}
	}
}

// WithInspector overrides stream inspection (primarily for tests).
func WithInspector(inspect func(ctx context.Context, path string) (ffprobe.Result, error)) Option {
	return func(a *Assembler) {
		if inspect != nil {
			a.inspect = inspect
		}
	}
}

// WithCodec overrides the output codec settings.
func WithCodec(codec string, crf int, preset string) Option {
	return func(a *Assembler) {
		if codec != "" {
			a.codec = codec
		}
		if crf >= 0 {
			a.crf = crf
		}
		if preset != "" {
			a.preset = preset
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logging.WithComponent(logger, "ffmpeg")
	}
}

// New constructs an assembler around the given ffmpeg and ffprobe binaries.
func New(ffmpegBinary, ffprobeBinary string, opts ...Option) *Assembler {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	assembler := &Assembler{
		ffmpeg:  ffmpegBinary,
		ffprobe: ffprobeBinary,
		codec:   "libx264",
		crf:     18,
		preset:  "medium",
		run:     commandRunner{},
		logger:  logging.NewNop(),
	}
	assembler.probe = func(ctx context.Context, path string) (float64, error) {
		return ffprobe.DurationSeconds(ctx, assembler.ffprobe, path)
	}
	assembler.inspect = func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, assembler.ffprobe, path)
	}
	for _, opt := range opts {
		opt(assembler)
	}
	return assembler
}

// ProbeDuration reports a media file's duration in seconds.
func (a *Assembler) ProbeDuration(ctx context.Context, path string) (float64, error) {
	duration, err := a.probe(ctx, path)
	if err != nil {
		return 0, services.Wrap(services.ErrEncoder, "ffprobe", "probe duration", path, err)
	}
	return duration, nil
}

func (a *Assembler) codecArgs() []string {
	return []string{
		"-c:v", a.codec,
		"-crf", strconv.Itoa(a.crf),
		"-preset", a.preset,
		"-pix_fmt", "yuv420p",
	}
}

// execute runs ffmpeg and verifies the output file exists afterwards; a zero
// exit with no output still counts as failure.
func (a *Assembler) execute(ctx context.Context, operation string, args []string, outPath string) error {
	a.logger.Debug("ffmpeg invocation",
		logging.String("operation", operation),
		logging.Int("args", len(args)))
	if err := a.run.Run(ctx, a.ffmpeg, args); err != nil {
		return services.Wrap(services.ErrEncoder, "ffmpeg", operation, "", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		return services.Wrap(services.ErrEncoder, "ffmpeg", operation, "output file missing: "+outPath, err)
	}
	return nil
}
