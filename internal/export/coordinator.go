package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"demoreel/internal/config"
	"demoreel/internal/console"
	"demoreel/internal/fileutil"
	"demoreel/internal/logging"
	"demoreel/internal/media/ffmpeg"
	"demoreel/internal/recorder"
)

// introFadeSeconds is the fade length applied to the intro title overlay.
const introFadeSeconds = 1.0

// recordingSession is the slice of recorder.Session the coordinator drives.
type recordingSession interface {
	Start(ctx context.Context, demoPath string, width, height int) error
	RecordClip(ctx context.Context, clip recorder.Clip, captureDir string, speed float64) (string, error)
	RecordIntro(ctx context.Context, intro recorder.IntroSpec, captureDir string) (string, error)
	RecordComposite(ctx context.Context, intro recorder.IntroSpec, clip recorder.Clip, captureDir string, speed float64) (string, time.Duration, error)
	Terminate(ctx context.Context)
}

// encoder is the slice of ffmpeg.Assembler the coordinator drives.
type encoder interface {
	EncodeImageSequence(ctx context.Context, frameDir string, fps int, outPath string, speedFactor float64) error
	NormalizeSpeed(ctx context.Context, inputPath string, speed float64, outputPath string) error
	CreateMontage(ctx context.Context, clipPaths []string, outputPath string, fadeSeconds float64) error
	Trim(ctx context.Context, inputPath, outputPath string, from, to time.Duration) error
	RenderIntroTitle(ctx context.Context, inputPath, outputPath, title string, fadeSeconds float64) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Coordinator runs an export session end to end: validation, recording,
// encoding, and assembly, behind a single failure boundary.
type Coordinator struct {
	cfg        *config.Config
	logger     *slog.Logger
	observer   func(Progress)
	newSession func(cfg *config.Config, logger *slog.Logger) recordingSession
	encoder    encoder
}

// Option configures the coordinator.
type Option func(*Coordinator)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logging.WithComponent(logger, "export")
	}
}

// WithObserver registers the progress observer.
func WithObserver(observer func(Progress)) Option {
	return func(c *Coordinator) {
		c.observer = observer
	}
}

// WithSessionFactory injects a custom recording session factory (tests).
func WithSessionFactory(factory func(cfg *config.Config, logger *slog.Logger) recordingSession) Option {
	return func(c *Coordinator) {
		if factory != nil {
			c.newSession = factory
		}
	}
}

// WithEncoder injects a custom encoder (tests).
func WithEncoder(enc encoder) Option {
	return func(c *Coordinator) {
		if enc != nil {
			c.encoder = enc
		}
	}
}

// NewCoordinator builds a coordinator over the given configuration.
func NewCoordinator(cfg *config.Config, opts ...Option) *Coordinator {
	coordinator := &Coordinator{
		cfg:        cfg,
		logger:     logging.NewNop(),
		newSession: newLiveSession,
		encoder: ffmpeg.New(cfg.Encoder.FFmpegBinary, cfg.Encoder.FFprobeBinary,
			ffmpeg.WithCodec(cfg.Encoder.VideoCodec, cfg.Encoder.CRF, cfg.Encoder.Preset)),
	}
	for _, opt := range opts {
		opt(coordinator)
	}
	return coordinator
}

func newLiveSession(cfg *config.Config, logger *slog.Logger) recordingSession {
	client := console.New("", cfg.Console.Port,
		console.WithDialTimeout(time.Duration(cfg.Console.DialTimeoutMs)*time.Millisecond),
		console.WithDelayPolicy(console.DefaultDelayPolicy(time.Duration(cfg.Console.BaseDelayMs)*time.Millisecond)),
		console.WithDrainWindow(time.Duration(cfg.Console.ResponseDrainMs)*time.Millisecond),
		console.WithLogger(logger),
	)
	return recorder.NewSession(cfg, client, recorder.WithLogger(logger))
}

// ExportClips runs the full export and always returns a terminal result; it
// never returns an error and never panics through to the caller. Session
// termination and workspace removal happen on every exit path before the
// result is surfaced.
func (c *Coordinator) ExportClips(ctx context.Context, opts Options) (result Result) {
	emitter := &progressEmitter{observer: c.observer}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("export aborted by panic", logging.String("panic", fmt.Sprint(r)))
			result = failure("internal error: %v", r)
		}
		message := "export complete"
		percent := 100
		if !result.Success {
			message = result.Err
			percent = emitter.last
		}
		emitter.emit(Progress{
			Stage:      StageDone,
			ClipIndex:  len(opts.Clips),
			TotalClips: len(opts.Clips),
			Percent:    percent,
			Message:    message,
		})
	}()
	return c.run(ctx, opts, emitter)
}

func (c *Coordinator) run(ctx context.Context, opts Options, emitter *progressEmitter) Result {
	if err := opts.normalize(c.cfg.Recording.TickRate); err != nil {
		return failure("%s", err)
	}

	outputRoot := opts.OutputDir
	if outputRoot == "" {
		outputRoot = c.cfg.Paths.OutputDir
	}
	replayBase := strings.TrimSuffix(filepath.Base(opts.DemoPath), filepath.Ext(opts.DemoPath))
	exportDir := filepath.Join(outputRoot, replayBase)
	clipsDir := filepath.Join(exportDir, "clips")
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return failure("cannot create output directory %s: %v", clipsDir, err)
	}

	workspace, err := NewWorkspace(c.cfg.Paths.WorkspaceDir)
	if err != nil {
		return failure("%s", err)
	}
	defer func() {
		if err := workspace.Cleanup(); err != nil {
			c.logger.Warn("workspace cleanup failed", logging.Error(err))
		}
	}()

	// The session computes clip holds from the configured tick rate; apply the
	// per-export override for its lifetime.
	tickRate := c.cfg.Recording.TickRate
	c.cfg.Recording.TickRate = opts.TickRate
	defer func() { c.cfg.Recording.TickRate = tickRate }()

	session := c.newSession(c.cfg, c.logger)
	defer session.Terminate(ctx)

	width, height := ResolutionSize(opts.Resolution)
	emitter.emit(Progress{Stage: StageLaunch, TotalClips: len(opts.Clips), Percent: 5,
		Message: fmt.Sprintf("launching game (%dx%d, console port %d)", width, height, c.cfg.Console.Port)})
	if err := session.Start(ctx, opts.DemoPath, width, height); err != nil {
		return failure("%s", err)
	}
	emitter.emit(Progress{Stage: StageLoad, TotalClips: len(opts.Clips), Percent: 15,
		Message: "demo loaded: " + filepath.Base(opts.DemoPath)})

	var clipPaths []string
	introVideo := ""
	for i, clip := range opts.Clips {
		safeID := SanitizeClipID(clip.ID)
		emitter.emit(Progress{Stage: StageRecording, ClipIndex: i + 1, TotalClips: len(opts.Clips),
			Percent: recordingPercent(i, len(opts.Clips)), Message: "recording " + safeID})

		if i == 0 && opts.Intro.Enabled {
			intro, final, err := c.recordComposite(ctx, session, opts, clip, safeID, workspace, clipsDir)
			if err == nil {
				introVideo = intro
				clipPaths = append(clipPaths, final)
				continue
			}
			// The intro is decorative: a failed composite degrades to an
			// intro-only attempt and the clip is recorded on its own below.
			c.logger.Warn("composite intro recording failed, retrying intro alone", logging.Error(err))
			introVideo = c.recordIntroAlone(ctx, session, opts, workspace)
		}

		final, err := c.recordAndNormalize(ctx, session, opts, clip, safeID, workspace, clipsDir)
		if err != nil {
			return failure("%s", err)
		}
		clipPaths = append(clipPaths, final)
	}

	// The game is no longer needed; free it before encoding-heavy work.
	session.Terminate(ctx)

	emitter.emit(Progress{Stage: StagePostProcess, ClipIndex: len(opts.Clips), TotalClips: len(opts.Clips),
		Percent: 80, Message: "processing clips"})

	introFinal := ""
	if introVideo != "" {
		introFinal = filepath.Join(exportDir, "intro.mp4")
		if err := c.finishIntro(ctx, introVideo, introFinal, opts.Intro.MapLabel); err != nil {
			return failure("%s", err)
		}
	}

	montagePath := ""
	if opts.Montage {
		emitter.emit(Progress{Stage: StagePostProcess, ClipIndex: len(opts.Clips), TotalClips: len(opts.Clips),
			Percent: 90, Message: "assembling montage"})
		inputs := make([]string, 0, len(clipPaths)+1)
		if introFinal != "" {
			inputs = append(inputs, introFinal)
		}
		inputs = append(inputs, clipPaths...)
		montagePath = filepath.Join(exportDir, replayBase+"_montage.mp4")
		if err := c.encoder.CreateMontage(ctx, inputs, montagePath, opts.FadeSeconds); err != nil {
			return failure("%s", err)
		}
	}

	return Result{Success: true, Clips: clipPaths, Montage: montagePath}
}

// recordAndNormalize captures one clip, encodes the raw frames, and re-times
// the result into its final path under clipsDir.
func (c *Coordinator) recordAndNormalize(ctx context.Context, session recordingSession, opts Options, clip recorder.Clip, safeID string, workspace *Workspace, clipsDir string) (string, error) {
	rawDir, err := workspace.RawDir(safeID)
	if err != nil {
		return "", err
	}
	framesDir, err := session.RecordClip(ctx, clip, rawDir, opts.Speed)
	if err != nil {
		return "", err
	}

	rawVideo := workspace.IntermediatePath(safeID + "_raw.mp4")
	if err := c.encoder.EncodeImageSequence(ctx, framesDir, c.cfg.Encoder.FPS, rawVideo, 1); err != nil {
		return "", err
	}
	final := filepath.Join(clipsDir, safeID+".mp4")
	if err := c.encoder.NormalizeSpeed(ctx, rawVideo, opts.Speed, final); err != nil {
		return "", err
	}
	return final, nil
}

// recordComposite captures the intro and first clip in one pass and splits the
// encoded result at the boundary. Returns the intermediate intro video and the
// clip's final path.
func (c *Coordinator) recordComposite(ctx context.Context, session recordingSession, opts Options, clip recorder.Clip, safeID string, workspace *Workspace, clipsDir string) (string, string, error) {
	rawDir, err := workspace.RawDir(safeID)
	if err != nil {
		return "", "", err
	}
	framesDir, boundary, err := session.RecordComposite(ctx, opts.Intro, clip, rawDir, opts.Speed)
	if err != nil {
		return "", "", err
	}

	composite := workspace.IntermediatePath(safeID + "_composite.mp4")
	if err := c.encoder.EncodeImageSequence(ctx, framesDir, c.cfg.Encoder.FPS, composite, 1); err != nil {
		return "", "", err
	}
	total, err := c.encoder.ProbeDuration(ctx, composite)
	if err != nil {
		return "", "", err
	}

	introVideo := workspace.IntermediatePath("intro_raw.mp4")
	if err := c.encoder.Trim(ctx, composite, introVideo, 0, boundary); err != nil {
		return "", "", err
	}
	clipVideo := workspace.IntermediatePath(safeID + "_raw.mp4")
	if err := c.encoder.Trim(ctx, composite, clipVideo, boundary, time.Duration(total*float64(time.Second))); err != nil {
		return "", "", err
	}

	final := filepath.Join(clipsDir, safeID+".mp4")
	if err := c.encoder.NormalizeSpeed(ctx, clipVideo, opts.Speed, final); err != nil {
		return "", "", err
	}
	return introVideo, final, nil
}

// recordIntroAlone is the composite fallback path. Best-effort: a failure
// leaves the export without an intro rather than aborting it.
func (c *Coordinator) recordIntroAlone(ctx context.Context, session recordingSession, opts Options, workspace *Workspace) string {
	rawDir, err := workspace.RawDir("intro")
	if err != nil {
		c.logger.Warn("intro capture dir unavailable", logging.Error(err))
		return ""
	}
	framesDir, err := session.RecordIntro(ctx, opts.Intro, rawDir)
	if err != nil {
		c.logger.Warn("intro-only recording failed, continuing without intro", logging.Error(err))
		return ""
	}
	introVideo := workspace.IntermediatePath("intro_raw.mp4")
	if err := c.encoder.EncodeImageSequence(ctx, framesDir, c.cfg.Encoder.FPS, introVideo, 1); err != nil {
		c.logger.Warn("intro encoding failed, continuing without intro", logging.Error(err))
		return ""
	}
	return introVideo
}

// finishIntro overlays the map title on the intro, or copies it through when
// there is no label to render.
func (c *Coordinator) finishIntro(ctx context.Context, introVideo, outPath, mapLabel string) error {
	title := IntroTitle(mapLabel)
	if title == "" {
		return fileutil.CopyFile(introVideo, outPath)
	}
	return c.encoder.RenderIntroTitle(ctx, introVideo, outPath, title, introFadeSeconds)
}
