package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"demoreel/internal/config"
	"demoreel/internal/frames"
	"demoreel/internal/logging"
	"demoreel/internal/services"
)

// Console command vocabulary. The strings are an opaque external protocol
// issued verbatim; the game never acknowledges them.
const (
	cmdPlayDemo    = `playdemo "%s"`
	cmdSeek        = "demo_gototick %d"
	cmdPause       = "demo_pause"
	cmdResume      = "demo_resume"
	cmdTimescale   = "demo_timescale %s"
	cmdRecordName  = `mirv_streams record name "%s"`
	cmdRecordStart = "mirv_streams record start"
	cmdRecordEnd   = "mirv_streams record end"
	cmdExec        = "exec %s"
	cmdQuit        = "quit"
)

// Console is the command surface the session needs from the console client.
type Console interface {
	Send(ctx context.Context, cmd string) error
	SendBatch(ctx context.Context, cmds []string) error
	WaitForReady(ctx context.Context, maxRetries int, interval time.Duration) error
}

// Session owns one game process, its console connection parameters, and the
// recording lock. At most one capture is active per session; a Session is not
// safe for concurrent use.
type Session struct {
	cfg      *config.Config
	console  Console
	launcher Launcher
	logger   *slog.Logger
	lock     *flock.Flock
	sleep    func(ctx context.Context, d time.Duration)

	proc Process
}

// Option configures a session.
type Option func(*Session)

// WithLauncher injects a custom process launcher (primarily for tests).
func WithLauncher(launcher Launcher) Option {
	return func(s *Session) {
		if launcher != nil {
			s.launcher = launcher
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logging.WithComponent(logger, "recorder")
	}
}

// WithLockPath overrides the exclusivity lock file location.
func WithLockPath(path string) Option {
	return func(s *Session) {
		if path != "" {
			s.lock = flock.New(path)
		}
	}
}

// WithSleep injects the hold timer (primarily for tests).
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(s *Session) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// NewSession constructs a session around the given configuration and console.
func NewSession(cfg *config.Config, console Console, opts ...Option) *Session {
	session := &Session{
		cfg:      cfg,
		console:  console,
		launcher: NewExecLauncher(),
		logger:   logging.NewNop(),
		lock:     flock.New(filepath.Join(cfg.Paths.LogDir, "recorder.lock")),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(session)
	}
	return session
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// Start launches the game, waits for the console port, and loads the demo.
// An already-running session process is forcibly terminated first.
func (s *Session) Start(ctx context.Context, demoPath string, width, height int) error {
	if s.proc != nil && s.proc.Alive() {
		s.logger.Warn("terminating previous session process", logging.Int("pid", s.proc.PID()))
		s.Terminate(ctx)
	}

	locked, err := s.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrSequencing, "recorder", "lock", s.lock.Path(), err)
	}
	if !locked {
		return services.Wrap(services.ErrSequencing, "recorder", "lock",
			"another recording session holds "+s.lock.Path(), nil)
	}

	spec := LaunchSpec{
		Binary:   s.cfg.Paths.GameBinary,
		Width:    width,
		Height:   height,
		Windowed: s.cfg.Recording.Windowed,
		Port:     s.cfg.Console.Port,
	}
	proc, err := s.launcher.Launch(ctx, spec)
	if err != nil {
		return err
	}
	s.proc = proc
	s.logger.Info("game launched", logging.Int("pid", proc.PID()), logging.Int("port", spec.Port))

	interval := time.Duration(s.cfg.Console.ReadyIntervalMs) * time.Millisecond
	if err := s.console.WaitForReady(ctx, s.cfg.Console.ReadyRetries, interval); err != nil {
		return err
	}

	if err := s.console.Send(ctx, fmt.Sprintf(cmdPlayDemo, demoPath)); err != nil {
		return err
	}
	// Demo load time is not observable; the settle delay is an estimate.
	s.sleep(ctx, time.Duration(s.cfg.Recording.DemoSettleSeconds)*time.Second)
	s.logger.Info("demo loaded", logging.String("demo", demoPath))
	return nil
}

// RecordClip runs one seek/spectate/capture pass and returns the directory
// the capture layer wrote frames into.
func (s *Session) RecordClip(ctx context.Context, clip Clip, captureDir string, speed float64) (string, error) {
	setup := []string{
		fmt.Sprintf(cmdSeek, clip.StartTick),
		cmdPause,
	}
	setup = append(setup, SpectateCommands(clip.PlayerName, clip.PlayerSlot)...)
	if speed != 1 {
		setup = append(setup, fmt.Sprintf(cmdTimescale, strconv.FormatFloat(speed, 'g', -1, 64)))
	}
	setup = append(setup, fmt.Sprintf(cmdRecordName, captureDir))
	if err := s.console.SendBatch(ctx, setup); err != nil {
		return "", err
	}

	s.execScript(ctx, s.cfg.Recording.CleanScript)

	if err := s.console.SendBatch(ctx, []string{cmdResume, cmdRecordStart}); err != nil {
		return "", err
	}

	hold := HoldDuration(clip, s.cfg.Recording.TickRate, speed,
		time.Duration(s.cfg.Recording.SafetyBufferMs)*time.Millisecond)
	s.logger.Info("capturing clip",
		logging.String("clip", clip.ID),
		logging.Duration("hold", hold))
	s.sleep(ctx, hold)

	if err := s.console.SendBatch(ctx, []string{cmdRecordEnd, cmdPause}); err != nil {
		return "", err
	}

	s.execScript(ctx, s.cfg.Recording.RestoreScript)

	return s.locateFrames(captureDir, clip.ID)
}

// RecordIntro captures the map-overview intro on its own.
func (s *Session) RecordIntro(ctx context.Context, intro IntroSpec, captureDir string) (string, error) {
	setup := []string{
		fmt.Sprintf(cmdSeek, 0),
		cmdPause,
		fmt.Sprintf(cmdRecordName, captureDir),
	}
	if err := s.console.SendBatch(ctx, setup); err != nil {
		return "", err
	}

	s.execScript(ctx, s.cfg.Recording.CleanScript)

	if err := s.console.SendBatch(ctx, []string{cmdResume, cmdRecordStart}); err != nil {
		return "", err
	}
	s.sleep(ctx, intro.Duration)
	if err := s.console.SendBatch(ctx, []string{cmdRecordEnd, cmdPause}); err != nil {
		return "", err
	}

	s.execScript(ctx, s.cfg.Recording.RestoreScript)

	return s.locateFrames(captureDir, "intro")
}

// RecordComposite captures the intro and the first clip in one continuous
// pass, avoiding a visible cut between them. The returned boundary is the
// timestamp where the encoded composite must be split into intro and clip.
func (s *Session) RecordComposite(ctx context.Context, intro IntroSpec, clip Clip, captureDir string, speed float64) (string, time.Duration, error) {
	setup := []string{
		fmt.Sprintf(cmdSeek, 0),
		cmdPause,
		fmt.Sprintf(cmdRecordName, captureDir),
	}
	if err := s.console.SendBatch(ctx, setup); err != nil {
		return "", 0, err
	}

	s.execScript(ctx, s.cfg.Recording.CleanScript)

	if err := s.console.SendBatch(ctx, []string{cmdResume, cmdRecordStart}); err != nil {
		return "", 0, err
	}
	s.sleep(ctx, intro.Duration)

	// Transition into the clip without stopping capture.
	transition := []string{fmt.Sprintf(cmdSeek, clip.StartTick)}
	transition = append(transition, SpectateCommands(clip.PlayerName, clip.PlayerSlot)...)
	if speed != 1 {
		transition = append(transition, fmt.Sprintf(cmdTimescale, strconv.FormatFloat(speed, 'g', -1, 64)))
	}
	if err := s.console.SendBatch(ctx, transition); err != nil {
		return "", 0, err
	}

	hold := HoldDuration(clip, s.cfg.Recording.TickRate, speed,
		time.Duration(s.cfg.Recording.SafetyBufferMs)*time.Millisecond)
	s.sleep(ctx, hold)

	if err := s.console.SendBatch(ctx, []string{cmdRecordEnd, cmdPause}); err != nil {
		return "", 0, err
	}

	s.execScript(ctx, s.cfg.Recording.RestoreScript)

	framesDir, err := s.locateFrames(captureDir, clip.ID)
	if err != nil {
		return "", 0, err
	}
	return framesDir, intro.Duration, nil
}

// execScript runs a named console script. Best-effort: a failure degrades
// the recording cosmetically but must not abort it.
func (s *Session) execScript(ctx context.Context, script string) {
	if script == "" {
		return
	}
	if err := s.console.Send(ctx, fmt.Sprintf(cmdExec, script)); err != nil {
		s.logger.Warn("console script failed", logging.String("script", script), logging.Error(err))
	}
}

func (s *Session) locateFrames(captureDir, clipID string) (string, error) {
	exeDir := ""
	if s.cfg.Paths.GameBinary != "" {
		exeDir = filepath.Dir(s.cfg.Paths.GameBinary)
	}
	candidates := frames.CandidateRoots(captureDir, s.cfg.Recording.TakeDirName, exeDir, clipID)
	return frames.Locate(candidates, frames.ExtensionMatcher(s.cfg.Recording.FrameExtension))
}

// Terminate tears the session down: graceful quit over the console, a grace
// period, then force-kill. Safe to call repeatedly and after partial
// failures.
func (s *Session) Terminate(ctx context.Context) {
	if s.proc != nil {
		if err := s.console.Send(ctx, cmdQuit); err != nil {
			s.logger.Debug("quit command failed", logging.Error(err))
		}
		grace := time.Duration(s.cfg.Recording.QuitGraceSeconds) * time.Second
		deadline := time.Now().Add(grace)
		for s.proc.Alive() && time.Now().Before(deadline) {
			time.Sleep(100 * time.Millisecond)
		}
		if s.proc.Alive() {
			s.logger.Warn("force-killing game process", logging.Int("pid", s.proc.PID()))
			if err := s.proc.Terminate(2 * time.Second); err != nil {
				s.logger.Error("process termination failed", logging.Error(err))
			}
		}
		s.proc = nil
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
}
