package export

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"demoreel/internal/config"
	"demoreel/internal/recorder"
	"demoreel/internal/services"
)

type fakeSession struct {
	started      int
	terminated   int
	clips        []string
	clipErr      error
	compositeErr error
	introErr     error
	introTaken   int
	captureDirs  []string
}

func (s *fakeSession) Start(context.Context, string, int, int) error {
	s.started++
	return nil
}

func (s *fakeSession) RecordClip(_ context.Context, clip recorder.Clip, captureDir string, _ float64) (string, error) {
	s.clips = append(s.clips, clip.ID)
	s.captureDirs = append(s.captureDirs, captureDir)
	if s.clipErr != nil {
		return "", s.clipErr
	}
	return captureDir, nil
}

func (s *fakeSession) RecordIntro(_ context.Context, _ recorder.IntroSpec, captureDir string) (string, error) {
	s.introTaken++
	if s.introErr != nil {
		return "", s.introErr
	}
	return captureDir, nil
}

func (s *fakeSession) RecordComposite(_ context.Context, intro recorder.IntroSpec, clip recorder.Clip, captureDir string, _ float64) (string, time.Duration, error) {
	if s.compositeErr != nil {
		return "", 0, s.compositeErr
	}
	s.clips = append(s.clips, clip.ID)
	s.captureDirs = append(s.captureDirs, captureDir)
	return captureDir, intro.Duration, nil
}

func (s *fakeSession) Terminate(context.Context) {
	s.terminated++
}

type fakeEncoder struct {
	calls        []string
	failOn       string
	panicOn      string
	montageIn    []string
	titleRequest string
}

func (e *fakeEncoder) step(name string) error {
	e.calls = append(e.calls, name)
	if e.panicOn == name {
		panic("encoder blew up")
	}
	if e.failOn == name {
		return services.Wrap(services.ErrEncoder, "ffmpeg", name, "exit status 1", nil)
	}
	return nil
}

func (e *fakeEncoder) EncodeImageSequence(_ context.Context, _ string, _ int, _ string, _ float64) error {
	return e.step("encode")
}

func (e *fakeEncoder) NormalizeSpeed(_ context.Context, _ string, _ float64, _ string) error {
	return e.step("normalize")
}

func (e *fakeEncoder) CreateMontage(_ context.Context, clipPaths []string, _ string, _ float64) error {
	e.montageIn = append([]string(nil), clipPaths...)
	return e.step("montage")
}

func (e *fakeEncoder) Trim(_ context.Context, _, _ string, _, _ time.Duration) error {
	return e.step("trim")
}

func (e *fakeEncoder) RenderIntroTitle(_ context.Context, _, _ string, title string, _ float64) error {
	e.titleRequest = title
	return e.step("title")
}

func (e *fakeEncoder) ProbeDuration(context.Context, string) (float64, error) {
	e.calls = append(e.calls, "probe")
	return 30, nil
}

func (e *fakeEncoder) count(name string) int {
	n := 0
	for _, call := range e.calls {
		if call == name {
			n++
		}
	}
	return n
}

type harness struct {
	coordinator *Coordinator
	session     *fakeSession
	encoder     *fakeEncoder
	progress    *[]Progress
	cfg         *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.WorkspaceDir = t.TempDir()

	session := &fakeSession{}
	encoder := &fakeEncoder{}
	progress := &[]Progress{}
	coordinator := NewCoordinator(&cfg,
		WithEncoder(encoder),
		WithSessionFactory(func(*config.Config, *slog.Logger) recordingSession { return session }),
		WithObserver(func(p Progress) { *progress = append(*progress, p) }),
	)
	return &harness{coordinator: coordinator, session: session, encoder: encoder, progress: progress, cfg: &cfg}
}

func writeDemo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "match_de_mirage.dem")
	if err := os.WriteFile(path, []byte("demo"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func twoClips() []recorder.Clip {
	return []recorder.Clip{
		{ID: "round3_ace", StartTick: 1000, EndTick: 3000},
		{ID: "round12_clutch", StartTick: 9000, EndTick: 11000},
	}
}

func TestExportClipsMissingDemo(t *testing.T) {
	h := newHarness(t)

	result := h.coordinator.ExportClips(context.Background(), Options{
		DemoPath: filepath.Join(t.TempDir(), "nope.dem"),
		Clips:    twoClips(),
	})
	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Err, "Demo file not found") {
		t.Fatalf("error = %q", result.Err)
	}
	if h.session.started != 0 {
		t.Fatal("no process must be spawned when validation fails")
	}
}

func TestExportClipsRejectsBadSpeed(t *testing.T) {
	h := newHarness(t)

	result := h.coordinator.ExportClips(context.Background(), Options{
		DemoPath: writeDemo(t),
		Clips:    twoClips(),
		Speed:    11,
	})
	if result.Success || !strings.Contains(result.Err, "playback speed") {
		t.Fatalf("result = %+v", result)
	}
	if h.session.started != 0 {
		t.Fatal("no process must be spawned when validation fails")
	}
}

func TestExportClipsSuccess(t *testing.T) {
	h := newHarness(t)
	demo := writeDemo(t)

	result := h.coordinator.ExportClips(context.Background(), Options{DemoPath: demo, Clips: twoClips()})
	if !result.Success {
		t.Fatalf("export failed: %s", result.Err)
	}
	if len(result.Clips) != 2 {
		t.Fatalf("clips = %v", result.Clips)
	}
	wantFirst := filepath.Join(h.cfg.Paths.OutputDir, "match_de_mirage", "clips", "round3_ace.mp4")
	if result.Clips[0] != wantFirst {
		t.Fatalf("clip path = %q, want %q", result.Clips[0], wantFirst)
	}
	if result.Montage != "" {
		t.Fatalf("montage not requested, got %q", result.Montage)
	}
	if h.session.started != 1 || h.session.terminated == 0 {
		t.Fatalf("session started %d, terminated %d", h.session.started, h.session.terminated)
	}
	if h.encoder.count("encode") != 2 || h.encoder.count("normalize") != 2 {
		t.Fatalf("encoder calls = %v", h.encoder.calls)
	}
}

func TestExportClipsSanitizesClipIDs(t *testing.T) {
	h := newHarness(t)

	result := h.coordinator.ExportClips(context.Background(), Options{
		DemoPath: writeDemo(t),
		Clips:    []recorder.Clip{{ID: "round 3: ace!", StartTick: 0, EndTick: 64}},
	})
	if !result.Success {
		t.Fatalf("export failed: %s", result.Err)
	}
	if base := filepath.Base(result.Clips[0]); base != "round3ace.mp4" {
		t.Fatalf("clip file = %q", base)
	}
}

func TestExportClipsMontage(t *testing.T) {
	h := newHarness(t)
	demo := writeDemo(t)

	result := h.coordinator.ExportClips(context.Background(), Options{
		DemoPath:    demo,
		Clips:       twoClips(),
		Montage:     true,
		FadeSeconds: 0.5,
	})
	if !result.Success {
		t.Fatalf("export failed: %s", result.Err)
	}
	want := filepath.Join(h.cfg.Paths.OutputDir, "match_de_mirage", "match_de_mirage_montage.mp4")
	if result.Montage != want {
		t.Fatalf("montage = %q, want %q", result.Montage, want)
	}
	if len(h.encoder.montageIn) != 2 {
		t.Fatalf("montage inputs = %v", h.encoder.montageIn)
	}
}

func TestExportClipsCompositeIntro(t *testing.T) {
	h := newHarness(t)

	result := h.coordinator.ExportClips(context.Background(), Options{
		DemoPath: writeDemo(t),
		Clips:    twoClips(),
		Montage:  true,
		Intro:    recorder.IntroSpec{Enabled: true, MapLabel: "de_mirage", Duration: 5 * time.Second},
	})
	if !result.Success {
		t.Fatalf("export failed: %s", result.Err)
	}
	// Composite split: two trims, and the first clip is not re-recorded alone.
	if h.encoder.count("trim") != 2 {
		t.Fatalf("encoder calls = %v", h.encoder.calls)
	}
	if h.session.introTaken != 0 {
		t.Fatal("intro-only fallback must not run when the composite succeeds")
	}
	if h.encoder.titleRequest != "Mirage" {
		t.Fatalf("intro title = %q", h.encoder.titleRequest)
	}
	if len(h.encoder.montageIn) != 3 || filepath.Base(h.encoder.montageIn[0]) != "intro.mp4" {
		t.Fatalf("montage inputs = %v", h.encoder.montageIn)
	}
}

func TestExportClipsCompositeFallsBackToIntroOnly(t *testing.T) {
	h := newHarness(t)
	h.session.compositeErr = services.Wrap(services.ErrCapture, "recorder", "composite", "no frames", nil)

	result := h.coordinator.ExportClips(context.Background(), Options{
		DemoPath: writeDemo(t),
		Clips:    twoClips(),
		Intro:    recorder.IntroSpec{Enabled: true, MapLabel: "de_mirage", Duration: 5 * time.Second},
	})
	if !result.Success {
		t.Fatalf("export failed: %s", result.Err)
	}
	if h.session.introTaken != 1 {
		t.Fatalf("intro-only fallback runs once, got %d", h.session.introTaken)
	}
	// Both clips still recorded through the ordinary path.
	if len(h.session.clips) != 2 {
		t.Fatalf("recorded clips = %v", h.session.clips)
	}
}

func TestExportClipsIntroFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.session.compositeErr = services.Wrap(services.ErrCapture, "recorder", "composite", "no frames", nil)
	h.session.introErr = services.Wrap(services.ErrCapture, "recorder", "intro", "no frames", nil)

	result := h.coordinator.ExportClips(context.Background(), Options{
		DemoPath: writeDemo(t),
		Clips:    twoClips(),
		Intro:    recorder.IntroSpec{Enabled: true, MapLabel: "de_mirage", Duration: 5 * time.Second},
	})
	if !result.Success {
		t.Fatalf("intro is decorative; export must still succeed: %s", result.Err)
	}
	if h.encoder.count("title") != 0 {
		t.Fatal("no intro should have been processed")
	}
}

func TestExportClipsCaptureFailureCleansUp(t *testing.T) {
	h := newHarness(t)
	h.session.clipErr = services.Wrap(services.ErrCapture, "frames", "locate",
		"no captured frames found", nil)

	result := h.coordinator.ExportClips(context.Background(), Options{DemoPath: writeDemo(t), Clips: twoClips()})
	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Err, "no captured frames found") {
		t.Fatalf("error = %q", result.Err)
	}
	if h.session.terminated == 0 {
		t.Fatal("session must be terminated before the error surfaces")
	}
	if len(h.session.captureDirs) == 0 {
		t.Fatal("capture never attempted")
	}
	workspaceRoot := filepath.Dir(filepath.Dir(h.session.captureDirs[0]))
	if _, err := os.Stat(workspaceRoot); !os.IsNotExist(err) {
		t.Fatalf("workspace %s must be removed on failure", workspaceRoot)
	}
}

func TestExportClipsEncoderPanicIsContained(t *testing.T) {
	h := newHarness(t)
	h.encoder.panicOn = "normalize"

	result := h.coordinator.ExportClips(context.Background(), Options{DemoPath: writeDemo(t), Clips: twoClips()})
	if result.Success || !strings.Contains(result.Err, "internal error") {
		t.Fatalf("result = %+v", result)
	}
	if h.session.terminated == 0 {
		t.Fatal("session must be terminated even on panic")
	}
}

func TestExportClipsProgressIsMonotonicAndTerminal(t *testing.T) {
	h := newHarness(t)
	h.encoder.failOn = "montage"

	h.coordinator.ExportClips(context.Background(), Options{
		DemoPath: writeDemo(t),
		Clips:    twoClips(),
		Montage:  true,
	})

	events := *h.progress
	if len(events) == 0 {
		t.Fatal("no progress emitted")
	}
	last := 0
	for _, event := range events {
		if event.Percent < last {
			t.Fatalf("percent regressed: %v", events)
		}
		last = event.Percent
	}
	if events[len(events)-1].Stage != StageDone {
		t.Fatalf("stream must end with the done stage, got %v", events[len(events)-1].Stage)
	}
}

func TestExportClipsSuccessProgressReachesHundred(t *testing.T) {
	h := newHarness(t)

	h.coordinator.ExportClips(context.Background(), Options{DemoPath: writeDemo(t), Clips: twoClips()})

	events := *h.progress
	final := events[len(events)-1]
	if final.Stage != StageDone || final.Percent != 100 {
		t.Fatalf("final event = %+v", final)
	}
}
