package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestXfadeOffsetsClampAndMonotonic(t *testing.T) {
	durations := []float64{10, 8, 0.2, 6}
	fade := 0.5
	offsets := XfadeOffsets(durations, fade)
	if len(offsets) != 3 {
		t.Fatalf("offsets = %v, want 3 entries", offsets)
	}
	previous := -1.0
	for i, offset := range offsets {
		if offset < 0 {
			t.Fatalf("offset[%d] = %g, must be >= 0", i, offset)
		}
		if offset < previous {
			t.Fatalf("offsets not non-decreasing: %v", offsets)
		}
		previous = offset
	}
	// First pair starts at duration(clip0) - fade.
	if offsets[0] != 9.5 {
		t.Fatalf("offsets[0] = %g, want 9.5", offsets[0])
	}
	// Second accumulates duration(clip1) - fade.
	if offsets[1] != 17 {
		t.Fatalf("offsets[1] = %g, want 17", offsets[1])
	}
}

func TestXfadeOffsetsShortClips(t *testing.T) {
	// A clip shorter than the fade would push the offset backwards; it must
	// clamp instead.
	offsets := XfadeOffsets([]float64{1, 1, 1}, 2)
	for i, offset := range offsets {
		if offset < 0 {
			t.Fatalf("offset[%d] = %g, must clamp to 0", i, offset)
		}
	}
}

func TestCreateMontageSingleClipCopies(t *testing.T) {
	dir := t.TempDir()
	clip := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(clip, []byte("solo"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "montage.mp4")

	run := &fakeRunner{}
	assembler := newTestAssembler(run)
	if err := assembler.CreateMontage(context.Background(), []string{clip}, out, 0.5); err != nil {
		t.Fatal(err)
	}

	if len(run.calls) != 0 {
		t.Fatal("single clip must not invoke the encoder")
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "solo" {
		t.Fatalf("copy content mismatch: %q", data)
	}
}

func TestCreateMontageConcatPath(t *testing.T) {
	dir := t.TempDir()
	clips := []string{
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "b.mp4"),
		filepath.Join(dir, "c.mp4"),
	}
	out := filepath.Join(dir, "montage.mp4")

	run := &fakeRunner{}
	assembler := newTestAssembler(run)
	if err := assembler.CreateMontage(context.Background(), clips, out, 0); err != nil {
		t.Fatal(err)
	}

	if len(run.calls) != 1 {
		t.Fatalf("encoder invoked %d times, want exactly 1", len(run.calls))
	}
	args := run.lastArgs()
	if !strings.Contains(args, "-f concat") || !strings.Contains(args, "-c copy") {
		t.Fatalf("concat args missing: %s", args)
	}
	if len(run.manifests) != 1 {
		t.Fatal("concat manifest not captured")
	}
	manifest := run.manifests[0]
	for _, clip := range clips {
		if !strings.Contains(manifest, "file '"+clip+"'") {
			t.Fatalf("manifest missing %q:\n%s", clip, manifest)
		}
	}
	// Ephemeral: the manifest must be gone after assembly.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "concat-") {
			t.Fatalf("manifest %s left behind", entry.Name())
		}
	}
}

func TestCreateMontageCrossfadeChain(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "montage.mp4")

	durations := map[string]float64{"a.mp4": 10, "b.mp4": 8, "c.mp4": 6}
	run := &fakeRunner{}
	assembler := newTestAssembler(run, WithDurationProber(func(_ context.Context, path string) (float64, error) {
		return durations[filepath.Base(path)], nil
	}))

	if err := assembler.CreateMontage(context.Background(), []string{"a.mp4", "b.mp4", "c.mp4"}, out, 1); err != nil {
		t.Fatal(err)
	}

	args := run.lastArgs()
	if !strings.Contains(args, "xfade=transition=fade:duration=1:offset=9[x1]") {
		t.Fatalf("first transition wrong: %s", args)
	}
	if !strings.Contains(args, "xfade=transition=fade:duration=1:offset=16[vout]") {
		t.Fatalf("second transition wrong: %s", args)
	}
	if !strings.Contains(args, "-map [vout]") {
		t.Fatalf("output map missing: %s", args)
	}
}

func TestCreateMontageEmptyInput(t *testing.T) {
	assembler := newTestAssembler(&fakeRunner{})
	if err := assembler.CreateMontage(context.Background(), nil, "out.mp4", 0); err == nil {
		t.Fatal("expected error for empty clip list")
	}
}
