package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"demoreel/internal/fileutil"
	"demoreel/internal/logging"
	"demoreel/internal/services"
)

// XfadeOffsets computes the transition start offsets for a crossfade chain
// over clips with the given durations. The first offset is
// duration(clip0) − fade; each subsequent offset accumulates
// duration(clip_i) − fade on top of the prior one. Every offset is clamped to
// a minimum of 0 and the sequence is non-decreasing.
func XfadeOffsets(durations []float64, fadeSeconds float64) []float64 {
	if len(durations) < 2 {
		return nil
	}
	offsets := make([]float64, 0, len(durations)-1)
	previous := 0.0
	for i := 0; i < len(durations)-1; i++ {
		offset := previous + durations[i] - fadeSeconds
		if offset < 0 {
			offset = 0
		}
		if offset < previous {
			offset = previous
		}
		offsets = append(offsets, offset)
		previous = offset
	}
	return offsets
}

// CreateMontage stitches clips into a single video. One clip short-circuits
// to a direct file copy. A non-positive fade produces a demuxer
// concatenation via an ephemeral manifest; otherwise every clip's duration is
// probed and a chained crossfade filter graph is built.
func (a *Assembler) CreateMontage(ctx context.Context, clipPaths []string, outputPath string, fadeSeconds float64) error {
	if len(clipPaths) == 0 {
		return services.Wrap(services.ErrValidation, "ffmpeg", "montage", "no clips to assemble", nil)
	}

	if len(clipPaths) == 1 {
		if err := fileutil.CopyFile(clipPaths[0], outputPath); err != nil {
			return services.Wrap(services.ErrEncoder, "ffmpeg", "montage", "copy single clip", err)
		}
		return nil
	}

	if fadeSeconds <= 0 {
		return a.concatMontage(ctx, clipPaths, outputPath)
	}
	return a.crossfadeMontage(ctx, clipPaths, outputPath, fadeSeconds)
}

func (a *Assembler) concatMontage(ctx context.Context, clipPaths []string, outputPath string) error {
	manifest, err := writeConcatManifest(clipPaths, filepath.Dir(outputPath))
	if err != nil {
		return err
	}
	defer os.Remove(manifest)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c", "copy",
		outputPath,
	}
	return a.execute(ctx, "concat montage", args, outputPath)
}

// writeConcatManifest emits the concat demuxer's manifest: one quoted
// absolute path per line.
func writeConcatManifest(clipPaths []string, dir string) (string, error) {
	var builder strings.Builder
	for _, clip := range clipPaths {
		absolute, err := filepath.Abs(clip)
		if err != nil {
			return "", services.Wrap(services.ErrEncoder, "ffmpeg", "montage", "resolve clip path "+clip, err)
		}
		escaped := strings.ReplaceAll(absolute, "'", `'\''`)
		fmt.Fprintf(&builder, "file '%s'\n", escaped)
	}

	file, err := os.CreateTemp(dir, "concat-*.txt")
	if err != nil {
		return "", services.Wrap(services.ErrEncoder, "ffmpeg", "montage", "create concat manifest", err)
	}
	if _, err := file.WriteString(builder.String()); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", services.Wrap(services.ErrEncoder, "ffmpeg", "montage", "write concat manifest", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", services.Wrap(services.ErrEncoder, "ffmpeg", "montage", "close concat manifest", err)
	}
	return file.Name(), nil
}

func (a *Assembler) crossfadeMontage(ctx context.Context, clipPaths []string, outputPath string, fadeSeconds float64) error {
	durations := make([]float64, len(clipPaths))
	for i, clip := range clipPaths {
		duration, err := a.probe(ctx, clip)
		if err != nil {
			return services.Wrap(services.ErrEncoder, "ffprobe", "montage", "probe duration of "+clip, err)
		}
		durations[i] = duration
	}
	offsets := XfadeOffsets(durations, fadeSeconds)
	a.logger.Debug("crossfade chain",
		logging.Int("clips", len(clipPaths)),
		logging.Float64("fade_seconds", fadeSeconds))

	args := []string{"-y"}
	for _, clip := range clipPaths {
		args = append(args, "-i", clip)
	}

	var filter strings.Builder
	previous := "[0:v]"
	for i := 1; i < len(clipPaths); i++ {
		label := fmt.Sprintf("[x%d]", i)
		if i == len(clipPaths)-1 {
			label = "[vout]"
		}
		fmt.Fprintf(&filter, "%s[%d:v]xfade=transition=fade:duration=%s:offset=%s%s",
			previous, i, formatFloat(fadeSeconds), formatFloat(offsets[i-1]), label)
		if i != len(clipPaths)-1 {
			filter.WriteByte(';')
		}
		previous = label
	}

	args = append(args, "-filter_complex", filter.String(), "-map", "[vout]")
	args = append(args, a.codecArgs()...)
	args = append(args, outputPath)

	return a.execute(ctx, "crossfade montage", args, outputPath)
}
