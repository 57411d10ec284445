package ffmpeg

import (
	"context"
	"fmt"
	"strings"

	"demoreel/internal/services"
)

const (
	atempoMin = 0.5
	atempoMax = 2.0
)

// TempoChain decomposes an audio tempo factor into stages the atempo filter
// accepts. Each stage lies in [0.5, 2.0] and the product of all stages equals
// factor within floating tolerance.
func TempoChain(factor float64) ([]float64, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("tempo factor must be positive, got %g", factor)
	}
	var stages []float64
	remaining := factor
	for remaining > atempoMax {
		stages = append(stages, atempoMax)
		remaining /= atempoMax
	}
	for remaining < atempoMin {
		stages = append(stages, atempoMin)
		remaining /= atempoMin
	}
	stages = append(stages, remaining)
	return stages, nil
}

func atempoFilter(stages []float64) string {
	parts := make([]string, len(stages))
	for i, stage := range stages {
		parts[i] = "atempo=" + formatFloat(stage)
	}
	return strings.Join(parts, ",")
}

// NormalizeSpeed re-times a clip that was recorded at the given playback
// speed back to 1x: video presentation timestamps are rescaled by speed and
// audio tempo by 1/speed. Inputs without an audio stream skip the atempo
// chain entirely.
func (a *Assembler) NormalizeSpeed(ctx context.Context, inputPath string, speed float64, outputPath string) error {
	if speed <= 0 || speed > 10 {
		return services.Wrap(services.ErrValidation, "ffmpeg", "normalize speed",
			fmt.Sprintf("speed must be in (0, 10], got %g", speed), nil)
	}

	hasAudio, err := a.inputHasAudio(ctx, inputPath)
	if err != nil {
		return err
	}

	args := []string{"-y", "-i", inputPath}
	videoFilter := fmt.Sprintf("setpts=%s*PTS", formatFloat(speed))
	if hasAudio {
		stages, err := TempoChain(1 / speed)
		if err != nil {
			return services.Wrap(services.ErrValidation, "ffmpeg", "normalize speed", "", err)
		}
		filter := fmt.Sprintf("[0:v]%s[v];[0:a]%s[a]", videoFilter, atempoFilter(stages))
		args = append(args, "-filter_complex", filter, "-map", "[v]", "-map", "[a]")
	} else {
		args = append(args, "-vf", videoFilter, "-an")
	}
	args = append(args, a.codecArgs()...)
	args = append(args, outputPath)

	return a.execute(ctx, "normalize speed", args, outputPath)
}

func (a *Assembler) inputHasAudio(ctx context.Context, path string) (bool, error) {
	result, err := a.inspect(ctx, path)
	if err != nil {
		return false, services.Wrap(services.ErrEncoder, "ffprobe", "inspect", path, err)
	}
	for _, stream := range result.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return true, nil
		}
	}
	return false, nil
}
