package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"demoreel/internal/logging"
	"demoreel/internal/services"
)

var framePattern = regexp.MustCompile(`^(.*?)(\d+)\.([A-Za-z0-9]+)$`)

// sequenceSpec describes a numbered frame sequence on disk.
type sequenceSpec struct {
	pattern     string
	startNumber int
	count       int
}

// EncodeImageSequence builds a video from the numbered frame files in
// frameDir. The zero-padded numeric pattern is detected from the first frame
// in directory listing order. When speedFactor > 1 the frames were captured
// at a scaled rate, so the presentation timestamps are stretched back out for
// a 1x-speed result.
func (a *Assembler) EncodeImageSequence(ctx context.Context, frameDir string, fps int, outPath string, speedFactor float64) error {
	if fps <= 0 {
		return services.Wrap(services.ErrValidation, "ffmpeg", "encode sequence", fmt.Sprintf("fps must be positive, got %d", fps), nil)
	}
	spec, err := detectSequence(frameDir)
	if err != nil {
		return err
	}
	a.logger.Debug("frame sequence detected",
		logging.String("pattern", spec.pattern),
		logging.Int("frames", spec.count))

	args := []string{
		"-y",
		"-start_number", strconv.Itoa(spec.startNumber),
		"-framerate", strconv.Itoa(fps),
		"-i", spec.pattern,
	}
	if speedFactor > 1 {
		args = append(args, "-vf", fmt.Sprintf("setpts=%s*PTS", formatFloat(speedFactor)))
	}
	args = append(args, a.codecArgs()...)
	args = append(args, outPath)

	return a.execute(ctx, "encode sequence", args, outPath)
}

// detectSequence scans frameDir for numbered image files and derives the
// printf-style input pattern ffmpeg expects.
func detectSequence(frameDir string) (sequenceSpec, error) {
	entries, err := os.ReadDir(frameDir)
	if err != nil {
		return sequenceSpec{}, services.Wrap(services.ErrCapture, "ffmpeg", "encode sequence", "read frame directory "+frameDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var first []string
	count := 0
	for _, name := range names {
		match := framePattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		if first == nil {
			first = match
		}
		count++
	}
	if first == nil {
		return sequenceSpec{}, services.Wrap(services.ErrCapture, "ffmpeg", "encode sequence",
			"no numbered frames in "+frameDir, nil)
	}

	prefix, digits, ext := first[1], first[2], first[3]
	start, err := strconv.Atoi(digits)
	if err != nil {
		return sequenceSpec{}, services.Wrap(services.ErrCapture, "ffmpeg", "encode sequence", "parse frame number "+digits, err)
	}
	pattern := filepath.Join(frameDir, fmt.Sprintf("%s%%0%dd.%s", prefix, len(digits), ext))
	return sequenceSpec{pattern: pattern, startNumber: start, count: count}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
