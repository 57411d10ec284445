package ffmpeg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"demoreel/internal/services"
)

// Trim re-encodes the section of inputPath between from and to into
// outputPath. Used to split a composite intro-plus-clip recording at the
// boundary timestamp; re-encoding keeps the cut frame-accurate.
func (a *Assembler) Trim(ctx context.Context, inputPath, outputPath string, from, to time.Duration) error {
	if to <= from {
		return services.Wrap(services.ErrValidation, "ffmpeg", "trim",
			fmt.Sprintf("invalid range %s..%s", from, to), nil)
	}

	args := []string{
		"-y",
		"-i", inputPath,
		"-ss", formatFloat(from.Seconds()),
		"-to", formatFloat(to.Seconds()),
	}
	args = append(args, a.codecArgs()...)
	args = append(args, outputPath)

	return a.execute(ctx, "trim", args, outputPath)
}

// RenderIntroTitle overlays a centered title on the intro clip with a fade in
// and out. The fade-out offset needs the clip duration, which is probed.
func (a *Assembler) RenderIntroTitle(ctx context.Context, inputPath, outputPath, title string, fadeSeconds float64) error {
	duration, err := a.probe(ctx, inputPath)
	if err != nil {
		return services.Wrap(services.ErrEncoder, "ffprobe", "intro title", "probe duration of "+inputPath, err)
	}
	if fadeSeconds < 0 {
		fadeSeconds = 0
	}
	fadeOutStart := duration - fadeSeconds
	if fadeOutStart < 0 {
		fadeOutStart = 0
	}

	escaped := escapeDrawtext(title)
	filter := fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=72:borderw=3:bordercolor=black:x=(w-text_w)/2:y=(h-text_h)/2",
		escaped)
	if fadeSeconds > 0 {
		filter = fmt.Sprintf("%s,fade=t=in:st=0:d=%s,fade=t=out:st=%s:d=%s",
			filter, formatFloat(fadeSeconds), formatFloat(fadeOutStart), formatFloat(fadeSeconds))
	}

	args := []string{"-y", "-i", inputPath, "-vf", filter}
	args = append(args, a.codecArgs()...)
	args = append(args, outputPath)

	return a.execute(ctx, "intro title", args, outputPath)
}

var drawtextReplacer = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
	`%`, `\%`,
)

func escapeDrawtext(text string) string {
	return drawtextReplacer.Replace(text)
}
