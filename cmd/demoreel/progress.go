package main

import (
	"fmt"
	"io"

	"demoreel/internal/export"
)

const (
	ansiCyan  = "\x1b[36m"
	ansiReset = "\x1b[0m"
)

// newProgressPrinter returns an observer that writes one line per stage
// transition, colorizing the stage tag when writing to a terminal.
func newProgressPrinter(out io.Writer) func(export.Progress) {
	colorize := isTerminal(out)
	return func(p export.Progress) {
		stage := string(p.Stage)
		if colorize {
			stage = ansiCyan + stage + ansiReset
		}
		if p.Stage == export.StageRecording && p.TotalClips > 0 {
			fmt.Fprintf(out, "[%3d%%] %s (%d/%d): %s\n", p.Percent, stage, p.ClipIndex, p.TotalClips, p.Message)
			return
		}
		fmt.Fprintf(out, "[%3d%%] %s: %s\n", p.Percent, stage, p.Message)
	}
}
