package recorder

import (
	"fmt"
	"strings"
	"time"
)

// Clip addresses a tick range of the loaded demo, optionally following a
// specific player.
type Clip struct {
	ID        string
	StartTick int
	EndTick   int
	Label     string
	// PlayerName is the display name to spectate. PlayerSlot, when positive,
	// takes precedence: numeric identifiers survive name changes and
	// whitespace quirks.
	PlayerName string
	PlayerSlot int
}

// Ticks returns the clip length in ticks.
func (c Clip) Ticks() int {
	return c.EndTick - c.StartTick
}

// IntroSpec describes the optional map-overview intro recorded before the
// first clip.
type IntroSpec struct {
	Enabled  bool
	MapLabel string
	Duration time.Duration
}

// HoldDuration computes how long capture must run to cover the clip:
// tick span converted to wall time at the demo's tick rate, divided by the
// playback speed, plus a safety buffer for the settle slop around seek and
// capture start.
func HoldDuration(clip Clip, tickRate int, playbackSpeed float64, safetyBuffer time.Duration) time.Duration {
	if tickRate <= 0 || playbackSpeed <= 0 {
		return safetyBuffer
	}
	seconds := float64(clip.Ticks()) / float64(tickRate) / playbackSpeed
	if seconds < 0 {
		seconds = 0
	}
	return time.Duration(seconds*float64(time.Second)) + safetyBuffer
}

// SpectateCommands builds the POV assignment command, issued twice because a
// single issuance has observed reliability gaps with the game. A positive
// slot is preferred over the name; names containing whitespace are quoted.
func SpectateCommands(name string, slot int) []string {
	var cmd string
	switch {
	case slot > 0:
		cmd = fmt.Sprintf("spec_player %d", slot)
	case strings.TrimSpace(name) != "":
		target := strings.TrimSpace(name)
		if strings.ContainsAny(target, " \t") {
			target = `"` + target + `"`
		}
		cmd = "spec_player " + target
	default:
		return nil
	}
	return []string{cmd, cmd}
}
