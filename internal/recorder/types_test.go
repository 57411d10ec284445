package recorder

import (
	"testing"
	"time"
)

func TestHoldDuration(t *testing.T) {
	clip := Clip{ID: "c1", StartTick: 0, EndTick: 640}
	safety := 1500 * time.Millisecond

	// 640 ticks at 64 ticks/s is 10s of demo time at 1x.
	if got := HoldDuration(clip, 64, 1, safety); got != 10*time.Second+safety {
		t.Fatalf("hold = %v, want %v", got, 10*time.Second+safety)
	}

	// Doubling playback speed halves the hold.
	if got := HoldDuration(clip, 64, 2, safety); got != 5*time.Second+safety {
		t.Fatalf("hold at 2x = %v, want %v", got, 5*time.Second+safety)
	}
}

func TestHoldDurationDegenerateInputs(t *testing.T) {
	clip := Clip{StartTick: 0, EndTick: 128}
	safety := time.Second
	if got := HoldDuration(clip, 0, 1, safety); got != safety {
		t.Fatalf("zero tick rate: hold = %v, want safety only", got)
	}
	if got := HoldDuration(clip, 64, 0, safety); got != safety {
		t.Fatalf("zero speed: hold = %v, want safety only", got)
	}
}

func TestSpectateCommandsIssuedTwice(t *testing.T) {
	cmds := SpectateCommands("s1mple", 0)
	if len(cmds) != 2 || cmds[0] != "spec_player s1mple" || cmds[1] != cmds[0] {
		t.Fatalf("cmds = %v", cmds)
	}
}

func TestSpectateCommandsQuotesWhitespace(t *testing.T) {
	cmds := SpectateCommands("the awper", 0)
	if cmds[0] != `spec_player "the awper"` {
		t.Fatalf("cmds = %v", cmds)
	}
}

func TestSpectateCommandsPrefersSlot(t *testing.T) {
	cmds := SpectateCommands("ignored name", 7)
	if cmds[0] != "spec_player 7" {
		t.Fatalf("cmds = %v", cmds)
	}
}

func TestSpectateCommandsNoTarget(t *testing.T) {
	if cmds := SpectateCommands("", 0); cmds != nil {
		t.Fatalf("expected nil, got %v", cmds)
	}
}
