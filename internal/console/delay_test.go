package console

import (
	"testing"
	"time"
)

func TestDefaultDelayPolicy(t *testing.T) {
	policy := DefaultDelayPolicy(500 * time.Millisecond)

	cases := []struct {
		cmd  string
		want time.Duration
	}{
		{"demo_gototick 1280", 2 * time.Second},
		{"playdemo \"match.dem\"", 3 * time.Second},
		{"demo_pause", 300 * time.Millisecond},
		{"demo_resume", 500 * time.Millisecond},
		{"spec_player \"some player\"", 500 * time.Millisecond},
		{"  demo_gototick 64  ", 2 * time.Second},
	}
	for _, tc := range cases {
		if got := policy.After(tc.cmd); got != tc.want {
			t.Errorf("After(%q) = %v, want %v", tc.cmd, got, tc.want)
		}
	}
}

func TestDefaultDelayPolicyBaseFallback(t *testing.T) {
	policy := DefaultDelayPolicy(0)
	if policy.Base != 150*time.Millisecond {
		t.Fatalf("base = %v, want 150ms", policy.Base)
	}
}

func TestCustomPolicyOverridesRules(t *testing.T) {
	policy := DelayPolicy{
		Base:  10 * time.Millisecond,
		Rules: []DelayRule{{Prefix: "quit", Delay: time.Second}},
	}
	if got := policy.After("quit"); got != time.Second {
		t.Fatalf("After(quit) = %v, want 1s", got)
	}
	if got := policy.After("demo_gototick 5"); got != 10*time.Millisecond {
		t.Fatalf("After(demo_gototick) = %v, want base", got)
	}
}
