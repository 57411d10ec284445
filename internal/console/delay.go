package console

import (
	"strings"
	"time"
)

// DelayRule maps a command prefix to the settle delay required after issuing
// a command with that prefix.
type DelayRule struct {
	Prefix string
	Delay  time.Duration
}

// DelayPolicy decides how long to wait after each command before the next one
// may be sent. The per-prefix delays are empirical: seeking and demo loading
// have no observable completion event, so the delay is a calibrated proxy.
type DelayPolicy struct {
	Base  time.Duration
	Rules []DelayRule
}

// DefaultDelayPolicy returns the calibrated policy for the stock console
// vocabulary. The base delay covers commands with no specific rule.
func DefaultDelayPolicy(base time.Duration) DelayPolicy {
	if base <= 0 {
		base = 150 * time.Millisecond
	}
	return DelayPolicy{
		Base: base,
		Rules: []DelayRule{
			{Prefix: "demo_gototick", Delay: 2 * time.Second},
			{Prefix: "playdemo", Delay: 3 * time.Second},
			{Prefix: "demo_pause", Delay: 300 * time.Millisecond},
		},
	}
}

// After returns the settle delay owed after the given command.
func (p DelayPolicy) After(cmd string) time.Duration {
	cmd = strings.TrimSpace(cmd)
	for _, rule := range p.Rules {
		if strings.HasPrefix(cmd, rule.Prefix) {
			return rule.Delay
		}
	}
	return p.Base
}
