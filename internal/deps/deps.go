package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"demoreel/internal/config"
)

// Requirement defines an external dependency the exporter relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// FilePath requirements are checked with os.Stat instead of PATH lookup.
	FilePath bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements assembles the dependency list for the given configuration.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Encoder.FFmpegBinary,
			Description: "Encodes frame sequences and assembles montages",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Encoder.FFprobeBinary,
			Description: "Probes clip durations for crossfade offsets",
		},
		{
			Name:        "Game executable",
			Command:     cfg.Paths.GameBinary,
			Description: "Replays demos and exposes the TCP console",
			FilePath:    true,
		},
	}
	return reqs
}

// Check evaluates the provided requirements and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if req.FilePath {
			info, err := os.Stat(cmd)
			if err != nil || info.IsDir() {
				status.Detail = fmt.Sprintf("executable %q not found", cmd)
				results = append(results, status)
				continue
			}
			status.Available = true
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
