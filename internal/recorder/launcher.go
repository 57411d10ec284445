package recorder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"demoreel/internal/prockill"
	"demoreel/internal/services"
)

// LaunchSpec carries the flags the game is started with.
type LaunchSpec struct {
	Binary   string
	Width    int
	Height   int
	Windowed bool
	Port     int
}

// Process is a handle to the launched game, kept only for liveness checks
// and termination.
type Process interface {
	PID() int
	Alive() bool
	Terminate(grace time.Duration) error
}

// Launcher spawns the game process detached from the orchestrator's
// lifetime.
type Launcher interface {
	Launch(ctx context.Context, spec LaunchSpec) (Process, error)
}

// NewExecLauncher returns the exec-based launcher used outside tests.
func NewExecLauncher() Launcher {
	return execLauncher{}
}

type execLauncher struct{}

func (execLauncher) Launch(ctx context.Context, spec LaunchSpec) (Process, error) {
	if spec.Binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "recorder", "launch", "game binary not configured", nil)
	}

	args := []string{"-novid", "-insecure"}
	if spec.Windowed {
		args = append(args, "-sw", "-noborder")
	} else {
		args = append(args, "-fullscreen")
	}
	if spec.Width > 0 && spec.Height > 0 {
		args = append(args, "-w", strconv.Itoa(spec.Width), "-h", strconv.Itoa(spec.Height))
	}
	args = append(args, "-netconport", strconv.Itoa(spec.Port))

	// Deliberately not CommandContext: the game must outlive any context the
	// launch happened under. Termination is explicit, via the handle.
	cmd := exec.Command(spec.Binary, args...) //nolint:gosec
	cmd.SysProcAttr = prockill.DetachAttr()
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "recorder", "launch",
			fmt.Sprintf("start %s", spec.Binary), err)
	}

	// Reap on exit so a crashed game does not linger as a zombie.
	go func() { _, _ = cmd.Process.Wait() }()

	return &osProcess{proc: cmd.Process}, nil
}

type osProcess struct {
	proc *os.Process
}

func (p *osProcess) PID() int {
	return p.proc.Pid
}

func (p *osProcess) Alive() bool {
	return prockill.Alive(p.proc.Pid)
}

func (p *osProcess) Terminate(grace time.Duration) error {
	return prockill.Terminate(p.proc, grace)
}
