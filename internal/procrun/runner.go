package procrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"romnorm/internal/logging"
)

const (
	// DefaultPollInterval bounds how long cancellation can go unnoticed.
	DefaultPollInterval = 50 * time.Millisecond
	// DefaultGracePeriod is the wait between SIGTERM and SIGKILL.
	DefaultGracePeriod = 2 * time.Second

	stderrTailBytes = 8 << 10
)

// Command describes one process invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// Outcome reports how a process run ended.
type Outcome struct {
	Success   bool
	Cancelled bool
	TimedOut  bool
	ExitCode  int
	Stderr    string
	Duration  time.Duration
}

// Runner starts processes and polls them to completion.
type Runner struct {
	PollInterval time.Duration
	GracePeriod  time.Duration
	Logger       *slog.Logger
}

// New returns a Runner with default timings.
func New(logger *slog.Logger) *Runner {
	return &Runner{
		PollInterval: DefaultPollInterval,
		GracePeriod:  DefaultGracePeriod,
		Logger:       logger,
	}
}

// Run starts cmd and waits for it to exit, for ctx to be cancelled, or for
// timeout to elapse (zero disables the timeout). Only a failure to launch
// the process is returned as an error.
func (r *Runner) Run(ctx context.Context, cmd Command, timeout time.Duration) (Outcome, error) {
	if strings.TrimSpace(cmd.Path) == "" {
		return Outcome{}, errors.New("command path required")
	}
	if err := ctx.Err(); err != nil {
		return Outcome{Cancelled: true, ExitCode: -1}, nil
	}

	logger := logging.NewComponentLogger(r.logger(), "procrun")
	stderr := newTailBuffer(stderrTailBytes)

	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = cmd.Env
	}
	// A nil Stdin reads from the null device.
	c.Stdin = nil
	c.Stdout = io.Discard
	c.Stderr = stderr
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.WaitDelay = r.gracePeriod()

	start := time.Now()
	if err := c.Start(); err != nil {
		return Outcome{}, fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	logger.Debug("process started",
		logging.String("command", cmd.String()),
		logging.Int("pid", c.Process.Pid),
		logging.Duration("timeout", timeout),
	)

	done := make(chan error, 1)
	go func() {
		done <- c.Wait()
	}()

	ticker := time.NewTicker(r.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			outcome := exitOutcome(err)
			outcome.Stderr = stderr.String()
			outcome.Duration = time.Since(start)
			return outcome, nil
		case <-ticker.C:
			cancelled := ctx.Err() != nil
			timedOut := !cancelled && timeout > 0 && time.Since(start) >= timeout
			if !cancelled && !timedOut {
				continue
			}
			reason := "cancelled"
			if timedOut {
				reason = "timeout"
			}
			logger.Info("stopping process",
				logging.String("reason", reason),
				logging.Int("pid", c.Process.Pid),
			)
			waitErr := r.terminate(c.Process.Pid, done)
			outcome := exitOutcome(waitErr)
			outcome.Success = false
			outcome.Cancelled = cancelled
			outcome.TimedOut = timedOut
			outcome.Stderr = stderr.String()
			outcome.Duration = time.Since(start)
			return outcome, nil
		}
	}
}

// terminate signals the process group, escalating to SIGKILL after the
// grace period, and returns the Wait result.
func (r *Runner) terminate(pid int, done <-chan error) error {
	signalGroup(pid, unix.SIGTERM)
	grace := time.NewTimer(r.gracePeriod())
	defer grace.Stop()
	select {
	case err := <-done:
		return err
	case <-grace.C:
	}
	signalGroup(pid, unix.SIGKILL)
	return <-done
}

func signalGroup(pid int, sig unix.Signal) {
	if err := unix.Kill(-pid, sig); err != nil && !errors.Is(err, unix.ESRCH) {
		_ = unix.Kill(pid, sig)
	}
}

func exitOutcome(err error) Outcome {
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		return Outcome{Success: true, ExitCode: 0}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Outcome{ExitCode: exitErr.ExitCode()}
	}
	return Outcome{ExitCode: -1}
}

func (r *Runner) pollInterval() time.Duration {
	if r.PollInterval > 0 {
		return r.PollInterval
	}
	return DefaultPollInterval
}

func (r *Runner) gracePeriod() time.Duration {
	if r.GracePeriod > 0 {
		return r.GracePeriod
	}
	return DefaultGracePeriod
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.NewNop()
}
