// Package action runs the side effects behind selected palette results.
package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/google/shlex"
)

// Executor performs the side effects a result requests when selected.
type Executor interface {
	// Run executes a command line without a shell.
	Run(command string) error
	// Open hands a URL or path to the platform opener.
	Open(target string) error
	// Copy places text on the system clipboard.
	Copy(text string) error
}

// ErrEmptyCommand is returned when a command line splits into no arguments.
var ErrEmptyCommand = errors.New("command produced empty argv")

// SystemConfig configures the System executor.
type SystemConfig struct {
	Logger *slog.Logger
	// Timeout bounds how long Run waits for a command to start and finish.
	// Zero means commands are started and not waited for.
	Timeout time.Duration
}

// System runs actions against the real operating system.
type System struct {
	logger  *slog.Logger
	timeout time.Duration
}

// NewSystem creates a System executor.
func NewSystem(cfg SystemConfig) *System {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &System{logger: logger, timeout: cfg.Timeout}
}

// Run splits command with POSIX shell rules and executes it directly.
func (s *System) Run(command string) error {
	argv, err := shlex.Split(command)
	if err != nil {
		return fmt.Errorf("splitting command: %w", err)
	}
	if len(argv) == 0 {
		return ErrEmptyCommand
	}

	s.logger.Debug("action: run", "argv0", argv[0], "args", len(argv)-1)

	if s.timeout <= 0 {
		cmd := exec.Command(argv[0], argv[1:]...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("starting %s: %w", argv[0], err)
		}
		// Reap in the background.
		go func() { _ = cmd.Wait() }()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput(); err != nil {
		return fmt.Errorf("running %s: %w (output: %s)", argv[0], err, truncate(string(out), 200))
	}
	return nil
}

// Open hands target to the platform opener.
func (s *System) Open(target string) error {
	if target == "" {
		return errors.New("open: empty target")
	}
	name, args := openerCommand(target)
	s.logger.Debug("action: open", "opener", name)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %q: %w", target, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Copy writes text to the clipboard.
func (s *System) Copy(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Call is one action recorded by Recorder.
type Call struct {
	Kind   string `json:"kind"` // "run", "open" or "copy"
	Target string `json:"target"`
}

// Recorder records actions instead of performing them. It backs dry runs
// and tests.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	// Err, when set, is returned by every call after it is recorded.
	Err error
}

// Run records a command.
func (r *Recorder) Run(command string) error { return r.record("run", command) }

// Open records an open request.
func (r *Recorder) Open(target string) error { return r.record("open", target) }

// Copy records a clipboard write.
func (r *Recorder) Copy(text string) error { return r.record("copy", text) }

// Calls returns the recorded actions in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the most recent action.
func (r *Recorder) Last() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}, false
	}
	return r.calls[len(r.calls)-1], true
}

func (r *Recorder) record(kind, target string) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Kind: kind, Target: target})
	r.mu.Unlock()
	return r.Err
}

// Compile-time interface checks.
var (
	_ Executor = (*System)(nil)
	_ Executor = (*Recorder)(nil)
)
