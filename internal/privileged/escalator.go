package privileged

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

// Escalator runs a filesystem command with elevated privilege.
type Escalator interface {
	Run(ctx context.Context, args ...string) error
}

// CommandEscalator runs commands behind a prefix such as "sudo".
// The elevated helper inherits the terminal so it can prompt for a password.
type CommandEscalator struct {
	Prefix []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewCommandEscalator creates a CommandEscalator attached to the process's standard streams.
func NewCommandEscalator(prefix ...string) *CommandEscalator {
	return &CommandEscalator{
		Prefix: prefix,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes prefix + args and waits for it to finish.
func (e *CommandEscalator) Run(ctx context.Context, args ...string) error {
	if len(e.Prefix) == 0 {
		return errors.New("empty escalation command")
	}

	argv := append(append([]string(nil), e.Prefix[1:]...), args...)
	cmd := exec.CommandContext(ctx, e.Prefix[0], argv...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", Describe(append(append([]string(nil), e.Prefix...), args...)), err)
	}
	return nil
}

// Describe renders a command line for logs and error messages.
func Describe(args []string) string {
	return shellquote.Join(args...)
}
