// Package privileged provides directory creation and removal that fall back to
// an elevated helper when the filesystem denies the direct operation.
//
// Only a permission-denied failure triggers escalation. Every other failure,
// and any failure of the escalation itself, is returned to the caller, which
// treats it as fatal for the run.
package privileged

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/danieljhkim/devbackup/internal/fsops"
)

var (
	// ErrUnsafePath indicates a path that must never be created or wiped.
	ErrUnsafePath = errors.New("refusing to operate on unsafe path")

	// ErrEscalationFailed indicates the elevated retry did not succeed.
	ErrEscalationFailed = errors.New("escalated operation failed")
)

// Ops creates and wipes directories, retrying with escalation on permission errors.
type Ops struct {
	fs     fsops.FS
	esc    Escalator
	logger *zap.Logger
}

// New creates a new Ops.
func New(fs fsops.FS, esc Escalator, logger *zap.Logger) *Ops {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ops{fs: fs, esc: esc, logger: logger}
}

// EnsureDirectory makes sure path exists as a directory, creating ancestors as needed.
func (o *Ops) EnsureDirectory(ctx context.Context, path string) error {
	if err := checkPath(path); err != nil {
		return err
	}

	err := o.fs.MkdirAll(path, 0755)
	if err == nil {
		return nil
	}
	if !fsops.IsPermission(err) {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	o.logger.Debug("permission denied, escalating", zap.String("op", "mkdir"), zap.String("path", path))
	return o.escalate(ctx, "mkdir", "-p", "--", path)
}

// WipeDirectory removes path and everything below it. A missing path is a no-op.
func (o *Ops) WipeDirectory(ctx context.Context, path string) error {
	if err := checkPath(path); err != nil {
		return err
	}

	exists, err := o.fs.Exists(path)
	if err != nil && !fsops.IsPermission(err) {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if err == nil && !exists {
		return nil
	}

	if err == nil {
		err = o.fs.RemoveAll(path)
		if err == nil {
			return nil
		}
		if !fsops.IsPermission(err) {
			return fmt.Errorf("failed to remove directory %s: %w", path, err)
		}
	}

	o.logger.Debug("permission denied, escalating", zap.String("op", "rm"), zap.String("path", path))
	return o.escalate(ctx, "rm", "-rf", "--", path)
}

func (o *Ops) escalate(ctx context.Context, args ...string) error {
	if o.esc == nil {
		return fmt.Errorf("%w: %s: no escalation configured", ErrEscalationFailed, Describe(args))
	}
	// Once started, an escalated mutation runs to completion even if the run is
	// cancelled; the caller observes cancellation at the next operation boundary.
	if err := o.esc.Run(context.WithoutCancel(ctx), args...); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEscalationFailed, Describe(args), err)
	}
	return nil
}

// checkPath rejects relative paths and the filesystem root.
func checkPath(path string) error {
	if path == "" || !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %q is not absolute", ErrUnsafePath, path)
	}
	cleaned := filepath.Clean(path)
	if filepath.Dir(cleaned) == cleaned {
		return fmt.Errorf("%w: %q is a filesystem root", ErrUnsafePath, path)
	}
	return nil
}
