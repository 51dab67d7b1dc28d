// Package engine provides the backup orchestrator.
//
// A run has two phases entered in fixed order:
//   - Prepare wipes and recreates the destination subtree of every active
//     category (and the per-environment subfolders). Any failure here aborts
//     the run with ErrPrepare.
//   - Populate runs each category's copy policy in the order System, Editor,
//     Environments, Deployments, Home. Copy failures are recorded per item
//     and never abort the run.
//
// Everything runs sequentially; a wipe always completes before anything is
// written beneath it. Cancellation is observed only between operations.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danieljhkim/devbackup/internal/clock"
	"github.com/danieljhkim/devbackup/internal/config"
	"github.com/danieljhkim/devbackup/internal/fsops"
	"github.com/danieljhkim/devbackup/internal/planner"
)

// PrivilegedOps creates and wipes directories, escalating on permission errors.
type PrivilegedOps interface {
	// EnsureDirectory makes sure path exists as a directory.
	EnsureDirectory(ctx context.Context, path string) error

	// WipeDirectory removes path and everything beneath it.
	WipeDirectory(ctx context.Context, path string) error
}

// Engine orchestrates a backup run.
type Engine struct {
	cfg    config.Config
	fs     fsops.FS
	priv   PrivilegedOps
	clock  clock.Clock
	logger *zap.Logger
}

// New creates a new Engine with the given dependencies.
func New(
	cfg config.Config,
	fs fsops.FS,
	priv PrivilegedOps,
	clk clock.Clock,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		fs:     fs,
		priv:   priv,
		clock:  clk,
		logger: logger,
	}
}

// Plan computes the plan for the configured run without touching the filesystem.
func (e *Engine) Plan() *planner.Plan {
	return planner.Build(e.cfg)
}

// Run executes a full backup: prepare every active category, then populate them.
// The returned result is non-nil even when err is set.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	plan := e.Plan()
	result := &RunResult{
		Plan:      plan,
		Reports:   []CategoryReport{},
		StartedAt: e.clock.Now(),
	}
	defer func() {
		result.Duration = clock.Since(e.clock, result.StartedAt)
	}()

	for _, s := range plan.Skipped {
		e.logger.Debug("category inactive", zap.String("category", string(s.Category)), zap.String("reason", s.Reason))
	}

	if err := e.prepare(ctx, plan); err != nil {
		return result, err
	}

	for _, cp := range plan.Categories {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("%w before %s: %w", ErrInterrupted, cp.Category, err)
		}
		result.Reports = append(result.Reports, e.populate(ctx, cp))
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	return result, nil
}

// prepare wipes and recreates every active category destination.
func (e *Engine) prepare(ctx context.Context, plan *planner.Plan) error {
	if len(plan.Categories) == 0 {
		return nil
	}

	if err := e.priv.EnsureDirectory(ctx, plan.Root); err != nil {
		return prepareFailure(ctx, "backup root", err)
	}

	for _, cp := range plan.Categories {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w during prepare of %s: %w", ErrInterrupted, cp.Category, err)
		}

		if err := e.priv.WipeDirectory(ctx, cp.Destination); err != nil {
			return prepareFailure(ctx, string(cp.Category), err)
		}
		if err := e.priv.EnsureDirectory(ctx, cp.Destination); err != nil {
			return prepareFailure(ctx, string(cp.Category), err)
		}

		// All environment subfolders exist before any environment is copied.
		for _, env := range cp.Environments {
			if env.Problem != "" {
				continue
			}
			if err := e.priv.EnsureDirectory(ctx, env.Folder); err != nil {
				return prepareFailure(ctx, fmt.Sprintf("%s %s", cp.Category, env.Name), err)
			}
		}

		e.logger.Info("prepared destination",
			zap.String("category", string(cp.Category)),
			zap.String("destination", cp.Destination))
	}

	return nil
}

// prepareFailure wraps a prepare error. A failure seen after the run was
// cancelled is reported as an interrupt rather than a prepare failure.
func prepareFailure(ctx context.Context, what string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w during prepare of %s: %w", ErrInterrupted, what, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrPrepare, what, err)
}

// populate runs the copy policy for one category.
func (e *Engine) populate(ctx context.Context, cp planner.CategoryPlan) CategoryReport {
	report := CategoryReport{
		Category:    cp.Category,
		Destination: cp.Destination,
		Items:       []ItemResult{},
	}

	switch cp.Category {
	case config.System, config.Editor:
		e.copyFlat(ctx, cp, &report)
	case config.Environments:
		e.copyEnvironments(ctx, cp, &report)
	case config.Deployments:
		e.copyDeployments(ctx, cp, &report)
	case config.Home:
		e.copyHome(ctx, cp, &report)
	}

	return report
}

// record appends an item outcome to the report and logs it.
func (e *Engine) record(report *CategoryReport, item ItemResult) {
	report.Items = append(report.Items, item)

	fields := []zap.Field{
		zap.String("category", string(report.Category)),
		zap.String("source", item.Source),
		zap.String("destination", item.Destination),
	}
	switch item.Status {
	case StatusCopied:
		e.logger.Info("copied "+string(item.Kind), fields...)
	case StatusAbsent:
		e.logger.Debug("not present, skipped", fields...)
	case StatusFailed:
		e.logger.Warn("backup failed", append(fields, zap.Error(item.Err))...)
	}
}
