package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/danieljhkim/devbackup/internal/fsops"
	"github.com/danieljhkim/devbackup/internal/planner"
)

// copyFlat copies each source file into the category destination.
// Used by System and Editor.
func (e *Engine) copyFlat(ctx context.Context, cp planner.CategoryPlan, report *CategoryReport) {
	for _, entry := range cp.Files {
		if ctx.Err() != nil {
			return
		}
		e.record(report, e.copyFileItem(entry.Source, entry.Destination))
	}
}

// copyEnvironments copies each environment's config file and editor settings.
// The per-environment subfolders were created during prepare.
func (e *Engine) copyEnvironments(ctx context.Context, cp planner.CategoryPlan, report *CategoryReport) {
	for _, env := range cp.Environments {
		if ctx.Err() != nil {
			return
		}
		if env.Problem != "" {
			e.record(report, failed(env.Source, "", KindFile, errors.New(env.Problem)))
			continue
		}

		e.record(report, e.copyEnvironmentConfig(env))
		e.record(report, e.copyEnvironmentEditor(env))
	}
}

// copyEnvironmentConfig copies the environment's config file if it has one.
// A missing config file is a valid state.
func (e *Engine) copyEnvironmentConfig(env planner.EnvironmentEntry) ItemResult {
	src := env.ConfigSource()
	info, err := e.fs.Stat(src)
	if err != nil {
		if isNotExist(err) {
			return ItemResult{Source: src, Destination: env.Folder, Kind: KindFile, Status: StatusAbsent}
		}
		return failed(src, env.Folder, KindFile, fmt.Errorf("failed to stat config file: %w", err))
	}
	if !info.Mode().IsRegular() {
		return ItemResult{Source: src, Destination: env.Folder, Kind: KindFile, Status: StatusAbsent}
	}
	return e.copyFileItem(src, env.Folder)
}

// copyEnvironmentEditor replaces the project's editor settings copy.
// Component entries of one project share the same destination, so an
// existing copy is removed first.
func (e *Engine) copyEnvironmentEditor(env planner.EnvironmentEntry) ItemResult {
	src, dst := env.EditorSource, env.EditorDestination

	isDir, err := e.fs.IsDir(src)
	if err != nil {
		return failed(src, dst, KindTree, fmt.Errorf("failed to stat editor settings: %w", err))
	}
	if !isDir {
		return ItemResult{Source: src, Destination: dst, Kind: KindTree, Status: StatusAbsent}
	}

	if err := e.fs.RemoveAll(dst); err != nil {
		return failed(src, dst, KindTree, fmt.Errorf("failed to remove previous copy: %w", err))
	}
	return e.copyTreeItem(src, dst)
}

// copyDeployments copies each deployment tree under its parent folder name.
// Two deployments sharing a parent collide; the second fails as the
// destination already exists.
func (e *Engine) copyDeployments(ctx context.Context, cp planner.CategoryPlan, report *CategoryReport) {
	for _, dep := range cp.Deployments {
		if ctx.Err() != nil {
			return
		}
		if dep.Problem != "" {
			e.record(report, failed(dep.Source, "", KindTree, errors.New(dep.Problem)))
			continue
		}
		e.record(report, e.copyTreeItem(dep.Source, dep.Destination))
	}
}

// copyHome copies each home path as a file or a tree, decided by probing the source.
func (e *Engine) copyHome(ctx context.Context, cp planner.CategoryPlan, report *CategoryReport) {
	for _, h := range cp.Home {
		if ctx.Err() != nil {
			return
		}
		if h.Problem != "" {
			e.record(report, failed(h.Source, "", KindFile, errors.New(h.Problem)))
			continue
		}

		info, err := e.fs.Stat(h.Source)
		switch {
		case err != nil && isNotExist(err):
			e.record(report, failed(h.Source, h.Destination, KindFile, fmt.Errorf("%w: %s", fsops.ErrSourceMissing, h.Source)))
		case err != nil:
			e.record(report, failed(h.Source, h.Destination, KindFile, fmt.Errorf("failed to stat source: %w", err)))
		case info.IsDir():
			e.record(report, e.copyTreeItem(h.Source, h.Destination))
		default:
			e.record(report, e.copyFileItem(h.Source, h.Destination))
		}
	}
}

func (e *Engine) copyFileItem(src, dst string) ItemResult {
	if err := e.fs.CopyFile(src, dst); err != nil {
		return failed(src, dst, KindFile, err)
	}
	return ItemResult{Source: src, Destination: dst, Kind: KindFile, Status: StatusCopied}
}

func (e *Engine) copyTreeItem(src, dst string) ItemResult {
	if err := e.fs.CopyTree(src, dst); err != nil {
		return failed(src, dst, KindTree, err)
	}
	return ItemResult{Source: src, Destination: dst, Kind: KindTree, Status: StatusCopied}
}

func failed(src, dst string, kind ItemKind, err error) ItemResult {
	return ItemResult{Source: src, Destination: dst, Kind: kind, Status: StatusFailed, Err: err}
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
