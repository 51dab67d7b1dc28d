package engine

import "errors"

var (
	// ErrPrepare indicates a destination could not be wiped or recreated.
	// It aborts the run.
	ErrPrepare = errors.New("prepare failed")

	// ErrInterrupted indicates the run was cancelled between operations.
	ErrInterrupted = errors.New("backup interrupted")
)
