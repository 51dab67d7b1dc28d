package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/danieljhkim/devbackup/internal/clock"
	"github.com/danieljhkim/devbackup/internal/config"
	"github.com/danieljhkim/devbackup/internal/engine"
	"github.com/danieljhkim/devbackup/internal/fsops"
	"github.com/danieljhkim/devbackup/internal/privileged"
)

// InterruptedMessage is printed when the user cancels a run.
const InterruptedMessage = "Backup interrupted by user. Exiting."

// ExitCode reports err and returns the process exit status.
// A user interrupt is a benign cancellation and exits 0.
func ExitCode(stdout, stderr io.Writer, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, engine.ErrInterrupted):
		PrintWarning(stdout, InterruptedMessage)
		return 0
	default:
		PrintError(stderr, fmt.Sprintf("Error: %v", err))
		return 1
	}
}

// loadConfig resolves the configuration from the global flags and the environment.
func loadConfig() (config.Config, error) {
	return config.Load(config.Options{
		File:    configFile,
		EnvFile: envFile,
	})
}

// newLogger creates the console logger used for per-item progress lines.
func newLogger(w io.Writer, debug bool) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.CallerKey = ""

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine(cfg config.Config, logger *zap.Logger) *engine.Engine {
	fs := fsops.NewRealFS()
	esc := privileged.NewCommandEscalator(cfg.EscalationCommand...)
	priv := privileged.New(fs, esc, logger)
	clk := &clock.RealClock{}

	return engine.New(cfg, fs, priv, clk, logger)
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
