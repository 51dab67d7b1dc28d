package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/devbackup/internal/engine"
)

// CompletionMessage is printed after a run that was not aborted.
const CompletionMessage = "Completed all backup steps."

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the backup",
	Long: `Wipe and recreate the folder of every configured category under the backup
root, then copy each category's sources into it.

Copy failures are reported per item and never stop the run. Failing to create
or wipe a destination aborts the run before anything is copied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		logOut := out
		if jsonOutput {
			logOut = cmd.ErrOrStderr()
		}
		logger := newLogger(logOut, verbose)
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := newEngine(cfg, logger).Run(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(out, newRunOutput(result))
		}

		printRunSummary(out, result)
		return nil
	},
}

// runOutput is the JSON view of a run; item errors are rendered as strings.
type runOutput struct {
	Root       string           `json:"root"`
	StartedAt  time.Time        `json:"started_at"`
	Duration   string           `json:"duration"`
	Failures   int              `json:"failures"`
	Categories []categoryOutput `json:"categories"`
}

type categoryOutput struct {
	Category    string       `json:"category"`
	Destination string       `json:"destination"`
	Items       []itemOutput `json:"items"`
}

type itemOutput struct {
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

func newRunOutput(result *engine.RunResult) runOutput {
	ro := runOutput{
		Root:       result.Plan.Root,
		StartedAt:  result.StartedAt,
		Duration:   result.Duration.String(),
		Failures:   result.FailureCount(),
		Categories: make([]categoryOutput, 0, len(result.Reports)),
	}
	for _, rep := range result.Reports {
		co := categoryOutput{
			Category:    string(rep.Category),
			Destination: rep.Destination,
			Items:       make([]itemOutput, 0, len(rep.Items)),
		}
		for _, item := range rep.Items {
			it := itemOutput{
				Source:      item.Source,
				Destination: item.Destination,
				Kind:        string(item.Kind),
				Status:      string(item.Status),
			}
			if item.Err != nil {
				it.Error = item.Err.Error()
			}
			co.Items = append(co.Items, it)
		}
		ro.Categories = append(ro.Categories, co)
	}
	return ro
}

// printRunSummary prints one line per category and the completion message.
func printRunSummary(w io.Writer, result *engine.RunResult) {
	if len(result.Reports) == 0 {
		PrintEmptyState(w, "No category is configured; nothing to back up.")
	}

	for _, rep := range result.Reports {
		failures := rep.Failures()
		copied := PrintCount(rep.Copied(), "item", "items")
		if len(failures) == 0 {
			PrintSuccess(w, fmt.Sprintf("%s: %s copied to %s", rep.Category, copied, rep.Destination))
			continue
		}

		PrintWarning(w, fmt.Sprintf("%s: %s copied, %s failed",
			rep.Category, copied, PrintCount(len(failures), "item", "items")))
		for _, f := range failures {
			PrintList(w, []string{fmt.Sprintf("%s: %v", f.Source, f.Err)}, 1)
		}
	}

	PrintSuccess(w, CompletionMessage)
}
