package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/devbackup/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a run would wipe and copy",
	Long: `Print the destinations a run would wipe and recreate and the copies it would
attempt, in run order. Nothing on disk is touched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		plan := planner.Build(cfg)
		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, plan)
		}

		printPlan(out, plan)
		return nil
	},
}

func printPlan(w io.Writer, plan *planner.Plan) {
	PrintLabelValue(w, "Backup root", plan.Root)

	if len(plan.Categories) == 0 {
		PrintEmptyState(w, "No category is configured; a run would do nothing.")
	}

	for _, cp := range plan.Categories {
		PrintSection(w, fmt.Sprintf("%s (%s)", cp.Category, PrintCount(cp.Len(), "entry", "entries")))
		PrintLabelValue(w, "Wipe and recreate", cp.Destination)

		var copies []string
		for _, f := range cp.Files {
			copies = append(copies, fmt.Sprintf("%s -> %s", f.Source, f.Destination))
		}
		for _, env := range cp.Environments {
			if env.Problem != "" {
				PrintWarning(w, fmt.Sprintf("%s: %s", env.Specifier, env.Problem))
				continue
			}
			PrintSubsection(w, env.Name)
			PrintList(w, []string{
				fmt.Sprintf("%s -> %s", env.ConfigSource(), env.Folder),
				fmt.Sprintf("%s -> %s", env.EditorSource, env.EditorDestination),
			}, 2)
		}
		for _, dep := range cp.Deployments {
			if dep.Problem != "" {
				PrintWarning(w, fmt.Sprintf("%s: %s", dep.Source, dep.Problem))
				continue
			}
			copies = append(copies, fmt.Sprintf("%s -> %s", dep.Source, dep.Destination))
		}
		for _, h := range cp.Home {
			if h.Problem != "" {
				PrintWarning(w, fmt.Sprintf("%s: %s", h.Specifier, h.Problem))
				continue
			}
			copies = append(copies, fmt.Sprintf("%s -> %s", h.Source, h.Destination))
		}
		PrintList(w, copies, 1)
	}

	if len(plan.Skipped) > 0 {
		PrintSection(w, "Inactive")
		for _, s := range plan.Skipped {
			PrintEmptyState(w, fmt.Sprintf("%s: %s", s.Category, s.Reason))
		}
	}
}
