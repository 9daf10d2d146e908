package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/ani/internal/doctor"
	"github.com/tormodhaugland/ani/internal/pyenv"
	"github.com/tormodhaugland/ani/internal/tui"
)

var (
	doctorLibs   []string
	doctorYes    bool
	doctorDryRun bool
)

type doctorResult struct {
	*doctor.Report
	Planned   []string `json:"planned,omitempty"`
	Installed []string `json:"installed,omitempty"`
	Failed    []string `json:"failed,omitempty"`
	DryRun    bool     `json:"dry_run"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the Python environment and workspace",
	Long: `Checks the configured Python interpreter, its package manager and the
workspace root. With --libs, also probes the given libraries and offers to
install the missing ones.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		tui.UseRenderer(os.Stderr)

		d := &doctor.Doctor{
			Config: cfg,
			Runner: &pyenv.ExecRunner{Timeout: cfg.InstallTimeout()},
		}
		ctx := cmd.Context()
		report := d.Run(ctx, doctorLibs)
		result := doctorResult{Report: report, DryRun: doctorDryRun}

		if !jsonOut {
			printDoctorReport(report)
		}

		if len(report.Missing) > 0 {
			switch {
			case doctorDryRun:
				result.Planned = report.Missing
				if !jsonOut {
					fmt.Printf("Dry run - would install: %s\n", strings.Join(report.Missing, ", "))
				}
			case doctorYes:
				result.Installed, result.Failed = d.Fix(ctx, report)
			case !jsonOut:
				prompt := fmt.Sprintf("Install %s now?", strings.Join(report.Missing, ", "))
				choice, err := tui.RunChoice(ctx, os.Stdin, os.Stderr, prompt, []string{"Yes", "No"})
				if err != nil {
					return fmt.Errorf("prompt failed: %w", err)
				}
				if choice.Choice == "Yes" {
					result.Installed, result.Failed = d.Fix(ctx, report)
				}
			}
		}

		if jsonOut {
			if err := tui.PrintJSON(os.Stdout, result); err != nil {
				return err
			}
		} else if len(result.Installed) > 0 || len(result.Failed) > 0 {
			fmt.Printf("Installed %d of %d libraries\n", len(result.Installed), len(report.Missing))
		}

		if len(result.Failed) > 0 {
			return fmt.Errorf("failed to install: %s", strings.Join(result.Failed, ", "))
		}
		if report.Failed() && len(result.Installed) == 0 {
			return fmt.Errorf("doctor found problems")
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().StringSliceVar(&doctorLibs, "libs", nil, "libraries to probe, comma separated")
	doctorCmd.Flags().BoolVarP(&doctorYes, "yes", "y", false, "install missing libraries without prompting")
	doctorCmd.Flags().BoolVar(&doctorDryRun, "dry-run", false, "list missing libraries without installing")
	rootCmd.AddCommand(doctorCmd)
}

func printDoctorReport(r *doctor.Report) {
	for _, c := range r.Checks {
		mark := "✓"
		switch c.Status {
		case doctor.StatusWarn:
			mark = "!"
		case doctor.StatusFail:
			mark = "✗"
		}
		fmt.Printf("%s %-16s %s\n", mark, c.Name, c.Detail)
	}
}
