package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/ani/internal/todo"
	"github.com/tormodhaugland/ani/internal/tui"
)

// version is set at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := struct {
			Version   string   `json:"version"`
			GoVersion string   `json:"go_version,omitempty"`
			Languages []string `json:"languages"`
		}{
			Version:   version,
			Languages: todo.SupportedLanguages(),
		}
		if bi, ok := debug.ReadBuildInfo(); ok {
			info.GoVersion = bi.GoVersion
		}

		if jsonOut {
			return tui.PrintJSON(cmd.OutOrStdout(), info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ani %s (%s)\n", info.Version, info.GoVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
