package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/ani/internal/config"
	"github.com/tormodhaugland/ani/internal/logging"
)

var (
	cfgFile  string
	jsonOut  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "ani",
	Short: "Host-side bridge for the ani-todo editor extension",
	Long: `ani runs next to the ani-todo editor extension. The plugin forwards
webview messages and command invocations to ani as JSON lines on stdin,
and ani answers with host requests and webview posts on stdout.

Running 'ani' without arguments starts the stdio bridge.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: serve on stdio
		return serveCmd.RunE(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/ani/config.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// setup loads the config and installs the process logger on stderr.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)
	return cfg, log, nil
}
