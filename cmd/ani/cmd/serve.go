package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/ani/internal/app"
	"github.com/tormodhaugland/ani/internal/rpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the editor plugin over stdio",
	Long: `Reads frames from the editor plugin on stdin and writes host requests
and webview posts to stdout, one JSON object per line. Logs go to stderr.
Exits when stdin is closed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		conn := rpc.NewConn(os.Stdin, os.Stdout, log)
		return app.New(conn, cfg, log).Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
