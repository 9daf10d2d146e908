package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/ani/internal/bridge"
	"github.com/tormodhaugland/ani/internal/tui"
)

var sendFlags terminalFlags

var sendCmd = &cobra.Command{
	Use:   "send <json>...",
	Short: "Dispatch webview messages through the terminal host",
	Long: `Dispatches each argument as a webview message, in order, the way a
panel would. Use "-" to read one message from stdin.

Examples:
  ani send '{"type":"insertFile","path":"src/a.txt","content":"hello"}'
  ani send '{"type":"installPythonLibs","libs":["requests"]}' --answer Yes
  ani send '{"type":"startProgress","title":"Thinking"}' '{"type":"endProgress"}'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		h := sendFlags.host(cfg)
		b := bridge.New(h, &tui.JSONPoster{W: os.Stdout}, cfg, bridge.WithLogger(log))
		ctx := cmd.Context()

		for _, arg := range args {
			raw := []byte(arg)
			if arg == "-" {
				raw, err = io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			}
			b.Dispatch(ctx, raw)
		}

		// Close lets an ended progress session finish its final report.
		b.Close()
		return nil
	},
}

func init() {
	sendFlags.register(sendCmd)
	rootCmd.AddCommand(sendCmd)
}
