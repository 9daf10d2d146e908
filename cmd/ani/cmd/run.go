package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/ani/internal/bridge"
	"github.com/tormodhaugland/ani/internal/commands"
	"github.com/tormodhaugland/ani/internal/panel"
	"github.com/tormodhaugland/ani/internal/tui"
)

var (
	runFlags terminalFlags
	runList  bool
)

var runCmd = &cobra.Command{
	Use:   "run <command>",
	Short: "Run an extension command through the terminal host",
	Long: `Runs one of the extension's commands. Partial names are fuzzy matched:
  ani run askQuestion      # ani-todo.askQuestion
  ani run scan --file main.go

Messages posted to panels are printed to stdout as JSON lines.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if runList {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		h := runFlags.host(cfg)
		poster := &tui.JSONPoster{W: os.Stdout}
		factory := func(string) *bridge.Bridge {
			return bridge.New(h, poster, cfg, bridge.WithLogger(log))
		}
		panels := panel.NewManager(factory, tui.PanelView{Host: h}, log)
		defer panels.Close()

		reg := commands.NewRegistry()
		commands.RegisterBuiltins(reg, commands.Deps{Host: h, Panels: panels, Log: log})

		if runList {
			if jsonOut {
				return tui.PrintJSON(os.Stdout, reg.Names())
			}
			for _, c := range reg.Commands() {
				fmt.Printf("%-24s %s\n", c.Name, c.Title)
			}
			return nil
		}

		return reg.Run(cmd.Context(), args[0])
	},
}

func init() {
	runFlags.register(runCmd)
	runCmd.Flags().BoolVarP(&runList, "list", "l", false, "list commands")
	rootCmd.AddCommand(runCmd)
}
