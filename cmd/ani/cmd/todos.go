package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/ani/internal/todo"
	"github.com/tormodhaugland/ani/internal/tui"
)

var todosCmd = &cobra.Command{
	Use:   "todos <file>...",
	Short: "List to-do annotations in files",
	Long: `Lists TODO, FIXME, HACK, XXX and NOTE annotations. Files in a language
with a tree-sitter grammar are parsed so only comments match; other files
are scanned line by line.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := setup(); err != nil {
			return err
		}

		type fileAnnotations struct {
			Path        string            `json:"path"`
			Language    string            `json:"language,omitempty"`
			Annotations []todo.Annotation `json:"annotations"`
		}

		var results []fileAnnotations
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			found, err := todo.Scan(data, path)
			if err != nil {
				return err
			}
			if found == nil {
				found = []todo.Annotation{}
			}
			results = append(results, fileAnnotations{
				Path:        path,
				Language:    todo.DetectLanguage(path),
				Annotations: found,
			})
		}

		if jsonOut {
			return tui.PrintJSON(os.Stdout, results)
		}

		total := 0
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LOCATION\tTAG\tOWNER\tTEXT")
		for _, r := range results {
			for _, a := range r.Annotations {
				fmt.Fprintf(w, "%s:%d\t%s\t%s\t%s\n", r.Path, a.Line, a.Tag, a.Owner, a.Text)
				total++
			}
		}
		if total == 0 {
			fmt.Println("No to-do annotations found")
			return nil
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(todosCmd)
}
