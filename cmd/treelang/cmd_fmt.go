package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newFmtCmd() *cobra.Command {
	var fmtOverwrite bool
	var sortTemplate bool

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Reorder a document into the order its grammar declares",
		Long: `Reorder the lines of a document, at every level, into the order their
parent's definition lists them in scope.

With --sort-template, lines are instead ordered by the sortTemplate of
their parent's definition.

If no file is provided, reads the document from stdin.
Use -w to overwrite the file in place (requires a file argument).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && fmtOverwrite {
				return fmt.Errorf("-w requires a file argument")
			}
			doc, filename, err := parseSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			var output string
			if sortTemplate {
				output = doc.SortFromSortTemplate()
			} else {
				output = doc.Format()
			}

			if fmtOverwrite {
				return os.WriteFile(filename, []byte(output+"\n"), 0644)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}

	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "overwrite the file in place")
	cmd.Flags().BoolVar(&sortTemplate, "sort-template", false, "order lines by their definition's sortTemplate")

	return cmd
}
