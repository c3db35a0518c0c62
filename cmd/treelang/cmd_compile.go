package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile [file]",
		Short: "Compile a document through its grammar's compiler directives",
		Long: `Compile a document to the target text described by the compiler
blocks of its grammar. Lines without a compiler are emitted unchanged.

If no file is provided, reads the document from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, filename, err := parseSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if errs := doc.AllErrors(); len(errs) > 0 {
				log.Warningf("%s has %d errors, output may be incomplete", displayName(filename), len(errs))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.Compile())
			return err
		},
	}
}

func displayName(filename string) string {
	if filename == "" {
		return "<stdin>"
	}
	return filename
}
