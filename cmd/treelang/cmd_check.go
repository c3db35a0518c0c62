package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dhamidi/treelang/program"
)

func newCheckCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Report the errors of documents, or self-test the grammar",
		Long: `Report the errors of each document as file:line:cell: message.

Without files, the grammar itself is checked: its warnings are printed and
every example block declared in it is parsed.

Use --fix to apply every suggested fix and rewrite the files in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return checkGrammar(out)
			}

			total := 0
			for _, path := range args {
				text, _, err := readSource(cmd.InOrStdin(), []string{path})
				if err != nil {
					return err
				}
				lang, err := loadLanguage(path)
				if err != nil {
					return err
				}
				doc := lang.Parse(text)
				if fix {
					if n := applySuggestions(doc); n > 0 {
						log.Infof("%s: applied %d fixes", path, n)
						if err := os.WriteFile(path, []byte(doc.String()+"\n"), 0644); err != nil {
							return err
						}
					}
				}
				errs := doc.AllErrors()
				for _, e := range errs {
					fmt.Fprintf(out, "%s:%d:%d: %s\n", path, e.Line(), e.CellIndex(), e.Message())
				}
				total += len(errs)
			}
			if total > 0 {
				return fmt.Errorf("%d errors", total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "apply suggested fixes and rewrite the files")

	return cmd
}

func checkGrammar(out io.Writer) error {
	g, err := loadGrammar("")
	if err != nil {
		return err
	}
	for _, w := range g.Warnings() {
		fmt.Fprintf(out, "warning: %s\n", w)
	}

	failed := 0
	for _, result := range program.NewLanguage(g).CheckExamples() {
		if result.OK() {
			continue
		}
		failed++
		fmt.Fprintf(out, "%s example %q (grammar line %d):\n", result.ParserID, result.Label, result.Line)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s\n", e.Message())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d examples have errors", failed)
	}
	return nil
}

// applySuggestions applies the suggested fix of every error, last line
// first, and reports how many errors had one.
func applySuggestions(doc *program.Document) int {
	applied := 0
	errs := doc.AllErrors()
	for _, e := range slices.Backward(errs) {
		if e.Suggestion() == "" {
			continue
		}
		e.ApplySuggestion()
		applied++
	}
	return applied
}
