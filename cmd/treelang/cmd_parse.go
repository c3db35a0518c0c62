package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/treelang/format"
)

func newParseCmd() *cobra.Command {
	var outputFormat string

	formats := append([]string{"json", "errors", "line"}, format.TreeKinds()...)

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a document and dump the result",
		Long: `Parse a document and dump it in one of these formats:

  json         the typed projection of the document
  errors       the errors as JSON objects
  line         one line per document line: parser, cell types and errors
  cells        the document with every word replaced by its cell type
  prelude      the same with the prelude type each cell derives from
  highlight    the same with each cell's highlight scope
  parsers      every line prefixed by its parser id
  definitions  grammar line numbers of each line's definition and cells

If no file is provided, reads the document from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder, ok := format.For(outputFormat, cmd.OutOrStdout())
			if !ok {
				return fmt.Errorf("unknown format: %s (expected one of %s)", outputFormat, strings.Join(formats, ", "))
			}
			doc, _, err := parseSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if err := encoder.Encode(doc); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format ("+strings.Join(formats, ", ")+")")

	return cmd
}

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table [file]",
		Short: "List the completions at every word of a document",
		Long: `Print one row per word boundary of the document: line, character, word
index, the word and the completions offered there.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := parseSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return format.NewCompletionLineEncoder(cmd.OutOrStdout()).Encode(doc)
		},
	}
}

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage [file]",
		Short: "Count how often each parser is used in a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := parseSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, doc.ParserUsage().String())
			if invalid := doc.InvalidParsers(); len(invalid) > 0 {
				fmt.Fprintf(out, "invalid %s\n", strings.Join(invalid, " "))
			}
			return nil
		},
	}
}
