package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/treelang/grammar"
)

func newSynthCmd() *cobra.Command {
	var passes int
	var seed uint64

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a random document of the language",
		Long: `Generate a document that uses every reachable definition of the grammar.
Each pass walks the definitions again. Equal seeds give equal documents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar("")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), g.Synthesize(passes, seed))
			return err
		},
	}

	cmd.Flags().IntVarP(&passes, "passes", "n", 1, "number of passes over the definitions")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed")

	return cmd
}

func newInferCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "infer [file]",
		Short: "Propose a grammar for a sample document",
		Long: `Write a grammar that accepts the sample document. Every distinct first
word becomes a parser and each word position gets the narrowest prelude
type accepting every value seen there.

The language name defaults to the file name without its extension.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, filename, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if name == "" && filename != "" {
				name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
			}
			if name == "" {
				return fmt.Errorf("--name is required when reading stdin")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), grammar.Infer(name, text))
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "language name")

	return cmd
}
