package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dhamidi/treelang/predict"
)

func newPredictCmd() *cobra.Command {
	var line int
	var parents bool

	cmd := &cobra.Command{
		Use:   "predict <file> [training-file...]",
		Short: "Predict which lines follow a node from a corpus of documents",
		Long: `Train a parent/child frequency model on all given documents and print,
for the line of the first document selected with --line, the likely child
parsers with their counts and probabilities. Line 0 is the top level.

Use --parents to predict the parents of that line's parser instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := loadLanguage(args[0])
			if err != nil {
				return err
			}
			corpus := make([]string, 0, len(args))
			for _, path := range args {
				text, _, err := readSource(nil, []string{path})
				if err != nil {
					return err
				}
				corpus = append(corpus, text)
			}
			model := predict.Train(lang, corpus)

			doc := lang.Parse(corpus[0])
			node := doc.Root()
			if line > 0 {
				node = doc.NodeAtLine(line - 1)
				if node == nil {
					return fmt.Errorf("%s has no line %d", args[0], line)
				}
			}

			var predictions []predict.Prediction
			if parents {
				predictions = model.PredictParents(node)
			} else {
				predictions = model.PredictChildren(node)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range predictions {
				id := p.ID
				if id == "" {
					id = "(top level)"
				}
				fmt.Fprintf(w, "%s\t%d\t%.3f\n", id, p.Count, p.Probability)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&line, "line", "l", 0, "1-based line of the first document, 0 for the top level")
	cmd.Flags().BoolVar(&parents, "parents", false, "predict parents instead of children")

	return cmd
}
