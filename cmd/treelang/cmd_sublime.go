package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSublimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sublime",
		Short: "Print a Sublime Text syntax definition for the language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar("")
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), g.ToSublimeSyntax())
			return err
		},
	}
}
