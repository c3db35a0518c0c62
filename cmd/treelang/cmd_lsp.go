package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/treelang/lsp"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Serve the languages of the workspace over stdio. Languages come from
the --grammar files or from the ` + configName + ` of the editor's root
directory, and are reloaded when their files change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewLSPServer(version, opts.grammars...)
			return server.RunStdio()
		},
	}
}
