package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("treelang")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "treelang",
		Short:         "Define languages as trees of parsers and work with their documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(opts.verbose, nil)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "log more (repeat for debug output)")
	rootCmd.PersistentFlags().StringSliceVarP(&opts.grammars, "grammar", "g", nil, "grammar files defining the language (default: from "+configName+")")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newCompileCmd())
	rootCmd.AddCommand(newFmtCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newTableCmd())
	rootCmd.AddCommand(newUsageCmd())
	rootCmd.AddCommand(newSynthCmd())
	rootCmd.AddCommand(newInferCmd())
	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newEbnfCmd())
	rootCmd.AddCommand(newSublimeCmd())
	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newLSPCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "treelang:", err)
		os.Exit(1)
	}
}
