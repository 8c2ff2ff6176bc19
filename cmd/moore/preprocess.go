package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/preproc"
	"github.com/stefanlippuner/moore/internal/source"
)

func newPreprocessCmd() *cobra.Command {
	var includePaths []string
	cmd := &cobra.Command{
		Use:   "preprocess <file>",
		Short: "Resolve `include/`define/conditional directives and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := source.NewManager()
			root, ok := mgr.Open(args[0])
			if !ok {
				return fmt.Errorf("cannot open %s", args[0])
			}
			sink := diag.NewSink()
			pp := preproc.New(mgr, root, includePaths, sink)

			for {
				tok, ok, err := pp.Next()
				if err != nil {
					break
				}
				if !ok {
					break
				}
				fmt.Print(tok.Span.Extract())
			}

			if printReports(sink) {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&includePaths, "include", "I", nil, "additional `include search path")
	return cmd
}
