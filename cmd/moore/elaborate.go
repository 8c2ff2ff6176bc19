package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/elaborate"
	"github.com/stefanlippuner/moore/internal/hir"
	"github.com/stefanlippuner/moore/internal/lower"
	"github.com/stefanlippuner/moore/internal/parser"
	"github.com/stefanlippuner/moore/internal/preproc"
	"github.com/stefanlippuner/moore/internal/query"
	"github.com/stefanlippuner/moore/internal/source"
)

func newElaborateCmd() *cobra.Command {
	var includePaths []string
	var top string
	cmd := &cobra.Command{
		Use:   "elaborate <file>",
		Short: "Parse, lower, and elaborate a design, printing instantiation details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := source.NewManager()
			root, ok := mgr.Open(args[0])
			if !ok {
				return fmt.Errorf("cannot open %s", args[0])
			}

			sink := diag.NewSink()
			store := hir.NewStore()
			names := hir.NewInterner()

			pp := preproc.New(mgr, root, includePaths, sink)
			file, err := parser.New(pp).ParseFile()
			if err != nil {
				printReports(sink)
				return err
			}
			lower.New(store, names, sink).Lower(file)

			if top == "" {
				return fmt.Errorf("--top is required")
			}
			topID, ok := store.FindModule(names.Intern(top))
			if !ok {
				return fmt.Errorf("unknown top module %q", top)
			}

			cx := query.NewContext(mgr, store, names, sink)
			elab := elaborate.New(cx)
			v := elaborate.NewVerbosityVisitor(elab)
			v.VisitNode(hir.DefaultParamEnv, topID)

			if printReports(sink) {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&includePaths, "include", "I", nil, "additional `include search path")
	cmd.Flags().StringVar(&top, "top", "", "name of the top-level module to elaborate")
	return cmd
}
