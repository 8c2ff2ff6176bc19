// Command moore is the front-end driver: it preprocesses, parses, lowers,
// and elaborates SystemVerilog designs. It is a cobra command tree in
// place of the teacher's hand-rolled flag/switch dispatch
// (cmd/ailang/main.go), since spec.md's core produces structured queries
// (preprocess, elaborate) that map naturally onto subcommands rather than
// one monolithic run loop.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version info, set by ldflags during release builds.
var (
	Version = "dev"
	Commit  = "unknown"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	root := &cobra.Command{
		Use:   "moore",
		Short: "A SystemVerilog preprocessor, HIR builder, and instance elaborator",
	}
	root.AddCommand(newPreprocessCmd())
	root.AddCommand(newElaborateCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("moore %s (%s)\n", bold(Version), Commit)
			return nil
		},
	}
}
