// Command echoc is the compiler driver: a single positional source-path
// argument, no flags, exit code 0 on a clean build and 1 otherwise, per
// spec.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/echo-lang/echoc/internal/config"
	"github.com/echo-lang/echoc/internal/diagnostics"
	"github.com/echo-lang/echoc/internal/driver"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "echoc <source-path>",
		Short:         "Compile an Echo source file to portable C99",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}
	return cmd
}

func run(cmd *cobra.Command, sourcePath string) error {
	opts := config.New(sourcePath)

	result, err := driver.Compile(opts)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintln(cmd.ErrOrStderr(), d.String())
	}

	if !result.Emitted {
		return fmt.Errorf("compilation failed with %d error(s)", errorCount(result.Diagnostics))
	}
	return nil
}

func errorCount(items []diagnostics.Diagnostic) int {
	n := 0
	for _, d := range items {
		if d.Severity == diagnostics.Error {
			n++
		}
	}
	return n
}
