package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandrolain/goadaptive"
	"github.com/sandrolain/goadaptive/pkg/evaluator"
)

func newFunctionsCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "list the callable functions",
		Args:  cobra.NoArgs,
		RunE: mkRunE(c, func(cmd *Command, _ []string) error {
			ev := evaluator.New(evalOptions(cmd)...)
			for _, name := range ev.Names() {
				def, _ := ev.Function(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, def.ReturnType)
			}
			return nil
		}),
	}
}

func newVersionCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the goadaptive version",
		Args:  cobra.NoArgs,
		RunE: mkRunE(c, func(cmd *Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "goadaptive", goadaptive.Version())
			return nil
		}),
	}
}
