// Package cmd implements the goadaptive command line tool.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Command is the active command together with the shared root.
type Command struct {
	*cobra.Command
	root *cobra.Command
}

type runFunction func(cmd *Command, args []string) error

func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		return f(c, args)
	}
}

func newRootCmd() *Command {
	cmd := &cobra.Command{
		Use:   "goadaptive",
		Short: "goadaptive evaluates expression trees against data.",
		Long: `goadaptive binds expression tree documents, as produced by an external
parser, and evaluates them against JSON or YAML memory documents.

A tree document looks like:

	literals:
	  sep: ", "
	tree:
	  type: join
	  children:
	    - {type: accessor, name: names}
	    - {type: constant, literal: sep}
`,
		SilenceUsage: true,
	}

	c := &Command{Command: cmd, root: cmd}

	addGlobalFlags(cmd.PersistentFlags())
	for _, sub := range []*cobra.Command{
		newEvalCmd(c),
		newFunctionsCmd(c),
		newVersionCmd(c),
	} {
		cmd.AddCommand(sub)
	}
	return c
}

// New creates the root command for args.
func New(args []string) *Command {
	c := newRootCmd()
	c.root.SetArgs(args)
	return c
}

// Run executes the command.
func (c *Command) Run(ctx context.Context) error {
	return c.root.ExecuteContext(ctx)
}

// SetOutput redirects standard output and error of all commands.
func (c *Command) SetOutput(out, errOut io.Writer) {
	c.root.SetOut(out)
	c.root.SetErr(errOut)
}

// SetInput sets the reader used for "-" arguments.
func (c *Command) SetInput(r io.Reader) {
	c.root.SetIn(r)
}

// logger returns the logger selected by the global flags.
func (c *Command) logger() *slog.Logger {
	level := slog.LevelInfo
	if flagDebug.Bool(c) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// Main runs the tool and returns the code for passing to os.Exit.
func Main() int {
	if err := New(os.Args[1:]).Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
