package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/sandrolain/goadaptive/pkg/evaluator"
	"github.com/sandrolain/goadaptive/pkg/ext"
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/treeio"
)

func newEvalCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [flags] tree",
		Short: "evaluate a tree document",
		Long: `Eval binds the tree document and evaluates it once against the memory
document. Use - to read the tree from stdin.
`,
		Args: cobra.ExactArgs(1),
		RunE: mkRunE(c, runEval),
	}
	addEvalFlags(cmd.Flags())
	return cmd
}

func runEval(cmd *Command, args []string) error {
	doc, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	root, err := treeio.Decode(doc)
	if err != nil {
		return err
	}

	ev := evaluator.New(evalOptions(cmd)...)
	expr, err := ev.Bind(root)
	if err != nil {
		return err
	}
	if flagDump.Bool(cmd) {
		pretty.Fprintf(cmd.ErrOrStderr(), "%# v\n", expr.Root())
	}

	var state interface{}
	if path := flagMemory.String(cmd); path != "" {
		data, err := readInput(cmd, path)
		if err != nil {
			return err
		}
		if state, err = treeio.DecodeValue(data); err != nil {
			return fmt.Errorf("memory %s: %w", path, err)
		}
	}
	mem := memory.Wrap(state)
	if cmd.Flags().Changed(string(flagSeed)) {
		mem = memory.WithRandom(mem, rand.New(rand.NewSource(flagSeed.Int64(cmd))))
	}

	result, err := ev.Evaluate(cmd.Context(), expr, mem, evaluator.Options{Locale: flagLocale.String(cmd)})
	if err != nil {
		return err
	}
	return writeValue(cmd.OutOrStdout(), flagOut.String(cmd), result)
}

func evalOptions(cmd *Command) []evaluator.EvalOption {
	opts := []evaluator.EvalOption{
		evaluator.WithLogger(cmd.logger()),
		evaluator.WithDebug(flagDebug.Bool(cmd)),
	}
	if flagExt.Bool(cmd) {
		opts = append(opts, ext.WithAll())
	}
	if cmd.Flags().Lookup(string(flagMaxDepth)) != nil {
		if depth := flagMaxDepth.Int(cmd); depth > 0 {
			opts = append(opts, evaluator.WithMaxDepth(depth))
		}
	}
	if cmd.Flags().Lookup(string(flagNow)) != nil {
		if now := flagNow.String(cmd); now != "" {
			if t, err := time.Parse(time.RFC3339Nano, now); err == nil {
				opts = append(opts, evaluator.WithClock(func() time.Time { return t }))
			} else {
				cmd.logger().Warn("ignoring --now", "value", now, "error", err)
			}
		}
	}
	return opts
}

func readInput(cmd *Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func writeValue(w io.Writer, format string, v interface{}) error {
	switch format {
	case "yaml":
		out, err := treeio.EncodeValue(v)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "json":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}
