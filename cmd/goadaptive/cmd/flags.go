package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
)

const (
	flagDebug    flagName = "debug"
	flagDump     flagName = "dump"
	flagExt      flagName = "ext"
	flagLocale   flagName = "locale"
	flagMaxDepth flagName = "max-depth"
	flagMemory   flagName = "memory"
	flagNow      flagName = "now"
	flagOut      flagName = "out"
	flagSeed     flagName = "seed"
)

func addGlobalFlags(f *pflag.FlagSet) {
	f.Bool(string(flagDebug), false, "log binding and evaluation details to stderr")
	f.Bool(string(flagExt), false, "register the extension functions")
}

func addEvalFlags(f *pflag.FlagSet) {
	f.StringP(string(flagMemory), "m", "", "JSON or YAML memory document, or - for stdin")
	f.StringP(string(flagOut), "o", "json", "output format (json|yaml)")
	f.String(string(flagLocale), "", "locale for case mapping and number formatting")
	f.Int64(string(flagSeed), 0, "seed for rand; unset uses a random seed")
	f.String(string(flagNow), "", "RFC 3339 time returned by utcNow")
	f.Int(string(flagMaxDepth), 0, "maximum nesting of definition calls")
	f.Bool(string(flagDump), false, "print the bound tree to stderr")
}

type flagName string

func (f flagName) ensureAdded(cmd *Command) {
	if cmd.Flags().Lookup(string(f)) == nil {
		panic(fmt.Sprintf("command %q uses flag %q without adding it", cmd.Name(), f))
	}
}

func (f flagName) Bool(cmd *Command) bool {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetBool(string(f))
	return v
}

func (f flagName) String(cmd *Command) string {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetString(string(f))
	return v
}

func (f flagName) Int(cmd *Command) int {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetInt(string(f))
	return v
}

func (f flagName) Int64(cmd *Command) int64 {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetInt64(string(f))
	return v
}
