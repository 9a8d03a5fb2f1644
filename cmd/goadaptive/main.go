// Command goadaptive evaluates expression tree documents from the command
// line.
package main

import (
	"os"

	"github.com/sandrolain/goadaptive/cmd/goadaptive/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
