package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
)

type result struct {
	out, errOut string
	err         error
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	c := New(args)
	var out, errOut bytes.Buffer
	c.SetOutput(&out, &errOut)
	c.SetInput(strings.NewReader(stdin))
	err := c.Run(context.Background())
	return result{out.String(), errOut.String(), err}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte(content), 0o644)))
	return path
}

const upperTree = `{type: toUpper, children: [{type: constant, value: abc}]}`

const joinTree = `
literals:
  sep: ", "
tree:
  type: join
  children:
    - {type: accessor, name: names}
    - {type: constant, literal: sep}
`

func TestVersion(t *testing.T) {
	r := run(t, "", "version")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.Equals(r.out, "goadaptive v0.1.0-dev\n"))
}

func TestEvalFromStdin(t *testing.T) {
	mem := writeFile(t, "memory.yaml", "names: [ada, bo]\n")
	r := run(t, joinTree, "eval", "-m", mem, "-")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.Equals(r.out, "\"ada, bo\"\n"))
}

func TestEvalTreeFile(t *testing.T) {
	tree := writeFile(t, "tree.yaml", joinTree)
	r := run(t, `{"names": ["x", "y", "z"]}`, "eval", "--memory", "-", tree)
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.Equals(r.out, "\"x, y, z\"\n"))
}

func TestEvalOutputFormats(t *testing.T) {
	tree := `{type: json, children: [{type: constant, value: '{"b":1,"a":"x"}'}]}`

	r := run(t, tree, "eval", "-")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.Equals(r.out, "{\n  \"b\": 1,\n  \"a\": \"x\"\n}\n"))

	r = run(t, tree, "eval", "-o", "yaml", "-")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.Equals(r.out, "b: 1\na: x\n"))

	r = run(t, tree, "eval", "-o", "xml", "-")
	qt.Assert(t, qt.ErrorMatches(r.err, `unknown output format "xml"`))
}

func TestEvalNow(t *testing.T) {
	r := run(t, `{type: utcNow}`, "eval", "--now", "2024-03-05T06:07:08.009Z", "-")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.Equals(r.out, "\"2024-03-05T06:07:08.009Z\"\n"))

	r = run(t, `{type: year, children: [{type: utcNow}]}`, "eval", "--now", "yesterday", "-")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.StringContains(r.errOut, "ignoring --now"))
}

func TestEvalSeed(t *testing.T) {
	tree := `{type: createArray, children: [
		{type: rand, children: [{type: constant, value: 0}, {type: constant, value: 1000000}]},
		{type: rand, children: [{type: constant, value: 0}, {type: constant, value: 1000000}]}]}`
	first := run(t, tree, "eval", "--seed", "7", "-")
	qt.Assert(t, qt.IsNil(first.err))
	second := run(t, tree, "eval", "--seed", "7", "-")
	qt.Assert(t, qt.IsNil(second.err))
	qt.Assert(t, qt.Equals(first.out, second.out))

	zero := run(t, tree, "eval", "--seed", "0", "-")
	qt.Assert(t, qt.IsNil(zero.err))
	again := run(t, tree, "eval", "--seed", "0", "-")
	qt.Assert(t, qt.IsNil(again.err))
	qt.Assert(t, qt.Equals(zero.out, again.out))
}

func TestEvalLocale(t *testing.T) {
	tree := `{type: toUpper, children: [{type: constant, value: i}]}`
	r := run(t, tree, "eval", "--locale", "tr", "-")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.Equals(r.out, "\"İ\"\n"))
}

func TestEvalExtensions(t *testing.T) {
	tree := `{type: hash, children: [{type: constant, value: abc}, {type: constant, value: sha256}]}`

	r := run(t, tree, "eval", "-")
	qt.Assert(t, qt.ErrorMatches(r.err, `UnknownFunction: .*`))

	r = run(t, tree, "--ext", "eval", "-")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.Equals(r.out, "\"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad\"\n"))
}

func TestEvalErrors(t *testing.T) {
	r := run(t, `[1]`, "eval", "-")
	qt.Assert(t, qt.ErrorMatches(r.err, `MalformedTree: tree document must be a mapping`))

	r = run(t, `{type: substring, children: [{type: constant, value: abc}, {type: constant, value: 9}]}`, "eval", "-")
	qt.Assert(t, qt.ErrorMatches(r.err, `InvalidRange: .*`))

	r = run(t, joinTree, "eval", "-m", filepath.Join(t.TempDir(), "missing.json"), "-")
	qt.Assert(t, qt.IsNotNil(r.err))

	r = run(t, "", "eval")
	qt.Assert(t, qt.IsNotNil(r.err))
}

func TestEvalMaxDepth(t *testing.T) {
	r := run(t, `{type: utcNow}`, "eval", "--max-depth", "3", "-")
	qt.Assert(t, qt.IsNil(r.err))
}

func TestEvalDump(t *testing.T) {
	r := run(t, upperTree, "eval", "--dump", "-")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.StringContains(r.errOut, `Type:`))
	qt.Assert(t, qt.StringContains(r.errOut, `"toUpper"`))
	qt.Assert(t, qt.Equals(r.out, "\"ABC\"\n"))
}

func TestEvalDebug(t *testing.T) {
	r := run(t, upperTree, "--debug", "eval", "-")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.StringContains(r.errOut, "bound expression"))
}

func TestFunctions(t *testing.T) {
	r := run(t, "", "functions")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.StringContains(r.out, "join\tstring\n"))
	qt.Assert(t, qt.StringContains(r.out, "foreach\tarray\n"))
	qt.Assert(t, qt.Not(qt.StringContains(r.out, "hmac\t")))

	r = run(t, "", "--ext", "functions")
	qt.Assert(t, qt.IsNil(r.err))
	qt.Assert(t, qt.StringContains(r.out, "hmac\tstring\n"))
}
