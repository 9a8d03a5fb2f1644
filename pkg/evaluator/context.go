package evaluator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandrolain/goadaptive/pkg/compare"
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

// Options configures a single evaluation.
type Options struct {
	// Locale is the default locale of locale-aware functions, such as
	// "en-US". Empty means the functions' own default.
	Locale string
	// NullSubstitution, if set, supplies a value for a path that resolves to
	// nothing. It is not consulted for paths that resolve to empty values.
	NullSubstitution func(path string) interface{}
}

// EvaluationTarget is a named evaluation in progress: a definition together
// with the scope it was invoked with.
type EvaluationTarget struct {
	Name  string
	Scope interface{}
}

// ID identifies the target; reentering an identical target is a cycle.
func (t EvaluationTarget) ID() string {
	return t.Name + compare.Key(t.Scope)
}

// State is the per-call evaluation state. It owns the evaluation-target stack
// and is never shared between evaluations.
type State struct {
	ctx     context.Context
	ev      *Evaluator
	opts    Options
	root    memory.Memory
	targets []EvaluationTarget
	ids     []string
}

func newState(ctx context.Context, ev *Evaluator, root memory.Memory, opts Options) *State {
	return &State{ctx: ctx, ev: ev, opts: opts, root: root}
}

// Context returns the context the evaluation was started with.
func (s *State) Context() context.Context {
	return s.ctx
}

// Options returns the options of the evaluation.
func (s *State) Options() Options {
	return s.opts
}

// Now returns the current time of the evaluator clock.
func (s *State) Now() time.Time {
	return s.ev.now()
}

// Eval evaluates a bound node.
func (s *State) Eval(node *types.Node, mem memory.Memory) (interface{}, error) {
	if node == nil {
		return nil, types.NewError(types.ErrMalformedTree, "nil node")
	}
	def, ok := s.ev.lookup(node.Type)
	if !ok {
		return nil, types.NewError(types.ErrUnknownFunction, "%s does not have an evaluator, it's not a built-in function or a custom function.", node.Type)
	}
	return def.Evaluate(s, node, mem)
}

// getValue reads path from mem, falling back to the null substitution when
// the path resolves to nothing.
func (s *State) getValue(mem memory.Memory, path string) (interface{}, error) {
	v, err := mem.GetValue(path)
	if err != nil {
		return nil, err
	}
	if v == nil && s.opts.NullSubstitution != nil {
		return s.opts.NullSubstitution(path), nil
	}
	return v, nil
}

// pushTarget records t as in progress. It fails if an identical target is
// already on the stack or the stack exceeds the configured depth.
func (s *State) pushTarget(t EvaluationTarget) error {
	id := t.ID()
	for i, existing := range s.ids {
		if existing == id {
			chain := make([]string, 0, len(s.targets)-i+1)
			for _, target := range s.targets[i:] {
				chain = append(chain, target.Name)
			}
			chain = append(chain, t.Name)
			return types.NewError(types.ErrLoopDetected, "Loop detected: %s", strings.Join(chain, " => "))
		}
	}
	if max := s.ev.opts.MaxDepth; max > 0 && len(s.targets) >= max {
		return types.NewError(types.ErrStackOverflow, "maximum evaluation depth %d exceeded in %s", max, t.Name)
	}
	s.targets = append(s.targets, t)
	s.ids = append(s.ids, id)
	return nil
}

func (s *State) popTarget() {
	s.targets = s.targets[:len(s.targets)-1]
	s.ids = s.ids[:len(s.ids)-1]
}

// Targets returns the names of the evaluations in progress, outermost first.
func (s *State) Targets() []string {
	names := make([]string, len(s.targets))
	for i, t := range s.targets {
		names[i] = t.Name
	}
	return names
}

func (s *State) String() string {
	return fmt.Sprintf("State{targets=%d}", len(s.targets))
}
