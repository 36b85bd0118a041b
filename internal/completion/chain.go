package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/robottwo/bishcomp/internal/bash"
)

// Chain is a compiled completion specification: its actions run in order
// and every surviving candidate is wrapped in prefix and suffix. A Chain is
// immutable and may be registered under several names.
type Chain struct {
	actions []Action
	prefix  string
	suffix  string
	filter  *globFilter
	options []string
	// spec is the flag text that recreates the chain, for complete -p.
	spec string
}

type ChainOption func(*Chain)

func WithPrefix(prefix string) ChainOption {
	return func(c *Chain) { c.prefix = prefix }
}

func WithSuffix(suffix string) ChainOption {
	return func(c *Chain) { c.suffix = suffix }
}

// WithFilter sets the -X pattern; a leading ! keeps matches instead of
// removing them.
func WithFilter(pat string) ChainOption {
	return func(c *Chain) { c.filter = newGlobFilter(pat) }
}

func WithOptions(options ...string) ChainOption {
	return func(c *Chain) { c.options = options }
}

func WithSpec(spec string) ChainOption {
	return func(c *Chain) { c.spec = spec }
}

// NewChain builds a chain from at least one action.
func NewChain(actions []Action, opts ...ChainOption) (*Chain, error) {
	if len(actions) == 0 {
		return nil, newUsageError("no actions defined in completion")
	}
	c := &Chain{actions: actions}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Chain) Actions() []Action {
	return append([]Action(nil), c.actions...)
}

func (c *Chain) Prefix() string { return c.prefix }

func (c *Chain) Suffix() string { return c.suffix }

func (c *Chain) Spec() string { return c.spec }

func (c *Chain) Options() []string {
	return append([]string(nil), c.options...)
}

func (c *Chain) HasOption(name string) bool {
	for _, o := range c.options {
		if o == name {
			return true
		}
	}
	return false
}

// Matches runs every action against req and concatenates the results.
// With filter set, candidates not starting with the word being completed
// are dropped (the line editor); compgen passes false. Duplicates across
// actions are kept. The first action error aborts the match.
func (c *Chain) Matches(ctx context.Context, req *Request, filter bool) ([]string, error) {
	var candidates []string
	for _, action := range c.actions {
		matches, err := action.Matches(ctx, req)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if filter && !strings.HasPrefix(m, req.ToComplete) {
				continue
			}
			candidates = append(candidates, m)
		}
	}

	if c.filter != nil {
		var err error
		if candidates, err = c.filter.apply(candidates, req.ToComplete); err != nil {
			return nil, err
		}
	}

	if c.prefix == "" && c.suffix == "" {
		return candidates, nil
	}
	for i, m := range candidates {
		candidates[i] = c.prefix + m + c.suffix
	}
	return candidates, nil
}

// BuildChain compiles the parsed flags of one complete/compgen call. argv
// is only used in error messages.
func BuildChain(argv []string, args *ParsedArgs, executor Executor) (*Chain, error) {
	var actions []Action

	// bash only checks the name at completion time; checking now gives the
	// user the error where they made it.
	if args.F != "" {
		if !executor.HasFunc(args.F) {
			return nil, newUsageError("function %q not found", args.F)
		}
		actions = append(actions, NewShellFuncAction(executor, args.F))
	}

	for _, name := range args.Actions {
		var a Action
		switch name {
		case "alias":
			a = NewTableAction(executor.AliasNames)
		case "binding":
			a = NewSortedWordsAction([]string{"vi-delete"})
		case "command":
			// compgen -A command is six sources: builtins, aliases,
			// functions, keywords, executables relative to the current
			// directory and executables on $PATH.
			actions = append(actions,
				NewSortedWordsAction(bash.BuiltinNames),
				NewTableAction(executor.AliasNames),
				NewTableAction(executor.FuncNames),
				NewSortedWordsAction(bash.KeywordNames),
				&FileSystemAction{ExecOnly: true},
			)
			a = ExternalCommandAction{}
		case "directory":
			a = &FileSystemAction{DirsOnly: true}
		case "file":
			a = &FileSystemAction{}
		case "function":
			a = NewTableAction(executor.FuncNames)
		case "helptopic":
			a = NewSortedWordsAction(bash.HelpTopics())
		case "job", "stopped":
			a = NewSortedWordsAction([]string{"jobs-not-implemented"})
		case "setopt":
			a = NewSortedWordsAction(bash.SetOptionNames)
		case "shopt":
			a = NewSortedWordsAction(bash.ShoptOptionNames)
		case "signal":
			a = NewSortedWordsAction([]string{"TODO:signals"})
		case "user":
			a = NewNotImplementedAction("user")
		case "variable":
			a = VariablesAction{}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
		}
		actions = append(actions, a)
	}

	// -W comes after -A, e.g. complete -A directory -W 'x y'
	if args.W != "" {
		actions = append(actions, NewWordsAction(strings.Fields(args.W)))
	}

	if len(actions) == 0 {
		return nil, newUsageError("No actions defined in completion: %s", strings.Join(argv, " "))
	}

	return NewChain(actions,
		WithPrefix(args.P),
		WithSuffix(args.S),
		WithFilter(args.X),
		WithOptions(args.EnabledOptions()...),
		WithSpec(specText(args)),
	)
}

// specText renders args as the flags that recreate the chain.
func specText(args *ParsedArgs) string {
	var parts []string
	for _, o := range args.EnabledOptions() {
		parts = append(parts, "-o", o)
	}
	for _, a := range args.Actions {
		parts = append(parts, "-A", a)
	}
	for _, f := range []struct{ flag, value string }{
		{"-F", args.F}, {"-W", args.W}, {"-P", args.P}, {"-S", args.S}, {"-X", args.X},
	} {
		if f.value != "" {
			parts = append(parts, f.flag, quote(f.value))
		}
	}
	return strings.Join(parts, " ")
}
