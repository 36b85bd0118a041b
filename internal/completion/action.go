package completion

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"mvdan.cc/sh/v3/expand"
)

// ActionKind identifies the Action variants.
type ActionKind int

const (
	SortedWordsKind ActionKind = iota
	FileSystemKind
	ExternalCommandKind
	ShellFuncKind
	VariablesKind
	WordsKind
	NotImplementedKind
)

func (k ActionKind) String() string {
	switch k {
	case SortedWordsKind:
		return "sorted-words"
	case FileSystemKind:
		return "filesystem"
	case ExternalCommandKind:
		return "external-command"
	case ShellFuncKind:
		return "shell-func"
	case VariablesKind:
		return "variables"
	case WordsKind:
		return "words"
	case NotImplementedKind:
		return "not-implemented"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action generates candidates for a Request. Implementations only read
// shell state; the set of implementations is closed to this package.
type Action interface {
	Kind() ActionKind
	Matches(ctx context.Context, req *Request) ([]string, error)
	isAction()
}

// SortedWordsAction yields the names of a table that start with the word
// being completed, in sorted order. The table is read at match time.
type SortedWordsAction struct {
	source func() []string
}

func NewSortedWordsAction(words []string) *SortedWordsAction {
	return &SortedWordsAction{source: func() []string { return words }}
}

// NewTableAction reads its names from source on every match, for tables
// that change while the shell runs (functions, aliases).
func NewTableAction(source func() []string) *SortedWordsAction {
	return &SortedWordsAction{source: source}
}

func (a *SortedWordsAction) Kind() ActionKind { return SortedWordsKind }

func (a *SortedWordsAction) Matches(_ context.Context, req *Request) ([]string, error) {
	names := append([]string(nil), a.source()...)
	sort.Strings(names)
	return filterPrefix(names, req.ToComplete), nil
}

func (*SortedWordsAction) isAction() {}

// WordsAction yields a literal word list (-W) without filtering it.
type WordsAction struct {
	words []string
}

func NewWordsAction(words []string) *WordsAction {
	return &WordsAction{words: words}
}

func (a *WordsAction) Kind() ActionKind { return WordsKind }

func (a *WordsAction) Matches(context.Context, *Request) ([]string, error) {
	return append([]string(nil), a.words...), nil
}

func (*WordsAction) isAction() {}

// VariablesAction yields the names of the set shell variables.
type VariablesAction struct{}

func (VariablesAction) Kind() ActionKind { return VariablesKind }

func (VariablesAction) Matches(_ context.Context, req *Request) ([]string, error) {
	var names []string
	req.environ().Each(func(name string, vr expand.Variable) bool {
		if vr.IsSet() && strings.HasPrefix(name, req.ToComplete) {
			names = append(names, name)
		}
		return true
	})
	sort.Strings(names)
	return names, nil
}

func (VariablesAction) isAction() {}

// ShellFuncAction runs a shell function (complete -F) and yields the
// COMPREPLY it leaves behind.
type ShellFuncAction struct {
	executor Executor
	name     string
}

func NewShellFuncAction(executor Executor, name string) *ShellFuncAction {
	return &ShellFuncAction{executor: executor, name: name}
}

func (a *ShellFuncAction) Kind() ActionKind { return ShellFuncKind }

func (a *ShellFuncAction) Matches(ctx context.Context, req *Request) ([]string, error) {
	words, err := a.executor.CallFunc(ctx, a.name, req)
	if err != nil {
		return nil, fmt.Errorf("completion function %s: %w", a.name, err)
	}
	return words, nil
}

func (*ShellFuncAction) isAction() {}

// NotImplementedAction stands in for an action the shell cannot generate
// yet; matching it is an error.
type NotImplementedAction struct {
	name string
}

func NewNotImplementedAction(name string) *NotImplementedAction {
	return &NotImplementedAction{name: name}
}

func (a *NotImplementedAction) Kind() ActionKind { return NotImplementedKind }

func (a *NotImplementedAction) Matches(context.Context, *Request) ([]string, error) {
	return nil, fmt.Errorf("-A %s: %w", a.name, ErrNotImplemented)
}

func (*NotImplementedAction) isAction() {}

func filterPrefix(words []string, prefix string) []string {
	if prefix == "" {
		return words
	}
	return lo.Filter(words, func(w string, _ int) bool {
		return strings.HasPrefix(w, prefix)
	})
}
