package completion

import (
	"context"
	"sort"
)

// fakeExecutor is an in-memory Executor. funcs maps a function name to the
// COMPREPLY it produces.
type fakeExecutor struct {
	funcs   map[string][]string
	aliases []string
	calls   []*Request
}

func (f *fakeExecutor) HasFunc(name string) bool {
	_, ok := f.funcs[name]
	return ok
}

func (f *fakeExecutor) FuncNames() []string {
	names := make([]string, 0, len(f.funcs))
	for name := range f.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *fakeExecutor) AliasNames() []string {
	return f.aliases
}

func (f *fakeExecutor) CallFunc(_ context.Context, name string, req *Request) ([]string, error) {
	f.calls = append(f.calls, req)
	return f.funcs[name], nil
}
