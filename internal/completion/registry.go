package completion

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// Reserved registration keys.
const (
	// FallbackKey holds the spec used when no other spec matches (complete -D).
	FallbackKey = "__fallback"
	// FirstKey holds the spec used on an empty line (complete -E).
	FirstKey = "__first"
)

type globEntry struct {
	pattern string
	chain   *Chain
}

// Registry maps command names, and glob patterns, to completion chains.
// One Registry belongs to one shell.
type Registry struct {
	mu    sync.RWMutex
	names map[string]*Chain
	globs []globEntry
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[string]*Chain)}
}

// RegisterName installs chain under name, replacing any previous chain.
func (r *Registry) RegisterName(name string, chain *Chain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[name] = chain
}

// RegisterGlob installs chain under a glob pattern, replacing a previous
// registration of the same pattern. None of the builtins call it yet.
func (r *Registry) RegisterGlob(pat string, chain *Chain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.globs {
		if r.globs[i].pattern == pat {
			r.globs[i].chain = chain
			return
		}
	}
	r.globs = append(r.globs, globEntry{pattern: pat, chain: chain})
}

func (r *Registry) Lookup(name string) (*Chain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain, ok := r.names[name]
	return chain, ok
}

// LookupGlob returns the chain of the first registered pattern matching
// name.
func (r *Registry) LookupGlob(name string) (*Chain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.globs {
		rx, err := compileGlob(g.pattern)
		if err != nil {
			continue
		}
		if rx.MatchString(name) {
			return g.chain, true
		}
	}
	return nil, false
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Similar returns the registered command names that contain the letters
// of name in order, best match first. Pseudo-keys are never suggested.
func (r *Registry) Similar(name string) []string {
	names := lo.Reject(r.Names(), func(n string, _ int) bool {
		return strings.HasPrefix(n, "__")
	})
	return lo.Map(fuzzy.Find(name, names), func(m fuzzy.Match, _ int) string {
		return m.Str
	})
}

// PrintSpecs writes one `complete` line per registration, names sorted,
// then the glob registrations in registration order.
func (r *Registry) PrintSpecs(w io.Writer) error {
	for _, name := range r.Names() {
		if err := r.PrintSpec(w, name); err != nil {
			return err
		}
	}

	r.mu.RLock()
	globs := append([]globEntry(nil), r.globs...)
	r.mu.RUnlock()
	for _, g := range globs {
		if _, err := fmt.Fprintf(w, "complete %s %s  # glob\n", g.chain.Spec(), quote(g.pattern)); err != nil {
			return err
		}
	}
	return nil
}

// PrintSpec writes the `complete` line for one name; unknown names print
// nothing.
func (r *Registry) PrintSpec(w io.Writer, name string) error {
	chain, ok := r.Lookup(name)
	if !ok {
		return nil
	}
	var err error
	switch name {
	case FallbackKey:
		_, err = fmt.Fprintf(w, "complete %s -D\n", chain.Spec())
	case FirstKey:
		_, err = fmt.Fprintf(w, "complete %s -E\n", chain.Spec())
	default:
		_, err = fmt.Fprintf(w, "complete %s %s\n", chain.Spec(), quote(name))
	}
	return err
}
