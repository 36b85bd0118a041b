package completion

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/shlex"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
)

// Engine answers completion requests from the line editor using the
// specs registered with complete.
type Engine struct {
	Registry *Registry
	Logger   *zap.Logger
}

func NewEngine(registry *Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Registry: registry, Logger: logger}
}

// Complete returns the candidates for the word ending at pos in line.
// It returns nil when no spec applies, including when the command name
// itself is being completed on a non-empty line.
func (e *Engine) Complete(ctx context.Context, line string, pos int, dir string, env expand.Environ) ([]string, error) {
	if pos < 0 || pos > len(line) {
		pos = len(line)
	}
	truncated := line[:pos]

	words := splitLine(truncated)
	if len(words) == 0 || strings.TrimRightFunc(truncated, unicode.IsSpace) != truncated {
		words = append(words, "")
	}

	var chain *Chain
	var ok bool
	if strings.TrimSpace(truncated) == "" {
		chain, ok = e.Registry.Lookup(FirstKey)
	} else if len(words) > 1 {
		chain, ok = e.lookup(words[0])
	}
	if !ok {
		return nil, nil
	}

	req := &Request{
		Words:      words,
		Index:      len(words) - 1,
		ToComplete: words[len(words)-1],
		Line:       line,
		Point:      pos,
		Dir:        dir,
		Env:        env,
	}

	matches, err := chain.Matches(ctx, req, true)
	if err != nil {
		e.Logger.Debug("completion failed", zap.String("command", req.Command()), zap.Error(err))
		return nil, err
	}

	if chain.HasOption("plusdirs") {
		dirs, _ := (&FileSystemAction{DirsOnly: true, AddSlash: true}).Matches(ctx, req)
		matches = append(matches, dirs...)
	}
	if len(matches) == 0 {
		switch {
		case chain.HasOption("dirnames"):
			matches, _ = (&FileSystemAction{DirsOnly: true, AddSlash: true}).Matches(ctx, req)
		case chain.HasOption("default"), chain.HasOption("bashdefault"):
			matches, _ = (&FileSystemAction{AddSlash: true}).Matches(ctx, req)
		}
	}
	return matches, nil
}

// lookup finds the chain for a command: exact name, then its base name,
// then the glob registrations, then the -D fallback.
func (e *Engine) lookup(command string) (*Chain, bool) {
	if chain, ok := e.Registry.Lookup(command); ok {
		return chain, true
	}
	if base := filepath.Base(command); base != command {
		if chain, ok := e.Registry.Lookup(base); ok {
			return chain, true
		}
	}
	if chain, ok := e.Registry.LookupGlob(command); ok {
		return chain, true
	}
	return e.Registry.Lookup(FallbackKey)
}

// splitLine splits the line into words honouring quotes, falling back to
// plain whitespace splitting while a quote is still open.
func splitLine(line string) []string {
	words, err := shlex.Split(line)
	if err != nil {
		return strings.Fields(line)
	}
	return words
}
