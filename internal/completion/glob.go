package completion

import (
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/pattern"
)

// compileGlob turns a shell pattern into an anchored regexp.
func compileGlob(pat string) (*regexp.Regexp, error) {
	expr, err := pattern.Regexp(pat, 0)
	if err != nil {
		return nil, err
	}
	return regexp.Compile("^(?:" + expr + ")$")
}

// globFilter is the -X filterpat of a compspec.
type globFilter struct {
	pattern string
	negate  bool
}

func newGlobFilter(pat string) *globFilter {
	if pat == "" {
		return nil
	}
	f := &globFilter{pattern: pat}
	if strings.HasPrefix(pat, "!") {
		f.negate = true
		f.pattern = pat[1:]
	}
	return f
}

// expand replaces each unescaped & with word; \& stays a literal &.
func (f *globFilter) expand(word string) string {
	if !strings.Contains(f.pattern, "&") {
		return f.pattern
	}
	var sb strings.Builder
	for i := 0; i < len(f.pattern); i++ {
		c := f.pattern[i]
		switch {
		case c == '\\' && i+1 < len(f.pattern) && f.pattern[i+1] == '&':
			sb.WriteByte('&')
			i++
		case c == '&':
			sb.WriteString(word)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// apply removes the candidates matching the pattern, or those not matching
// it when negated.
func (f *globFilter) apply(candidates []string, word string) ([]string, error) {
	rx, err := compileGlob(f.expand(word))
	if err != nil {
		return nil, newUsageError("invalid filter pattern %q: %v", f.pattern, err)
	}
	kept := candidates[:0:0]
	for _, c := range candidates {
		if rx.MatchString(c) == f.negate {
			kept = append(kept, c)
		}
	}
	return kept, nil
}
