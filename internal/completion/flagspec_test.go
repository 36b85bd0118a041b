package completion

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagSpec_Parse(t *testing.T) {
	tests := []struct {
		name     string
		spec     *FlagSpec
		argv     []string
		expected ParsedArgs
	}{
		{
			name:     "function and options",
			spec:     newCompleteSpec(),
			argv:     []string{"-F", "_git", "-o", "bashdefault", "-o", "nospace", "git", "gitk"},
			expected: ParsedArgs{F: "_git", Options: []OptionChange{{"bashdefault", true}, {"nospace", true}}, Rest: []string{"git", "gitk"}},
		},
		{
			name:     "action letters and -A keep command-line order",
			spec:     newCompgenSpec(),
			argv:     []string{"-d", "-A", "function", "-a", "-A", "directory", "x"},
			expected: ParsedArgs{Actions: []string{"directory", "function", "alias", "directory"}, Rest: []string{"x"}},
		},
		{
			name:     "grouped shorthands",
			spec:     newCompgenSpec(),
			argv:     []string{"-dfW", "a b"},
			expected: ParsedArgs{W: "a b", Actions: []string{"directory", "file"}},
		},
		{
			name:     "prefix suffix and filter",
			spec:     newCompgenSpec(),
			argv:     []string{"-P", "pre", "-S", "suf", "-X", "!*.go", "-W", "x y"},
			expected: ParsedArgs{W: "x y", P: "pre", S: "suf", X: "!*.go"},
		},
		{
			name:     "empty line and fallback",
			spec:     newCompleteSpec(),
			argv:     []string{"-E", "-D", "-W", "a"},
			expected: ParsedArgs{W: "a", E: true, D: true},
		},
		{
			name:     "flag parsing stops at the first name",
			spec:     newCompleteSpec(),
			argv:     []string{"-W", "a", "cmd", "-d"},
			expected: ParsedArgs{W: "a", Rest: []string{"cmd", "-d"}},
		},
		{
			name:     "double dash ends flags",
			spec:     newCompgenSpec(),
			argv:     []string{"-W", "a", "--", "-x"},
			expected: ParsedArgs{W: "a", Rest: []string{"-x"}},
		},
		{
			name:     "plus o turns an option off",
			spec:     newCompoptSpec(),
			argv:     []string{"-o", "nospace", "+o", "filenames"},
			expected: ParsedArgs{Options: []OptionChange{{"nospace", true}, {"filenames", false}}},
		},
		{
			name:     "plus o as a -W value is left alone",
			spec:     newCompgenSpec(),
			argv:     []string{"-W", "+o", "x"},
			expected: ParsedArgs{W: "+o", Rest: []string{"x"}},
		},
		{
			name:     "print",
			spec:     newCompleteSpec(),
			argv:     []string{"-p", "git"},
			expected: ParsedArgs{Print: true, Rest: []string{"git"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := tt.spec.Parse(tt.argv)
			require.NoError(t, err)

			assert.Equal(t, tt.expected.F, parsed.F)
			assert.Equal(t, tt.expected.W, parsed.W)
			assert.Equal(t, tt.expected.P, parsed.P)
			assert.Equal(t, tt.expected.S, parsed.S)
			assert.Equal(t, tt.expected.X, parsed.X)
			assert.Equal(t, tt.expected.E, parsed.E)
			assert.Equal(t, tt.expected.D, parsed.D)
			assert.Equal(t, tt.expected.Print, parsed.Print)
			assert.Equal(t, tt.expected.Actions, parsed.Actions)
			assert.Equal(t, tt.expected.Options, parsed.Options)
			assert.ElementsMatch(t, tt.expected.Rest, parsed.Rest)
		})
	}
}

func TestFlagSpec_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		spec *FlagSpec
		argv []string
	}{
		{"unknown option", newCompleteSpec(), []string{"-o", "bogus", "x"}},
		{"unknown action", newCompleteSpec(), []string{"-A", "bogus", "x"}},
		{"unknown flag", newCompgenSpec(), []string{"-Q"}},
		{"missing value", newCompgenSpec(), []string{"-W"}},
		{"compgen has no -E", newCompgenSpec(), []string{"-E"}},
		{"compopt has no actions", newCompoptSpec(), []string{"-A", "file"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Parse(tt.argv)
			require.Error(t, err)
			assert.True(t, IsUsageError(err), "expected a usage error, got %v", err)
		})
	}
}

func TestFlagSpec_Help(t *testing.T) {
	_, err := newCompleteSpec().Parse([]string{"-h"})
	assert.ErrorIs(t, err, pflag.ErrHelp)

	usage := newCompleteSpec().Usage()
	assert.Contains(t, usage, "Usage: complete")
	assert.Contains(t, usage, "-F, --function")
	assert.Contains(t, usage, "nospace")
	assert.Contains(t, usage, "helptopic")
	assert.NotContains(t, usage, disableOptionFlag)
}

func TestParsedArgs_EnabledOptions(t *testing.T) {
	args := &ParsedArgs{Options: []OptionChange{
		{"nospace", true},
		{"filenames", true},
		{"nospace", false},
		{"default", true},
	}}
	assert.Equal(t, []string{"filenames", "default"}, args.EnabledOptions())
}
