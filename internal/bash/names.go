package bash

import (
	_ "embed"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// BuiltinNames lists every command the shell runs without a $PATH lookup:
// the interpreter's own builtins plus the ones bish installs as exec
// handlers.
var BuiltinNames = []string{
	".", ":", "[", "alias", "bg", "break", "builtin", "cd", "command",
	"compgen", "complete", "compopt", "continue", "dirs", "echo", "eval",
	"exec", "exit", "false", "fg", "getopts", "mapfile", "popd", "printf",
	"pushd", "pwd", "read", "readarray", "return", "set", "shift", "shopt",
	"source", "test", "trap", "true", "type", "umask", "unalias", "unset",
	"wait",
}

// KeywordNames lists the reserved words of the shell grammar.
var KeywordNames = []string{
	"!", "[[", "]]", "case", "coproc", "do", "done", "elif", "else", "esac",
	"fi", "for", "function", "if", "in", "select", "then", "time", "until",
	"while", "{", "}",
}

// SetOptionNames are the long option names accepted by `set -o`.
var SetOptionNames = []string{
	"allexport", "errexit", "noclobber", "noexec", "noglob", "nounset",
	"pipefail", "xtrace",
}

// ShoptOptionNames are the option names accepted by `shopt -s`.
var ShoptOptionNames = []string{
	"dotglob", "expand_aliases", "extglob", "globstar", "nocaseglob",
	"nullglob",
}

//go:embed data/help_topics.yaml
var helpTopicsData []byte

type helpTopicsFile struct {
	Topics map[string]string `yaml:"topics"`
}

var (
	helpTopicsOnce sync.Once
	helpTopics     []string
)

// HelpTopics returns the sorted names of the topics known to `help`.
func HelpTopics() []string {
	helpTopicsOnce.Do(func() {
		var f helpTopicsFile
		if err := yaml.Unmarshal(helpTopicsData, &f); err != nil {
			panic("bash: malformed embedded help topics: " + err.Error())
		}
		for name := range f.Topics {
			helpTopics = append(helpTopics, name)
		}
		sort.Strings(helpTopics)
	})
	return helpTopics
}
