package completion

import (
	"os"

	"mvdan.cc/sh/v3/expand"
)

// Request is one completion attempt: the words of the command line, the
// word under the cursor and the environment the actions run against.
type Request struct {
	Words []string
	// Index of the word being completed; -1 means the last word.
	Index int
	// ToComplete is the partial word.
	ToComplete string

	Line  string
	Point int

	// Dir is the working directory relative paths are listed from.
	Dir string
	Env expand.Environ
}

// CurrentIndex resolves Index against Words.
func (r *Request) CurrentIndex() int {
	if r.Index < 0 || r.Index >= len(r.Words) {
		return len(r.Words) - 1
	}
	return r.Index
}

// Command returns the first word, the command being completed.
func (r *Request) Command() string {
	if len(r.Words) == 0 {
		return ""
	}
	return r.Words[0]
}

// Previous returns the word before the one being completed.
func (r *Request) Previous() string {
	i := r.CurrentIndex()
	if i < 1 {
		return ""
	}
	return r.Words[i-1]
}

func (r *Request) environ() expand.Environ {
	if r.Env != nil {
		return r.Env
	}
	return expand.ListEnviron(os.Environ()...)
}
