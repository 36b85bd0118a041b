package bash

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// threadSafeBuffer collects subshell output; background jobs in the
// subshell may still be writing when the caller reads it.
type threadSafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *threadSafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *threadSafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// RunBashScriptFromReader parses a whole script and runs it in the given runner.
func RunBashScriptFromReader(ctx context.Context, runner *interp.Runner, reader io.Reader, name string) error {
	prog, err := syntax.NewParser().Parse(reader, name)
	if err != nil {
		return err
	}
	return runner.Run(ctx, prog)
}

func RunBashScriptFromFile(ctx context.Context, runner *interp.Runner, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return RunBashScriptFromReader(ctx, runner, f, filePath)
}

// RunBashCommand runs a command in a subshell of runner and returns what it
// wrote to stdout and stderr. State changes made by the command do not leak
// back into runner.
func RunBashCommand(ctx context.Context, runner *interp.Runner, command string) (string, string, error) {
	subShell := runner.Subshell()
	outBuf := &threadSafeBuffer{}
	errBuf := &threadSafeBuffer{}
	if err := interp.StdIO(nil, outBuf, errBuf)(subShell); err != nil {
		return "", "", err
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return "", "", err
	}

	err = subShell.Run(ctx, prog)
	return outBuf.String(), errBuf.String(), err
}
