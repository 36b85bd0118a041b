package bash

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

func newRunner(t *testing.T) *interp.Runner {
	t.Helper()
	runner, err := interp.New(
		interp.StdIO(nil, os.Stdout, os.Stderr),
		interp.Env(expand.ListEnviron("PATH=")),
	)
	require.NoError(t, err)
	return runner
}

func TestRunBashCommand(t *testing.T) {
	runner := newRunner(t)

	stdout, stderr, err := RunBashCommand(context.Background(), runner, "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", stdout)
	assert.Equal(t, "err\n", stderr)
}

func TestRunBashCommand_ExitStatus(t *testing.T) {
	runner := newRunner(t)

	stdout, _, err := RunBashCommand(context.Background(), runner, "echo partial; exit 3")
	assert.Equal(t, "partial\n", stdout)
	status, ok := interp.IsExitStatus(err)
	require.True(t, ok)
	assert.Equal(t, uint8(3), status)
}

func TestRunBashCommand_ParseError(t *testing.T) {
	_, _, err := RunBashCommand(context.Background(), newRunner(t), "if then")
	assert.Error(t, err)
}

func TestRunBashCommand_SubshellIsolation(t *testing.T) {
	runner := newRunner(t)
	require.NoError(t, RunBashScriptFromReader(context.Background(), runner, strings.NewReader("X=parent\nf() { echo \"f:$X\"; }"), "setup"))

	stdout, _, err := RunBashCommand(context.Background(), runner, "f; X=child; g() { :; }")
	require.NoError(t, err)
	assert.Equal(t, "f:parent\n", stdout)

	assert.Equal(t, "parent", runner.Vars["X"].String())
	_, ok := runner.Funcs["g"]
	assert.False(t, ok, "functions defined in the subshell stay there")
}

func TestRunBashScriptFromFile(t *testing.T) {
	runner := newRunner(t)
	path := filepath.Join(t.TempDir(), "rc")
	require.NoError(t, os.WriteFile(path, []byte("GREETING=hello\n"), 0644))

	require.NoError(t, RunBashScriptFromFile(context.Background(), runner, path))
	assert.Equal(t, "hello", runner.Vars["GREETING"].String())

	err := RunBashScriptFromFile(context.Background(), runner, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
