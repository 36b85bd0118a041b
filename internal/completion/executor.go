package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/robottwo/bishcomp/internal/bash"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Executor is the slice of the shell the completion machinery reads:
// the function and alias tables, and a way to call a completion function.
type Executor interface {
	HasFunc(name string) bool
	FuncNames() []string
	AliasNames() []string
	// CallFunc runs the named function bash-style, with COMP_WORDS,
	// COMP_CWORD, COMP_LINE and COMP_POINT describing req and the
	// arguments (command, current word, previous word). It returns the
	// function's COMPREPLY.
	CallFunc(ctx context.Context, name string, req *Request) ([]string, error)
}

// replyMarker separates whatever the function printed from the COMPREPLY
// dump that follows it.
const replyMarker = "__bish_compreply_end_of_output__"

// RunnerExecutor implements Executor on top of an interp.Runner.
type RunnerExecutor struct {
	runner *interp.Runner
	logger *zap.Logger
}

func NewRunnerExecutor(logger *zap.Logger) *RunnerExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunnerExecutor{logger: logger}
}

// SetRunner attaches the interpreter. The handlers have to exist before
// interp.New, so the runner is wired in afterwards.
func (e *RunnerExecutor) SetRunner(runner *interp.Runner) {
	e.runner = runner
}

func (e *RunnerExecutor) SetLogger(logger *zap.Logger) {
	e.logger = logger
}

func (e *RunnerExecutor) HasFunc(name string) bool {
	if e.runner == nil {
		return false
	}
	_, ok := e.runner.Funcs[name]
	return ok
}

func (e *RunnerExecutor) FuncNames() []string {
	if e.runner == nil {
		return nil
	}
	return lo.Keys(e.runner.Funcs)
}

// AliasNames lists aliases by running the alias builtin in a subshell, as
// the interpreter does not expose its alias table.
func (e *RunnerExecutor) AliasNames() []string {
	if e.runner == nil {
		return nil
	}
	out, _, err := bash.RunBashCommand(context.Background(), e.runner, "alias")
	if err != nil {
		e.logger.Debug("listing aliases failed", zap.Error(err))
		return nil
	}
	return parseAliasNames(out)
}

func (e *RunnerExecutor) CallFunc(ctx context.Context, name string, req *Request) ([]string, error) {
	if e.runner == nil {
		return nil, fmt.Errorf("no interpreter attached")
	}
	if !e.HasFunc(name) {
		return nil, fmt.Errorf("function %q not found", name)
	}

	src := completionCallScript(name, req)
	e.logger.Debug("calling completion function", zap.String("function", name), zap.String("script", src))

	out, stderr, err := bash.RunBashCommand(ctx, e.runner, src)
	if stderr != "" {
		e.logger.Debug("completion function stderr", zap.String("function", name), zap.String("stderr", stderr))
	}
	if err != nil {
		if _, ok := interp.IsExitStatus(err); !ok {
			return nil, err
		}
	}
	return parseReply(out), nil
}

// completionCallScript builds the statements that set up the COMP_*
// variables, call the function and dump COMPREPLY after the marker.
func completionCallScript(name string, req *Request) string {
	var sb strings.Builder
	words := lo.Map(req.Words, func(w string, _ int) string { return quote(w) })
	fmt.Fprintf(&sb, "COMP_WORDS=(%s)\n", strings.Join(words, " "))
	fmt.Fprintf(&sb, "COMP_CWORD=%d\n", req.CurrentIndex())
	fmt.Fprintf(&sb, "COMP_LINE=%s\n", quote(req.Line))
	fmt.Fprintf(&sb, "COMP_POINT=%d\n", req.Point)
	sb.WriteString("COMPREPLY=()\n")
	fmt.Fprintf(&sb, "%s %s %s %s\n", name, quote(req.Command()), quote(req.ToComplete), quote(req.Previous()))
	fmt.Fprintf(&sb, "printf '%%s\\n' %s \"${COMPREPLY[@]}\"\n", quote(replyMarker))
	return sb.String()
}

// parseReply returns the lines after the last marker.
func parseReply(out string) []string {
	i := strings.LastIndex(out, replyMarker+"\n")
	if i < 0 {
		return nil
	}
	rest := strings.TrimSuffix(out[i+len(replyMarker)+1:], "\n")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "\n")
}

// parseAliasNames reads `alias name='value'` lines.
func parseAliasNames(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimPrefix(strings.TrimSpace(line), "alias ")
		name, _, ok := strings.Cut(line, "=")
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// quote renders s as a single shell word.
func quote(s string) string {
	if s == "" {
		return "''"
	}
	if q, err := syntax.Quote(s, syntax.LangBash); err == nil {
		return q
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// compile-time check
var _ Executor = (*RunnerExecutor)(nil)
