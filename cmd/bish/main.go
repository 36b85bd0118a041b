package main

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robottwo/bishcomp/internal/bash"
	"github.com/robottwo/bishcomp/internal/completion"
	"github.com/robottwo/bishcomp/internal/core"
	"github.com/robottwo/bishcomp/internal/environment"
	"github.com/robottwo/bishcomp/internal/logging"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

var BUILD_VERSION = "dev"

//go:embed .bishrc.default
var DEFAULT_RC []byte

var (
	command      = pflag.StringP("command", "c", "", "run a command")
	loginShell   = pflag.BoolP("login", "l", false, "run as a login shell")
	rcFile       = pflag.String("rcfile", "", "use a custom rc file instead of ~/.bishrc")
	strictConfig = pflag.Bool("strict-config", false, "fail fast if configuration files contain errors (like bash 'set -e')")
	helpFlag     = pflag.BoolP("help", "h", false, "display help information")
	versionFlag  = pflag.BoolP("version", "v", false, "display build version")
	completeLine = pflag.String("complete", "", "print the completions for a command line, as the line editor would")
)

// shell bundles what one bish process owns: the interpreter, the
// completion registry and the builtins that write to it.
type shell struct {
	runner   *interp.Runner
	registry *completion.Registry
	builtins *completion.Builtins
	executor *completion.RunnerExecutor
	engine   *completion.Engine
}

func main() {
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		printUsage()
		return
	}

	sh, err := newShell()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bish: %v\n", err)
		os.Exit(1)
	}

	logger, err := initializeLogger(sh.runner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bish: failed to initialize logger: %v\n", err)
		logger = zap.NewNop()
	}
	defer func() {
		_ = logger.Sync() // Flush any buffered log entries
	}()
	sh.setLogger(logger)

	logger.Info("-------- new bish session --------", zap.Strings("args", os.Args))

	if path, err := completion.LoadUserSpecs(sh.registry, core.UserCompletionConfigPaths()); err != nil {
		logger.Warn("failed to load user completions", zap.String("path", path), zap.Error(err))
	} else if path != "" {
		logger.Debug("loaded user completions", zap.String("path", path))
	}
	if dir := core.CompletionsDir(); isDir(dir) {
		n, err := completion.NewSpecDirLoader(os.DirFS(dir)).Register(sh.registry)
		if err != nil {
			logger.Warn("failed to load completion directory", zap.String("dir", dir), zap.Error(err))
		} else {
			logger.Debug("loaded completion directory", zap.String("dir", dir), zap.Int("commands", n))
		}
	}

	err = run(sh)

	if code, ok := interp.IsExitStatus(err); ok {
		os.Exit(int(code))
	}

	if err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "bish: %v\n", err)
		os.Exit(1)
	}
}

func run(sh *shell) error {
	ctx := context.Background()

	// bish --complete "git ch"
	if pflag.CommandLine.Changed("complete") {
		return printCompletions(ctx, sh, *completeLine)
	}

	// bish -c "echo hello"
	if *command != "" {
		return bash.RunBashScriptFromReader(ctx, sh.runner, strings.NewReader(*command), "bish")
	}

	// bish
	if pflag.NArg() == 0 {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "bish: no line editor in this build; reading commands from stdin")
		}
		if dir := core.CompletionsDir(); isDir(dir) {
			watcher, err := completion.WatchSpecDir(dir, sh.registry, sh.builtins.Logger)
			if err != nil {
				sh.builtins.Logger.Warn("not watching completion directory", zap.String("dir", dir), zap.Error(err))
			} else {
				defer func() {
					_ = watcher.Close()
				}()
			}
		}
		return bash.RunBashScriptFromReader(ctx, sh.runner, os.Stdin, "bish")
	}

	// bish script.sh
	for _, filePath := range pflag.Args() {
		if err := bash.RunBashScriptFromFile(ctx, sh.runner, filePath); err != nil {
			return err
		}
	}

	return nil
}

func printCompletions(ctx context.Context, sh *shell, line string) error {
	dir := sh.runner.Dir
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return err
		}
	}
	matches, err := sh.engine.Complete(ctx, line, len(line), dir, runnerEnviron(sh.runner))
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Println(m)
	}
	if len(matches) == 0 {
		return interp.NewExitStatus(1)
	}
	return nil
}

// runnerEnviron layers the shell's string variables over the process
// environment, so rc-file assignments are visible to -A variable.
func runnerEnviron(runner *interp.Runner) expand.Environ {
	pairs := os.Environ()
	for name, vr := range runner.Vars {
		if vr.Kind == expand.String {
			pairs = append(pairs, name+"="+vr.Str)
		}
	}
	return expand.ListEnviron(pairs...)
}

func printUsage() {
	fmt.Println("Usage: bish [flags] [script]")
	fmt.Println("\nA POSIX-compatible shell with programmable completion.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Print(pflag.CommandLine.FlagUsages())
	fmt.Println()
	fmt.Println("Completion builtins:")
	fmt.Printf("  %-28s %s\n", "complete", "register or print completion specs")
	fmt.Printf("  %-28s %s\n", "compgen", "print the completions for a word")
	fmt.Printf("  %-28s %s\n", "compopt", "validate completion options")
}

func initializeLogger(runner *interp.Runner) (*zap.Logger, error) {
	logLevel := environment.GetLogLevel(runner)
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if environment.ShouldCleanLogFile(runner) {
		_ = os.Remove(core.LogFile())
	}

	return logging.NewLogger(logLevel, core.LogFile())
}

// newShell creates the interpreter with the completion builtins installed
// and runs the default and user rc files.
func newShell() (*shell, error) {
	shellPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	registry := completion.NewRegistry()
	executor := completion.NewRunnerExecutor(zap.NewNop())
	builtins := completion.NewBuiltins(registry, executor, zap.NewNop())

	env := expand.ListEnviron(append(os.Environ(),
		"SHELL="+shellPath,
		"BISH_BUILD_VERSION="+BUILD_VERSION,
	)...)

	runner, err := interp.New(
		interp.Interactive(true),
		interp.Env(env),
		interp.StdIO(os.Stdin, os.Stdout, os.Stderr),
		interp.ExecHandlers(builtins.ExecHandlers()...),
	)
	if err != nil {
		return nil, err
	}
	executor.SetRunner(runner)

	sh := &shell{
		runner:   runner,
		registry: registry,
		builtins: builtins,
		executor: executor,
		engine:   completion.NewEngine(registry, zap.NewNop()),
	}

	if err := bash.RunBashScriptFromReader(context.Background(), runner, bytes.NewReader(DEFAULT_RC), "bish"); err != nil {
		return nil, fmt.Errorf("failed to load default rc: %w", err)
	}

	for _, configFile := range rcFiles() {
		stat, err := os.Stat(configFile)
		if err != nil || stat.Size() == 0 {
			// File not found or empty - this is normal behavior, not an error
			continue
		}
		if err := bash.RunBashScriptFromFile(context.Background(), runner, configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration file %s contains errors: %v\n", configFile, err)
			if *strictConfig {
				return nil, fmt.Errorf("aborting due to configuration error in %s: %w", configFile, err)
			}
		}
	}

	return sh, nil
}

func rcFiles() []string {
	if *rcFile != "" {
		return []string{*rcFile}
	}

	files := []string{filepath.Join(core.HomeDir(), ".bishrc")}
	if *loginShell || strings.HasPrefix(os.Args[0], "-") {
		files = append([]string{
			"/etc/profile",
			filepath.Join(core.HomeDir(), ".bish_profile"),
		}, files...)
	}
	return files
}

func (sh *shell) setLogger(logger *zap.Logger) {
	named := logger.Named("completion")
	sh.builtins.Logger = named
	sh.engine.Logger = named
	sh.executor.SetLogger(named)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
