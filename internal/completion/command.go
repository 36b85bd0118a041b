package completion

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
)

// Builtins implements complete, compgen and compopt for one shell.
type Builtins struct {
	Registry *Registry
	Executor Executor
	Logger   *zap.Logger

	completeSpec *FlagSpec
	compgenSpec  *FlagSpec
	compoptSpec  *FlagSpec
}

func NewBuiltins(registry *Registry, executor Executor, logger *zap.Logger) *Builtins {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builtins{
		Registry:     registry,
		Executor:     executor,
		Logger:       logger,
		completeSpec: newCompleteSpec(),
		compgenSpec:  newCompgenSpec(),
		compoptSpec:  newCompoptSpec(),
	}
}

// ExecHandlers returns the middlewares for all three builtins.
func (b *Builtins) ExecHandlers() []func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return []func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc{
		b.NewCompleteCommandHandler(),
		b.NewCompgenCommandHandler(),
		b.NewCompoptCommandHandler(),
	}
}

type builtinFunc func(ctx context.Context, hc interp.HandlerContext, args []string) error

func (b *Builtins) handler(name string, run builtinFunc) func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != name {
				return next(ctx, args)
			}
			return run(ctx, interp.HandlerCtx(ctx), args)
		}
	}
}

// NewCompleteCommandHandler creates a new ExecHandler for the complete command
func (b *Builtins) NewCompleteCommandHandler() func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return b.handler("complete", b.complete)
}

// NewCompgenCommandHandler creates a new ExecHandler for the compgen command
func (b *Builtins) NewCompgenCommandHandler() func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return b.handler("compgen", b.compgen)
}

// NewCompoptCommandHandler creates a new ExecHandler for the compopt command
func (b *Builtins) NewCompoptCommandHandler() func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return b.handler("compopt", b.compopt)
}

func (b *Builtins) complete(_ context.Context, hc interp.HandlerContext, argv []string) error {
	args, err := b.completeSpec.Parse(argv[1:])
	if errors.Is(err, pflag.ErrHelp) {
		_, _ = io.WriteString(hc.Stdout, b.completeSpec.Usage())
		return nil
	}
	if err != nil {
		return b.fail(hc, "complete", err)
	}

	commands := args.Rest
	if args.D {
		commands = append(commands, FallbackKey) // if the command doesn't match anything
	}
	if args.E {
		commands = append(commands, FirstKey) // empty line
	}

	if args.Print {
		if len(commands) == 0 {
			return b.printSpecs(hc)
		}
		return b.printNamedSpecs(hc, commands)
	}

	if len(commands) == 0 {
		return b.printSpecs(hc)
	}

	chain, err := BuildChain(argv, args, b.Executor)
	if err != nil {
		return b.fail(hc, "complete", err)
	}
	for _, command := range commands {
		b.Registry.RegisterName(command, chain)
	}

	b.Logger.Debug("registered completion",
		zap.Strings("commands", commands),
		zap.String("spec", chain.Spec()),
	)
	return nil
}

func (b *Builtins) printSpecs(hc interp.HandlerContext) error {
	return b.Registry.PrintSpecs(hc.Stdout)
}

// printNamedSpecs prints the spec of each name; any name without one is
// reported and makes the exit status 1.
func (b *Builtins) printNamedSpecs(hc interp.HandlerContext, names []string) error {
	missing := false
	for _, name := range names {
		if _, ok := b.Registry.Lookup(name); !ok {
			missing = true
			msg := fmt.Sprintf("complete: %s: no completion specification", name)
			if similar := b.Registry.Similar(name); len(similar) > 0 {
				msg += fmt.Sprintf(" (did you mean %s?)", similar[0])
			}
			_, _ = fmt.Fprintln(hc.Stderr, msg)
			continue
		}
		if err := b.Registry.PrintSpec(hc.Stdout, name); err != nil {
			return err
		}
	}
	if missing {
		return interp.NewExitStatus(1)
	}
	return nil
}

// compgen prints every candidate of an ad-hoc chain. Like bash it passes
// dummy COMP_WORDS and lists all results, not only those starting with
// the word.
func (b *Builtins) compgen(ctx context.Context, hc interp.HandlerContext, argv []string) error {
	args, err := b.compgenSpec.Parse(argv[1:])
	if errors.Is(err, pflag.ErrHelp) {
		_, _ = io.WriteString(hc.Stdout, b.compgenSpec.Usage())
		return nil
	}
	if err != nil {
		return b.fail(hc, "compgen", err)
	}

	// bash ignores extra arguments after the word.
	toComplete := ""
	if len(args.Rest) > 0 {
		toComplete = args.Rest[0]
	}

	chain, err := BuildChain(argv, args, b.Executor)
	if err != nil {
		return b.fail(hc, "compgen", err)
	}

	req := &Request{
		Words:      []string{"compgen", toComplete},
		Index:      -1,
		ToComplete: toComplete,
		Line:       "compgen " + toComplete,
		Point:      len("compgen ") + len(toComplete),
		Dir:        hc.Dir,
		Env:        hc.Env,
	}
	matches, err := chain.Matches(ctx, req, false)
	if err != nil {
		return b.fail(hc, "compgen", err)
	}

	for _, m := range matches {
		if _, err := fmt.Fprintln(hc.Stdout, m); err != nil {
			return err
		}
	}

	if len(matches) == 0 {
		return interp.NewExitStatus(1)
	}
	return nil
}

// compopt only validates its options. Changing the options of the
// completion in progress needs the editor to expose that state.
func (b *Builtins) compopt(_ context.Context, hc interp.HandlerContext, argv []string) error {
	args, err := b.compoptSpec.Parse(argv[1:])
	if errors.Is(err, pflag.ErrHelp) {
		_, _ = io.WriteString(hc.Stdout, b.compoptSpec.Usage())
		return nil
	}
	if err != nil {
		return b.fail(hc, "compopt", err)
	}

	b.Logger.Debug("compopt",
		zap.Strings("argv", argv),
		zap.Any("options", args.Options),
		zap.Strings("names", args.Rest),
	)
	return nil
}

// fail reports err on the handler's stderr and turns it into an exit
// status so the interpreter keeps running: 2 for usage errors, 1 otherwise.
func (b *Builtins) fail(hc interp.HandlerContext, name string, err error) error {
	if IsUsageError(err) {
		_, _ = fmt.Fprintf(hc.Stderr, "%s: %v\n\nRun '%s -h' for usage information.\n", name, err, name)
		return interp.NewExitStatus(2)
	}
	b.Logger.Warn("completion builtin failed", zap.String("builtin", name), zap.Error(err))
	_, _ = fmt.Fprintf(hc.Stderr, "%s: %v\n", name, err)
	return interp.NewExitStatus(1)
}
