package completion

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// flagDecl is a short flag such as -F. Long names exist only because pflag
// requires them.
type flagDecl struct {
	short      string
	long       string
	takesValue bool
	help       string
}

type optionDecl struct {
	name string
	help string
}

// actionDecl maps an optional single letter (-a) and the -A long form to a
// canonical action name.
type actionDecl struct {
	letter string
	name   string
}

// FlagSpec declares the flags, -o options and -A actions one builtin
// accepts. It is built once and only read afterwards.
type FlagSpec struct {
	name    string
	flags   []flagDecl
	options []optionDecl
	actions []actionDecl
}

func NewFlagSpec(name string) *FlagSpec {
	return &FlagSpec{name: name}
}

func (s *FlagSpec) ShortFlag(short, long string, takesValue bool, help string) {
	s.flags = append(s.flags, flagDecl{short: short, long: long, takesValue: takesValue, help: help})
}

func (s *FlagSpec) Option(name, help string) {
	s.options = append(s.options, optionDecl{name: name, help: help})
}

// Action declares an action; letter may be empty for long-only actions.
func (s *FlagSpec) Action(letter, name string) {
	s.actions = append(s.actions, actionDecl{letter: letter, name: name})
}

func (s *FlagSpec) hasOption(name string) bool {
	for _, o := range s.options {
		if o.name == name {
			return true
		}
	}
	return false
}

func (s *FlagSpec) hasAction(name string) bool {
	for _, a := range s.actions {
		if a.name == name {
			return true
		}
	}
	return false
}

// OptionChange records one -o (On) or +o (off) occurrence.
type OptionChange struct {
	Name string
	On   bool
}

// ParsedArgs is the result of parsing one builtin invocation. Empty string
// values mean the flag was absent.
type ParsedArgs struct {
	F string
	W string
	P string
	S string
	X string
	E bool
	D bool
	// Print is complete -p.
	Print bool

	// Actions in command-line order, duplicates kept.
	Actions []string
	Options []OptionChange
	Rest    []string
}

// EnabledOptions returns the options left on after applying every change
// in order.
func (a *ParsedArgs) EnabledOptions() []string {
	state := make(map[string]bool)
	var order []string
	for _, c := range a.Options {
		if _, seen := state[c.Name]; !seen {
			order = append(order, c.Name)
		}
		state[c.Name] = c.On
	}
	var enabled []string
	for _, name := range order {
		if state[name] {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// actionValue appends to the shared action list. With letter set it
// behaves as a boolean shorthand (-d); otherwise it takes a name (-A name).
type actionValue struct {
	spec   *FlagSpec
	letter string
	name   string
	list   *[]string
}

func (v *actionValue) String() string { return "" }

func (v *actionValue) Type() string {
	if v.letter != "" {
		return "bool"
	}
	return "action"
}

func (v *actionValue) Set(s string) error {
	if v.letter != "" {
		*v.list = append(*v.list, v.name)
		return nil
	}
	if !v.spec.hasAction(s) {
		return fmt.Errorf("invalid action name %q", s)
	}
	*v.list = append(*v.list, s)
	return nil
}

type optionValue struct {
	spec    *FlagSpec
	on      bool
	changes *[]OptionChange
}

func (v *optionValue) String() string { return "" }

func (v *optionValue) Type() string { return "option" }

func (v *optionValue) Set(s string) error {
	if !v.spec.hasOption(s) {
		return fmt.Errorf("invalid option name %q", s)
	}
	*v.changes = append(*v.changes, OptionChange{Name: s, On: v.on})
	return nil
}

const disableOptionFlag = "disable-option"

// Parse parses argv (without the builtin name). pflag.ErrHelp is returned
// as is; every other failure is a *UsageError.
func (s *FlagSpec) Parse(argv []string) (*ParsedArgs, error) {
	parsed := &ParsedArgs{}
	fs := s.flagSet(parsed)

	values := make(map[string]*string)
	bools := make(map[string]*bool)
	for _, f := range s.flags {
		if f.takesValue {
			values[f.short] = fs.StringP(f.long, f.short, "", f.help)
		} else {
			bools[f.short] = fs.BoolP(f.long, f.short, false, f.help)
		}
	}

	if err := fs.Parse(s.rewritePlusOptions(argv)); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, newUsageError("%v", err)
	}

	str := func(short string) string {
		if p, ok := values[short]; ok {
			return *p
		}
		return ""
	}
	flag := func(short string) bool {
		if p, ok := bools[short]; ok {
			return *p
		}
		return false
	}

	parsed.F = str("F")
	parsed.W = str("W")
	parsed.P = str("P")
	parsed.S = str("S")
	parsed.X = str("X")
	parsed.E = flag("E")
	parsed.D = flag("D")
	parsed.Print = flag("p")
	parsed.Rest = fs.Args()
	return parsed, nil
}

// Usage renders the flag help for the builtin.
func (s *FlagSpec) Usage() string {
	var sb strings.Builder
	fs := s.flagSet(&ParsedArgs{})
	for _, f := range s.flags {
		if f.takesValue {
			fs.StringP(f.long, f.short, "", f.help)
		} else {
			fs.BoolP(f.long, f.short, false, f.help)
		}
	}
	fmt.Fprintf(&sb, "Usage: %s [flags]", s.name)
	if s.name != "compopt" {
		sb.WriteString(" [name ...]")
	}
	sb.WriteString("\n\nFlags:\n")
	sb.WriteString(fs.FlagUsages())
	if len(s.options) > 0 {
		sb.WriteString("\nOptions (-o / +o):\n")
		for _, o := range s.options {
			fmt.Fprintf(&sb, "  %-12s %s\n", o.name, o.help)
		}
	}
	if len(s.actions) > 0 {
		sb.WriteString("\nActions (-A):\n")
		for _, a := range s.actions {
			if a.letter != "" {
				fmt.Fprintf(&sb, "  -%s  %s\n", a.letter, a.name)
			} else {
				fmt.Fprintf(&sb, "      %s\n", a.name)
			}
		}
	}
	return sb.String()
}

// flagSet builds the pflag set for the options and actions; the caller adds
// the value flags.
func (s *FlagSpec) flagSet(parsed *ParsedArgs) *pflag.FlagSet {
	fs := pflag.NewFlagSet(s.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)
	fs.SortFlags = false

	if len(s.options) > 0 {
		fs.VarP(&optionValue{spec: s, on: true, changes: &parsed.Options}, "option", "o", "enable a completion option")
		fs.Var(&optionValue{spec: s, on: false, changes: &parsed.Options}, disableOptionFlag, "disable a completion option (+o)")
		_ = fs.MarkHidden(disableOptionFlag)
	}
	if len(s.actions) > 0 {
		fs.VarP(&actionValue{spec: s, list: &parsed.Actions}, "action", "A", "generate completions with the named action")
		for _, a := range s.actions {
			if a.letter == "" {
				continue
			}
			f := fs.VarPF(&actionValue{spec: s, letter: a.letter, name: a.name, list: &parsed.Actions}, a.name, a.letter, "same as -A "+a.name)
			f.NoOptDefVal = "true"
		}
	}
	return fs
}

// rewritePlusOptions turns `+o name` into the hidden long flag so pflag can
// parse it. Scanning stops where pflag would stop parsing flags.
func (s *FlagSpec) rewritePlusOptions(argv []string) []string {
	if len(s.options) == 0 {
		return argv
	}

	out := make([]string, 0, len(argv))
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "+o" && i+1 < len(argv):
			out = append(out, "--"+disableOptionFlag, argv[i+1])
			i++
		case arg == "--" || arg == "-" || !strings.HasPrefix(arg, "-"):
			return append(out, argv[i:]...)
		default:
			out = append(out, arg)
			if s.consumesNext(arg) && i+1 < len(argv) {
				out = append(out, argv[i+1])
				i++
			}
		}
	}
	return out
}

// consumesNext reports whether the flag word arg takes the following word
// as its value, e.g. -W or a group such as -dW.
func (s *FlagSpec) consumesNext(arg string) bool {
	if strings.HasPrefix(arg, "--") {
		if strings.Contains(arg, "=") {
			return false
		}
		name := arg[2:]
		if name == "option" || name == "action" {
			return true
		}
		for _, f := range s.flags {
			if f.long == name {
				return f.takesValue
			}
		}
		return false
	}

	for i := 1; i < len(arg); i++ {
		c := arg[i : i+1]
		if c == "o" || c == "A" {
			return i == len(arg)-1
		}
		for _, f := range s.flags {
			if f.short == c && f.takesValue {
				return i == len(arg)-1
			}
		}
	}
	return false
}

func defineFlags(spec *FlagSpec) {
	spec.ShortFlag("F", "function", true, "complete with this function")
	spec.ShortFlag("W", "wordlist", true, "complete with these words")
	spec.ShortFlag("P", "prefix", true,
		"prefix added at the beginning of each possible completion after all other options have been applied")
	spec.ShortFlag("S", "suffix", true,
		"suffix appended to each possible completion after all other options have been applied")
	spec.ShortFlag("X", "filterpat", true,
		"glob pattern; completions matching it are removed, or kept when it starts with !")
}

// defineOptions declares the -o options shared by complete, compgen and
// compopt. git-completion.bash relies on bashdefault, default, filenames
// and nospace.
func defineOptions(spec *FlagSpec) {
	spec.Option("bashdefault", "if nothing matches, perform default bash completions")
	spec.Option("default", "if nothing matches, use default filename completion")
	spec.Option("filenames", "the completion function generates filenames and should be post-processed")
	spec.Option("dirnames", "perform directory name completion if the compspec generates no matches")
	spec.Option("nospace", "don't append a space to words completed at the end of the line")
	spec.Option("plusdirs", "after processing the compspec, also attempt directory name completion")
}

func defineActions(spec *FlagSpec) {
	spec.Action("a", "alias")
	spec.Action("b", "binding")
	spec.Action("c", "command")
	spec.Action("d", "directory")
	spec.Action("f", "file")
	spec.Action("j", "job")
	spec.Action("u", "user")
	spec.Action("v", "variable")
	spec.Action("", "function")
	spec.Action("", "helptopic")
	spec.Action("", "setopt")
	spec.Action("", "shopt")
	spec.Action("", "signal")
	spec.Action("", "stopped")
}

func newCompleteSpec() *FlagSpec {
	spec := NewFlagSpec("complete")
	defineFlags(spec)
	defineOptions(spec)
	defineActions(spec)
	spec.ShortFlag("E", "empty-line", false, "define the compspec for an empty line")
	spec.ShortFlag("D", "default-spec", false, "define the compspec that applies when nothing else matches")
	spec.ShortFlag("p", "print", false, "print existing completion specifications")
	return spec
}

func newCompgenSpec() *FlagSpec {
	spec := NewFlagSpec("compgen")
	defineFlags(spec)
	defineOptions(spec)
	defineActions(spec)
	return spec
}

func newCompoptSpec() *FlagSpec {
	spec := NewFlagSpec("compopt")
	defineOptions(spec)
	return spec
}
