package commands

import (
	"io"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

const prefix = "cmd "

var (
	// ErrMissingCommand is returned by Execute for an empty argument list.
	ErrMissingCommand = errors.New("missing subcommand")
	// ErrUnknownCommand is returned by Execute for a name that was never registered.
	ErrUnknownCommand = errors.New("unknown command")
)

// Command is a subcommand with its own flags and a Run function.
// Flags are defined on FlagSet; Run is called after Parse with the remaining positional arguments.
type Command struct {
	Name    string
	FlagSet *pflag.FlagSet
	Run     func(args []string) error
}

// Registry holds subcommands by name. Add commands with Register; run with Execute.
type Registry struct {
	cmds map[string]*Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// NewFlagSet returns a flag set that reports parse errors instead of exiting or printing.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)
	return fs
}

// Register adds a subcommand. name is the first token after "cmd" (e.g. "spawn").
// fs is that command's FlagSet (nil for none); run is called after fs.Parse(args[1:]) succeeds.
func (r *Registry) Register(name string, fs *pflag.FlagSet, run func(args []string) error) {
	if fs == nil {
		fs = NewFlagSet(name)
	}
	r.cmds[name] = &Command{Name: name, FlagSet: fs, Run: run}
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Usage describes the flags of the named command, one per line.
func (r *Registry) Usage(name string) (string, bool) {
	cmd, ok := r.cmds[name]
	if !ok {
		return "", false
	}
	return strings.TrimRight(cmd.FlagSet.FlagUsages(), "\n"), true
}

// Parse interprets line as a terminal line. If line starts with "cmd " (case-sensitive),
// the rest is tokenized by spaces and returned with ok true. Otherwise nil, false.
func Parse(line string) (args []string, ok bool) {
	if !strings.HasPrefix(line, prefix) {
		return nil, false
	}
	rest := strings.TrimSpace(line[len(prefix):])
	if rest == "" {
		return nil, true
	}
	return strings.Fields(rest), true
}

// Execute runs the subcommand in args[0] with args[1:] as flag/positional arguments.
// Returns an error for unknown command, parse error, or from Run().
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return ErrMissingCommand
	}
	name := args[0]
	cmd, ok := r.cmds[name]
	if !ok {
		return errors.Wrap(ErrUnknownCommand, name)
	}
	resetFlags(cmd.FlagSet)
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		return errors.Wrapf(err, "cmd %s", name)
	}
	return cmd.Run(cmd.FlagSet.Args())
}

// resetFlags restores defaults so one invocation's flags do not leak into the next.
func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}
