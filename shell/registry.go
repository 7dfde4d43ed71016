package shell

import (
	"fmt"
	"slices"
	"sync"

	"github.com/brettbedarf/webterm/internal/util"
)

// Builtin runs a command. args[0] is the command name as typed. Anything the
// command prints goes to out.
type Builtin func(s *Shell, out Output, args []Token) error

// Command is a registered built-in with its help text
type Command struct {
	Name    string
	Usage   string
	Summary string
	Run     Builtin
}

// Registry maps command names to statically known built-ins. It is populated
// once at startup and shared read-only by every shell.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd under cmd.Name. The first registration of a name wins.
func (r *Registry) Register(cmd Command) {
	logger := util.GetLogger("Registry.Register")

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[cmd.Name]; ok {
		logger.Warn().Str("name", cmd.Name).Msg("Command already registered")
		return
	}
	r.commands[cmd.Name] = cmd
}

// Lookup returns the command registered under name or [ErrCommandNotFound]
func (r *Registry) Lookup(name string) (Command, error) {
	r.mu.RLock()
	cmd, ok := r.commands[name]
	r.mu.RUnlock()
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrCommandNotFound, name)
	}
	return cmd, nil
}

// Names returns every registered name, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RegisterBuiltins registers all built-in commands by default
// or only the specific ones if names are provided
func RegisterBuiltins(r *Registry, names ...string) {
	logger := util.GetLogger("RegisterBuiltins")

	if len(names) == 0 {
		for _, cmd := range builtins() {
			r.Register(cmd)
		}
		return
	}

	all := builtins()
	for _, name := range names {
		i := slices.IndexFunc(all, func(c Command) bool { return c.Name == name })
		if i < 0 {
			logger.Warn().Str("name", name).Msg("Unknown built-in")
			continue
		}
		r.Register(all[i])
	}
}

// DefaultRegistry returns a registry holding every built-in
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}
