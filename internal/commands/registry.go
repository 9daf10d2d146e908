// Package commands holds the user-invokable actions of the extension.
package commands

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sahilm/fuzzy"
)

// Func is the body of a command.
type Func func(ctx context.Context) error

// Command is a named action.
type Command struct {
	Name  string
	Title string
	Run   Func
}

// minScore is the lowest fuzzy score still treated as a match.
const minScore = -10

type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd, replacing any command with the same name.
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.Name] = cmd
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Commands returns the registered commands sorted by name.
func (r *Registry) Commands() []Command {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()
	cmds := make([]Command, 0, len(names))
	for _, name := range names {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}

// Lookup resolves name exactly, then by fuzzy match. A fuzzy match must be
// the single best scoring candidate.
func (r *Registry) Lookup(name string) (Command, error) {
	r.mu.RLock()
	cmd, ok := r.commands[name]
	r.mu.RUnlock()
	if ok {
		return cmd, nil
	}

	names := r.Names()
	matches := fuzzy.Find(name, names)
	if name == "" || len(matches) == 0 || matches[0].Score < minScore {
		return Command{}, &UnknownCommandError{Name: name}
	}

	if len(matches) > 1 && matches[0].Score == matches[1].Score {
		var candidates []string
		for _, m := range matches {
			if m.Score != matches[0].Score {
				break
			}
			candidates = append(candidates, m.Str)
		}
		return Command{}, &AmbiguousCommandError{Name: name, Candidates: candidates}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[matches[0].Str], nil
}

// Run looks up name and runs the command.
func (r *Registry) Run(ctx context.Context, name string) error {
	cmd, err := r.Lookup(name)
	if err != nil {
		return err
	}
	if err := cmd.Run(ctx); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return nil
}
