package command

import (
	"sort"
	"strings"
	"sync"
)

// Registry stores commands by name plus an alias index. It is owned state
// injected into the dispatcher, not a package global, so several bot
// instances can coexist in tests.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	aliases  map[string]string // alias -> canonical name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command. It returns false without mutating anything when
// the name is empty or no handler is set. Re-registering an existing name
// overwrites it silently (hot reload); an alias colliding with another name
// or alias is last-write-wins.
func (r *Registry) Register(cmd *Command) bool {
	if cmd == nil || strings.TrimSpace(cmd.Name) == "" || cmd.Handler == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(strings.TrimSpace(cmd.Name))

	// Drop alias entries of the command being replaced.
	if old, exists := r.commands[name]; exists {
		for _, a := range old.Aliases {
			a = strings.ToLower(strings.TrimSpace(a))
			if r.aliases[a] == name {
				delete(r.aliases, a)
			}
		}
	}

	r.commands[name] = cmd
	for _, a := range cmd.Aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		r.aliases[a] = name
	}
	return true
}

// Resolve looks a command up by name first, then by alias.
func (r *Registry) Resolve(nameOrAlias string) (*Command, bool) {
	key := strings.ToLower(strings.TrimSpace(nameOrAlias))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if cmd, ok := r.commands[key]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[key]; ok {
		if cmd, ok := r.commands[canonical]; ok {
			return cmd, true
		}
	}
	return nil, false
}

// List returns all registered commands sorted by name.
func (r *Registry) List() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		list = append(list, cmd)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}
