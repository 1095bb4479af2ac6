package command

import (
	"fmt"
	"sync"
)

// Registry is the ordered set of registered commands, unique by ID.
type Registry struct {
	mu       sync.RWMutex
	commands []*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends c unless a command with the same ID is registered.
func (r *Registry) Add(c *Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.commands {
		if existing.ID == c.ID {
			return fmt.Errorf("%w: %s", ErrDuplicate, c.ID)
		}
	}
	r.commands = append(r.commands, c)
	return nil
}

// All returns a snapshot of the registered commands in registration order.
func (r *Registry) All() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Command(nil), r.commands...)
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Find returns the first command satisfying match.
func (r *Registry) Find(match func(*Command) bool) *Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.commands {
		if match(c) {
			return c
		}
	}
	return nil
}

// Filter returns the commands satisfying match.
func (r *Registry) Filter(match func(*Command) bool) []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Command
	for _, c := range r.commands {
		if match(c) {
			out = append(out, c)
		}
	}
	return out
}

// RemoveFunc removes every command satisfying match and returns them.
func (r *Registry) RemoveFunc(match func(*Command) bool) []*Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*Command
	kept := r.commands[:0:0]
	for _, c := range r.commands {
		if match(c) {
			removed = append(removed, c)
		} else {
			kept = append(kept, c)
		}
	}
	r.commands = kept
	return removed
}

// Remove removes the command with the ID of c.
func (r *Registry) Remove(c *Command) bool {
	return len(r.RemoveFunc(func(x *Command) bool { return x.ID == c.ID })) > 0
}

// Clear removes every command.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.commands = nil
	r.mu.Unlock()
}
