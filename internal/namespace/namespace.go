// Package namespace groups commands by the module or script that created
// them and scopes the capability surfaces handed to that code.
package namespace

import (
	"context"
	"sync"

	"github.com/intensifier/ishell/internal/command"
)

// Builtin namespace names.
const (
	IShell      = "iShell"
	Browser     = "Browser"
	AI          = "AI"
	Tabs        = "Tabs"
	Utility     = "Utility"
	Search      = "Search"
	Syndication = "Syndication"
	Mail        = "Mail"
	Translation = "Translation"
	Scrapyard   = "Scrapyard"
	More        = "More Commands"
)

// Hook is a namespace lifecycle callback.
type Hook func(ctx context.Context) error

// Namespace owns the commands created through it. Ownership is recorded on
// the commands only by AssignNamespaceToCommands, once loading of the
// module or script has completed.
type Namespace struct {
	Name      string
	Annotated bool

	// OnModuleCommandsLoaded runs after the commands of this module loaded.
	OnModuleCommandsLoaded Hook
	// OnBuiltinCommandsLoaded runs after every builtin module loaded.
	OnBuiltinCommandsLoaded Hook

	mu       sync.Mutex
	commands []*command.Command
}

// New creates a namespace.
func New(name string) *Namespace {
	return &Namespace{Name: name}
}

// NewAnnotated creates a namespace for a class-syntax module.
func NewAnnotated(name string) *Namespace {
	return &Namespace{Name: name, Annotated: true}
}

// Add records cmd as created through the namespace.
func (ns *Namespace) Add(cmd *command.Command) {
	ns.mu.Lock()
	ns.commands = append(ns.commands, cmd)
	ns.mu.Unlock()
}

// Commands returns the commands created through the namespace.
func (ns *Namespace) Commands() []*command.Command {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return append([]*command.Command(nil), ns.commands...)
}

// Reset forgets the created commands.
func (ns *Namespace) Reset() {
	ns.mu.Lock()
	ns.commands = nil
	ns.mu.Unlock()
}

// AssignNamespaceToCommands tags every created command with the namespace
// name and origin.
func (ns *Namespace) AssignNamespaceToCommands(builtin bool) {
	for _, cmd := range ns.Commands() {
		cmd.Assign(ns.Name, builtin)
	}
}
