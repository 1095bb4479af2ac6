package command

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrDuplicate   = errors.New("command already registered")
	ErrNoName      = errors.New("command has no name")
	ErrInvalidRole = errors.New("invalid argument role")

	// ErrFetchAborted marks a network fetch cancelled by a newer request.
	ErrFetchAborted = errors.New("fetch aborted")
	// ErrDeadObject marks access to a host object that was torn down.
	ErrDeadObject = errors.New("can't access dead object")
)

// IsBenign reports whether a handler failure is an expected condition that
// should not be logged.
func IsBenign(err error) bool {
	return errors.Is(err, ErrFetchAborted) ||
		errors.Is(err, ErrDeadObject) ||
		errors.Is(err, context.Canceled)
}

// Arg is the value bound to one argument role of a sentence.
type Arg struct {
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
	Summary string `json:"summary,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Args maps roles to bound values.
type Args map[string]Arg

// Text returns the text bound to role, or "".
func (a Args) Text(role string) string {
	return a[role].Text
}

// Object returns the text bound to the object role.
func (a Args) Object() string {
	return a.Text(RoleObject)
}

// Display is the surface a preview renders into.
type Display interface {
	Set(content string)
	Content() string
}

// Buffer is an in-memory Display.
type Buffer struct {
	mu      sync.Mutex
	content string
}

// Set implements Display.
func (b *Buffer) Set(content string) {
	b.mu.Lock()
	b.content = content
	b.mu.Unlock()
}

// Content implements Display.
func (b *Buffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

// Bin is the persistent key/value storage of one command.
type Bin interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// Handler signatures. The Bin is always the last argument.
type (
	PreviewFunc func(ctx context.Context, args Args, display Display, bin Bin) error
	ExecuteFunc func(ctx context.Context, args Args, bin Bin) error
	LoadFunc    func(ctx context.Context, bin Bin) error
	InitFunc    func(ctx context.Context, display Display, bin Bin) error
)

// Sentence is a resolved input: a command and its bound arguments.
type Sentence interface {
	Command() *Command
	Args() Args
}

// Kind distinguishes commands created through the specialised builders.
type Kind string

const (
	KindCommand Kind = "command"
	KindSearch  Kind = "search"
	KindCapture Kind = "capture"
)

// Command is a registered command.
type Command struct {
	ID          string     `json:"id"`
	UUID        string     `json:"uuid"`
	Name        string     `json:"name"`
	Names       []string   `json:"names"`
	Kind        Kind       `json:"kind"`
	Arguments   []Argument `json:"arguments"`
	Homepage    string     `json:"homepage,omitempty"`
	Description string     `json:"description,omitempty"`
	Help        string     `json:"help,omitempty"`
	Author      string     `json:"author,omitempty"`
	License     string     `json:"license,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	PreviewText string     `json:"previewText,omitempty"`
	// PreviewDelay is the debounce interval of the preview handler.
	PreviewDelay time.Duration `json:"previewDelay,omitempty"`
	Hidden       bool          `json:"hidden,omitempty"`
	Debug        bool          `json:"debug,omitempty"`

	Preview PreviewFunc `json:"-"`
	Execute ExecuteFunc `json:"-"`
	Load    LoadFunc    `json:"-"`
	Init    InitFunc    `json:"-"`

	mu        sync.RWMutex
	namespace string
	builtin   bool
	disabled  bool
}

// Namespace returns the owning namespace name.
func (c *Command) Namespace() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.namespace
}

// Builtin reports whether the command ships with ishell.
func (c *Command) Builtin() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.builtin
}

// Disabled reports whether the command is disabled.
func (c *Command) Disabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.disabled
}

// Assign tags the command with its namespace and origin.
func (c *Command) Assign(namespace string, builtin bool) {
	c.mu.Lock()
	c.namespace = namespace
	c.builtin = builtin
	c.mu.Unlock()
}

// SetDisabled sets the disabled flag.
func (c *Command) SetDisabled(disabled bool) {
	c.mu.Lock()
	c.disabled = disabled
	c.mu.Unlock()
}

// HasName reports whether name is the primary name or an alias.
func (c *Command) HasName(name string) bool {
	if c.Name == name {
		return true
	}
	for _, n := range c.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Summary is the JSON view of a command including its mutable state.
type Summary struct {
	ID          string     `json:"id"`
	UUID        string     `json:"uuid"`
	Name        string     `json:"name"`
	Names       []string   `json:"names"`
	Kind        Kind       `json:"kind"`
	Namespace   string     `json:"namespace,omitempty"`
	Builtin     bool       `json:"builtin"`
	Disabled    bool       `json:"disabled"`
	Description string     `json:"description,omitempty"`
	Help        string     `json:"help,omitempty"`
	Arguments   []Argument `json:"arguments"`
}

// Summarize returns the JSON view of c.
func (c *Command) Summarize() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Summary{
		ID:          c.ID,
		UUID:        c.UUID,
		Name:        c.Name,
		Names:       c.Names,
		Kind:        c.Kind,
		Namespace:   c.namespace,
		Builtin:     c.builtin,
		Disabled:    c.disabled,
		Description: c.Description,
		Help:        c.Help,
		Arguments:   c.Arguments,
	}
}

// previewDefault renders the static preview text, the description or the
// help of the command, falling back to its name.
func (c *Command) previewDefault(_ context.Context, _ Args, display Display, _ Bin) error {
	for _, text := range []string{c.PreviewText, c.Description, c.Help} {
		if strings.TrimSpace(text) != "" {
			display.Set(text)
			return nil
		}
	}
	display.Set(c.Name)
	return nil
}
