// Package cmdmanager owns the command registry: creation, lookup,
// enable/disable state, input history, loading and handler dispatch.
package cmdmanager

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/intensifier/ishell/internal/capture"
	"github.com/intensifier/ishell/internal/cmdapi"
	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/event"
	"github.com/intensifier/ishell/internal/loader"
	"github.com/intensifier/ishell/internal/logging"
	"github.com/intensifier/ishell/internal/scripts"
	"github.com/intensifier/ishell/internal/search"
	"github.com/intensifier/ishell/internal/storage"
	"github.com/intensifier/ishell/pkg/types"
)

// DefaultMaxHistoryItems caps the history when the configuration does not.
const DefaultMaxHistoryItems = 20

// ErrNoOpener is returned by OpenURL when no host opener is configured.
var ErrNoOpener = errors.New("no url opener configured")

// Options configures a Manager.
type Options struct {
	Config  *types.Config
	Storage *storage.Storage
	Modules []loader.Module
	Sources []scripts.Repository
	Bus     *event.Bus
	// Open opens URLs in the host.
	Open   search.OpenFunc
	Logger *zerolog.Logger
}

// Manager is the command manager. It implements both capability surfaces
// handed to command modules.
type Manager struct {
	registry *command.Registry
	loader   *loader.Loader
	store    *storage.Storage
	bus      *event.Bus
	search   *search.Builder
	open     search.OpenFunc
	log      zerolog.Logger

	debug       bool
	userScripts bool
	maxHistory  int

	mu       sync.Mutex
	disabled map[string]bool
	history  []string

	persistMu sync.Mutex
	persist   sync.WaitGroup
}

var (
	_ cmdapi.CommandAPI = (*Manager)(nil)
	_ cmdapi.Utils      = (*Manager)(nil)
	_ loader.Host       = (*Manager)(nil)
)

// New creates a manager and reads the persisted settings.
func New(opts Options) *Manager {
	cfg := opts.Config
	if cfg == nil {
		cfg = &types.Config{}
	}
	store := opts.Storage
	if store == nil {
		store = storage.NewWithFs(afero.NewMemMapFs(), "/")
	}

	m := &Manager{
		registry:    command.NewRegistry(),
		store:       store,
		bus:         opts.Bus,
		open:        opts.Open,
		log:         logging.Component("cmdmanager"),
		debug:       cfg.Debug,
		userScripts: cfg.Environment.AllowsUserScripts(),
		maxHistory:  cfg.MaxHistoryItems,
		disabled:    map[string]bool{},
	}
	if opts.Logger != nil {
		m.log = *opts.Logger
	}
	if m.maxHistory <= 0 {
		m.maxHistory = DefaultMaxHistoryItems
	}

	var timeout time.Duration
	var retries, maxResults int
	if s := cfg.Search; s != nil {
		timeout = time.Duration(s.Timeout) * time.Second
		retries = s.Retries
		maxResults = s.MaxResults
	}
	m.search = search.NewBuilder(search.NewFetcher(timeout, retries), m.OpenURL, maxResults)

	platform := cfg.Platform
	if platform == "" {
		platform = runtime.GOOS
	}
	var constrained bool
	if cfg.Environment != nil {
		constrained = cfg.Environment.Constrained
	}
	var allowed []string
	if cfg.Scripts != nil {
		allowed = cfg.Scripts.AllowedImports
	}
	m.loader = loader.New(m, loader.Options{
		Modules:        opts.Modules,
		Platform:       platform,
		Constrained:    constrained,
		Sources:        opts.Sources,
		AllowedImports: allowed,
		Bus:            opts.Bus,
		Logger:         opts.Logger,
	})

	m.loadSettings(context.Background())
	return m
}

func (m *Manager) publish(t event.EventType, data any) {
	if m.bus != nil {
		m.bus.Publish(event.Event{Type: t, Data: data})
	}
}

func commandData(cmd *command.Command) event.CommandData {
	return event.CommandData{
		UUID:      cmd.UUID,
		Name:      cmd.Name,
		Namespace: cmd.Namespace(),
		Builtin:   cmd.Builtin(),
	}
}

// CreateCommand normalizes and registers a declaration. It returns nil
// when the declaration is invalid or its id is already registered.
func (m *Manager) CreateCommand(opts command.Options) *command.Command {
	cmd, err := command.New(opts)
	if err != nil {
		m.log.Warn().Err(err).Str("command", opts.Name).Msg("invalid command declaration")
		return nil
	}
	if err := m.registry.Add(cmd); err != nil {
		m.log.Debug().Err(err).Str("command", cmd.Name).Msg("duplicate command rejected")
		return nil
	}

	m.mu.Lock()
	disabled := m.disabled[cmd.Name]
	m.mu.Unlock()
	cmd.SetDisabled(disabled)

	m.publish(event.CommandRegistered, commandData(cmd))
	return cmd
}

// CreateSearchCommand registers a search command.
func (m *Manager) CreateSearchCommand(opts command.SearchOptions) *command.Command {
	return m.CreateCommand(m.search.Options(opts))
}

// CreateCaptureCommand registers a capture command.
func (m *Manager) CreateCaptureCommand(opts command.CaptureOptions) *command.Command {
	return m.CreateCommand(capture.Options(opts))
}

// AddObjectCommand registers a class-syntax command instance.
func (m *Manager) AddObjectCommand(obj cmdapi.Object, args cmdapi.ArgumentMap) *command.Command {
	return m.CreateCommand(cmdapi.ObjectOptions(obj, args))
}

// FetchAborted reports whether err stems from an aborted fetch.
func (m *Manager) FetchAborted(err error) bool {
	return errors.Is(err, command.ErrFetchAborted)
}

// DebugEnabled reports whether debug-only commands are kept.
func (m *Manager) DebugEnabled() bool {
	return m.debug
}

// Commands returns every registered command in registration order.
func (m *Manager) Commands() []*command.Command {
	return m.registry.All()
}

// BuiltinCommands returns the builtin commands.
func (m *Manager) BuiltinCommands() []*command.Command {
	return m.registry.Filter(func(c *command.Command) bool { return c.Builtin() })
}

// UserCommands returns the user commands.
func (m *Manager) UserCommands() []*command.Command {
	return m.registry.Filter(func(c *command.Command) bool { return !c.Builtin() })
}

// GetCommandByUUID returns the command whose uuid equals uuid, ignoring case.
func (m *Manager) GetCommandByUUID(uuid string) *command.Command {
	return m.registry.Find(func(c *command.Command) bool { return strings.EqualFold(c.UUID, uuid) })
}

// GetCommandByName returns the command declaring name as its name or alias.
func (m *Manager) GetCommandByName(name string) *command.Command {
	return m.registry.Find(func(c *command.Command) bool { return c.HasName(name) })
}

// RemoveCommand unregisters cmd.
func (m *Manager) RemoveCommand(cmd *command.Command) bool {
	if cmd == nil || !m.registry.Remove(cmd) {
		return false
	}
	m.publish(event.CommandRemoved, commandData(cmd))
	return true
}

// UnloadUserCommands removes the user commands of namespace, or every user
// command when namespace is empty. Builtin commands are never removed.
func (m *Manager) UnloadUserCommands(namespace string) []*command.Command {
	removed := m.registry.RemoveFunc(func(c *command.Command) bool {
		return !c.Builtin() && (namespace == "" || c.Namespace() == namespace)
	})
	for _, cmd := range removed {
		m.publish(event.CommandRemoved, commandData(cmd))
	}
	return removed
}

// EnableCommand clears the disabled flag of cmd and persists the change.
func (m *Manager) EnableCommand(cmd *command.Command) {
	m.setDisabled(cmd, false)
}

// DisableCommand sets the disabled flag of cmd and persists the change.
func (m *Manager) DisableCommand(cmd *command.Command) {
	m.setDisabled(cmd, true)
}

func (m *Manager) setDisabled(cmd *command.Command, disabled bool) {
	if cmd == nil {
		return
	}
	m.mu.Lock()
	if m.disabled[cmd.Name] == disabled && cmd.Disabled() == disabled {
		m.mu.Unlock()
		return
	}
	if disabled {
		m.disabled[cmd.Name] = true
	} else {
		delete(m.disabled, cmd.Name)
	}
	m.mu.Unlock()

	cmd.SetDisabled(disabled)
	m.persistAsync(disabledKey, func() any { return m.disabledSnapshot() })

	if disabled {
		m.publish(event.CommandDisabled, commandData(cmd))
	} else {
		m.publish(event.CommandEnabled, commandData(cmd))
	}
}

// DisabledCommands returns the names in the disabled set.
func (m *Manager) DisabledCommands() map[string]bool {
	return m.disabledSnapshot()
}

// OpenURL opens url through the host opener.
func (m *Manager) OpenURL(ctx context.Context, url string) error {
	if m.open == nil {
		return ErrNoOpener
	}
	return m.open(ctx, url)
}

// Log writes a message on behalf of a command module.
func (m *Manager) Log(args ...any) {
	m.log.Info().Str("source", "module").Msg(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

// CheckUserScript evaluates script without registering anything and
// returns the evaluation error, if any.
func (m *Manager) CheckUserScript(ctx context.Context, script string) error {
	return m.loader.CheckUserScript(ctx, script)
}
