package cmdmanager

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/event"
	"github.com/intensifier/ishell/internal/scripts"
)

// LoadCommands rebuilds the registry: builtin modules are imported, user
// scripts are loaded when the environment allows them, hidden commands are
// dropped, disabled flags are applied and the load handlers of enabled
// commands run.
func (m *Manager) LoadCommands(ctx context.Context) {
	m.registry.Clear()

	m.loader.LoadBuiltinCommands(ctx)
	if m.userScripts {
		m.loader.LoadUserCommands(ctx, "")
	} else {
		m.log.Debug().Msg("user scripts disabled in this environment")
	}

	m.prepare()
	m.runLoadHandlers(ctx, m.registry.All())

	builtin := len(m.BuiltinCommands())
	total := m.registry.Len()
	m.log.Info().Int("total", total).Int("builtin", builtin).Msg("commands loaded")
	m.publish(event.CommandsLoaded, event.CommandsLoadedData{Total: total, Builtin: builtin, User: total - builtin})
}

// LoadUserCommands reloads the user scripts of namespace, or all user
// scripts when namespace is empty.
func (m *Manager) LoadUserCommands(ctx context.Context, namespace string) {
	if !m.userScripts {
		return
	}
	touched := m.loader.LoadUserCommands(ctx, namespace)
	m.prepare()

	var loaded []*command.Command
	for _, ns := range touched {
		loaded = append(loaded, ns.Commands()...)
	}
	m.runLoadHandlers(ctx, loaded)
}

// WatchScripts reloads a namespace whenever its script in dir changes.
func (m *Manager) WatchScripts(dir string) (*scripts.Watcher, error) {
	w, err := scripts.NewWatcher(dir, scripts.DefaultSettle, func(ns string) {
		m.log.Info().Str("namespace", ns).Msg("reloading user script")
		m.LoadUserCommands(context.Background(), ns)
	}, m.log)
	if err != nil {
		return nil, err
	}
	w.Start()
	return w, nil
}

// prepare drops hidden commands, keeping debug ones in debug mode, and
// syncs the disabled flags with the disabled set.
func (m *Manager) prepare() {
	m.registry.RemoveFunc(func(c *command.Command) bool {
		return c.Hidden && !(m.debug && c.Debug)
	})
	disabled := m.disabledSnapshot()
	for _, c := range m.registry.All() {
		c.SetDisabled(disabled[c.Name])
	}
}

func (m *Manager) runLoadHandlers(ctx context.Context, cmds []*command.Command) {
	for _, c := range cmds {
		if c.Load == nil || c.Disabled() || m.registry.Find(func(r *command.Command) bool { return r == c }) == nil {
			continue
		}
		load := c.Load
		m.invoke(ctx, c, "load", func(bin command.Bin) error { return load(ctx, bin) })
	}
}

// InitializeCommands runs the init handler of every enabled command,
// rendering into display.
func (m *Manager) InitializeCommands(ctx context.Context, display command.Display) {
	for _, c := range m.registry.All() {
		if c.Init == nil || c.Disabled() {
			continue
		}
		initFn := c.Init
		m.invoke(ctx, c, "init", func(bin command.Bin) error { return initFn(ctx, display, bin) })
	}
}

// invoke runs a handler of cmd with a freshly fetched bin. Failures and
// panics are logged and reported as false; benign failures are reported
// without logging.
func (m *Manager) invoke(ctx context.Context, cmd *command.Command, phase string, fn func(command.Bin) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().
				Str("command", cmd.Name).
				Str("phase", phase).
				Err(fmt.Errorf("panic: %v", r)).
				Str("stack", string(debug.Stack())).
				Msg("command handler failed")
			ok = false
		}
	}()

	bin, err := m.store.MakeBin(ctx, cmd.ID)
	if err != nil {
		m.log.Error().Err(err).Str("command", cmd.Name).Str("phase", phase).Msg("error opening command bin")
		return false
	}

	if err := fn(bin); err != nil {
		if !command.IsBenign(err) {
			m.log.Error().
				Str("command", cmd.Name).
				Str("phase", phase).
				Err(err).
				Str("stack", string(debug.Stack())).
				Msg("command handler failed")
		}
		return false
	}
	return true
}

// CallPreview runs the preview handler of the sentence's command. It
// reports whether the handler completed without failure.
func (m *Manager) CallPreview(ctx context.Context, s command.Sentence, display command.Display) bool {
	cmd := sentenceCommand(s)
	if cmd == nil || cmd.Preview == nil {
		return false
	}
	preview, args := cmd.Preview, s.Args()
	return m.invoke(ctx, cmd, "preview", func(bin command.Bin) error {
		return preview(ctx, args, display, bin)
	})
}

// CallExecute runs the execute handler of the sentence's command. It
// reports whether the handler completed without failure.
func (m *Manager) CallExecute(ctx context.Context, s command.Sentence) bool {
	cmd := sentenceCommand(s)
	if cmd == nil || cmd.Execute == nil {
		return false
	}
	execute, args := cmd.Execute, s.Args()
	return m.invoke(ctx, cmd, "execute", func(bin command.Bin) error {
		return execute(ctx, args, bin)
	})
}

func sentenceCommand(s command.Sentence) *command.Command {
	if s == nil {
		return nil
	}
	return s.Command()
}

// Namespaces returns the names of the namespaces owning registered
// commands, builtin ones first.
func (m *Manager) Namespaces() []string {
	seen := map[string]bool{}
	var builtin, user []string
	for _, c := range m.registry.All() {
		ns := c.Namespace()
		if ns == "" || seen[ns] {
			continue
		}
		seen[ns] = true
		if c.Builtin() {
			builtin = append(builtin, ns)
		} else {
			user = append(user, ns)
		}
	}
	return append(builtin, user...)
}
