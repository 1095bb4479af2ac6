// Package loader loads command modules: builtin modules compiled into the
// binary and user scripts evaluated in isolated interpreters.
package loader

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/intensifier/ishell/internal/cmdapi"
	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/event"
	"github.com/intensifier/ishell/internal/logging"
	"github.com/intensifier/ishell/internal/namespace"
	"github.com/intensifier/ishell/internal/scripts"
)

// ErrNoNamespace is reported for modules that produce no named namespace.
var ErrNoNamespace = errors.New("module has no namespace")

// ImportFunc builds a module's namespace, creating its commands through
// api and utils.
type ImportFunc func(ctx context.Context, api cmdapi.CommandAPI, utils cmdapi.Utils) (*namespace.Namespace, error)

// Module is a builtin command module.
type Module struct {
	Path string
	// Platforms restricts the module to the listed platforms. Empty means
	// every platform.
	Platforms []string
	Import    ImportFunc
	// Source is the class-syntax source of an annotated module. It is
	// evaluated into the namespace returned by Import.
	Source string
}

func (m Module) supports(platform string) bool {
	if len(m.Platforms) == 0 {
		return true
	}
	for _, p := range m.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// Host is the command manager as seen by the loader.
type Host interface {
	cmdapi.CommandAPI
	cmdapi.Utils

	RemoveCommand(cmd *command.Command) bool
	UnloadUserCommands(namespace string) []*command.Command
}

// Options configures a Loader.
type Options struct {
	Modules  []Module
	Platform string
	// Constrained evaluates user scripts one at a time.
	Constrained    bool
	Sources        []scripts.Repository
	AllowedImports []string
	Bus            *event.Bus
	Logger         *zerolog.Logger
}

// Loader loads builtin modules and user scripts into a Host.
type Loader struct {
	host        Host
	eval        *Evaluator
	modules     []Module
	platform    string
	constrained bool
	sources     []scripts.Repository
	bus         *event.Bus
	log         zerolog.Logger
}

// New creates a loader for host.
func New(host Host, opts Options) *Loader {
	l := &Loader{
		host:        host,
		eval:        NewEvaluator(host, host, opts.AllowedImports),
		modules:     opts.Modules,
		platform:    opts.Platform,
		constrained: opts.Constrained,
		sources:     opts.Sources,
		bus:         opts.Bus,
		log:         logging.Component("loader"),
	}
	if opts.Logger != nil {
		l.log = *opts.Logger
	}
	return l
}

// Evaluator returns the script evaluator.
func (l *Loader) Evaluator() *Evaluator {
	return l.eval
}

func (l *Loader) publish(t event.EventType, data any) {
	if l.bus != nil {
		l.bus.Publish(event.Event{Type: t, Data: data})
	}
}

// runHook runs a lifecycle hook, logging its failure or panic.
func (l *Loader) runHook(ctx context.Context, ns, phase string, hook namespace.Hook) {
	if hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().
				Str("namespace", ns).
				Str("phase", phase).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("hook panicked")
		}
	}()
	if err := hook(ctx); err != nil {
		l.log.Error().Err(err).Str("namespace", ns).Str("phase", phase).Msg("hook failed")
	}
}

func (l *Loader) importModule(ctx context.Context, m Module) (ns *namespace.Namespace, err error) {
	defer func() {
		if r := recover(); r != nil {
			ns, err = nil, fmt.Errorf("import panic: %v\n%s", r, debug.Stack())
		}
	}()

	if m.Import == nil {
		return nil, ErrNoNamespace
	}
	ns, err = m.Import(ctx, l.host, l.host)
	if err != nil {
		return nil, err
	}
	if ns == nil || ns.Name == "" {
		return nil, ErrNoNamespace
	}
	if ns.Annotated && m.Source != "" {
		if err := l.eval.Eval(ctx, ns, m.Source, false); err != nil {
			return ns, fmt.Errorf("evaluate annotated source: %w", err)
		}
	}
	return ns, nil
}

// LoadBuiltinCommands imports every module supported on the platform
// concurrently. Each loaded namespace has its commands attributed as builtin
// and its OnModuleCommandsLoaded hook run; once every import settled, the
// OnBuiltinCommandsLoaded hooks run. Failing modules are logged and skipped.
func (l *Loader) LoadBuiltinCommands(ctx context.Context) []*namespace.Namespace {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		loaded = make([]*namespace.Namespace, len(l.modules))
	)

	for i, m := range l.modules {
		if !m.supports(l.platform) {
			l.log.Debug().Str("module", m.Path).Str("platform", l.platform).Msg("module skipped on platform")
			continue
		}
		i, m := i, m
		g.Go(func() error {
			ns, err := l.importModule(ctx, m)
			if err != nil {
				l.log.Error().Err(err).Str("module", m.Path).Msg("error loading module")
				l.publish(event.ModuleFailed, event.ModuleFailedData{Path: m.Path, Error: err.Error()})
			}
			if ns == nil {
				return nil
			}
			ns.AssignNamespaceToCommands(true)
			l.runHook(ctx, ns.Name, "onModuleCommandsLoaded", ns.OnModuleCommandsLoaded)

			mu.Lock()
			loaded[i] = ns
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	namespaces := make([]*namespace.Namespace, 0, len(loaded))
	for _, ns := range loaded {
		if ns != nil {
			namespaces = append(namespaces, ns)
		}
	}
	for _, ns := range namespaces {
		l.runHook(ctx, ns.Name, "onBuiltinCommandsLoaded", ns.OnBuiltinCommandsLoaded)
	}
	return namespaces
}

func (l *Loader) fetch(ctx context.Context, ns string) []scripts.Record {
	var records []scripts.Record
	for _, src := range l.sources {
		if src == nil {
			continue
		}
		recs, err := src.FetchUserScripts(ctx, ns)
		if err != nil {
			l.log.Error().Err(err).Str("namespace", ns).Msg("error fetching user scripts")
			continue
		}
		records = append(records, recs...)
	}
	return records
}

// LoadUserCommands reloads user scripts. With a namespace, only that
// namespace's commands are unloaded and reloaded; otherwise every user
// command is. A failing script is logged and the commands it created are
// removed; sibling scripts are unaffected. Commands of scripts that
// evaluated cleanly are attributed to their namespace once all scripts
// settled.
func (l *Loader) LoadUserCommands(ctx context.Context, ns string) []*namespace.Namespace {
	records := l.fetch(ctx, ns)
	l.host.UnloadUserCommands(ns)

	var (
		g       errgroup.Group
		mu      sync.Mutex
		touched []*namespace.Namespace
	)
	if l.constrained {
		g.SetLimit(1)
	}

	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			scope := namespace.New(rec.Namespace)
			if err := l.eval.Eval(ctx, scope, rec.Script, false); err != nil {
				l.log.Error().Err(err).Str("namespace", rec.Namespace).Msg("error evaluating user script")
				l.publish(event.ScriptFailed, event.ScriptFailedData{Namespace: rec.Namespace, Error: err.Error()})
				for _, cmd := range scope.Commands() {
					l.host.RemoveCommand(cmd)
				}
				return nil
			}
			mu.Lock()
			touched = append(touched, scope)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, scope := range touched {
		scope.AssignNamespaceToCommands(false)
	}
	return touched
}

// CheckUserScript evaluates script with inert capability surfaces and
// returns the evaluation error, if any. Nothing is registered.
func (l *Loader) CheckUserScript(ctx context.Context, script string) error {
	return l.eval.Eval(ctx, namespace.New(""), script, true)
}
