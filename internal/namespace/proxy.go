package namespace

import (
	"github.com/intensifier/ishell/internal/cmdapi"
	"github.com/intensifier/ishell/internal/command"
)

// creator routes creation calls to a target and records the results in a
// namespace. An inert creator registers nothing.
type creator struct {
	ns     *Namespace
	target cmdapi.Creator
	inert  bool
}

func (c creator) record(cmd *command.Command) *command.Command {
	if cmd != nil && c.ns != nil {
		c.ns.Add(cmd)
	}
	return cmd
}

func (c creator) CreateCommand(opts command.Options) *command.Command {
	if c.inert {
		return nil
	}
	return c.record(c.target.CreateCommand(opts))
}

func (c creator) CreateSearchCommand(opts command.SearchOptions) *command.Command {
	if c.inert {
		return nil
	}
	return c.record(c.target.CreateSearchCommand(opts))
}

func (c creator) CreateCaptureCommand(opts command.CaptureOptions) *command.Command {
	if c.inert {
		return nil
	}
	return c.record(c.target.CreateCaptureCommand(opts))
}

func (c creator) AddObjectCommand(obj cmdapi.Object, args cmdapi.ArgumentMap) *command.Command {
	if c.inert {
		return nil
	}
	return c.record(c.target.AddObjectCommand(obj, args))
}

// APIProxy is a namespace-scoped view of a CommandAPI. The creation
// methods are intercepted; everything else is forwarded to the embedded
// API.
type APIProxy struct {
	cmdapi.CommandAPI
	create creator
}

// NewAPIProxy scopes api to ns. With inert set, creation calls register
// nothing and return nil.
func NewAPIProxy(ns *Namespace, api cmdapi.CommandAPI, inert bool) *APIProxy {
	return &APIProxy{CommandAPI: api, create: creator{ns: ns, target: api, inert: inert}}
}

// CreateCommand creates a command owned by the proxy's namespace.
func (p *APIProxy) CreateCommand(opts command.Options) *command.Command {
	return p.create.CreateCommand(opts)
}

// CreateSearchCommand creates a search command owned by the proxy's
// namespace.
func (p *APIProxy) CreateSearchCommand(opts command.SearchOptions) *command.Command {
	return p.create.CreateSearchCommand(opts)
}

// CreateCaptureCommand creates a capture command owned by the proxy's
// namespace.
func (p *APIProxy) CreateCaptureCommand(opts command.CaptureOptions) *command.Command {
	return p.create.CreateCaptureCommand(opts)
}

// AddObjectCommand registers a class-syntax command instance in the
// proxy's namespace.
func (p *APIProxy) AddObjectCommand(obj cmdapi.Object, args cmdapi.ArgumentMap) *command.Command {
	return p.create.AddObjectCommand(obj, args)
}

// UtilsProxy is a namespace-scoped view of the utility API.
type UtilsProxy struct {
	cmdapi.Utils
	create creator
}

// NewUtilsProxy scopes utils to ns. With inert set, creation calls register
// nothing and return nil.
func NewUtilsProxy(ns *Namespace, utils cmdapi.Utils, inert bool) *UtilsProxy {
	return &UtilsProxy{Utils: utils, create: creator{ns: ns, target: utils, inert: inert}}
}

// CreateCommand is APIProxy.CreateCommand on the utility surface.
func (p *UtilsProxy) CreateCommand(opts command.Options) *command.Command {
	return p.create.CreateCommand(opts)
}

// CreateSearchCommand is APIProxy.CreateSearchCommand on the utility
// surface.
func (p *UtilsProxy) CreateSearchCommand(opts command.SearchOptions) *command.Command {
	return p.create.CreateSearchCommand(opts)
}

// CreateCaptureCommand is APIProxy.CreateCaptureCommand on the utility
// surface.
func (p *UtilsProxy) CreateCaptureCommand(opts command.CaptureOptions) *command.Command {
	return p.create.CreateCaptureCommand(opts)
}

// AddObjectCommand is APIProxy.AddObjectCommand on the utility surface.
func (p *UtilsProxy) AddObjectCommand(obj cmdapi.Object, args cmdapi.ArgumentMap) *command.Command {
	return p.create.AddObjectCommand(obj, args)
}

// Bind returns both capability surfaces scoped to ns.
func (ns *Namespace) Bind(api cmdapi.CommandAPI, utils cmdapi.Utils) (*APIProxy, *UtilsProxy) {
	return NewAPIProxy(ns, api, false), NewUtilsProxy(ns, utils, false)
}
