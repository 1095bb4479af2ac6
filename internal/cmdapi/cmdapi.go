// Package cmdapi defines the capability surfaces offered to command
// modules and scripts: the creation API and the utility API.
package cmdapi

import (
	"context"

	"github.com/intensifier/ishell/internal/command"
)

// Types re-exported to scripts.
type (
	Context        = context.Context
	Options        = command.Options
	SearchOptions  = command.SearchOptions
	CaptureOptions = command.CaptureOptions
	ParserSpec     = command.ParserSpec
	Args           = command.Args
	Arg            = command.Arg
	Display        = command.Display
	Bin            = command.Bin
	Command        = command.Command
	ArgumentMap    = command.RoleMap
	ArgumentList   = command.ArgumentList
	Argument       = command.Argument
	NounArgument   = command.NounArgument
)

// Creator is the command creation surface.
type Creator interface {
	CreateCommand(opts command.Options) *command.Command
	CreateSearchCommand(opts command.SearchOptions) *command.Command
	CreateCaptureCommand(opts command.CaptureOptions) *command.Command
	AddObjectCommand(obj Object, args ArgumentMap) *command.Command
}

// CommandAPI is the creation API together with registry queries.
type CommandAPI interface {
	Creator

	// FetchAborted reports whether err is an aborted fetch.
	FetchAborted(err error) bool
	DebugEnabled() bool
	Commands() []*command.Command
	GetCommandByName(name string) *command.Command
	EnableCommand(cmd *command.Command)
	DisableCommand(cmd *command.Command)
}

// Utils is the utility API.
type Utils interface {
	Creator

	OpenURL(ctx context.Context, url string) error
	Log(args ...any)
}

// Meta holds the annotation-derived fields of a class-syntax command.
// Command types embed it.
type Meta struct {
	Name         string
	Names        []string
	UUID         string
	PreviewDelay int
	PreviewText  string
	License      string
	Author       string
	Icon         string
	Homepage     string
	Description  string
	Help         string
}

// Object is a class-syntax command instance flattened into handler values.
type Object struct {
	Meta    Meta
	Preview command.PreviewFunc
	Execute command.ExecuteFunc
	Load    command.LoadFunc
	Init    command.InitFunc
}

// ObjectOptions converts an object command into a declaration.
func ObjectOptions(obj Object, args ArgumentMap) command.Options {
	opts := command.Options{
		Name:         obj.Meta.Name,
		Names:        obj.Meta.Names,
		UUID:         obj.Meta.UUID,
		Homepage:     obj.Meta.Homepage,
		Description:  obj.Meta.Description,
		Help:         obj.Meta.Help,
		Author:       obj.Meta.Author,
		License:      obj.Meta.License,
		Icon:         obj.Meta.Icon,
		PreviewDelay: obj.Meta.PreviewDelay,
		PreviewText:  obj.Meta.PreviewText,
		Preview:      obj.Preview,
		Execute:      obj.Execute,
		Load:         obj.Load,
		Init:         obj.Init,
	}
	if len(args) > 0 {
		opts.Arguments = args
	}
	return opts
}
