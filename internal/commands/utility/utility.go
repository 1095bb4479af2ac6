// Package utility provides text transformation commands. The commands are
// written in class syntax and registered by running the embedded source
// through the preprocessor when the module loads.
package utility

import (
	"context"
	_ "embed"

	"github.com/intensifier/ishell/internal/cmdapi"
	"github.com/intensifier/ishell/internal/loader"
	"github.com/intensifier/ishell/internal/namespace"
)

//go:embed utility.gos
var Source string

// Module returns the builtin module.
func Module() loader.Module {
	return loader.Module{Path: "utility", Import: Import, Source: Source}
}

// Import returns the annotated Utility namespace the source evaluates into.
func Import(context.Context, cmdapi.CommandAPI, cmdapi.Utils) (*namespace.Namespace, error) {
	return namespace.NewAnnotated(namespace.Utility), nil
}
