// Package commands lists the builtin command modules.
package commands

import (
	"github.com/intensifier/ishell/internal/commands/ishell"
	searchcmd "github.com/intensifier/ishell/internal/commands/search"
	"github.com/intensifier/ishell/internal/commands/utility"
	"github.com/intensifier/ishell/internal/loader"
)

// Modules returns the builtin modules in load order.
func Modules() []loader.Module {
	return []loader.Module{
		ishell.Module(),
		searchcmd.Module(),
		utility.Module(),
	}
}
