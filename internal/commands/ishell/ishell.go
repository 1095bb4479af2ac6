// Package ishell provides the launcher's own commands: help, enabling and
// disabling commands, and note taking.
package ishell

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/intensifier/ishell/internal/cmdapi"
	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/loader"
	"github.com/intensifier/ishell/internal/namespace"
	"github.com/intensifier/ishell/internal/nountype"
)

// NotesCollection is the capture collection of the note command.
const NotesCollection = "notes"

// Module returns the builtin module.
func Module() loader.Module {
	return loader.Module{Path: "ishell", Import: Import}
}

// Import creates the commands of the iShell namespace.
func Import(_ context.Context, api cmdapi.CommandAPI, utils cmdapi.Utils) (*namespace.Namespace, error) {
	ns := namespace.New(namespace.IShell)
	scoped, scopedUtils := ns.Bind(api, utils)

	names := nountype.NewList()
	commandName := nountype.New("command_name", "command name", names)

	scoped.CreateCommand(command.Options{
		Name:        "help",
		UUID:        "ishell-help",
		Description: "Lists the available commands or describes one.",
		Arguments:   command.RoleMap{"object command": commandName},
		Preview: func(_ context.Context, args command.Args, display command.Display, _ command.Bin) error {
			display.Set(help(api, args.Object()))
			return nil
		},
	})

	toggle := func(name, verb string, apply func(*command.Command)) {
		scoped.CreateCommand(command.Options{
			Name:        name,
			UUID:        "ishell-" + name,
			Description: strings.ToUpper(verb[:1]) + verb[1:] + "s a command.",
			Arguments:   command.RoleMap{"object command": commandName},
			Preview: func(_ context.Context, args command.Args, display command.Display, _ command.Bin) error {
				if args.Object() == "" {
					display.Set(fmt.Sprintf("Name the command to %s.", verb))
					return nil
				}
				display.Set(fmt.Sprintf("%s %q", strings.ToUpper(verb[:1])+verb[1:], args.Object()))
				return nil
			},
			Execute: func(_ context.Context, args command.Args, _ command.Bin) error {
				cmd := api.GetCommandByName(args.Object())
				if cmd == nil {
					return fmt.Errorf("unknown command %q", args.Object())
				}
				apply(cmd)
				return nil
			},
		})
	}
	toggle("enable-command", "enable", api.EnableCommand)
	toggle("disable-command", "disable", api.DisableCommand)

	scopedUtils.CreateCaptureCommand(command.CaptureOptions{
		Options: command.Options{
			Name:        "note",
			UUID:        "ishell-note",
			Description: "Saves a text note.",
		},
		Collection: NotesCollection,
	})

	ns.OnBuiltinCommandsLoaded = func(context.Context) error {
		names.Set(commandNames(api.Commands()))
		return nil
	}
	return ns, nil
}

func commandNames(cmds []*command.Command) []string {
	var out []string
	for _, c := range cmds {
		out = append(out, c.Name)
	}
	sort.Strings(out)
	return out
}

// help renders the description of the named command, or the list of
// commands grouped by namespace when name is empty or unknown.
func help(api cmdapi.CommandAPI, name string) string {
	if name != "" {
		if cmd := api.GetCommandByName(name); cmd != nil {
			var b strings.Builder
			fmt.Fprintf(&b, "# %s\n", cmd.Name)
			if len(cmd.Names) > 1 {
				fmt.Fprintf(&b, "\nAliases: %s\n", strings.Join(cmd.Names[1:], ", "))
			}
			for _, text := range []string{cmd.Description, cmd.Help} {
				if text != "" {
					fmt.Fprintf(&b, "\n%s\n", text)
				}
			}
			return b.String()
		}
	}

	groups := map[string][]string{}
	var order []string
	for _, c := range api.Commands() {
		if c.Disabled() {
			continue
		}
		ns := c.Namespace()
		if ns == "" {
			ns = "Other"
		}
		if _, ok := groups[ns]; !ok {
			order = append(order, ns)
		}
		groups[ns] = append(groups[ns], c.Name)
	}

	var b strings.Builder
	for _, ns := range order {
		fmt.Fprintf(&b, "## %s\n\n", ns)
		for _, name := range groups[ns] {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
