package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/sentence"
)

var (
	listKind string
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded commands",
	RunE:  runList,
}

var runCmd = &cobra.Command{
	Use:   "run [input...]",
	Short: "Resolve input to a command and execute it",
	Example: `  ishell run wikipedia gophers
  ishell run base64-encode hello`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var previewCmd = &cobra.Command{
	Use:   "preview [input...]",
	Short: "Resolve input to a command and print its preview",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPreview,
}

var enableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a disabled command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDisabled(args[0], false)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDisabled(args[0], true)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the input history, most recent first",
	RunE:  runHistory,
}

func init() {
	listCmd.Flags().StringVar(&listKind, "kind", "", "Only list builtin or user commands")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	a.load(cmd.Context())

	var cmds []*command.Command
	switch listKind {
	case "":
		cmds = a.manager.Commands()
	case "builtin":
		cmds = a.manager.BuiltinCommands()
	case "user":
		cmds = a.manager.UserCommands()
	default:
		return fmt.Errorf("unknown kind %q: want builtin or user", listKind)
	}

	if listJSON {
		out := make([]command.Summary, 0, len(cmds))
		for _, c := range cmds {
			out = append(out, c.Summarize())
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tNAMESPACE\tKIND\tDESCRIPTION")
	for _, c := range cmds {
		name := c.Name
		if c.Disabled() {
			name += " (disabled)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, c.Namespace(), c.Kind, c.Description)
	}
	return tw.Flush()
}

// resolve loads the commands and parses input into a sentence.
func resolve(ctx context.Context, a *app, args []string) (*sentence.Sentence, error) {
	a.load(ctx)
	input := strings.Join(args, " ")
	s, err := sentence.NewParser(a.manager).Parse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", input, err)
	}
	return s, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	s, err := resolve(ctx, a, args)
	if err != nil {
		return err
	}
	if !a.manager.CallExecute(ctx, s) {
		return fmt.Errorf("%s failed, see the log for details", s.Command().Name)
	}
	a.manager.CommandHistoryPush(s.Input)
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	s, err := resolve(ctx, a, args)
	if err != nil {
		return err
	}
	var out command.Buffer
	if !a.manager.CallPreview(ctx, s, &out) {
		return fmt.Errorf("%s preview failed, see the log for details", s.Command().Name)
	}
	fmt.Println(out.Content())
	return nil
}

func setDisabled(name string, disabled bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	a.load(context.Background())

	c := a.manager.GetCommandByName(name)
	if c == nil {
		return fmt.Errorf("no command named %q", name)
	}
	if disabled {
		a.manager.DisableCommand(c)
	} else {
		a.manager.EnableCommand(c)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	a.load(cmd.Context())

	for _, input := range a.manager.CommandHistory() {
		fmt.Println(input)
	}
	return nil
}
