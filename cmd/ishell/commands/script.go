package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/intensifier/ishell/internal/scripts"
)

var scriptCheck bool

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Manage user scripts",
	Long: `Manage the user scripts of the configured repository. Each namespace
holds one script; adding a script replaces the namespace's previous one.`,
}

var scriptAddCmd = &cobra.Command{
	Use:   "add <namespace> <file>",
	Short: "Store a script under a namespace",
	Args:  cobra.ExactArgs(2),
	RunE:  runScriptAdd,
}

var scriptRmCmd = &cobra.Command{
	Use:     "rm <namespace>",
	Aliases: []string{"remove"},
	Short:   "Remove the script of a namespace",
	Args:    cobra.ExactArgs(1),
	RunE:    runScriptRm,
}

var scriptLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List namespaces with a stored script",
	RunE:    runScriptLs,
}

func init() {
	scriptAddCmd.Flags().BoolVar(&scriptCheck, "check", true, "Evaluate the script before storing it")

	scriptCmd.AddCommand(scriptAddCmd)
	scriptCmd.AddCommand(scriptRmCmd)
	scriptCmd.AddCommand(scriptLsCmd)
}

func runScriptAdd(cmd *cobra.Command, args []string) error {
	namespace, file := args[0], args[1]
	if err := scripts.ValidateNamespace(namespace); err != nil {
		return err
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if scriptCheck {
		if err := a.manager.CheckUserScript(ctx, string(src)); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	rec, err := a.repo.Save(ctx, scripts.NewRecord(namespace, string(src)))
	if err != nil {
		return err
	}
	fmt.Printf("saved %s (%s)\n", rec.Namespace, rec.ID)
	return nil
}

func runScriptRm(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return a.repo.Delete(cmd.Context(), args[0])
}

func runScriptLs(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	namespaces, err := a.repo.Namespaces(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAMESPACE\tID\tUPDATED")
	for _, ns := range namespaces {
		recs, err := a.repo.FetchUserScripts(ctx, ns)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.Namespace, rec.ID, rec.Updated.Local().Format(time.DateTime))
		}
	}
	return tw.Flush()
}
