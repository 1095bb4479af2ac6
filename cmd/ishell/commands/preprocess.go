package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/intensifier/ishell/internal/preprocess"
)

var preprocessDiff bool

var preprocessCmd = &cobra.Command{
	Use:   "preprocess <file>",
	Short: "Print a script with its command classes turned into registrations",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreprocess,
}

func init() {
	preprocessCmd.Flags().BoolVar(&preprocessDiff, "diff", false, "Print a line diff against the source instead")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	out, err := preprocess.Transform(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if preprocessDiff {
		fmt.Print(preprocess.Diff(string(src), out))
		return nil
	}
	fmt.Print(out)
	return nil
}
