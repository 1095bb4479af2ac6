// Package commands provides the CLI commands for iShell.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/intensifier/ishell/internal/config"
	"github.com/intensifier/ishell/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	printLogs bool
	logLevel  string
	workDir   string
)

var rootCmd = &cobra.Command{
	Use:   "ishell",
	Short: "iShell - a keyword command launcher",
	Long: `iShell resolves typed input such as "wikipedia gophers" to a command,
previews what the command would do and executes it.

Commands come from builtin modules and from user scripts written in Go,
one script per namespace.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().StringVar(&workDir, "dir", "", "Project directory holding ishell.json")

	rootCmd.SetVersionTemplate(fmt.Sprintf("ishell %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(preprocessCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(debugCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetWorkDir returns the working directory from flag or current directory.
func GetWorkDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

// setupLogging initializes the global logger. Logs go to stderr with
// --print-logs and to the state directory otherwise.
func setupLogging(cmd *cobra.Command, args []string) error {
	cfg := logging.DefaultConfig()
	if dir, err := GetWorkDir(workDir); err == nil {
		if appConfig, err := config.Load(dir); err == nil {
			cfg = logging.FromConfig(appConfig.Log)
		}
	}
	if logLevel != "" {
		cfg.Level = logging.ParseLevel(logLevel)
	}

	if printLogs {
		cfg.Output = os.Stderr
	} else {
		cfg.Output = logging.FileOutput(config.GetPaths().State)
		cfg.Pretty = false
	}

	logging.Init(cfg)
	return nil
}
