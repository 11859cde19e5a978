package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hypercastle/internal/config"
	"hypercastle/internal/logging"
)

var (
	configPath string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:               "hypercastle",
		Short:             "Parse, animate and catalogue terraform token documents",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Project config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	root.AddCommand(inspectCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(playCmd())
	root.AddCommand(streamCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		cfg, err := config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		level = cfg.Log.Level
	}
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	logging.SetLogger(logging.NewTextLogger(os.Stderr, parsed))
	return nil
}

// loadConfig reads the project config, falling back to defaults for commands
// that work on a single document.
func loadConfig() (*config.ProjectConfig, error) {
	return config.LoadOrDefault(configPath)
}
