// Command neurolearn serves the NeuroLearn API and web shell and talks to
// a running server from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/neurolearn/shell/internal/config"
	"github.com/neurolearn/shell/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globals struct {
	configPath string
	apiURL     string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "neurolearn",
		Short: "Learning resources for neurodivergent learners",
		Long: `NeuroLearn serves learning resources over a JSON API together with
a small web shell of topic pages.

Examples:
  neurolearn serve --listen :8000
  neurolearn resources list --api http://localhost:8000
  neurolearn resources create --title Phonics --content "Sound it out." --type lesson`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&g.apiURL, "api", "", "Base URL of the NeuroLearn API")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		serveCmd(g),
		resourcesCmd(g),
		routesCmd(),
	)

	return rootCmd
}

// load reads configuration and applies global flag overrides.
func (g *globals) load() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if g.apiURL != "" {
		cfg.API.BaseURL = g.apiURL
	}

	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}

	return cfg, nil
}

// newLogger logs to the command error output.
func newLogger(cmd *cobra.Command, cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log, cmd.ErrOrStderr())
}
