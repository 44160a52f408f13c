// Package cli wires the docchat commands: an interactive chat TUI plus plain
// subcommands for scripted use.
package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yoanbernabeu/docchat/api"
	"github.com/yoanbernabeu/docchat/config"
)

var apiFlag string

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your PDF library from the terminal",
	Long: `docchat talks to a docchat backend: upload PDFs, trigger ingestion and
ask questions answered from the documents, with source citations.

Run without arguments for the interactive chat UI.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChatUI()
	},
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "",
		"backend base URL (overrides config file and "+config.EnvBaseURL+")")

	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(watchCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if apiFlag != "" {
		cfg.API.BaseURL = apiFlag
	}
	return cfg, nil
}

func newClient(cfg config.Config) *api.Client {
	return api.New(cfg.API.BaseURL, time.Duration(cfg.API.Timeout))
}
