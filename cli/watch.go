package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yoanbernabeu/docchat/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [DIR]",
	Short: "Watch a drop folder and keep the backend in sync",
	Long: `Watches a local directory for PDF changes. New or modified PDFs are
uploaded and a re-ingestion is triggered; removals trigger a re-ingestion
only. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dir := cfg.Watch.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("watch dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("watch dir: %s is not a directory", dir)
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		w := watcher.New(dir, time.Duration(cfg.Watch.Debounce), backendSink{client: newClient(cfg)})
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
