package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload PDFs and trigger re-ingestion",
	Long: `Uploads each file in order. A failing file does not stop the rest of the
batch. The document list is reconciled afterwards and an ingestion run is
triggered regardless of individual failures.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newClient(cfg)
		ctx := cmd.Context()

		failed := 0
		for _, path := range args {
			if err := client.Upload(ctx, path); err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "failed to upload %s: %v\n", filepath.Base(path), err)
				continue
			}
			fmt.Printf("uploaded %s\n", filepath.Base(path))
		}

		if pdfs, err := client.ListPDFs(ctx); err != nil {
			log.Printf("refresh document list: %v", err)
		} else {
			fmt.Printf("%d document(s) on server\n", len(pdfs))
		}

		res, err := client.Ingest(ctx)
		switch {
		case err != nil:
			return fmt.Errorf("auto-processing failed: %w", err)
		case !res.Success:
			if res.Message != "" {
				return fmt.Errorf("auto-processing failed: %s", res.Message)
			}
			return fmt.Errorf("auto-processing failed")
		}
		fmt.Println(outcomeOf(res).Summary())

		if failed == len(args) {
			return fmt.Errorf("all %d upload(s) failed", failed)
		}
		return nil
	},
}
