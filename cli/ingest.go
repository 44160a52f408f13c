package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Rebuild the backend index for the current documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newClient(cfg)
		ctx := cmd.Context()

		pdfs, err := client.ListPDFs(ctx)
		if err != nil {
			return err
		}
		if len(pdfs) == 0 {
			return errors.New("upload some PDFs first")
		}

		res, err := client.Ingest(ctx)
		if err != nil {
			return err
		}
		if !res.Success {
			if res.Message != "" {
				return errors.New(res.Message)
			}
			return errors.New("ingestion failed")
		}
		fmt.Println(outcomeOf(res).Summary())
		return nil
	},
}
