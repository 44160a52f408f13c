package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List the documents known to the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newClient(cfg)

		pdfs, err := client.ListPDFs(cmd.Context())
		if err != nil {
			return err
		}
		if len(pdfs) == 0 {
			fmt.Println("No documents yet")
			return nil
		}
		for _, pdf := range pdfs {
			fmt.Println(pdf)
		}
		return nil
	},
}
