package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yoanbernabeu/docchat/render"
)

const askWrapWidth = 100

var askCmd = &cobra.Command{
	Use:   "ask QUESTION",
	Short: "Ask a one-shot question about your documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(args[0]) == "" {
			return errors.New("empty question")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newClient(cfg)

		res, err := client.Chat(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		renderer, err := render.New(askWrapWidth, !isTerminalFD(os.Stdout))
		if err != nil {
			return err
		}
		fmt.Println(renderer.Assistant(res.Answer))

		if len(res.Sources) > 0 {
			fmt.Println()
			fmt.Println("Sources: " + render.Citations(sourcesOf(res.Sources)))
		}
		return nil
	},
}
