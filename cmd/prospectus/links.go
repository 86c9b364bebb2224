package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newLinksCmd() *cobra.Command {
	var rawURL string

	cmd := &cobra.Command{
		Use:   "links",
		Short: "Preview which links would feed a brochure",
		Long: `Links fetches the landing page and prints the links the selection model
judged relevant, one "type: url" pair per line, without generating a
brochure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := initRuntime(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			builder := newPipeline(cfg, logger)

			links, err := builder.SuggestLinks(ctx, rawURL)
			if err != nil {
				return err
			}

			if len(links) == 0 {
				fmt.Println("No relevant links found.")
				return nil
			}
			for _, link := range links {
				fmt.Printf("%s: %s\n", link.Type, link.URL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rawURL, "url", "", "Company website URL (required)")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}
