package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prospectus/brochure"
	"prospectus/model"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the available models",
		Run: func(cmd *cobra.Command, args []string) {
			for _, info := range model.Catalog() {
				fmt.Printf("%-18s %-22s provider=%s context=%d\n",
					info.Key, info.DisplayName, info.Provider, info.MaxTokens)
			}
		},
	}
}

func newTonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tones",
		Short: "List the available brochure tones",
		Run: func(cmd *cobra.Command, args []string) {
			for _, tone := range brochure.Tones() {
				fmt.Printf("%-12s %-14s %s\n", tone.Key, tone.DisplayName, tone.Description)
			}
		},
	}
}
