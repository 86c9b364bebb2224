package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"prospectus/brochure"
	"prospectus/config"
	"prospectus/export"
	"prospectus/model"
)

type generateOptions struct {
	company      string
	url          string
	model        string
	tone         string
	instructions string
	temperature  float64
	maxContent   int
	exportFormat string
	outputDir    string

	// Flag-was-set markers so config defaults apply when a flag is absent.
	temperatureSet bool
	maxContentSet  bool
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a company brochure from a website",
		Long: `Generate fetches the company website, selects relevant links, and streams
a model-written brochure in markdown to stdout. Progress and diagnostics go
to stderr. With --export the finished brochure is also written to disk.`,
		Example: `  prospectus generate --company "Hugging Face" --url huggingface.co
  prospectus generate --company "Acme" --url acme.com --tone humorous --export html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := initRuntime(cmd)
			if err != nil {
				return err
			}

			opts.temperatureSet = cmd.Flags().Changed("temperature")
			opts.maxContentSet = cmd.Flags().Changed("max-content")

			return runGenerate(cmd.Context(), cfg, logger, opts)
		},
	}

	cmd.Flags().StringVar(&opts.company, "company", "", "Company name (required)")
	cmd.Flags().StringVar(&opts.url, "url", "", "Company website URL (required)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model key or display name (default from config)")
	cmd.Flags().StringVar(&opts.tone, "tone", brochure.DefaultTone, "Brochure tone (see 'prospectus tones')")
	cmd.Flags().StringVar(&opts.instructions, "instructions", "", "Additional instructions for the model")
	cmd.Flags().Float64Var(&opts.temperature, "temperature", 0, "Sampling temperature, 0 to 1 (default from config)")
	cmd.Flags().IntVar(&opts.maxContent, "max-content", 0, "Aggregated content budget in bytes, 1000 to 10000 (default from config)")
	cmd.Flags().StringVar(&opts.exportFormat, "export", "", "Export the brochure after generation (html or md)")
	cmd.Flags().StringVar(&opts.outputDir, "output", "", "Export directory (default from config)")

	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runGenerate(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts generateOptions) error {
	if err := validateCompanyName(opts.company); err != nil {
		return err
	}
	if opts.temperatureSet {
		if err := validateTemperature(opts.temperature); err != nil {
			return err
		}
	}
	if opts.maxContentSet {
		if err := validateMaxContentLength(opts.maxContent); err != nil {
			return err
		}
	}

	var exportFormat export.Format
	if opts.exportFormat != "" {
		parsed, err := export.ParseFormat(opts.exportFormat)
		if err != nil {
			return err
		}
		exportFormat = parsed
	}

	req := brochure.Request{
		CompanyName:        strings.TrimSpace(opts.company),
		URL:                opts.url,
		Model:              model.ResolveKey(opts.model, cfg.LLM.DefaultModel),
		Tone:               opts.tone,
		CustomInstructions: sanitizeText(opts.instructions),
	}
	if opts.temperatureSet {
		req.Temperature = &opts.temperature
	}
	if opts.maxContentSet {
		req.MaxContentLength = opts.maxContent
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder := newPipeline(cfg, logger)

	stream, err := builder.Generate(ctx, req)
	if err != nil {
		return err
	}

	for chunk := range stream.Chunks() {
		fmt.Print(chunk)
	}

	res, err := stream.Result()
	if err != nil {
		return err
	}
	fmt.Println()

	for _, skipped := range res.Skipped {
		logger.Warn("Page skipped during aggregation",
			"url", skipped.URL,
			"reason", skipped.Reason)
	}
	if res.SelectionError != "" {
		logger.Warn("Link selection degraded, brochure uses landing page only",
			"error", res.SelectionError)
	}

	if exportFormat != "" {
		outputDir := opts.outputDir
		if outputDir == "" {
			outputDir = cfg.Export.OutputDir
		}

		path, err := export.NewExporter(outputDir).Export(res.Brochure, req.CompanyName, exportFormat)
		if err != nil {
			return fmt.Errorf("export brochure: %w", err)
		}
		logger.Info("Brochure exported", "path", path)
	}

	return nil
}
