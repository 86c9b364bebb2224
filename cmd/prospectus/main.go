// Package main provides the prospectus binary entry point.
// Prospectus turns a company website into a short marketing brochure: it
// scrapes the landing page, asks a model which links are worth following,
// and streams a model-written brochure in markdown to stdout.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	// Register LLM providers via init()
	_ "prospectus/llm/providers"

	"prospectus/brochure"
	"prospectus/config"
	"prospectus/llm"
	"prospectus/model"
	"prospectus/scrape"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "prospectus"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prospectus",
		Short: "Company brochure generator",
		Long: `Prospectus builds a short company brochure from a website.

It fetches the landing page, asks a selection model which links are worth
following (about, careers, and so on), aggregates the page contents under a
byte budget, and streams a model-written brochure in markdown to stdout.

Progress and diagnostics go to stderr, so the brochure itself can be piped
or redirected cleanly.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newGenerateCmd(),
		newLinksCmd(),
		newModelsCmd(),
		newTonesCmd(),
		newVersionCmd(),
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// initRuntime configures logging from the global flags and loads the
// configuration. Shared by the commands that run the pipeline.
func initRuntime(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	configPath, _ := cmd.Flags().GetString("config")

	logger := newLogger(logLevel)
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, logger, nil
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads an explicit config file when given one, otherwise the
// layered defaults (user config, then project config).
func loadConfig(configPath string, logger *slog.Logger) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	return config.NewLoader(logger).Load()
}

// newPipeline wires the scraper, LLM client, and brochure builder from
// configuration.
func newPipeline(cfg *config.Config, logger *slog.Logger) *brochure.Builder {
	fetcher := scrape.NewFetcher(
		cfg.Scraper.RequestTimeout,
		cfg.Scraper.UserAgent,
		cfg.Scraper.MaxBodySize,
		scrape.WithMaxRetries(cfg.Scraper.MaxRetries),
		scrape.WithAllowPrivateHosts(cfg.Scraper.AllowPrivateHosts),
		scrape.WithLogger(logger),
	)
	cache := scrape.NewCache(cfg.Scraper.CacheTTL)
	extractor := scrape.NewExtractor(cfg.Scraper.ExtractMode, cfg.Scraper.MaxContentLength, cfg.Scraper.ExcludeLinks)
	scraper := scrape.NewScraper(fetcher, cache, extractor, logger)

	retryCfg := llm.DefaultRetryConfig()
	retryCfg.MaxAttempts = cfg.LLM.MaxAttempts
	retryCfg.BackoffBase = cfg.LLM.BackoffBase

	client := llm.NewClient(model.NewDefaultRegistry(),
		llm.WithLogger(logger),
		llm.WithRetryConfig(retryCfg),
	)

	return brochure.NewBuilder(scraper, client,
		brochure.WithLogger(logger),
		brochure.WithProgress(func(ev brochure.ProgressEvent) {
			logger.Info(ev.Message,
				"stage", string(ev.Stage),
				"progress", ev.Fraction)
		}),
		brochure.WithMaxAggregatedLength(cfg.Scraper.MaxAggregatedLength),
		brochure.WithMaxTokens(cfg.LLM.MaxTokens),
		brochure.WithTemperature(cfg.LLM.Temperature),
	)
}
