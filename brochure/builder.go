// Package brochure drives the content pipeline that turns a company website
// into a streamed marketing brochure: fetch the landing page, have a model
// pick the relevant sub-pages, aggregate their text under a byte budget,
// and stream the generated brochure back chunk by chunk.
package brochure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"prospectus/llm"
	"prospectus/model"
	"prospectus/scrape"
	"prospectus/weburl"
)

// Builder defaults, matching the configuration defaults.
const (
	DefaultMaxAggregatedLength = 5000
	DefaultMaxTokens           = 2000
	DefaultTemperature         = 0.7
)

// llmClient is the subset of the llm client the pipeline uses. Extracted as
// an interface to enable testing with scripted responses.
type llmClient interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
	CompleteStream(ctx context.Context, req llm.Request) (*llm.Stream, error)
}

// pageFetcher is the subset of the scraper the pipeline uses.
type pageFetcher interface {
	FetchPage(ctx context.Context, url string, withLinks bool) (*scrape.Page, error)
}

// Builder runs brochure generation requests. One Builder serves many
// concurrent runs; each run owns its own aggregation buffer while the
// scraper's cache is shared across them.
type Builder struct {
	scraper  pageFetcher
	llm      llmClient
	logger   *slog.Logger
	progress func(ProgressEvent)

	maxAggregated int
	maxTokens     int
	temperature   float64
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithProgress sets the sink receiving progress events. Events are emitted
// synchronously from the run's goroutine, so the sink should return quickly.
func WithProgress(fn func(ProgressEvent)) BuilderOption {
	return func(b *Builder) {
		b.progress = fn
	}
}

// WithMaxAggregatedLength sets the default byte budget for aggregated page
// content. A request's MaxContentLength overrides it per run.
func WithMaxAggregatedLength(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.maxAggregated = n
		}
	}
}

// WithMaxTokens sets the generation token budget.
func WithMaxTokens(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.maxTokens = n
		}
	}
}

// WithTemperature sets the default generation temperature, used when a
// request does not carry its own.
func WithTemperature(t float64) BuilderOption {
	return func(b *Builder) {
		b.temperature = t
	}
}

// NewBuilder creates a brochure builder on top of a scraper and an LLM
// client.
func NewBuilder(scraper pageFetcher, client llmClient, opts ...BuilderOption) *Builder {
	b := &Builder{
		scraper:       scraper,
		llm:           client,
		logger:        slog.Default(),
		maxAggregated: DefaultMaxAggregatedLength,
		maxTokens:     DefaultMaxTokens,
		temperature:   DefaultTemperature,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Request describes one brochure generation run.
type Request struct {
	// CompanyName is the company the brochure is about.
	CompanyName string

	// URL is the company website. A missing scheme defaults to https.
	URL string

	// Model pins generation to a registry endpoint key. Empty resolves
	// the generation capability's fallback chain instead.
	Model string

	// Tone is a tone key or display name. Unknown values fall back to
	// the professional default.
	Tone string

	// CustomInstructions is extra user guidance folded into the prompt.
	CustomInstructions string

	// Temperature overrides the builder default when non-nil.
	Temperature *float64

	// MaxContentLength overrides the aggregated-content byte budget when
	// positive.
	MaxContentLength int

	// Links, when non-nil, skips link selection and aggregates exactly
	// these pages. An empty non-nil slice means landing page only.
	Links []RankedLink
}

// Stream is a live brochure generation. Consumers range over Chunks, then
// read Result. Abandoning the stream without draining it requires cancelling
// the run's context, or the producer blocks.
type Stream struct {
	chunks chan string
	done   chan struct{}

	// Written by the run goroutine before done closes.
	result *Result
	err    error
}

// Chunks delivers brochure text fragments in generation order. The channel
// closes on completion or failure; chunks already delivered are never
// retracted.
func (s *Stream) Chunks() <-chan string {
	return s.chunks
}

// Result blocks until the run finishes and returns its outcome. The error is
// non-nil when the run failed; the Result is always populated with whatever
// the run produced before stopping.
func (s *Stream) Result() (*Result, error) {
	<-s.done
	return s.result, s.err
}

// Generate starts a brochure run and returns its stream. Input problems
// (empty company name, unusable URL) fail fast; everything after that is
// reported through the stream so chunks already delivered always stand.
func (b *Builder) Generate(ctx context.Context, req Request) (*Stream, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, fmt.Errorf("company name is required")
	}

	pageURL, err := weburl.Normalize(req.URL)
	if err != nil {
		return nil, err
	}

	s := &Stream{
		chunks: make(chan string),
		done:   make(chan struct{}),
	}

	go b.run(ctx, req, pageURL, s)

	return s, nil
}

// run executes the pipeline stages for one request. It owns the stream's
// channels: chunks closes when no more text will arrive, done closes after
// the result is in place.
func (b *Builder) run(ctx context.Context, req Request, pageURL string, s *Stream) {
	defer close(s.done)
	defer close(s.chunks)

	tone := ResolveTone(req.Tone)
	res := &Result{
		RunID: uuid.New().String(),
		Tone:  tone.Key,
	}
	s.result = res

	fail := func(stage Stage, err error) {
		res.Stage = StageFailed
		s.err = &GenerationError{Stage: stage, Err: err}
		b.logger.Error("Brochure run failed",
			"run_id", res.RunID,
			"stage", string(stage),
			"error", err)
		b.emit(StageFailed, fmt.Sprintf("Error generating brochure: %v", err), 0.0)
	}

	b.emit(StageFetchingMain, "Fetching main page content...", 0.1)
	main, err := b.scraper.FetchPage(ctx, pageURL, true)
	if err != nil {
		fail(StageFetchingMain, err)
		return
	}

	// Selection runs only when the caller did not pre-pick links. A failed
	// selection degrades to landing-page-only rather than aborting.
	links := req.Links
	if links == nil {
		b.emit(StageSelectingLinks, "Analyzing and selecting relevant links...", 0.3)
		selected, err := b.selectLinks(ctx, pageURL, main.Links)
		if err != nil {
			res.SelectionError = err.Error()
			res.Partial = true
			b.logger.Warn("Link selection degraded, continuing with landing page only",
				"run_id", res.RunID,
				"error", err)
		}
		links = selected
	}
	res.Links = links

	b.emit(StageFetchingSecondary,
		fmt.Sprintf("Fetching content from %d relevant pages...", len(links)), 0.5)

	budget := b.maxAggregated
	if req.MaxContentLength > 0 {
		budget = req.MaxContentLength
	}

	// The buffer enforces the byte budget at write time, so a section that
	// overflows is cut rather than ever exceeding the bound.
	buf := NewBuffer(budget)
	buf.WriteSection("## Landing Page:\n\n" + main.Content + "\n\n## Relevant Pages:\n\n")

	for _, link := range links {
		page, err := b.scraper.FetchPage(ctx, link.URL, false)
		if err != nil {
			if ctx.Err() != nil {
				fail(StageFetchingSecondary, ctx.Err())
				return
			}
			res.Skipped = append(res.Skipped, SkippedLink{
				URL:    link.URL,
				Type:   link.Type,
				Reason: err.Error(),
			})
			res.Partial = true
			b.logger.Warn("Skipping secondary page",
				"run_id", res.RunID,
				"url", link.URL,
				"error", err)
			continue
		}
		buf.WriteSection("\n### " + titleCase(link.Type) + "\n" + page.Content + "\n")
	}

	if buf.Truncated() {
		b.logger.Debug("Aggregated content truncated",
			"run_id", res.RunID,
			"budget", budget)
	}

	b.emit(StageStreaming, "Generating brochure...", 0.7)

	temperature := b.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	llmReq := llm.Request{
		Model: req.Model,
		Messages: []llm.Message{
			{Role: "system", Content: brochureSystemPrompt(tone)},
			{Role: "user", Content: brochureUserPrompt(req.CompanyName, buf.String(), req.CustomInstructions)},
		},
		Temperature: &temperature,
		MaxTokens:   b.maxTokens,
	}
	if llmReq.Model == "" {
		llmReq.Capability = model.CapabilityGeneration.String()
	}

	stream, err := b.llm.CompleteStream(ctx, llmReq)
	if err != nil {
		fail(StageStreaming, err)
		return
	}
	res.Model = stream.Model

	var text strings.Builder
	var sawDone bool
	for ev := range stream.Events {
		if ev.Err != nil {
			res.Brochure = text.String()
			fail(StageStreaming, ev.Err)
			return
		}
		if ev.Done {
			sawDone = true
		}
		if ev.Text == "" {
			continue
		}

		text.WriteString(ev.Text)
		select {
		case s.chunks <- ev.Text:
		case <-ctx.Done():
			res.Brochure = text.String()
			fail(StageStreaming, ctx.Err())
			return
		}
	}
	res.Brochure = text.String()

	// A cancelled stream closes without a terminal event; chunks already
	// delivered stand but the run did not complete.
	if err := ctx.Err(); err != nil && !sawDone {
		fail(StageStreaming, err)
		return
	}
	res.Stage = StageComplete

	b.emit(StageComplete, "Brochure generation complete!", 1.0)
	b.logger.Info("Brochure generated",
		"run_id", res.RunID,
		"model", res.Model,
		"length", len(res.Brochure),
		"links", len(res.Links),
		"skipped", len(res.Skipped))
}

// SuggestLinks fetches the landing page and returns the links the selection
// model judged relevant, without generating a brochure. Unlike Generate,
// selection failures surface as errors here so the preview can explain
// itself.
func (b *Builder) SuggestLinks(ctx context.Context, rawURL string) ([]RankedLink, error) {
	pageURL, err := weburl.Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	page, err := b.scraper.FetchPage(ctx, pageURL, true)
	if err != nil {
		return nil, err
	}
	if len(page.Links) == 0 {
		return nil, fmt.Errorf("no links found on %s", pageURL)
	}

	return b.selectLinks(ctx, pageURL, page.Links)
}

// titleCase renders a link type as a section heading ("about page" becomes
// "About Page"). A fresh caser per call: cases.Caser is not safe for
// concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
