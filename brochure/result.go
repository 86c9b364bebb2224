package brochure

import "fmt"

// SkippedLink records a ranked link whose page could not be fetched. The
// pipeline continues without it; the skip is reported here instead of being
// silently logged away.
type SkippedLink struct {
	URL    string
	Type   string
	Reason string
}

// Result is the outcome of one pipeline run, available once the chunk
// stream has closed.
type Result struct {
	// RunID uniquely identifies the run for log correlation.
	RunID string

	// Brochure is the complete generated text, the concatenation of every
	// chunk delivered on the stream.
	Brochure string

	// Model is the registry key of the endpoint that generated the text.
	// Empty when the run failed before generation.
	Model string

	// Tone is the resolved tone key.
	Tone string

	// Links are the ranked links the run aggregated, in selection order.
	Links []RankedLink

	// Skipped lists ranked links whose pages failed to fetch.
	Skipped []SkippedLink

	// SelectionError holds the reason link selection degraded to an empty
	// set, if it did. The run still completed with landing-page content.
	SelectionError string

	// Partial is true when the brochure was built from less content than
	// requested: a skipped link or a degraded selection.
	Partial bool

	// Stage is the terminal stage: StageComplete or StageFailed.
	Stage Stage
}

// GenerationError is a fatal pipeline failure. It carries the stage the run
// was in; the underlying cause unwraps.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("brochure generation failed (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
