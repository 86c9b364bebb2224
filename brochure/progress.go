package brochure

// Stage identifies where a pipeline run is in its life cycle.
type Stage string

// Pipeline stages in execution order, plus the two terminal states.
// StageIdle is the state before the first progress event arrives; runs
// never emit it. Aggregation has no stage of its own: the buffer enforces
// its budget as sections are written, so truncation happens inside
// StageFetchingSecondary rather than as a separate pass.
const (
	StageIdle              Stage = "idle"
	StageFetchingMain      Stage = "fetching_main"
	StageSelectingLinks    Stage = "selecting_links"
	StageFetchingSecondary Stage = "fetching_secondary"
	StageStreaming         Stage = "streaming"
	StageComplete          Stage = "complete"
	StageFailed            Stage = "failed"
)

// ProgressEvent reports pipeline progress to the presentation layer. On the
// success path fractions are non-decreasing and the final event carries 1.0;
// a failed run ends with a single event carrying 0.0 and the error text.
type ProgressEvent struct {
	Stage    Stage
	Message  string
	Fraction float64
}

// emit delivers a progress event to the configured sink, if any.
func (b *Builder) emit(stage Stage, message string, fraction float64) {
	if b.progress == nil {
		return
	}
	b.progress(ProgressEvent{Stage: stage, Message: message, Fraction: fraction})
}
