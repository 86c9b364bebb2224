// Package model provides capability-based model selection for the pipeline.
// Instead of hardcoding model names, callers specify capabilities (selection,
// generation) and the registry resolves them to available models with
// fallback chains.
package model

// Capability represents a semantic capability for model selection.
// Instead of specifying "gpt-5-nano", callers specify "selection" or
// "generation".
type Capability string

const (
	// CapabilitySelection is for link relevance ranking with structured JSON output.
	CapabilitySelection Capability = "selection"

	// CapabilityGeneration is for long-form brochure writing with streaming output.
	CapabilityGeneration Capability = "generation"
)

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilitySelection, CapabilityGeneration:
		return true
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for invalid values.
func ParseCapability(s string) Capability {
	cap := Capability(s)
	if cap.IsValid() {
		return cap
	}
	return ""
}
