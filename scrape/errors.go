package scrape

import "fmt"

// Fetch failure reasons.
const (
	ReasonTimeout   = "timeout"
	ReasonTransport = "transport"
	ReasonStatus    = "status"
	ReasonTooLarge  = "too_large"
	ReasonBlocked   = "blocked"
)

// FetchError describes a failed page retrieval. StatusCode is zero when the
// failure happened before a response arrived.
type FetchError struct {
	URL        string
	StatusCode int
	Reason     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError describes HTML that could not be processed.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
