package search

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery means the query was empty after trimming.
var ErrInvalidQuery = errors.New("query is required")

// UpstreamError wraps any failure of the external search provider so the
// HTTP boundary can map it to 502 instead of a generic 500. Message carries
// whatever the provider said, when it said anything at all.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream search failed: %s: %v", e.Message, e.Err)
	}

	return "upstream search failed: " + e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
