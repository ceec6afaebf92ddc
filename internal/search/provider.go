package search

import "context"

// Result is one shaped item from the upstream provider. Results are derived
// per request and never persisted.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Page is what the mediator hands back to the HTTP layer. HasMore is a
// heuristic: the provider filled the whole page, so more might exist.
type Page struct {
	Results []Result `json:"results"`
	HasMore bool     `json:"hasMore"`
}

// Provider fetches raw results from an external search API. start is the
// provider's 1-based offset; num is the exact number of items requested.
type Provider interface {
	Fetch(ctx context.Context, query string, start, num int) ([]Result, error)
}
