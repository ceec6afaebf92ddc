package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultGoogleBaseURL = "https://www.googleapis.com/customsearch/v1"

// GoogleClient talks to the Google Custom Search JSON API.
type GoogleClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cseID      string
}

func NewGoogleClient(apiKey, cseID string, timeout time.Duration) *GoogleClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &GoogleClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultGoogleBaseURL,
		apiKey:     apiKey,
		cseID:      cseID,
	}
}

// NewGoogleClientWithBaseURL points the client at a non-default endpoint.
// Tests use this with an httptest server.
func NewGoogleClientWithBaseURL(apiKey, cseID, baseURL string, timeout time.Duration) *GoogleClient {
	c := NewGoogleClient(apiKey, cseID, timeout)
	c.baseURL = baseURL

	return c
}

// Wire shapes for the slice of the CSE response we care about.

type googleItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type googleResponse struct {
	Items []googleItem `json:"items"`
	Error *googleError `json:"error"`
}

type googleError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *GoogleClient) Fetch(ctx context.Context, query string, start, num int) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("cx", c.cseID)
	params.Set("start", strconv.Itoa(start))
	params.Set("num", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)

	if err != nil {
		return nil, &UpstreamError{Message: "could not build request", Err: err}
	}

	resp, err := c.httpClient.Do(req)

	if err != nil {
		return nil, &UpstreamError{Message: "search provider unreachable", Err: err}
	}

	defer resp.Body.Close()

	var body googleResponse

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &UpstreamError{Message: "malformed provider response", Err: err}
	}

	if resp.StatusCode != http.StatusOK || body.Error != nil {
		msg := "Google API error"

		if body.Error != nil && body.Error.Message != "" {
			msg = "Google API error: " + body.Error.Message
		}

		return nil, &UpstreamError{Message: msg, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	// The API occasionally returns more items than requested; cap at num.
	items := body.Items

	if len(items) > num {
		items = items[:num]
	}

	results := make([]Result, 0, len(items))

	for _, it := range items {
		results = append(results, Result{
			Title:   it.Title,
			Link:    it.Link,
			Snippet: it.Snippet,
		})
	}

	return results, nil
}
