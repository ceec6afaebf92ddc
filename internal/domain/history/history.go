package history

import "time"

// Entry is one recorded search query. Owner attribution stays internal;
// history payloads only ever expose the query and its timestamp.
type Entry struct {
	Owner     string    `json:"-"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}
