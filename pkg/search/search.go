package search

import (
	"context"
	"encoding/json"
)

// Item is one normalized search hit. Date keeps the engine's original token
// ("3 hours ago", "Apr 2, 2025", ...); parsing happens downstream.
type Item struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  string `json:"source,omitempty"`
	Date    string `json:"date,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Result is a search run's normalized items plus the raw per-engine payload.
type Result struct {
	Items []Item          `json:"items"`
	Raw   json.RawMessage `json:"raw,omitempty"`
}

// Service runs a query against an external search engine.
type Service interface {
	Run(ctx context.Context, engine, query string, params map[string]string) (*Result, error)
}
