package models

import (
	"time"
)

// Article is a news article returned by the news collaborator.
// Source, Description, Content and PublishedAt may be empty.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Content     string    `json:"content,omitempty"`
}

// SearchResult is a single web search hit
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	Link    string `json:"link"`
}
