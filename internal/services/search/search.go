// Package search scrapes web results from a Bing results page.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/xaenox/assistant-bot/internal/models"
	"go.uber.org/zap"
)

var ErrNoResults = errors.New("no search results")

const (
	DefaultBaseURL    = "https://www.bing.com/search"
	DefaultMaxResults = 5
	maxSnippetRunes   = 200
	noDescription     = "No description available"
	userAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxResults int
}

type Client struct {
	baseURL    string
	maxResults int
	http       *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		maxResults: cfg.MaxResults,
		http:       &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Search returns the top results for query in page order.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	results := make([]models.SearchResult, 0, c.maxResults)
	doc.Find("li.b_algo").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= c.maxResults {
			return false
		}
		anchor := s.Find("h2 a").First()
		title := collapse(anchor.Text())
		link, _ := anchor.Attr("href")
		if title == "" || link == "" {
			return true
		}

		snippet := collapse(s.Find("p").First().Text())
		if snippet == "" {
			snippet = noDescription
		}
		results = append(results, models.SearchResult{
			Title:   title,
			Snippet: truncate(snippet, maxSnippetRunes),
			Link:    link,
		})
		return true
	})

	if len(results) == 0 {
		return nil, ErrNoResults
	}
	c.logger.Debug("Scraped search results", zap.String("query", query), zap.Int("count", len(results)))
	return results, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
