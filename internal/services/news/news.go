// Package news fetches technology news from NewsAPI, or from a built-in
// demo set when no API key is configured.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xaenox/assistant-bot/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://newsapi.org/v2"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	headlinesSize  = 10
	demoFallback   = 3
)

var (
	// headlineTerms make a query also pull technology top headlines.
	headlineTerms = []string{"trending", "top stories", "latest", "news"}
	// broadDemoTerms return the demo set unfiltered.
	broadDemoTerms = []string{"ml", "machine learning", "ai", "artificial intelligence", "news", "latest", "top stories", "trending"}
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type apiResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Content     string `json:"content"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Articles returns up to limit articles about query, headlines first and
// without duplicate titles.
func (c *Client) Articles(ctx context.Context, query string, limit int) ([]models.Article, error) {
	if c.apiKey == "" {
		return demoArticles(query, limit), nil
	}

	var headlines, found []models.Article
	var headlinesErr, foundErr error

	g, gctx := errgroup.WithContext(ctx)
	if containsAny(strings.ToLower(query), headlineTerms) {
		g.Go(func() error {
			q := url.Values{}
			q.Set("category", "technology")
			q.Set("language", "en")
			q.Set("pageSize", strconv.Itoa(headlinesSize))
			headlines, headlinesErr = c.fetch(gctx, "/top-headlines", q)
			return nil
		})
	}
	g.Go(func() error {
		q := url.Values{}
		q.Set("q", query)
		q.Set("language", "en")
		q.Set("sortBy", "publishedAt")
		q.Set("pageSize", strconv.Itoa(limit))
		found, foundErr = c.fetch(gctx, "/everything", q)
		return nil
	})
	_ = g.Wait()

	if headlinesErr != nil {
		c.logger.Warn("Failed to fetch headlines", zap.Error(headlinesErr))
	}
	if foundErr != nil {
		c.logger.Warn("Failed to search news", zap.Error(foundErr), zap.String("query", query))
	}
	if foundErr != nil && (headlinesErr != nil || headlines == nil) {
		return nil, foundErr
	}

	return dedupe(append(headlines, found...), limit), nil
}

func (c *Client) fetch(ctx context.Context, path string, q url.Values) ([]models.Article, error) {
	q.Set("apiKey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news api %s returned status %d", path, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("news api %s: %s", path, body.Message)
	}

	articles := make([]models.Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		articles = append(articles, models.Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      source,
			PublishedAt: published,
			Content:     a.Content,
		})
	}
	return articles, nil
}

func dedupe(articles []models.Article, limit int) []models.Article {
	seen := make(map[string]bool, len(articles))
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if seen[a.Title] {
			continue
		}
		seen[a.Title] = true
		out = append(out, a)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
