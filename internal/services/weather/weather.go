// Package weather fetches current conditions from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xaenox/assistant-bot/internal/models"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("weather api key not configured")
	ErrCityNotFound  = errors.New("city not found")
)

const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	CacheSize int
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	cache   *expirable.LRU[string, models.WeatherReport]
	logger  *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 128
	}

	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
	if cfg.CacheTTL > 0 {
		c.cache = expirable.NewLRU[string, models.WeatherReport](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return c
}

type owmResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
	} `json:"main"`
}

// Current returns the current weather for city.
func (c *Client) Current(ctx context.Context, city string) (models.WeatherReport, error) {
	if c.apiKey == "" {
		return models.WeatherReport{}, ErrNotConfigured
	}

	key := strings.ToLower(strings.TrimSpace(city))
	if c.cache != nil {
		if report, ok := c.cache.Get(key); ok {
			return report, nil
		}
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return models.WeatherReport{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.WeatherReport{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.WeatherReport{}, fmt.Errorf("%q: %w", city, ErrCityNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return models.WeatherReport{}, fmt.Errorf("weather api returned status %d", resp.StatusCode)
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.WeatherReport{}, fmt.Errorf("decode weather response: %w", err)
	}
	if len(body.Weather) == 0 {
		return models.WeatherReport{}, fmt.Errorf("weather response for %q has no conditions", city)
	}

	report := models.WeatherReport{
		City:             city,
		Description:      body.Weather[0].Description,
		TempCelsius:      body.Main.Temp,
		FeelsLikeCelsius: body.Main.FeelsLike,
	}
	if c.cache != nil {
		c.cache.Add(key, report)
	}
	c.logger.Debug("Fetched weather", zap.String("city", city), zap.String("resolved_name", body.Name))
	return report, nil
}
