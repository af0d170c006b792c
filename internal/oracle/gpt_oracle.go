// Package oracle asks a chat model for answers to math questions.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrNoAnswer is returned when the model could not produce an answer.
var ErrNoAnswer = errors.New("oracle has no answer")

const unknownMarker = "UNKNOWN"

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type GPTOracle struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGPTOracle returns nil when no API key is configured.
func NewGPTOracle(cfg Config, logger *zap.Logger) *GPTOracle {
	if cfg.APIKey == "" {
		return nil
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &GPTOracle{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

// Answer returns the model's short answer to query, without a trailing period.
func (o *GPTOracle) Answer(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	prompt := fmt.Sprintf(`Solve the following math question. Reply with only the final answer, as a
short phrase or number, with no explanation. If it is not a math question or you
cannot answer it, reply with exactly %s.

Question: %s`, unknownMarker, query)

	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   o.maxTokens,
			Temperature: float32(o.temperature),
		},
	)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoAnswer
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	answer = strings.TrimRight(answer, ". ")
	if answer == "" || strings.EqualFold(answer, unknownMarker) {
		o.logger.Debug("Oracle declined", zap.String("query", query))
		return "", ErrNoAnswer
	}
	return answer, nil
}
