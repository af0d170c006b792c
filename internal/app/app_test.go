package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xaenox/assistant-bot/internal/assistant"
	"github.com/xaenox/assistant-bot/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("NEWS_API_KEY", "")
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "reminders.db")
	return cfg
}

func TestNew_SQLite(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	assert.Equal(t, assistant.MsgClarify, a.Assistant.ProcessCommand(ctx, "  "))
	assert.Equal(t, "I'll remind you in 1 hour: stretch", a.Assistant.ProcessCommand(ctx, "remind me to stretch"))
	assert.Equal(t, "The result is 56.", a.Assistant.ProcessCommand(ctx, "what is 7 times 8"))
}

func TestNew_DemoNewsWithoutKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "memory"

	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	out := a.Assistant.ProcessCommand(context.Background(), "what's trending")
	assert.Contains(t, out, "Revolutionary AI Model Achieves Human-Level Reasoning")
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "cassandra"

	_, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = NewLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
