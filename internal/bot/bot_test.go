package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/assistant-bot/internal/assistant"
	"github.com/xaenox/assistant-bot/internal/models"
	"go.uber.org/zap/zaptest"
)

type sent struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	msg := c.(tgbotapi.MessageConfig)
	f.msgs = append(f.msgs, sent{msg.ChatID, msg.Text})
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) all() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sent, len(f.msgs))
	copy(out, f.msgs)
	return out
}

type fakeAssistant struct {
	mu        sync.Mutex
	texts     []string
	requestID string
	due       []models.Reminder
	dueErr    error
}

func (f *fakeAssistant) ProcessCommand(ctx context.Context, text string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.requestID = assistant.RequestID(ctx)
	return "reply to " + text
}

func (f *fakeAssistant) DueReminders(context.Context) ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	due := f.due
	f.due = nil
	return due, f.dueErr
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}, From: &tgbotapi.User{ID: 1}}
}

func commandMessage(chatID int64, cmd string) *tgbotapi.Message {
	m := textMessage(chatID, "/"+cmd)
	m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}}
	return m
}

func TestHandleMessage_Text(t *testing.T) {
	sender, a := &fakeSender{}, &fakeAssistant{}
	b := NewWithSender(sender, a, Options{}, zaptest.NewLogger(t))

	b.handleMessage(context.Background(), textMessage(7, "what time is it"))

	assert.Equal(t, []string{"what time is it"}, a.texts)
	assert.NotEmpty(t, a.requestID)
	assert.Equal(t, []sent{{7, "reply to what time is it"}}, sender.all())
}

func TestHandleMessage_Caption(t *testing.T) {
	sender, a := &fakeSender{}, &fakeAssistant{}
	b := NewWithSender(sender, a, Options{}, zaptest.NewLogger(t))

	m := textMessage(7, "")
	m.Caption = "weather in Paris"
	b.handleMessage(context.Background(), m)
	assert.Equal(t, []string{"weather in Paris"}, a.texts)
}

func TestHandleCommand(t *testing.T) {
	sender := &fakeSender{}
	a := &fakeAssistant{due: []models.Reminder{{ID: 1, Text: "call mom"}}}
	b := NewWithSender(sender, a, Options{}, zaptest.NewLogger(t))
	ctx := context.Background()

	b.handleMessage(ctx, commandMessage(7, "reminders"))
	b.handleMessage(ctx, commandMessage(7, "reminders"))
	b.handleMessage(ctx, commandMessage(7, "bogus"))
	b.handleMessage(ctx, commandMessage(7, "help"))

	msgs := sender.all()
	require.Len(t, msgs, 4)
	assert.Equal(t, "🔔 Reminders:\n• call mom", msgs[0].text)
	assert.Equal(t, "You don't have any pending reminders.", msgs[1].text)
	assert.Contains(t, msgs[2].text, "Unknown command")
	assert.Contains(t, msgs[3].text, "/reminders")
	assert.Empty(t, a.texts)
}

func TestHandleCommand_RemindersError(t *testing.T) {
	sender := &fakeSender{}
	b := NewWithSender(sender, &fakeAssistant{dueErr: errors.New("db down")}, Options{}, zaptest.NewLogger(t))

	b.handleMessage(context.Background(), commandMessage(7, "reminders"))
	msgs := sender.all()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].text, "⚠️")
}

func TestDeliverDue(t *testing.T) {
	sender := &fakeSender{}
	a := &fakeAssistant{due: []models.Reminder{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}}
	b := NewWithSender(sender, a, Options{ChatID: 99}, zaptest.NewLogger(t))

	b.deliverDue(context.Background())
	b.deliverDue(context.Background())

	assert.Equal(t, []sent{{99, "🔔 Reminders:\n• a\n\n• b"}}, sender.all())
}

func TestRunReminderPoller(t *testing.T) {
	sender := &fakeSender{}
	a := &fakeAssistant{due: []models.Reminder{{ID: 1, Text: "stretch"}}}
	b := NewWithSender(sender, a, Options{ChatID: 99, PollInterval: 5 * time.Millisecond}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.RunReminderPoller(ctx) }()

	require.Eventually(t, func() bool { return len(sender.all()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, "🔔 Reminders:\n• stretch", sender.all()[0].text)
}

func TestRunReminderPoller_NoChat(t *testing.T) {
	b := NewWithSender(&fakeSender{}, &fakeAssistant{}, Options{}, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, b.RunReminderPoller(ctx))
}

func TestStart_WithoutAPI(t *testing.T) {
	b := NewWithSender(&fakeSender{}, &fakeAssistant{}, Options{}, zaptest.NewLogger(t))
	assert.Error(t, b.Start(context.Background()))
}
