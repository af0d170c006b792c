package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/xaenox/assistant-bot/internal/assistant"
	"github.com/xaenox/assistant-bot/internal/formatter"
	"github.com/xaenox/assistant-bot/internal/models"
	"go.uber.org/zap"
)

// Sender is the part of the Telegram API the bot writes to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Assistant interface {
	ProcessCommand(ctx context.Context, text string) string
	DueReminders(ctx context.Context) ([]models.Reminder, error)
}

type Options struct {
	// ChatID receives pushed reminders; zero disables delivery.
	ChatID       int64
	PollInterval time.Duration
}

type Bot struct {
	api          *tgbotapi.BotAPI
	sender       Sender
	assistant    Assistant
	chatID       int64
	pollInterval time.Duration
	logger       *zap.Logger
}

func New(token string, a Assistant, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := NewWithSender(api, a, opts, logger)
	b.api = api
	logger.Info("Authorized on Telegram", zap.String("account", api.Self.UserName))
	return b, nil
}

// NewWithSender builds a bot that only sends; Start is unavailable.
func NewWithSender(sender Sender, a Assistant, opts Options, logger *zap.Logger) *Bot {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	return &Bot{
		sender:       sender,
		assistant:    a,
		chatID:       opts.ChatID,
		pollInterval: opts.PollInterval,
		logger:       logger,
	}
}

// Start consumes updates until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return fmt.Errorf("bot has no Telegram connection")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

// RunReminderPoller pushes due reminders to the configured chat every
// poll interval until ctx is done.
func (b *Bot) RunReminderPoller(ctx context.Context) error {
	if b.chatID == 0 {
		b.logger.Info("Reminder delivery disabled, no chat configured")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			b.deliverDue(ctx)
		}
	}
}

func (b *Bot) deliverDue(ctx context.Context) {
	due, err := b.assistant.DueReminders(ctx)
	if err != nil {
		b.logger.Error("Failed to fetch due reminders", zap.Error(err), zap.Int64("chat_id", b.chatID))
		return
	}
	if len(due) == 0 {
		return
	}

	ids := make([]int64, 0, len(due))
	for _, r := range due {
		ids = append(ids, r.ID)
	}
	if err := b.send(b.chatID, formatter.DueReminders(due)); err != nil {
		// already popped; they will not be offered again
		b.logger.Error("Failed to deliver reminders",
			zap.Error(err),
			zap.Int64("chat_id", b.chatID),
			zap.Int64s("reminder_ids", ids))
		return
	}
	b.logger.Info("Delivered reminders", zap.Int64("chat_id", b.chatID), zap.Int64s("reminder_ids", ids))
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	requestID := uuid.New().String()
	ctx = assistant.WithRequestID(ctx, requestID)

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	content := message.Text
	if message.Caption != "" {
		content = message.Caption
	}

	reply := b.assistant.ProcessCommand(ctx, content)
	b.sendMessage(message.Chat.ID, reply)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "reminders":
		b.handleReminders(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome! I'm your personal assistant 🤖
Ask me for the time or date, the weather in a city, trending tech news,
a quick calculation, a web search, or to remind you about something.

Use /help to see some examples.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/reminders - Show reminders that are due

Try asking:
- what time is it
- what's the weather in Paris
- what is 7 times 8
- show me trending news
- search for golang generics
- remind me to call mom at 5pm`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleReminders(ctx context.Context, message *tgbotapi.Message) {
	due, err := b.assistant.DueReminders(ctx)
	if err != nil {
		b.logger.Error("Failed to get due reminders",
			zap.Error(err),
			zap.String("request_id", assistant.RequestID(ctx)),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't check your reminders. Please try again later.")
		return
	}
	b.sendMessage(message.Chat.ID, formatter.DueReminders(due))
}

func (b *Bot) send(chatID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	_, err := b.sender.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if err := b.send(chatID, text); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	if err := b.send(chatID, "⚠️ "+text); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
