package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xaenox/assistant-bot/internal/arith"
	"github.com/xaenox/assistant-bot/internal/classifier"
	"github.com/xaenox/assistant-bot/internal/formatter"
	"github.com/xaenox/assistant-bot/internal/oracle"
	"github.com/xaenox/assistant-bot/internal/services/search"
	"github.com/xaenox/assistant-bot/internal/timeparse"
	"go.uber.org/zap"
)

const (
	MsgClarify           = "I didn't catch that. Could you please repeat?"
	MsgUnknown           = "I'm not sure how to help with that. You can ask me about the time, weather, to set reminders, do math, or search the web."
	MsgInternalError     = "Sorry, something went wrong while handling that. Please try again."
	MsgDivisionByZero    = "Error: Division by zero is not allowed."
	MsgMathNotUnderstood = "I couldn't understand the math problem. Please try rephrasing it."
	MsgNeedCity          = "Please specify a city for the weather, like 'weather in New York'."
	MsgWeatherFailed     = "I couldn't get the weather information. Please check the city name or try again later."
	MsgSearchTooShort    = "I need more details to search. What specifically are you looking for?"
	MsgSearchEmpty       = "What would you like me to search for?"
	MsgNewsFailed        = "I'm having trouble fetching the news right now. Please try again later."
	MsgReminderNoText    = "What would you like me to remind you about?"
	MsgReminderFailed    = "I couldn't set that reminder. Please try again with a specific time."
)

const (
	// TrendingTopic is the news query behind trending and comprehensive requests.
	TrendingTopic          = "trending technology AI ML"
	comprehensiveNewsCount = 7
	trendingNewsCount      = 5
	searchNewsCount        = 5
)

var Greetings = []string{"Hello!", "Hi there!", "Hey!", "Hi! How can I help you today?"}

var (
	newsSearchMarkers = []string{"news", "headlines", "latest"}
	newsTopicStop     = map[string]bool{
		"search": true, "for": true, "news": true, "headlines": true,
		"latest": true, "about": true, "get": true,
	}
)

func (a *Assistant) handleClarify(context.Context, classifier.Input) string {
	return MsgClarify
}

func (a *Assistant) handleUnknown(context.Context, classifier.Input) string {
	return MsgUnknown
}

func (a *Assistant) handleGreeting(context.Context, classifier.Input) string {
	return Greetings[a.pick(len(Greetings))]
}

func (a *Assistant) handleTime(context.Context, classifier.Input) string {
	return formatter.Clock(a.now())
}

func (a *Assistant) handleDate(context.Context, classifier.Input) string {
	return formatter.Date(a.now())
}

func (a *Assistant) handleMath(ctx context.Context, in classifier.Input) string {
	if a.oracle != nil {
		answer, err := a.oracle.Answer(ctx, in.Raw)
		switch {
		case err == nil:
			return answer + "."
		case !errors.Is(err, oracle.ErrNoAnswer):
			a.collaboratorFailed(ctx, "oracle", err)
		}
	}

	res, err := arith.Evaluate(in.Raw)
	switch {
	case errors.Is(err, arith.ErrDivisionByZero):
		return MsgDivisionByZero
	case err != nil:
		loggerFrom(ctx, a.logger).Debug("Arithmetic not understood", zap.Error(err))
		return MsgMathNotUnderstood
	}
	return "The result is " + res.String() + "."
}

func (a *Assistant) handleWeather(ctx context.Context, in classifier.Input) string {
	city := classifier.ExtractCity(in.Raw)
	if city == "" {
		return MsgNeedCity
	}
	if a.weather == nil {
		return MsgWeatherFailed
	}

	report, err := a.weather.Current(ctx, city)
	if err != nil {
		a.collaboratorFailed(ctx, "weather", err)
		return MsgWeatherFailed
	}
	return formatter.Weather(report)
}

func (a *Assistant) handleComprehensiveNews(ctx context.Context, _ classifier.Input) string {
	return a.trendingNews(ctx, comprehensiveNewsCount)
}

func (a *Assistant) handleNews(ctx context.Context, _ classifier.Input) string {
	return a.trendingNews(ctx, trendingNewsCount)
}

func (a *Assistant) trendingNews(ctx context.Context, limit int) string {
	if a.news == nil {
		return formatter.TrendingNews(nil)
	}
	articles, err := a.news.Articles(ctx, TrendingTopic, limit)
	if err != nil {
		a.collaboratorFailed(ctx, "news", err)
		return formatter.TrendingNews(nil)
	}
	return formatter.TrendingNews(articles)
}

func (a *Assistant) handleSearch(ctx context.Context, in classifier.Input) string {
	query := classifier.CleanSearchQuery(in.Raw)
	if classifier.SearchQueryTooShort(query) {
		return MsgSearchTooShort
	}
	return a.webSearch(ctx, query)
}

func (a *Assistant) handleImplicitSearch(ctx context.Context, in classifier.Input) string {
	return a.webSearch(ctx, in.Raw)
}

// webSearch answers news-flavoured queries from the news collaborator and
// everything else from web search, degrading to manual search advice.
func (a *Assistant) webSearch(ctx context.Context, raw string) string {
	query := strings.TrimSpace(classifier.CleanSearchQuery(raw))
	if query == "" {
		return MsgSearchEmpty
	}

	lower := strings.ToLower(query)
	for _, marker := range newsSearchMarkers {
		if strings.Contains(lower, marker) {
			return a.newsSearch(ctx, lower)
		}
	}

	if a.search == nil {
		return formatter.ManualSearch(query)
	}
	results, err := a.search.Search(ctx, query)
	if err != nil {
		if !errors.Is(err, search.ErrNoResults) {
			a.collaboratorFailed(ctx, "search", err)
		}
		return formatter.ManualSearch(query)
	}
	return formatter.SearchResults(query, results)
}

func (a *Assistant) newsSearch(ctx context.Context, lower string) string {
	var kept []string
	for _, w := range strings.Fields(lower) {
		if !newsTopicStop[w] {
			kept = append(kept, w)
		}
	}
	topic := strings.Join(kept, " ")
	if topic == "" {
		topic = formatter.TopStoriesTopic
	}

	if a.news == nil {
		return MsgNewsFailed
	}
	articles, err := a.news.Articles(ctx, topic, searchNewsCount)
	if err != nil {
		a.collaboratorFailed(ctx, "news", err)
		return MsgNewsFailed
	}
	return formatter.TopicNews(topic, articles)
}

func (a *Assistant) handleReminderCreate(ctx context.Context, in classifier.Input) string {
	text, phrase := classifier.ExtractReminder(in.Raw)
	if text == "" {
		return MsgReminderNoText
	}

	now := a.now()
	var offset time.Duration
	dueAt, ok := timeparse.Resolve(phrase, now)
	if phrase == "" || !ok {
		offset = a.defaultOffset
		dueAt = now.Add(offset)
	}

	r, err := a.store.Create(ctx, text, dueAt)
	if err != nil {
		loggerFrom(ctx, a.logger).Error("Failed to create reminder",
			zap.Error(err),
			zap.String("text", text),
			zap.Time("due_at", dueAt))
		return MsgReminderFailed
	}

	loggerFrom(ctx, a.logger).Info("Reminder created",
		zap.Int64("reminder_id", r.ID),
		zap.Time("due_at", r.DueAt))
	return formatter.ReminderConfirmation(r, offset)
}

func (a *Assistant) handleReminderList(ctx context.Context, _ classifier.Input) string {
	due, err := a.DueReminders(ctx)
	if err != nil {
		loggerFrom(ctx, a.logger).Error("Failed to read due reminders", zap.Error(err))
		due = nil
	}
	return formatter.DueReminders(due)
}
