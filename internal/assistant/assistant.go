// Package assistant turns one line of free-form text into one reply.
// Every failure is absorbed here; callers only ever see a string.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/xaenox/assistant-bot/internal/classifier"
	"github.com/xaenox/assistant-bot/internal/models"
	"github.com/xaenox/assistant-bot/internal/observability"
	"github.com/xaenox/assistant-bot/internal/storage"
	"go.uber.org/zap"
)

type WeatherProvider interface {
	Current(ctx context.Context, city string) (models.WeatherReport, error)
}

type NewsProvider interface {
	Articles(ctx context.Context, query string, limit int) ([]models.Article, error)
}

type SearchProvider interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// MathOracle may answer a math question outright before local evaluation.
type MathOracle interface {
	Answer(ctx context.Context, query string) (string, error)
}

// DefaultReminderOffset is used when a reminder carries no usable time.
const DefaultReminderOffset = time.Hour

// Deps are the collaborators of an Assistant. Store is required; nil
// collaborators make the matching handler reply with its failure text.
type Deps struct {
	Store   storage.ReminderStore
	Weather WeatherProvider
	News    NewsProvider
	Search  SearchProvider
	Oracle  MathOracle
	Metrics *observability.Metrics

	// Now and Pick default to the wall clock and math/rand.
	Now  func() time.Time
	Pick func(n int) int

	DefaultOffset time.Duration
	Logger        *zap.Logger
}

type handler func(ctx context.Context, in classifier.Input) string

type route struct {
	rule   classifier.Rule
	handle handler
}

type Assistant struct {
	store         storage.ReminderStore
	weather       WeatherProvider
	news          NewsProvider
	search        SearchProvider
	oracle        MathOracle
	metrics       *observability.Metrics
	now           func() time.Time
	pick          func(n int) int
	defaultOffset time.Duration
	logger        *zap.Logger

	routes []route
}

func New(deps Deps) (*Assistant, error) {
	if deps.Store == nil {
		return nil, errors.New("assistant needs a reminder store")
	}
	a := &Assistant{
		store:         deps.Store,
		weather:       deps.Weather,
		news:          deps.News,
		search:        deps.Search,
		oracle:        deps.Oracle,
		metrics:       deps.Metrics,
		now:           deps.Now,
		pick:          deps.Pick,
		defaultOffset: deps.DefaultOffset,
		logger:        deps.Logger,
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.pick == nil {
		a.pick = rand.IntN
	}
	if a.defaultOffset <= 0 {
		a.defaultOffset = DefaultReminderOffset
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}

	handlers := map[classifier.Intent]handler{
		classifier.IntentClarify:           a.handleClarify,
		classifier.IntentGreeting:          a.handleGreeting,
		classifier.IntentTime:              a.handleTime,
		classifier.IntentDate:              a.handleDate,
		classifier.IntentMath:              a.handleMath,
		classifier.IntentWeather:           a.handleWeather,
		classifier.IntentComprehensiveNews: a.handleComprehensiveNews,
		classifier.IntentNews:              a.handleNews,
		classifier.IntentSearch:            a.handleSearch,
		classifier.IntentReminderCreate:    a.handleReminderCreate,
		classifier.IntentReminderList:      a.handleReminderList,
		classifier.IntentImplicitSearch:    a.handleImplicitSearch,
		classifier.IntentUnknown:           a.handleUnknown,
	}
	for _, r := range classifier.Rules() {
		h, ok := handlers[r.Intent]
		if !ok {
			return nil, fmt.Errorf("no handler for intent %q", r.Intent)
		}
		a.routes = append(a.routes, route{rule: r, handle: h})
	}
	return a, nil
}

// ProcessCommand classifies text and returns the reply of the first
// matching handler. It never fails.
func (a *Assistant) ProcessCommand(ctx context.Context, text string) (reply string) {
	start := time.Now()
	intent := classifier.IntentUnknown
	logger := a.requestLogger(ctx)
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Recovered from panic while handling command",
				zap.Any("panic", p),
				zap.Stack("stack"))
			reply = MsgInternalError
		}
		if a.metrics != nil {
			a.metrics.ObserveCommand(string(intent), time.Since(start))
		}
	}()

	in := classifier.NewInput(text)
	rt := a.match(in)
	intent = rt.rule.Intent
	logger = logger.With(zap.String("intent", string(intent)))

	logger.Debug("Routing command", zap.String("text", text))
	return rt.handle(withLogger(ctx, logger), in)
}

func (a *Assistant) match(in classifier.Input) route {
	for _, rt := range a.routes {
		if rt.rule.Match(in) {
			return rt
		}
	}
	// the last rule always matches
	return a.routes[len(a.routes)-1]
}

// DueReminders pops every reminder that is due now, for push delivery.
func (a *Assistant) DueReminders(ctx context.Context) ([]models.Reminder, error) {
	due, err := a.store.PopDue(ctx, a.now())
	if err != nil {
		return nil, fmt.Errorf("pop due reminders: %w", err)
	}
	if a.metrics != nil {
		a.metrics.Delivered(len(due))
	}
	return due, nil
}

func (a *Assistant) collaboratorFailed(ctx context.Context, name string, err error) {
	loggerFrom(ctx, a.logger).Error("Collaborator call failed",
		zap.Error(err),
		zap.String("collaborator", name))
	if a.metrics != nil {
		a.metrics.CollaboratorFailed(name)
	}
}
