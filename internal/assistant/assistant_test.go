package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/assistant-bot/internal/classifier"
	"github.com/xaenox/assistant-bot/internal/formatter"
	"github.com/xaenox/assistant-bot/internal/models"
	"github.com/xaenox/assistant-bot/internal/observability"
	"github.com/xaenox/assistant-bot/internal/oracle"
	"github.com/xaenox/assistant-bot/internal/services/search"
	"github.com/xaenox/assistant-bot/internal/storage"
	"go.uber.org/zap/zaptest"
)

// Monday morning
var testNow = time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC)

type fakeWeather struct {
	city   string
	report models.WeatherReport
	err    error
	panics bool
}

func (f *fakeWeather) Current(_ context.Context, city string) (models.WeatherReport, error) {
	if f.panics {
		panic("weather exploded")
	}
	f.city = city
	if f.err != nil {
		return models.WeatherReport{}, f.err
	}
	r := f.report
	r.City = city
	return r, nil
}

type newsCall struct {
	query string
	limit int
}

type fakeNews struct {
	calls    []newsCall
	articles []models.Article
	err      error
}

func (f *fakeNews) Articles(_ context.Context, query string, limit int) ([]models.Article, error) {
	f.calls = append(f.calls, newsCall{query, limit})
	return f.articles, f.err
}

type fakeSearch struct {
	queries []string
	results []models.SearchResult
	err     error
}

func (f *fakeSearch) Search(_ context.Context, query string) ([]models.SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeOracle struct {
	answer string
	err    error
}

func (f *fakeOracle) Answer(context.Context, string) (string, error) {
	return f.answer, f.err
}

type brokenStore struct{ storage.ReminderStore }

func (brokenStore) Create(context.Context, string, time.Time) (*models.Reminder, error) {
	return nil, errors.New("disk full")
}

func (brokenStore) PopDue(context.Context, time.Time) ([]models.Reminder, error) {
	return nil, errors.New("disk full")
}

type fixture struct {
	a       *Assistant
	store   *storage.MemoryStorage
	weather *fakeWeather
	news    *fakeNews
	search  *fakeSearch
	metrics *observability.Metrics
}

func newFixture(t *testing.T, mutate ...func(*Deps)) *fixture {
	t.Helper()
	f := &fixture{
		store:   storage.NewMemoryStorage(),
		weather: &fakeWeather{report: models.WeatherReport{Description: "light rain", TempCelsius: 12.5, FeelsLikeCelsius: 11}},
		news:    &fakeNews{articles: []models.Article{{Title: "Go 1.24 released", URL: "https://go.dev/blog"}}},
		search:  &fakeSearch{results: []models.SearchResult{{Title: "Generics", Snippet: "A tutorial", Link: "https://go.dev"}}},
		metrics: observability.NewMetrics("test", prometheus.NewRegistry()),
	}
	deps := Deps{
		Store:   f.store,
		Weather: f.weather,
		News:    f.news,
		Search:  f.search,
		Metrics: f.metrics,
		Now:     func() time.Time { return testNow },
		Pick:    func(int) int { return 1 },
		Logger:  zaptest.NewLogger(t),
	}
	for _, m := range mutate {
		m(&deps)
	}
	a, err := New(deps)
	require.NoError(t, err)
	f.a = a
	return f
}

func (f *fixture) ask(text string) string {
	return f.a.ProcessCommand(context.Background(), text)
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestProcessCommand_Whitespace(t *testing.T) {
	f := newFixture(t)
	for _, in := range []string{"", " ", "\t", "\n\n", "  \t \n "} {
		assert.Equal(t, MsgClarify, f.ask(in), "%q", in)
	}
}

func TestProcessCommand_Direct(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "Hi there!", f.ask("hello"))
	assert.Equal(t, "The current time is 10:00 AM.", f.ask("what time is it"))
	assert.Equal(t, "Today is Monday, January 08, 2024.", f.ask("what's the date"))
	assert.Equal(t, MsgUnknown, f.ask("i would like you to do something nice for me"))
}

func TestProcessCommand_Math(t *testing.T) {
	f := newFixture(t)
	tests := map[string]string{
		"what is 7 times 8":  "The result is 56.",
		"what is 5 plus 3?":  "The result is 8.",
		"10 / 4":             "The result is 2.5.",
		"10 divided by 2":    "The result is 5.0.",
		"10 divided by 0":    MsgDivisionByZero,
		"subtract 2 from 9":  "The result is -7.",
		"solve the equation": MsgMathNotUnderstood,
	}
	for in, want := range tests {
		assert.Equal(t, want, f.ask(in), in)
	}
}

func TestProcessCommand_MathOracle(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Oracle = &fakeOracle{answer: "12"} })
	assert.Equal(t, "12.", f.ask("what is the square root of 144"))

	f = newFixture(t, func(d *Deps) { d.Oracle = &fakeOracle{err: oracle.ErrNoAnswer} })
	assert.Equal(t, "The result is 56.", f.ask("7 times 8"))
	assert.Zero(t, testutil.ToFloat64(f.metrics.CollaboratorErrors.WithLabelValues("oracle")))

	f = newFixture(t, func(d *Deps) { d.Oracle = &fakeOracle{err: errors.New("timeout")} })
	assert.Equal(t, "The result is 56.", f.ask("7 times 8"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CollaboratorErrors.WithLabelValues("oracle")))
}

func TestProcessCommand_Weather(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "Weather in Paris: light rain. Temperature: 12.5°C (feels like 11°C).",
		f.ask("what's the weather in Paris"))
	assert.Equal(t, "Paris", f.weather.city)

	assert.Equal(t, MsgNeedCity, f.ask("what's the weather"))

	f.weather.err = errors.New("city not found")
	assert.Equal(t, MsgWeatherFailed, f.ask("weather in Atlantis"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CollaboratorErrors.WithLabelValues("weather")))
}

func TestProcessCommand_News(t *testing.T) {
	f := newFixture(t)

	out := f.ask("show me comprehensive news please")
	assert.True(t, strings.HasPrefix(out, formatter.TrendingHeader), out)
	out = f.ask("what's trending")
	assert.Contains(t, out, "**1. Go 1.24 released**")

	assert.Equal(t, []newsCall{{TrendingTopic, 7}, {TrendingTopic, 5}}, f.news.calls)

	f.news.err = errors.New("rate limited")
	assert.Equal(t, formatter.TrendingNews(nil), f.ask("top stories"))
}

func TestProcessCommand_Search(t *testing.T) {
	f := newFixture(t)

	out := f.ask("search for golang generics tutorials")
	assert.Equal(t, []string{"golang generics tutorials"}, f.search.queries)
	assert.True(t, strings.HasPrefix(out, "Search Results for 'golang generics tutorials':"), out)
	assert.Contains(t, out, "1. Generics\n   A tutorial\n   Link: https://go.dev")

	assert.Equal(t, MsgSearchTooShort, f.ask("google it"))
}

func TestProcessCommand_SearchFallsBackToManual(t *testing.T) {
	f := newFixture(t)

	f.search.err = search.ErrNoResults
	assert.Equal(t, formatter.ManualSearch("who is ada lovelace"), f.ask("who is ada lovelace"))
	assert.Zero(t, testutil.ToFloat64(f.metrics.CollaboratorErrors.WithLabelValues("search")))

	f.search.err = errors.New("503")
	assert.Equal(t, formatter.ManualSearch("who is ada lovelace"), f.ask("who is ada lovelace"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CollaboratorErrors.WithLabelValues("search")))
}

func TestProcessCommand_SearchForNews(t *testing.T) {
	f := newFixture(t)

	out := f.ask("find headlines about rust")
	assert.Equal(t, []newsCall{{"rust", 5}}, f.news.calls)
	assert.True(t, strings.HasPrefix(out, "Latest News about 'Rust':"), out)
	assert.Empty(t, f.search.queries)

	f.news.calls = nil
	f.ask("find headlines")
	assert.Equal(t, []newsCall{{"top stories", 5}}, f.news.calls)

	f.news.err = errors.New("down")
	assert.Equal(t, MsgNewsFailed, f.ask("find headlines about rust"))
}

func TestProcessCommand_ImplicitSearch(t *testing.T) {
	f := newFixture(t)
	f.ask("asdf random text")
	assert.Equal(t, []string{"asdf random text"}, f.search.queries)
}

func TestProcessCommand_ReminderCreate(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "I'll remind you at 05:00 PM on Monday, January 08: call mom",
		f.ask("remind me to call mom at 5pm"))
	assert.Equal(t, "I'll remind you at 09:00 AM on Tuesday, January 09: buy milk",
		f.ask("remind me tomorrow to buy milk"))
	assert.Equal(t, "I'll remind you in 1 hour: stretch", f.ask("remind me to stretch"))
	assert.Equal(t, MsgReminderNoText, f.ask("could you remind me"))

	due, err := f.store.PopDue(context.Background(), testNow.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, "stretch", due[0].Text)
	assert.Equal(t, testNow.Add(time.Hour), due[0].DueAt)
	assert.Equal(t, "call mom", due[1].Text)
	assert.Equal(t, time.Date(2024, time.January, 8, 17, 0, 0, 0, time.UTC), due[1].DueAt)
	assert.Equal(t, "buy milk", due[2].Text)
}

func TestProcessCommand_ReminderCustomOffset(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.DefaultOffset = 30 * time.Minute })
	assert.Equal(t, "I'll remind you in 30 minutes: stretch", f.ask("remind me to stretch"))
}

func TestProcessCommand_ReminderStoreFailure(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Store = brokenStore{} })
	assert.Equal(t, MsgReminderFailed, f.ask("remind me to call mom at 5pm"))
	assert.Equal(t, "You don't have any pending reminders.", f.ask("show reminders"))
}

func TestProcessCommand_NumericTokenRoutesToMath(t *testing.T) {
	// rule order sends any bare number to arithmetic, even inside a reminder
	f := newFixture(t)
	assert.Equal(t, MsgMathNotUnderstood, f.ask("remind me in 10 minutes to stretch"))
}

func TestProcessCommand_ReminderList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, "water plants", testNow.Add(-30*time.Minute))
	require.NoError(t, err)
	_, err = f.store.Create(ctx, "call mom", testNow.Add(-time.Hour))
	require.NoError(t, err)
	_, err = f.store.Create(ctx, "later", testNow.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "🔔 Reminders:\n• call mom\n\n• water plants", f.ask("show reminders"))
	assert.Equal(t, "You don't have any pending reminders.", f.ask("list reminders"))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.RemindersDelivered))
}

func TestProcessCommand_ConcurrentPopIsAtMostOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const n = 20
	for i := 0; i < n; i++ {
		_, err := f.store.Create(ctx, "task", testNow.Add(-time.Minute))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := f.ask("show reminders")
			mu.Lock()
			total += strings.Count(out, "• task")
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, n, total)
}

func TestProcessCommand_RecoversPanics(t *testing.T) {
	f := newFixture(t)
	f.weather.panics = true
	assert.Equal(t, MsgInternalError, f.ask("weather in Paris"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Commands.WithLabelValues("weather")))
}

func TestProcessCommand_RecoversClassifierPanics(t *testing.T) {
	f := newFixture(t)
	f.a.routes[0].rule.Match = func(classifier.Input) bool { panic("predicate exploded") }

	assert.Equal(t, MsgInternalError, f.ask("hello"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Commands.WithLabelValues(string(classifier.IntentUnknown))))
}

func TestProcessCommand_MissingCollaborators(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.Weather = nil
		d.News = nil
		d.Search = nil
	})
	assert.Equal(t, MsgWeatherFailed, f.ask("weather in Paris"))
	assert.Equal(t, formatter.TrendingNews(nil), f.ask("what's trending"))
	assert.Equal(t, formatter.ManualSearch("who is ada lovelace"), f.ask("who is ada lovelace"))
}

func TestProcessCommand_CountsIntents(t *testing.T) {
	f := newFixture(t)
	f.ask("hello")
	f.ask("hey")
	f.ask("")
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Commands.WithLabelValues("greeting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Commands.WithLabelValues("clarify")))
}

func TestDueReminders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.Create(ctx, "call mom", testNow.Add(-time.Hour))
	require.NoError(t, err)

	due, err := f.a.DueReminders(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "call mom", due[0].Text)

	due, err = f.a.DueReminders(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}
