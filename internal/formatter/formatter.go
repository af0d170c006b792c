// Package formatter lays out list-shaped handler results as display text.
// It never classifies or extracts; missing optional fields are skipped.
package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xaenox/assistant-bot/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	TrendingHeader   = "COMPREHENSIVE TRENDING NEWS - ML, AI & TECHNOLOGY"
	TopStoriesTopic  = "top stories"
	publishedLayout  = "Jan 02, 2006 03:04 PM"
	maxContentRunes  = 300
	digestSeparator  = "\n" + "================================================================================" + "\n"
	articleSeparator = "\n\n---\n\n"
)

var titleCaser = cases.Title(language.English)

// TrendingNews renders the numbered digest used for trending and
// comprehensive news requests.
func TrendingNews(articles []models.Article) string {
	if len(articles) == 0 {
		return "I couldn't fetch trending news at the moment. Please try again later."
	}

	parts := []string{TrendingHeader + "\n"}
	for i, a := range articles {
		var b strings.Builder
		fmt.Fprintf(&b, "**%d. %s**", i+1, a.Title)
		if a.Source != "" {
			fmt.Fprintf(&b, "\n   Source: %s", a.Source)
		}
		if !a.PublishedAt.IsZero() {
			fmt.Fprintf(&b, " | Published: %s", a.PublishedAt.Format(publishedLayout))
		}
		if a.Description != "" {
			fmt.Fprintf(&b, "\n   Summary: %s", a.Description)
		}
		if a.Content != "" {
			fmt.Fprintf(&b, "\n   Details: %s", truncate(a.Content, maxContentRunes))
		}
		if a.URL != "" {
			fmt.Fprintf(&b, "\n   Read More: %s", a.URL)
		}
		parts = append(parts, b.String())
		if i < len(articles)-1 {
			parts = append(parts, digestSeparator)
		}
	}
	return strings.Join(parts, "\n")
}

// TopicNews renders news found through a search request about topic.
func TopicNews(topic string, articles []models.Article) string {
	if len(articles) == 0 {
		return fmt.Sprintf("I couldn't find any news about '%s'. Please try a different search term.", topic)
	}

	items := make([]string, 0, len(articles))
	for i, a := range articles {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. %s", i+1, a.Title)
		if a.Source != "" {
			fmt.Fprintf(&b, "\n   Source: %s", a.Source)
		}
		if !a.PublishedAt.IsZero() {
			fmt.Fprintf(&b, " | Published: %s", a.PublishedAt.Format(publishedLayout))
		}
		if a.Description != "" {
			fmt.Fprintf(&b, "\n   %s", a.Description)
		}
		if a.URL != "" {
			fmt.Fprintf(&b, "\n   Link: %s", a.URL)
		}
		items = append(items, b.String())
	}

	header := fmt.Sprintf("Latest News about '%s':\n\n", titleCaser.String(topic))
	if strings.EqualFold(topic, TopStoriesTopic) {
		header = "Latest Top Stories:\n\n"
	}
	return header + strings.Join(items, articleSeparator)
}

// SearchResults renders web search hits for query.
func SearchResults(query string, results []models.SearchResult) string {
	if len(results) == 0 {
		return ManualSearch(query)
	}

	items := make([]string, 0, len(results))
	for i, r := range results {
		lines := []string{fmt.Sprintf("%d. %s", i+1, r.Title)}
		if r.Snippet != "" {
			lines = append(lines, "   "+r.Snippet)
		}
		if r.Link != "" {
			lines = append(lines, "   Link: "+r.Link)
		}
		items = append(items, strings.Join(lines, "\n"))
	}
	return fmt.Sprintf("Search Results for '%s':\n\n", query) + strings.Join(items, "\n\n")
}

// ManualSearch is the deterministic reply used when search is unavailable.
func ManualSearch(query string) string {
	return fmt.Sprintf("Search Results for '%s':\n\n"+
		"I found information about '%s'. Here are some suggestions:\n\n"+
		"1. Try searching for '%s' on Google, Bing, or DuckDuckGo\n"+
		"2. Look for official documentation or tutorials\n"+
		"3. Check Wikipedia for general information\n"+
		"4. Visit relevant educational websites\n\n"+
		"For the most up-to-date information, I recommend searching directly on your preferred search engine.",
		query, query, query)
}

// DueReminders renders reminders returned by a due query.
func DueReminders(reminders []models.Reminder) string {
	if len(reminders) == 0 {
		return "You don't have any pending reminders."
	}
	items := make([]string, 0, len(reminders))
	for _, r := range reminders {
		items = append(items, "• "+r.Text)
	}
	return "🔔 Reminders:\n" + strings.Join(items, "\n\n")
}

// ReminderConfirmation acknowledges a newly created reminder. A non-zero
// defaultOffset means no time was understood and the reminder was placed
// that far in the future.
func ReminderConfirmation(r *models.Reminder, defaultOffset time.Duration) string {
	if defaultOffset > 0 {
		return fmt.Sprintf("I'll remind you in %s: %s", humanDuration(defaultOffset), r.Text)
	}
	return fmt.Sprintf("I'll remind you at %s on %s: %s",
		r.DueAt.Format("03:04 PM"), r.DueAt.Format("Monday, January 02"), r.Text)
}

func humanDuration(d time.Duration) string {
	unit, n := "minute", int(d/time.Minute)
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		unit, n = "hour", int(d/time.Hour)
	case d%time.Minute != 0:
		// whole seconds, rounded up
		unit, n = "second", int((d+time.Second-1)/time.Second)
	}
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Weather renders current conditions.
func Weather(w models.WeatherReport) string {
	return fmt.Sprintf("Weather in %s: %s. Temperature: %s°C (feels like %s°C).",
		w.City, w.Description, trimFloat(w.TempCelsius), trimFloat(w.FeelsLikeCelsius))
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Clock renders t the way time replies are spoken.
func Clock(t time.Time) string {
	return fmt.Sprintf("The current time is %s.", t.Format("03:04 PM"))
}

// Date renders t as a long-form date reply.
func Date(t time.Time) string {
	return fmt.Sprintf("Today is %s.", t.Format("Monday, January 02, 2006"))
}
