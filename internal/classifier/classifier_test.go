package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  Intent
	}{
		{"", IntentClarify},
		{"   \t\n ", IntentClarify},
		{"hello there", IntentGreeting},
		{"Hey, what's the weather?", IntentGreeting},
		{"what time is it", IntentTime},
		{"what's the date", IntentDate},
		{"what day is it today", IntentDate},
		{"what is 5 plus 3?", IntentMath},
		{"what is 7 times 8", IntentMath},
		{"10 / 4", IntentMath},
		{"2+2", IntentMath},
		{"what's the weather in Paris", IntentWeather},
		{"give me the forecast for London", IntentWeather},
		{"show me comprehensive news please", IntentComprehensiveNews},
		{"show me trending stuff", IntentNews},
		{"search for golang generics tutorials", IntentSearch},
		{"who is ada lovelace", IntentSearch},
		{"is pluto a planet?", IntentSearch},
		{"remind me to call mom tomorrow", IntentReminderCreate},
		{"please set an alert to stretch", IntentReminderCreate},
		{"show reminders", IntentReminderList},
		{"list reminders", IntentReminderList},
		{"asdf random text", IntentImplicitSearch},
		{"a very long sentence that contains supercalifragilistic words", IntentImplicitSearch},
		{"i would like you to do something nice for me", IntentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.input))
		})
	}
}

func TestClassify_WordBoundaries(t *testing.T) {
	// "this" must not look like "hi", "update" not like "date"
	assert.NotEqual(t, IntentGreeting, Classify("this is something completely different today"))
	assert.NotEqual(t, IntentDate, Classify("please update the very important project plan"))
	// "times" is arithmetic, not time of day
	assert.Equal(t, IntentMath, Classify("six times seven"))
	// a hyphen without numbers is not arithmetic
	assert.NotEqual(t, IntentMath, Classify("send an e-mail to the whole marketing team"))
}

func TestRules_OrderIsFixed(t *testing.T) {
	want := []Intent{
		IntentClarify,
		IntentGreeting,
		IntentTime,
		IntentDate,
		IntentMath,
		IntentWeather,
		IntentComprehensiveNews,
		IntentNews,
		IntentSearch,
		IntentReminderCreate,
		IntentReminderList,
		IntentImplicitSearch,
		IntentUnknown,
	}
	got := make([]Intent, 0, len(want))
	for _, r := range Rules() {
		got = append(got, r.Intent)
	}
	assert.Equal(t, want, got)
}

func TestRules_EarlierRuleShadowsLater(t *testing.T) {
	// input satisfying both math and search predicates
	in := NewInput("what is 5 plus 3?")
	var matched []Intent
	for _, r := range Rules() {
		if r.Match(in) {
			matched = append(matched, r.Intent)
		}
	}
	assert.Equal(t, IntentMath, matched[0])
	assert.Contains(t, matched, IntentSearch)
}

func TestCleanSearchQuery(t *testing.T) {
	assert.Equal(t, "golang generics", CleanSearchQuery("Search for golang generics"))
	assert.Equal(t, "Ada Lovelace", CleanSearchQuery("look up Ada Lovelace"))
	assert.Equal(t, "", CleanSearchQuery("find"))
	assert.True(t, SearchQueryTooShort(CleanSearchQuery("google it")))
	assert.False(t, SearchQueryTooShort("abc"))
	assert.True(t, SearchQueryTooShort(" a b "))
}

func TestExtractReminder(t *testing.T) {
	tests := []struct {
		input string
		text  string
		when  string
	}{
		{"Remind me to call mom at 5pm", "call mom", "at 5pm"},
		{"remind me tomorrow to buy milk", "buy milk", "tomorrow"},
		{"Set a reminder to water plants in 2 hours", "water plants", "in 2 hours"},
		{"remind me at 7:30 am to take the pills", "take pills", "at 7:30 am"},
		{"please remind me about the dentist", "dentist", ""},
		{"could you remind me", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			text, when := ExtractReminder(tt.input)
			assert.Equal(t, tt.text, text)
			assert.Equal(t, tt.when, when)
		})
	}
}

func TestExtractCity(t *testing.T) {
	tests := map[string]string{
		"What's the weather in New York?":           "New York",
		"weather in Paris today":                    "Paris",
		"what is the temperature in tokyo":          "tokyo",
		"London weather":                            "London",
		"How is the weather looking in Rome, Italy": "Rome",
		"what's the weather":                        "",
		"weather":                                   "",
	}
	for input, want := range tests {
		assert.Equal(t, want, ExtractCity(input), input)
	}
}
