package classifier

import (
	"strings"
	"unicode/utf8"
)

// Intent is the closed set of handlers an input can be routed to.
type Intent string

const (
	IntentClarify           Intent = "clarify"
	IntentGreeting          Intent = "greeting"
	IntentTime              Intent = "time"
	IntentDate              Intent = "date"
	IntentMath              Intent = "math"
	IntentWeather           Intent = "weather"
	IntentComprehensiveNews Intent = "comprehensive_news"
	IntentNews              Intent = "news"
	IntentSearch            Intent = "search"
	IntentReminderCreate    Intent = "reminder_create"
	IntentReminderList      Intent = "reminder_list"
	IntentImplicitSearch    Intent = "implicit_search"
	IntentUnknown           Intent = "unknown"
)

// Input is a raw command with the derived forms the predicates need.
type Input struct {
	Raw    string
	Lower  string
	Tokens []string
}

func NewInput(raw string) Input {
	return Input{
		Raw:    raw,
		Lower:  strings.ToLower(raw),
		Tokens: strings.Fields(raw),
	}
}

// Rule pairs an intent with the predicate that selects it.
type Rule struct {
	Intent Intent
	Match  func(in Input) bool
}

// Trigger sets. Single words match on word boundaries, phrases as whole
// phrases; operator symbols match anywhere.
var (
	GreetingWords          = []string{"hello", "hi", "greetings", "sup", "what's up", "hey"}
	TimeWords              = []string{"time", "what time", "current time"}
	DateWords              = []string{"date", "today", "what day"}
	MathWords              = []string{"plus", "minus", "times", "multiplied by", "divided by", "add", "subtract", "multiply", "divide", "calculate", "solve", "math"}
	MathSymbols            = []string{"+", "-", "*", "/", "=", "×", "÷"}
	WeatherWords           = []string{"weather", "temperature", "forecast", "how is the weather"}
	ComprehensiveNewsWords = []string{"all details from api", "fetch all details", "comprehensive news", "all ml ai news", "all trending news"}
	NewsWords              = []string{"trending", "top stories", "latest news", "all news"}
	SearchWords            = []string{"search", "find", "google", "look up", "who is", "what is", "where is"}
	ReminderWords          = []string{"remind", "reminder", "remember", "alert", "notify"}
	ReminderListWords      = []string{"my reminders", "show reminders", "list reminders", "any reminders"}
)

const (
	implicitSearchMaxTokens = 5
	longTokenRunes          = 15
)

// rules is evaluated top to bottom; the first match wins. The order is the
// disambiguation policy, e.g. "what is 5 plus 3?" must reach math before search.
var rules = []Rule{
	{IntentClarify, func(in Input) bool { return strings.TrimSpace(in.Raw) == "" }},
	{IntentGreeting, func(in Input) bool { return containsAnyWord(in.Lower, GreetingWords) }},
	{IntentTime, func(in Input) bool { return containsAnyWord(in.Lower, TimeWords) }},
	{IntentDate, func(in Input) bool { return containsAnyWord(in.Lower, DateWords) }},
	{IntentMath, isMath},
	{IntentWeather, func(in Input) bool { return containsAnyWord(in.Lower, WeatherWords) }},
	{IntentComprehensiveNews, func(in Input) bool { return containsAnyWord(in.Lower, ComprehensiveNewsWords) }},
	{IntentNews, func(in Input) bool { return containsAnyWord(in.Lower, NewsWords) }},
	{IntentSearch, func(in Input) bool {
		return containsAnyWord(in.Lower, SearchWords) || strings.Contains(in.Lower, "?")
	}},
	{IntentReminderCreate, func(in Input) bool { return containsAnyWord(in.Lower, ReminderWords) }},
	{IntentReminderList, func(in Input) bool { return containsAnyWord(in.Lower, ReminderListWords) }},
	{IntentImplicitSearch, looksLikeQuery},
	{IntentUnknown, func(Input) bool { return true }},
}

// Rules returns the ordered decision list.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify returns the intent of the first rule matching text.
func Classify(text string) Intent {
	in := NewInput(text)
	for _, r := range rules {
		if r.Match(in) {
			return r.Intent
		}
	}
	return IntentUnknown
}

func isMath(in Input) bool {
	if containsAnyWord(in.Lower, MathWords) {
		return true
	}
	for _, tok := range in.Tokens {
		if isNumeric(tok) {
			return true
		}
	}
	// symbols only count next to a number, so "e-mail" stays out of math
	return containsDigit(in.Lower) && containsAnySubstring(in.Lower, MathSymbols)
}

func looksLikeQuery(in Input) bool {
	if len(in.Tokens) < implicitSearchMaxTokens {
		return true
	}
	for _, tok := range in.Tokens {
		if utf8.RuneCountInString(tok) > longTokenRunes {
			return true
		}
	}
	return false
}
