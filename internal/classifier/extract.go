package classifier

import (
	"regexp"
	"strings"
	"unicode"
)

var searchStopWords = map[string]bool{
	"search": true, "for": true, "find": true, "about": true,
	"look": true, "up": true, "google": true,
}

// CleanSearchQuery drops search verbs from raw, keeping the original casing.
func CleanSearchQuery(raw string) string {
	var kept []string
	for _, tok := range strings.Fields(raw) {
		if searchStopWords[strings.ToLower(tok)] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// MinSearchQueryChars is the shortest cleaned query worth searching for.
const MinSearchQueryChars = 3

// SearchQueryTooShort reports whether q has fewer than MinSearchQueryChars
// non-space characters.
func SearchQueryTooShort(q string) bool {
	n := 0
	for _, r := range q {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n < MinSearchQueryChars
}

var (
	reminderTimePattern = regexp.MustCompile(`(?i)(\bat\s+\d{1,2}(?::\d{2})?\s*(?:(?:am|pm)\b)?|\bin\s+\d+\s+(?:minute|hour|day|week)s?\b|\btomorrow\b)`)
	reminderFiller      = regexp.MustCompile(`(?i)\b(remind|reminder|remember|alert|notify|me|to|set|a|an|the|about|that|please|would you|can you|could you)\b`)
)

// ExtractReminder splits a reminder request into the text to remember and
// the embedded time phrase. timePhrase is empty when no phrase was found.
func ExtractReminder(raw string) (text, timePhrase string) {
	rest := raw
	if loc := reminderTimePattern.FindStringIndex(raw); loc != nil {
		timePhrase = strings.ToLower(strings.TrimSpace(raw[loc[0]:loc[1]]))
		rest = raw[:loc[0]] + " " + raw[loc[1]:]
	}

	rest = reminderFiller.ReplaceAllString(rest, " ")
	text = strings.Join(strings.Fields(rest), " ")
	text = strings.Trim(text, " ,.;:!?")
	return text, timePhrase
}

var (
	cityAfterIn   = regexp.MustCompile(`(?i)\b(?:weather|temperature|forecast)\b.*?\bin\s+([^?.!,;]+)`)
	trailingWhen  = regexp.MustCompile(`(?i)\s+(?:right now|now|today|tonight|tomorrow|this week|please)$`)
	notCityTokens = map[string]bool{
		"what": true, "what's": true, "whats": true, "how": true, "how's": true, "is": true,
		"the": true, "tell": true, "me": true, "i": true, "weather": true, "temperature": true,
		"forecast": true, "today": true, "tomorrow": true, "please": true, "show": true, "give": true,
	}
)

// ExtractCity makes a best-effort guess at the city in a weather request:
// the words after "in", else the last run of capitalized words. It returns
// "" when no city can be determined.
func ExtractCity(raw string) string {
	if m := cityAfterIn.FindStringSubmatch(raw); m != nil {
		city := strings.TrimSpace(trailingWhen.ReplaceAllString(strings.TrimSpace(m[1]), ""))
		if city != "" {
			return city
		}
	}

	var best, run []string
	for _, tok := range strings.Fields(raw) {
		word := strings.Trim(tok, "?.!,;:'\"")
		if word == "" {
			continue
		}
		r := []rune(word)
		if unicode.IsUpper(r[0]) && !notCityTokens[strings.ToLower(word)] {
			run = append(run, word)
			continue
		}
		if len(run) > 0 {
			best, run = run, nil
		}
	}
	if len(run) > 0 {
		best = run
	}
	return strings.Join(best, " ")
}
