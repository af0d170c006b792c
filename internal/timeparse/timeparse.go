// Package timeparse resolves short natural-language time phrases
// ("in 2 hours", "at 3:30pm", "tomorrow 7pm") to absolute times.
package timeparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which pattern family produced an Expression.
type Kind int

const (
	RelativeOffset Kind = iota
	AbsoluteClock
	NamedDay
)

func (k Kind) String() string {
	switch k {
	case RelativeOffset:
		return "relative_offset"
	case AbsoluteClock:
		return "absolute_clock"
	case NamedDay:
		return "named_day"
	default:
		return "unknown"
	}
}

// Expression is a parsed time phrase resolved against a reference time.
type Expression struct {
	Kind       Kind
	ResolvedAt time.Time
}

// DefaultHour is used for "tomorrow" when no clock time is given.
const DefaultHour = 9

var (
	relativePattern = regexp.MustCompile(`in\s+(\d+)\s+(minute|hour|day|week)s?`)
	atClockPattern  = regexp.MustCompile(`at\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
	clockPattern    = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

var units = map[string]time.Duration{
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
}

// Parse tries the relative, clock and "tomorrow" families in that order.
// The second return value is false when nothing matched.
func Parse(phrase string, now time.Time) (Expression, bool) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return Expression{}, false
	}

	if m := relativePattern.FindStringSubmatch(phrase); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Expression{}, false
		}
		unit := units[m[2]]
		// offsets past time.Duration's range would wrap into the past
		if n > math.MaxInt64/int64(unit) {
			return Expression{}, false
		}
		return Expression{
			Kind:       RelativeOffset,
			ResolvedAt: now.Add(time.Duration(n) * unit),
		}, true
	}

	if m := atClockPattern.FindStringSubmatch(phrase); m != nil {
		hour, minute, ok := clock(m[1], m[2], m[3])
		if !ok {
			return Expression{}, false
		}
		at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return Expression{Kind: AbsoluteClock, ResolvedAt: at}, true
	}

	if strings.Contains(phrase, "tomorrow") {
		day := now.AddDate(0, 0, 1)
		hour, minute := DefaultHour, 0
		if m := clockPattern.FindStringSubmatch(phrase); m != nil {
			h, mm, ok := clock(m[1], m[2], m[3])
			if !ok {
				return Expression{}, false
			}
			hour, minute = h, mm
		}
		return Expression{
			Kind:       NamedDay,
			ResolvedAt: time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()),
		}, true
	}

	return Expression{}, false
}

// Resolve is Parse without the kind.
func Resolve(phrase string, now time.Time) (time.Time, bool) {
	expr, ok := Parse(phrase, now)
	if !ok {
		return time.Time{}, false
	}
	return expr.ResolvedAt, true
}

// clock converts 12-hour notation to 24-hour and validates the result.
func clock(h, m, period string) (int, int, bool) {
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, false
	}
	minute := 0
	if m != "" {
		if minute, err = strconv.Atoi(m); err != nil {
			return 0, 0, false
		}
	}

	switch period {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
