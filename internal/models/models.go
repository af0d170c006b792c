package models

import "time"

// Reminder is a single user reminder persisted by the reminder store
type Reminder struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	DueAt     time.Time `json:"due_at"`
	CreatedAt time.Time `json:"created_at"`
	Completed bool      `json:"completed"`
}

// IsDue reports whether the reminder should fire at now.
func (r *Reminder) IsDue(now time.Time) bool {
	return !r.Completed && !r.DueAt.After(now)
}

// WeatherReport is the current conditions for a city
type WeatherReport struct {
	City             string  `json:"city"`
	Description      string  `json:"description"`
	TempCelsius      float64 `json:"temp_celsius"`
	FeelsLikeCelsius float64 `json:"feels_like_celsius"`
}
