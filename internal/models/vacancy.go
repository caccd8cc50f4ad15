package models

import (
	"time"
)

// Filters is the caller-supplied criteria set for one search. It is passed
// verbatim to the classifier, so unknown keys are kept.
type Filters map[string]any

const (
	FilterSalaryOnly = "salary_only"
	FilterRemoteOnly = "remote_only"
)

// Bool reports whether key is set to a truthy value.
func (f Filters) Bool(key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1" || v == "on"
	case float64:
		return v != 0
	}
	return false
}

// Candidate is a listing that passed classification and waits for review.
type Candidate struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// Verdict is the classifier's judgment on one listing.
type Verdict struct {
	Valid   bool    `json:"valid"`
	Reason  string  `json:"reason"`
	Summary Summary `json:"summary"`
}

type SavedVacancy struct {
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Summary string    `json:"summary"`
	SavedAt time.Time `json:"saved_at"`
}

// DefaultSearches is the search quota granted to a new user.
const DefaultSearches = 100

type User struct {
	ID             int64          `json:"id"`
	FirstName      string         `json:"first_name"`
	SearchesLeft   int            `json:"searches_left"`
	SavedVacancies []SavedVacancy `json:"saved_vacancies"`
	RegisteredAt   time.Time      `json:"registered_at"`
}

// ToSaved converts a reviewed candidate into its persisted form.
func (c Candidate) ToSaved(now time.Time) SavedVacancy {
	return SavedVacancy{
		Title:   c.Title,
		URL:     c.URL,
		Summary: c.Summary,
		SavedAt: now,
	}
}
