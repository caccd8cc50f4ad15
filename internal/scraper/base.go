package scraper

import (
	"errors"

	"go-vacancy-swipe/internal/models"
)

var (
	ErrSiteUnreachable = errors.New("site unreachable")
	ErrNoLinksFound    = errors.New("no vacancy links found")
	ErrUnexpected      = errors.New("unexpected pipeline error")
)

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeCompleted       Outcome = "completed"
	OutcomeSiteUnreachable Outcome = "site_unreachable"
	OutcomeNoLinksFound    Outcome = "no_links_found"
	OutcomeCancelled       Outcome = "cancelled"
	OutcomeFailed          Outcome = "failed"
)

// Request is one search: a job-board search URL and the filters to judge
// every listing with.
type Request struct {
	URL     string
	Filters models.Filters
}

type Result struct {
	Candidates []models.Candidate
	LinksFound int
	Outcome    Outcome
	// Screenshot is set for OutcomeNoLinksFound when a capture was possible.
	Screenshot []byte
}

type Stage string

const (
	StageNavigating Stage = "navigating"
	StageLinksFound Stage = "links_found"
	StageChecking   Stage = "checking"
)

type Progress struct {
	Stage     Stage
	Processed int
	Total     int
}

// ProgressFunc is called synchronously from the pipeline goroutine.
type ProgressFunc func(Progress)
