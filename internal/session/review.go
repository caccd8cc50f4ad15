package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-vacancy-swipe/internal/models"
)

var ErrExhausted = errors.New("review has no more candidates")

// Appender persists an accepted vacancy. It reports false when the vacancy
// was already saved for that user.
type Appender interface {
	Append(ctx context.Context, userID int64, v models.SavedVacancy) (bool, error)
}

// Review is one user's swipe-through over a finished search. Index only
// moves forward; the review is exhausted once it reaches len(Candidates).
type Review struct {
	Candidates []models.Candidate `json:"candidates"`
	Index      int                `json:"index"`
	Started    bool               `json:"started"`
	MessageID  int                `json:"message_id"`
	ChatID     int64              `json:"chat_id"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func NewReview(chatID int64, candidates []models.Candidate) *Review {
	return &Review{
		Candidates: candidates,
		ChatID:     chatID,
		UpdatedAt:  time.Now(),
	}
}

func (r *Review) Current() (models.Candidate, bool) {
	if r.Exhausted() {
		return models.Candidate{}, false
	}
	return r.Candidates[r.Index], true
}

// Advance moves to the next candidate. Past the end it is a no-op.
func (r *Review) Advance() {
	if r.Index < len(r.Candidates) {
		r.Index++
	}
	r.UpdatedAt = time.Now()
}

func (r *Review) Exhausted() bool {
	return r.Index >= len(r.Candidates)
}

// Position returns the 1-based position of the current candidate and the total.
func (r *Review) Position() (int, int) {
	return r.Index + 1, len(r.Candidates)
}

// Accept saves the current candidate and advances, whether it was newly
// inserted or already saved. On a store error the review stays put.
func (r *Review) Accept(ctx context.Context, store Appender, userID int64) (bool, error) {
	cand, ok := r.Current()
	if !ok {
		return false, ErrExhausted
	}
	inserted, err := store.Append(ctx, userID, cand.ToSaved(time.Now()))
	if err != nil {
		return false, fmt.Errorf("save %s: %w", cand.URL, err)
	}
	r.Advance()
	return inserted, nil
}

// Reject skips the current candidate. Like Advance it is a no-op past the end.
func (r *Review) Reject() {
	r.Advance()
}

func (r *Review) clone() *Review {
	cp := *r
	cp.Candidates = append([]models.Candidate(nil), r.Candidates...)
	return &cp
}
