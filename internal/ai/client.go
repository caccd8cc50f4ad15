package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"go-vacancy-swipe/internal/models"
)

// ReasonBlocked is the verdict reason for pages that are too short or look
// like a bot challenge.
const ReasonBlocked = "blocked"

// Classifier judges one listing against the user's filters. Implementations
// fail soft: every failure becomes an invalid Verdict with the cause as reason.
type Classifier interface {
	Classify(ctx context.Context, text string, filters models.Filters) models.Verdict
}

func buildSystemPrompt(language string) string {
	return fmt.Sprintf(`You are a strict HR assistant that screens job listings.
I will give you the text of one vacancy page and a JSON object with the user's filters.

Rules:
1. If "salary_only" is true and the listing has no concrete salary figures, the vacancy is INVALID.
2. If "remote_only" is true and the job is on-site or office-only, the vacancy is INVALID.
3. Apply any other filter keys with common sense.
4. Write "summary" as 2-3 short sentences in %s: position, company, location, salary if present.
5. Return ONLY a JSON object of the form {"valid": boolean, "reason": string, "summary": string}. No markdown.`, language)
}

func buildUserPrompt(text string, filters models.Filters) string {
	if filters == nil {
		filters = models.Filters{}
	}
	raw, err := json.Marshal(filters)
	if err != nil {
		raw = []byte("{}")
	}
	return fmt.Sprintf("Filters: %s\n\nVacancy text:\n%s", raw, text)
}
