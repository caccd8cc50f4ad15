package telegram

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"go-vacancy-swipe/internal/models"
)

var errNoURL = errors.New("no search url")

var (
	urlRegex    = regexp.MustCompile(`https?://[^\s<>"]+`)
	salaryRegex = regexp.MustCompile(`(?i)\bsalary\b|зарплат|з/п`)
	remoteRegex = regexp.MustCompile(`(?i)\bremote\b|віддален|дистанц`)
)

// searchRequest is everything one pipeline run needs from the chat.
type searchRequest struct {
	UserID    int64
	ChatID    int64
	FirstName string
	URL       string
	Filters   models.Filters
}

// parseTrigger reads a search from a message. A JSON object (what the search
// form sends) is taken whole as the filter set and must carry "url"; plain
// text needs a link and may mention salary or remote.
func parseTrigger(text string) (string, models.Filters, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "{") {
		var filters models.Filters
		if err := json.Unmarshal([]byte(text), &filters); err != nil {
			return "", nil, err
		}
		url, _ := filters["url"].(string)
		if strings.TrimSpace(url) == "" {
			return "", nil, errNoURL
		}
		// forms post checkboxes as "on" or "true"
		for _, key := range []string{models.FilterSalaryOnly, models.FilterRemoteOnly} {
			if _, ok := filters[key]; ok {
				filters[key] = filters.Bool(key)
			}
		}
		return strings.TrimSpace(url), filters, nil
	}

	url := urlRegex.FindString(text)
	if url == "" {
		return "", nil, errNoURL
	}
	rest := strings.Replace(text, url, " ", 1)
	filters := models.Filters{
		"url":                   url,
		models.FilterSalaryOnly: salaryRegex.MatchString(rest),
		models.FilterRemoteOnly: remoteRegex.MatchString(rest),
	}
	return url, filters, nil
}
