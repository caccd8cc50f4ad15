package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// challengeMarkers are phrases anti-bot interstitials put on the page.
// They are compared against normalizeText output, so keep them lowercase.
var challengeMarkers = []string{
	"cloudflare",
	"verify you are human",
	"just a moment",
	"attention required",
	"checking your browser",
	"g-recaptcha",
	"hcaptcha",
}

func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		result = str
	}
	return strings.ToLower(result)
}

// IsChallengePage reports whether text looks like a bot-challenge page
// rather than a listing.
func IsChallengePage(text string) bool {
	normalized := normalizeText(text)
	for _, marker := range challengeMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
