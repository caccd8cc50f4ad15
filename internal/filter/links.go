package filter

import (
	"regexp"
	"strings"
)

// DefaultMaxLinks bounds how many detail pages one search visits. It is also
// the ceiling: a larger max is clamped.
const DefaultMaxLinks = 10

var (
	// job-detail path segment: robota.ua ".../vacancy123", legacy "/job/", work.ua "/jobs/123/"
	detailRegex    = regexp.MustCompile(`(?i)vacancy|/job/|/jobs/\d+`)
	companyRegex   = regexp.MustCompile(`(?i)/company`)
	numericIDRegex = regexp.MustCompile(`\d{5,}`)
)

// IsDetailLink reports whether href points at a single listing.
// A company link only counts when it also carries a numeric id:
// detail || (company && id).
func IsDetailLink(href string) bool {
	lower := strings.ToLower(href)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	if detailRegex.MatchString(href) {
		return true
	}
	return companyRegex.MatchString(href) && numericIDRegex.MatchString(href)
}

// ExtractDetailLinks keeps detail links in first-seen order, drops exact
// repeats and stops at max. max outside 1..DefaultMaxLinks means DefaultMaxLinks.
func ExtractDetailLinks(hrefs []string, max int) []string {
	if max <= 0 || max > DefaultMaxLinks {
		max = DefaultMaxLinks
	}

	links := make([]string, 0, max)
	seen := make(map[string]bool)
	for _, href := range hrefs {
		if len(links) >= max {
			break
		}
		href = strings.TrimSpace(href)
		if seen[href] || !IsDetailLink(href) {
			continue
		}
		seen[href] = true
		links = append(links, href)
	}
	return links
}
