package scraper

import (
	"net/url"
	"strings"
)

// SupportedBoards are the job boards a search URL may point at.
var SupportedBoards = []string{"work.ua", "robota.ua"}

// SupportedBoard reports whether raw is an http(s) URL on a supported board
// or one of its subdomains.
func SupportedBoard(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, board := range SupportedBoards {
		if host == board || strings.HasSuffix(host, "."+board) {
			return true
		}
	}
	return false
}
