package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Cookie is one entry of a cookie export. Both the Playwright storage-state
// shape ("expires") and browser-extension exports ("expirationDate") load.
type Cookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain"`
	Path           string  `json:"path"`
	Expires        float64 `json:"expires"`
	ExpirationDate float64 `json:"expirationDate"`
	HTTPOnly       bool    `json:"httpOnly"`
	Secure         bool    `json:"secure"`
	SameSite       string  `json:"sameSite"`
}

// LoadCookies reads a cookie export (e.g. from a logged-in work.ua session).
// Expired cookies are dropped.
func LoadCookies(path string) ([]playwright.OptionalCookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cookies %s: %w", path, err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("decode cookies %s: %w", path, err)
	}

	now := float64(time.Now().Unix())
	out := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" || c.Domain == "" {
			continue
		}
		if exp := c.expiry(); exp > 0 && exp < now {
			continue
		}
		out = append(out, c.ToPlaywright())
	}
	return out, nil
}

func (c Cookie) expiry() float64 {
	if c.Expires > 0 {
		return c.Expires
	}
	return c.ExpirationDate
}

func (c Cookie) ToPlaywright() playwright.OptionalCookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	pc := playwright.OptionalCookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: playwright.String(c.Domain),
		Path:   playwright.String(path),
	}
	if exp := c.expiry(); exp > 0 {
		pc.Expires = playwright.Float(exp)
	}
	if c.HTTPOnly {
		pc.HttpOnly = playwright.Bool(true)
	}
	if c.Secure {
		pc.Secure = playwright.Bool(true)
	}

	// extensions export lowercase values and "no_restriction"
	switch strings.ToLower(c.SameSite) {
	case "lax":
		pc.SameSite = playwright.SameSiteAttributeLax
	case "strict":
		pc.SameSite = playwright.SameSiteAttributeStrict
	case "none", "no_restriction":
		pc.SameSite = playwright.SameSiteAttributeNone
	}
	return pc
}
