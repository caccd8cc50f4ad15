package browser

import (
	"context"
	"fmt"
	"time"
)

// Page is what the pipeline needs from a rendered document.
type Page struct {
	URL   string
	Title string // first <h1>, falling back to <title>
	Text  string // document.body.innerText
	Links []string
}

type FetchOptions struct {
	Timeout   time.Duration
	Settle    time.Duration // pause after navigation so client-side rendering finishes
	WaitUntil string        // "domcontentloaded" (default), "load" or "networkidle"
	Scroll    bool          // scroll the page to trigger lazy loading before extraction
}

// Fetcher opens isolated browsing sessions.
type Fetcher interface {
	Open(ctx context.Context) (Session, error)
}

// Session is one browser context. Navigate drives the main tab, Fetch opens
// a throwaway tab per URL. Close must be called on every exit path.
type Session interface {
	Navigate(ctx context.Context, url string, opts FetchOptions) (*Page, error)
	Fetch(ctx context.Context, url string, opts FetchOptions) (*Page, error)
	Screenshot() ([]byte, error)
	Close() error
}

// NavigationError is returned when a page could not be opened in time.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
