package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"go-vacancy-swipe/internal/logging"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultWidth     = 1280
	DefaultHeight    = 800
)

// snapshotScript collects everything the pipeline reads from a page in one round trip.
const snapshotScript = `() => {
	const h1 = document.querySelector('h1');
	const heading = h1 ? h1.innerText.trim() : '';
	return {
		title: heading || document.title || '',
		text: document.body ? document.body.innerText : '',
		links: Array.from(document.querySelectorAll('a')).map(a => a.href).filter(Boolean),
	};
}`

type Options struct {
	Headless    bool
	UserAgent   string
	Width       int
	Height      int
	Locale      string
	CookiesPath string
}

// PlaywrightManager owns the Playwright driver and one long-lived browser.
// Every search gets its own browser context through Open.
type PlaywrightManager struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	log     *logging.Logger
}

func NewPlaywright(ctx context.Context, opts Options, log *logging.Logger) (*PlaywrightManager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = DefaultWidth, DefaultHeight
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	pm := &PlaywrightManager{pw: pw, opts: opts, log: log}
	if _, err := pm.ensureBrowser(); err != nil {
		_ = pw.Stop()
		return nil, err
	}
	return pm, nil
}

// ensureBrowser relaunches Chromium if it crashed or was disconnected.
func (pm *PlaywrightManager) ensureBrowser() (playwright.Browser, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.pw == nil {
		return nil, fmt.Errorf("playwright manager is closed")
	}
	if pm.browser != nil && pm.browser.IsConnected() {
		return pm.browser, nil
	}

	browser, err := pm.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(pm.opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}
	pm.browser = browser
	pm.log.Info("🌐 Chromium launched", "headless", pm.opts.Headless)
	return browser, nil
}

// NewContext creates a browser context with a realistic identity and the given cookies.
func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	browser, err := pm.ensureBrowser()
	if err != nil {
		return nil, err
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(pm.opts.UserAgent),
		Viewport: &playwright.Size{
			Width:  pm.opts.Width,
			Height: pm.opts.Height,
		},
	}
	if pm.opts.Locale != "" {
		ctxOpts.Locale = playwright.String(pm.opts.Locale)
	}

	browserCtx, err := browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	if len(cookies) > 0 {
		if err := browserCtx.AddCookies(cookies); err != nil {
			_ = browserCtx.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}
	return browserCtx, nil
}

// Open implements Fetcher.
func (pm *PlaywrightManager) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cookies []playwright.OptionalCookie
	if pm.opts.CookiesPath != "" {
		loaded, err := LoadCookies(pm.opts.CookiesPath)
		if err != nil {
			pm.log.Warn("⚠️ Could not load cookies, continuing without them", "path", pm.opts.CookiesPath, "err", err)
		} else {
			cookies = loaded
		}
	}

	browserCtx, err := pm.NewContext(cookies)
	if err != nil {
		return nil, err
	}
	return &playwrightSession{ctx: browserCtx, log: pm.log}, nil
}

// RenderPDF lays out html in a fresh page and prints it to A4.
func (pm *PlaywrightManager) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	browserCtx, err := pm.NewContext(nil)
	if err != nil {
		return nil, err
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create new page: %w", err)
	}
	defer page.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := page.SetContent(html, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return nil, fmt.Errorf("could not set page content: %w", err)
	}

	pdfBytes, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    playwright.String("16mm"),
			Bottom: playwright.String("16mm"),
			Left:   playwright.String("12mm"),
			Right:  playwright.String("12mm"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate PDF: %w", err)
	}
	return pdfBytes, nil
}

// Close shuts the browser and the driver down. Safe to call twice.
func (pm *PlaywrightManager) Close() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	var firstErr error
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			firstErr = err
		}
		pm.browser = nil
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		pm.pw = nil
	}
	return firstErr
}

type playwrightSession struct {
	ctx  playwright.BrowserContext
	main playwright.Page
	log  *logging.Logger
}

func (s *playwrightSession) Navigate(ctx context.Context, url string, opts FetchOptions) (*Page, error) {
	if s.main == nil {
		page, err := s.ctx.NewPage()
		if err != nil {
			return nil, fmt.Errorf("could not create page: %w", err)
		}
		s.main = page
	}
	return load(ctx, s.main, url, opts)
}

func (s *playwrightSession) Fetch(ctx context.Context, url string, opts FetchOptions) (*Page, error) {
	tab, err := s.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create tab: %w", err)
	}
	defer func() {
		if err := tab.Close(); err != nil {
			s.log.Debug("tab close failed", "url", url, "err", err)
		}
	}()
	return load(ctx, tab, url, opts)
}

func (s *playwrightSession) Screenshot() ([]byte, error) {
	if s.main == nil {
		return nil, fmt.Errorf("no page to capture")
	}
	return s.main.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

func (s *playwrightSession) Close() error {
	return s.ctx.Close()
}

func load(ctx context.Context, page playwright.Page, url string, opts FetchOptions) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gotoOpts := playwright.PageGotoOptions{WaitUntil: waitUntil(opts.WaitUntil)}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}
	if _, err := page.Goto(url, gotoOpts); err != nil {
		return nil, &NavigationError{URL: url, Err: err}
	}

	if err := Pause(ctx, opts.Settle); err != nil {
		return nil, err
	}
	if opts.Scroll {
		_ = HumanScroll(ctx, page)
	}

	return snapshot(page, url)
}

func snapshot(page playwright.Page, url string) (*Page, error) {
	raw, err := page.Evaluate(snapshotScript)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", url, err)
	}
	fields, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("extract %s: unexpected result %T", url, raw)
	}

	result := &Page{URL: url}
	result.Title, _ = fields["title"].(string)
	result.Text, _ = fields["text"].(string)
	result.Title = strings.TrimSpace(result.Title)
	if links, ok := fields["links"].([]interface{}); ok {
		result.Links = make([]string, 0, len(links))
		for _, l := range links {
			if href, ok := l.(string); ok {
				result.Links = append(result.Links, href)
			}
		}
	}
	return result, nil
}

func waitUntil(state string) *playwright.WaitUntilState {
	switch state {
	case "load":
		return playwright.WaitUntilStateLoad
	case "networkidle":
		return playwright.WaitUntilStateNetworkidle
	default:
		return playwright.WaitUntilStateDomcontentloaded
	}
}
