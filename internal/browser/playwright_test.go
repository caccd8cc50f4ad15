package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-vacancy-swipe/internal/logging"
)

const mockSearchHTML = `<html><head><title>Вакансії Golang</title></head><body>
<h1>Golang developer</h1>
<a href="https://www.work.ua/jobs/5000001/">First</a>
<a href="https://www.work.ua/jobs/5000002/">Second</a>
<p>Some body text</p>
</body></html>`

// helper: start a real browser, skipped where Playwright is not installed
func setupManager(t *testing.T) *PlaywrightManager {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	pm, err := NewPlaywright(context.Background(), Options{Headless: true}, logging.Nop())
	if err != nil {
		t.Skipf("playwright not available: %v", err)
	}
	t.Cleanup(func() { _ = pm.Close() })
	return pm
}

func TestPlaywrightSession_NavigateExtractsPage(t *testing.T) {
	pm := setupManager(t)

	session, err := pm.Open(context.Background())
	require.NoError(t, err)
	defer session.Close()

	//route every request to the mock page
	ps := session.(*playwrightSession)
	require.NoError(t, ps.ctx.Route("**/*", func(route playwright.Route) {
		_ = route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html; charset=utf-8"),
			Body:        mockSearchHTML,
		})
	}))

	page, err := session.Navigate(context.Background(), "https://www.work.ua/jobs-golang/", FetchOptions{Timeout: 10 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, "Golang developer", page.Title)
	assert.Contains(t, page.Text, "Some body text")
	assert.Equal(t, []string{"https://www.work.ua/jobs/5000001/", "https://www.work.ua/jobs/5000002/"}, page.Links)

	shot, err := session.Screenshot()
	require.NoError(t, err)
	assert.NotEmpty(t, shot)
}

func TestPlaywrightSession_FetchTimeout(t *testing.T) {
	pm := setupManager(t)

	session, err := pm.Open(context.Background())
	require.NoError(t, err)
	defer session.Close()

	// never answer, so navigation has to time out
	ps := session.(*playwrightSession)
	require.NoError(t, ps.ctx.Route("**/*", func(route playwright.Route) {}))

	_, err = session.Fetch(context.Background(), "https://www.work.ua/jobs/1/", FetchOptions{Timeout: 500 * time.Millisecond})

	var navErr *NavigationError
	require.True(t, errors.As(err, &navErr))
	assert.Equal(t, "https://www.work.ua/jobs/1/", navErr.URL)
}

func TestLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies-workua.json")
	data := `[{"name":"sid","value":"abc","domain":".work.ua","path":"","expires":1999999999,"httpOnly":true,"secure":true,"sameSite":"Lax"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cookies, err := LoadCookies(path)
	require.NoError(t, err)
	require.Len(t, cookies, 1)

	c := cookies[0]
	assert.Equal(t, "sid", c.Name)
	assert.Equal(t, ".work.ua", *c.Domain)
	assert.Equal(t, "/", *c.Path)
	assert.True(t, *c.HttpOnly)
	assert.True(t, *c.Secure)
	assert.Equal(t, playwright.SameSiteAttributeLax, c.SameSite)
}

func TestLoadCookies_ExtensionExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	data := `[
		{"name":"live","value":"1","domain":"robota.ua","expirationDate":1999999999,"sameSite":"no_restriction"},
		{"name":"old","value":"2","domain":"robota.ua","expirationDate":1000000000},
		{"name":"","value":"3","domain":"robota.ua"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cookies, err := LoadCookies(path)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "live", cookies[0].Name)
	assert.Equal(t, float64(1999999999), *cookies[0].Expires)
	assert.Equal(t, playwright.SameSiteAttributeNone, cookies[0].SameSite)
}

func TestLoadCookies_MissingFile(t *testing.T) {
	_, err := LoadCookies(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestPause_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Pause(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, Pause(context.Background(), 0))
}

func TestNavigationError(t *testing.T) {
	cause := errors.New("timeout 45000ms exceeded")
	err := error(&NavigationError{URL: "https://robota.ua/x", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "https://robota.ua/x")
}
