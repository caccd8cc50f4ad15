package browser

import (
	"context"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Pause waits for d or until ctx is done.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RandomDelay returns a random duration between min and max milliseconds.
func RandomDelay(min, max int) time.Duration {
	if min >= max {
		return time.Duration(min) * time.Millisecond
	}
	return time.Duration(rand.Intn(max-min+1)+min) * time.Millisecond
}

// HumanScroll simulates human-like scrolling so lazy lists get rendered
func HumanScroll(ctx context.Context, page playwright.Page) error {
	// Scroll down in steps
	for i := 0; i < 3; i++ {
		if _, err := page.Evaluate("window.scrollBy(0, window.innerHeight / 2)"); err != nil {
			return err
		}
		if err := Pause(ctx, RandomDelay(300, 800)); err != nil {
			return err
		}
	}
	// Scroll back up a bit (random behavior)
	_, err := page.Evaluate("window.scrollBy(0, -200)")
	return err
}
