package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go-vacancy-swipe/internal/browser"
	"go-vacancy-swipe/internal/filter"
	"go-vacancy-swipe/internal/logging"
)

func main() {
	url := "https://www.work.ua/jobs-golang/"
	if len(os.Args) > 1 {
		url = os.Args[1]
	}
	fmt.Println("🌐 Testing Browser Manager...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pm, err := browser.NewPlaywright(ctx, browser.Options{Headless: true, Locale: "uk-UA"}, logging.New("debug"))
	if err != nil {
		log.Fatalf("Failed to create Playwright: %v", err)
	}
	defer pm.Close()
	fmt.Println("✅ Playwright started")

	sess, err := pm.Open(ctx)
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}
	defer sess.Close()

	fmt.Printf("🔍 Navigating to %s...\n", url)
	page, err := sess.Navigate(ctx, url, browser.FetchOptions{Timeout: 45 * time.Second, Settle: 5 * time.Second, Scroll: true})
	if err != nil {
		log.Fatalf("Failed to navigate: %v", err)
	}

	links := filter.ExtractDetailLinks(page.Links, 10)
	fmt.Printf("✅ Page title: %s\n", page.Title)
	fmt.Printf("🔗 %d anchors, %d vacancy links\n", len(page.Links), len(links))
	fmt.Printf("🛡️ Challenge page: %t\n", filter.IsChallengePage(page.Text))

	png, err := sess.Screenshot()
	if err != nil {
		log.Printf("Failed to take screenshot: %v", err)
	} else if err := os.WriteFile("browser-test.png", png, 0o644); err == nil {
		fmt.Println("📸 Screenshot saved: browser-test.png")
	}
	fmt.Println("✨ Test complete!")
}
