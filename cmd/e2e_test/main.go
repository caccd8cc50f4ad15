package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go-vacancy-swipe/internal/ai"
	"go-vacancy-swipe/internal/browser"
	"go-vacancy-swipe/internal/config"
	"go-vacancy-swipe/internal/logging"
	"go-vacancy-swipe/internal/models"
	"go-vacancy-swipe/internal/pdf"
	"go-vacancy-swipe/internal/scraper"
	"go-vacancy-swipe/utils"
)

// Runs one real search end to end and prints the candidates.
// Usage: go run ./cmd/e2e_test https://www.work.ua/jobs-remote-golang/
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: e2e_test <search-url> [salary] [remote]")
	}
	url := os.Args[1]

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	logger := logging.New("debug")
	defer logger.Sync()

	if !scraper.SupportedBoard(url) {
		log.Fatalf("❌ %s is not a supported job board %v", url, scraper.SupportedBoards)
	}

	filters := models.Filters{}
	for _, arg := range os.Args[2:] {
		switch arg {
		case "salary":
			filters[models.FilterSalaryOnly] = true
		case "remote":
			filters[models.FilterRemoteOnly] = true
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pm, err := browser.NewPlaywright(ctx, browser.Options{
		Headless:    cfg.Browser.Headless,
		Locale:      cfg.Browser.Locale,
		CookiesPath: cfg.Browser.CookiesPath,
	}, logger)
	if err != nil {
		log.Fatalf("❌ Failed to init Playwright: %v", err)
	}
	defer pm.Close()

	classifier := ai.NewGroqClient(ai.GroqConfig{
		APIKey: cfg.AI.APIKey,
		Model:  cfg.AI.Model,
	}, nil, logger)

	pipeline := scraper.NewPipeline(pm, classifier, nil,
		utils.NewScreenShotDebugger(cfg.Janitor.ScreenshotDir, logger),
		scraper.DefaultOptions(), logger)

	res, err := pipeline.Run(ctx, scraper.Request{URL: url, Filters: filters}, func(p scraper.Progress) {
		fmt.Printf("  ⏳ %s %d/%d\n", p.Stage, p.Processed, p.Total)
	})
	if err != nil {
		log.Fatalf("❌ Search failed: %v", err)
	}

	fmt.Printf("\n📦 %d links, %d candidates\n", res.LinksFound, len(res.Candidates))
	saved := make([]models.SavedVacancy, 0, len(res.Candidates))
	for i, c := range res.Candidates {
		fmt.Printf("\n[%d] %s\n%s\n%s\n", i+1, c.Title, c.URL, c.Summary)
		saved = append(saved, c.ToSaved(time.Now()))
	}
	if len(saved) == 0 {
		return
	}

	gen, err := pdf.NewGenerator(pm)
	if err != nil {
		log.Fatalf("❌ Failed to init PDF generator: %v", err)
	}
	doc, err := gen.Generate(ctx, "e2e", saved)
	if err != nil {
		log.Fatalf("❌ Failed to render PDF: %v", err)
	}
	out := "logs/e2e-candidates.pdf"
	if err := pdf.SaveToFile(doc, out); err != nil {
		log.Fatalf("❌ Failed to save PDF: %v", err)
	}
	fmt.Printf("\n📄 Candidates exported to %s\n", out)
}
