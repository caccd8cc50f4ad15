// Package app builds the bot's dependency graph from config and runs it.
package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"

	"go-vacancy-swipe/internal/ai"
	"go-vacancy-swipe/internal/browser"
	"go-vacancy-swipe/internal/config"
	"go-vacancy-swipe/internal/database"
	"go-vacancy-swipe/internal/logging"
	"go-vacancy-swipe/internal/pdf"
	"go-vacancy-swipe/internal/ratelimit"
	"go-vacancy-swipe/internal/reporter"
	"go-vacancy-swipe/internal/scheduler"
	"go-vacancy-swipe/internal/scraper"
	"go-vacancy-swipe/internal/server"
	"go-vacancy-swipe/internal/session"
	"go-vacancy-swipe/internal/telegram"
	"go-vacancy-swipe/utils"
)

type App struct {
	cfg      *config.Config
	log      *logging.Logger
	api      *tgbotapi.BotAPI
	browser  *browser.PlaywrightManager
	store    database.Store
	redis    *redis.Client
	janitor  *scheduler.Janitor
	bot      *telegram.Bot
	notifier reporter.Notifier
}

// New connects every backing service. On error everything opened so far is
// released.
func New(ctx context.Context, cfg *config.Config, log *logging.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	var err error

	a.api, err = tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	log.Info("🤖 Telegram bot authorized", "username", a.api.Self.UserName)
	a.notifier = reporter.NewTelegramReporter(a.api, cfg.AdminID, log)

	a.store, err = openStore(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	var sessions session.Store
	var pruner scheduler.SessionPruner
	var limiter *ratelimit.RedisLimiter
	if cfg.Redis.URL != "" {
		a.redis, err = connectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		sessions = session.NewRedisStore(a.redis, cfg.Redis.SessionTTL, "review")
		limiter = ratelimit.NewRedisLimiter(a.redis, cfg.Redis.SearchLimit, cfg.Redis.SearchWindow, "searches")
		log.Info("🧠 Sessions stored in Redis")
	} else {
		mem := session.NewMemoryStore()
		sessions, pruner = mem, mem
	}

	a.browser, err = browser.NewPlaywright(ctx, browser.Options{
		Headless:    cfg.Browser.Headless,
		UserAgent:   cfg.Browser.UserAgent,
		Locale:      cfg.Browser.Locale,
		CookiesPath: cfg.Browser.CookiesPath,
	}, log)
	if err != nil {
		return nil, err
	}

	classifier := ai.NewGroqClient(ai.GroqConfig{
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
		Model:    cfg.AI.Model,
		Language: cfg.AI.Language,
		MinChars: cfg.AI.MinChars,
		MaxChars: cfg.AI.MaxChars,
		Timeout:  cfg.AI.Timeout,
	}, a.notifier, log)
	if cfg.AI.APIKey == "" {
		log.Warn("⚠️ GROQ_API_KEY is not set, every vacancy will be rejected")
	}

	shots := utils.NewScreenShotDebugger(cfg.Janitor.ScreenshotDir, log)
	pipeline := scraper.NewPipeline(a.browser, classifier, a.notifier, shots, scraper.Options{
		SearchTimeout: cfg.Scraper.SearchTimeout,
		SearchSettle:  cfg.Scraper.SearchSettle,
		DetailTimeout: cfg.Scraper.DetailTimeout,
		DetailSettle:  cfg.Scraper.DetailSettle,
		RequestDelay:  cfg.Scraper.RequestDelay,
		MaxLinks:      cfg.Scraper.MaxLinks,
		ProgressEvery: cfg.Scraper.ProgressEvery,
	}, log)

	exporter, err := pdf.NewGenerator(a.browser)
	if err != nil {
		return nil, err
	}

	deps := telegram.Deps{
		API:      a.api,
		Runner:   pipeline,
		Store:    a.store,
		Sessions: sessions,
		Notifier: a.notifier,
		Exporter: exporter,
		Log:      log,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}
	a.bot = telegram.NewBot(deps)

	a.janitor = scheduler.New(pruner, shots, scheduler.Options{
		Spec:             cfg.Janitor.Schedule,
		SessionMaxIdle:   cfg.Janitor.SessionMaxIdle,
		ScreenshotMaxAge: cfg.Janitor.ScreenshotMaxAge,
	}, log)

	ok = true
	return a, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig, log *logging.Logger) (database.Store, error) {
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		repo, err := database.ConnectDB(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info("🗄️ Connected to Postgres")
		return repo, nil
	}
	fs, err := database.NewFileStore(cfg.DataDir, log)
	if err != nil {
		return nil, err
	}
	log.Info("🗄️ Using file store", "dir", cfg.DataDir)
	return fs, nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Run serves updates until ctx is cancelled, then waits for running searches.
func (a *App) Run(ctx context.Context) error {
	if err := a.janitor.Start(ctx); err != nil {
		return err
	}
	defer a.janitor.Stop()

	srv := server.New(ctx, a.bot, a.store, server.Options{
		Webhook: a.cfg.Mode == config.ModeWebhook,
		Secret:  a.cfg.Server.WebhookSecret,
	}, a.log)
	addr := ":" + a.cfg.Server.Port

	if a.cfg.Mode == config.ModeWebhook {
		return a.runWebhook(ctx, srv, addr)
	}
	return a.runPolling(ctx, srv, addr)
}

func (a *App) runWebhook(ctx context.Context, srv *server.Server, addr string) error {
	wh, err := tgbotapi.NewWebhook(a.cfg.Server.WebhookURL)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := a.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	a.log.Info("🪝 Webhook registered", "url", a.cfg.Server.WebhookURL)

	err = srv.ListenAndServe(ctx, addr)
	a.bot.Wait()
	return err
}

func (a *App) runPolling(ctx context.Context, srv *server.Server, addr string) error {
	if _, err := a.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		a.log.Warn("⚠️ Could not remove webhook", "err", err)
	}

	go func() {
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			a.log.Warn("⚠️ Health server stopped", "err", err)
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := a.api.GetUpdatesChan(u)
	a.log.Info("🚀 Bot started (long polling)")

	go func() {
		<-ctx.Done()
		a.api.StopReceivingUpdates()
	}()

	a.bot.Run(ctx, updates)
	return nil
}

// Close releases resources in reverse order; the browser goes last so
// finished searches can still close their contexts.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("⚠️ Redis close failed", "err", err)
		}
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.browser != nil {
		if err := a.browser.Close(); err != nil {
			a.log.Warn("⚠️ Browser close failed", "err", err)
		}
	}
}
