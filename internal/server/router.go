package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-vacancy-swipe/internal/logging"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateHandler is satisfied by *telegram.Bot.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	// Webhook mounts POST /webhook/telegram. Polling deployments leave it off.
	Webhook bool
	// Secret, when set, must match Telegram's secret token header.
	Secret string
}

type Server struct {
	engine  *gin.Engine
	handler UpdateHandler
	store   Pinger
	opts    Options
	log     *logging.Logger
	// base outlives single requests: searches started from a webhook
	// update keep running after the response is written.
	base context.Context
}

func New(base context.Context, handler UpdateHandler, store Pinger, opts Options, log *logging.Logger) *Server {
	s := &Server{
		engine:  gin.New(),
		handler: handler,
		store:   store,
		opts:    opts,
		log:     log,
		base:    base,
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Vacancy swipe bot is running!",
			"status":  "healthy",
		})
	})
	s.engine.GET("/health", s.health)
	if s.opts.Webhook {
		s.engine.POST("/webhook/telegram", s.webhook)
	}
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "store": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "store": "ok"})
}

func (s *Server) webhook(c *gin.Context) {
	if s.opts.Secret != "" && c.GetHeader(secretHeader) != s.opts.Secret {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		s.log.Warn("⚠️ Bad webhook payload", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
		return
	}

	s.handler.HandleUpdate(s.base, update)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("🌐 Server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
