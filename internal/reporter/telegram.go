package reporter

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-vacancy-swipe/internal/logging"
)

// Notifier delivers internal failures to the operator. Implementations are
// best effort: they log and swallow their own delivery errors.
type Notifier interface {
	Report(ctx context.Context, tag string, err error)
	ReportPhoto(ctx context.Context, tag string, err error, png []byte)
}

// Sender is the part of *tgbotapi.BotAPI the reporter needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram limits count visible text, after HTML entities are parsed.
const (
	maxCaption = 1024
	maxMessage = 4096

	reportFormat = "⚠️ <b>Bot error:</b>\n\nContext: %s\nError: %s"
	reportPlain  = "⚠️ Bot error:\n\nContext: \nError: "
)

type TelegramReporter struct {
	api    Sender
	chatID int64
	log    *logging.Logger
}

// NewTelegramReporter reports to the admin chat. With chatID 0 it only logs.
func NewTelegramReporter(api Sender, chatID int64, log *logging.Logger) *TelegramReporter {
	return &TelegramReporter{
		api:    api,
		chatID: chatID,
		log:    log,
	}
}

func (t *TelegramReporter) Report(ctx context.Context, tag string, err error) {
	t.log.Error("❌ "+tag, "err", err)
	if !t.enabled() || ctx.Err() != nil {
		return
	}

	msg := tgbotapi.NewMessage(t.chatID, formatReport(tag, err, maxMessage))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, sendErr := t.api.Send(msg); sendErr != nil {
		t.log.Warn("⚠️ Could not deliver operator report", "tag", tag, "err", sendErr)
	}
}

func (t *TelegramReporter) ReportPhoto(ctx context.Context, tag string, err error, png []byte) {
	if len(png) == 0 {
		t.Report(ctx, tag, err)
		return
	}
	t.log.Error("❌ "+tag, "err", err, "screenshot_bytes", len(png))
	if !t.enabled() || ctx.Err() != nil {
		return
	}

	photo := tgbotapi.NewPhoto(t.chatID, tgbotapi.FileBytes{Name: "debug.png", Bytes: png})
	photo.Caption = formatReport(tag, err, maxCaption)
	photo.ParseMode = tgbotapi.ModeHTML
	if _, sendErr := t.api.Send(photo); sendErr != nil {
		t.log.Warn("⚠️ Could not deliver operator screenshot", "tag", tag, "err", sendErr)
	}
}

func (t *TelegramReporter) enabled() bool {
	return t.api != nil && t.chatID != 0
}

// formatReport keeps the visible text within limit runes. The detail is cut
// before escaping so an entity is never split.
func formatReport(tag string, err error, limit int) string {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	budget := limit - len([]rune(reportPlain)) - len([]rune(tag))
	if budget < 1 {
		budget = 1
	}
	detail = truncate(detail, budget)
	return fmt.Sprintf(reportFormat, html.EscapeString(tag), html.EscapeString(detail))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
