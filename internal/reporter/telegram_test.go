package reporter

import (
	"context"
	"errors"
	"html"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-vacancy-swipe/internal/logging"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramReporter_Report(t *testing.T) {
	sender := &fakeSender{}
	r := NewTelegramReporter(sender, 777, logging.Nop())

	r.Report(context.Background(), "Save Error", errors.New("pool <closed>"))

	require.Len(t, sender.sent, 1)
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(777), msg.ChatID)
	assert.Contains(t, msg.Text, "Save Error")
	assert.Contains(t, msg.Text, "pool &lt;closed&gt;")
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
}

func TestTelegramReporter_ReportPhoto(t *testing.T) {
	sender := &fakeSender{}
	r := NewTelegramReporter(sender, 777, logging.Nop())

	r.ReportPhoto(context.Background(), "Zero Vacancies Found", errors.New(strings.Repeat("x", 2000)), []byte("png"))

	require.Len(t, sender.sent, 1)
	photo, ok := sender.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.LessOrEqual(t, len([]rune(visibleText(photo.Caption))), maxCaption)
}

func visibleText(caption string) string {
	caption = strings.NewReplacer("<b>", "", "</b>", "").Replace(caption)
	return html.UnescapeString(caption)
}

func TestTelegramReporter_ReportPhoto_TruncatesBeforeEscaping(t *testing.T) {
	sender := &fakeSender{}
	r := NewTelegramReporter(sender, 777, logging.Nop())

	detail := strings.Repeat("a & b <c> ", 300)
	r.ReportPhoto(context.Background(), "Zero Vacancies Found", errors.New(detail), []byte("png"))

	require.Len(t, sender.sent, 1)
	photo, ok := sender.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)

	assert.Equal(t, strings.Count(photo.Caption, "&"),
		strings.Count(photo.Caption, "&amp;")+strings.Count(photo.Caption, "&lt;")+strings.Count(photo.Caption, "&gt;"),
		"every ampersand starts a whole entity")
	assert.LessOrEqual(t, len([]rune(visibleText(photo.Caption))), maxCaption)
	assert.True(t, strings.HasSuffix(photo.Caption, "…"))
}

func TestFormatReport_ShortDetailUntouched(t *testing.T) {
	out := formatReport("Save Error", errors.New("a & b"), maxCaption)
	assert.Equal(t, "⚠️ <b>Bot error:</b>\n\nContext: Save Error\nError: a &amp; b", out)
}

func TestTelegramReporter_SwallowsSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("telegram down")}
	r := NewTelegramReporter(sender, 777, logging.Nop())

	assert.NotPanics(t, func() {
		r.Report(context.Background(), "Start Error", errors.New("boom"))
		r.ReportPhoto(context.Background(), "Zero Vacancies Found", nil, []byte("png"))
	})
	assert.Len(t, sender.sent, 2)
}

func TestTelegramReporter_NoAdminOnlyLogs(t *testing.T) {
	sender := &fakeSender{}
	r := NewTelegramReporter(sender, 0, logging.Nop())

	r.Report(context.Background(), "Start Error", errors.New("boom"))

	assert.Empty(t, sender.sent)
}
