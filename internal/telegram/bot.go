package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-vacancy-swipe/internal/database"
	"go-vacancy-swipe/internal/logging"
	"go-vacancy-swipe/internal/models"
	"go-vacancy-swipe/internal/reporter"
	"go-vacancy-swipe/internal/scraper"
	"go-vacancy-swipe/internal/session"
)

// Sender is the part of *tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// SearchRunner is satisfied by *scraper.Pipeline.
type SearchRunner interface {
	Run(ctx context.Context, req scraper.Request, progress scraper.ProgressFunc) (*scraper.Result, error)
}

type Limiter interface {
	Allow(ctx context.Context, userID int64) bool
}

// Exporter renders a saved list as a PDF.
type Exporter interface {
	Generate(ctx context.Context, name string, vacancies []models.SavedVacancy) ([]byte, error)
}

// Deps are the bot's collaborators. Limiter and Exporter are optional.
type Deps struct {
	API      Sender
	Runner   SearchRunner
	Store    database.Store
	Sessions session.Store
	Notifier reporter.Notifier
	Limiter  Limiter
	Exporter Exporter
	Log      *logging.Logger
}

type Bot struct {
	api      Sender
	runner   SearchRunner
	store    database.Store
	sessions session.Store
	notifier reporter.Notifier
	limiter  Limiter
	exporter Exporter
	log      *logging.Logger

	mu       sync.Mutex
	inFlight map[int64]bool
	locks    map[int64]*userLock

	wg sync.WaitGroup
}

func NewBot(d Deps) *Bot {
	if d.Notifier == nil {
		d.Notifier = reporter.NewTelegramReporter(nil, 0, d.Log)
	}
	return &Bot{
		api:      d.API,
		runner:   d.Runner,
		store:    d.Store,
		sessions: d.Sessions,
		notifier: d.Notifier,
		limiter:  d.Limiter,
		exporter: d.Exporter,
		log:      d.Log,
		inFlight: make(map[int64]bool),
		locks:    make(map[int64]*userLock),
	}
}

// Run handles updates until ctx is cancelled or the channel closes, then
// waits for running searches.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer b.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// Wait blocks until every search started by the bot has finished.
func (b *Bot) Wait() {
	b.wg.Wait()
}

// HandleUpdate dispatches one update. Searches started here run in the
// background under ctx, so ctx must outlive the update itself.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("💥 Update handler panicked", "panic", r, "update_id", update.UpdateID)
			b.notifier.Report(ctx, "Update Handler", fmt.Errorf("panic: %v", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID

	switch command(text) {
	case "start":
		b.handleStart(ctx, msg)
	case "help":
		b.reply(chatID, msgHelp)
	case "search":
		b.reply(chatID, msgSearchHowTo)
	case "saved":
		b.handleSaved(ctx, msg)
	case "clear":
		b.handleClear(ctx, msg)
	case "export":
		b.handleExport(ctx, msg)
	default:
		b.handleTrigger(ctx, msg, text)
	}
}

// command maps slash commands and menu buttons to a command name.
func command(text string) string {
	switch text {
	case btnHelp:
		return "help"
	case btnSaved:
		return "saved"
	case btnSearch:
		return "search"
	}
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	name := strings.Fields(text)[0][1:]
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name)
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	_, err := b.store.EnsureUser(ctx, models.User{ID: msg.From.ID, FirstName: msg.From.FirstName})
	if err != nil {
		b.notifier.Report(ctx, "Start Error", err)
	}
	reply := tgbotapi.NewMessage(msg.Chat.ID, msgWelcome)
	reply.ReplyMarkup = mainMenu()
	b.send(reply)
}

func (b *Bot) handleSaved(ctx context.Context, msg *tgbotapi.Message) {
	list, err := b.store.List(ctx, msg.From.ID)
	if err != nil && !errors.Is(err, database.ErrUserNotFound) {
		b.notifier.Report(ctx, "Saved List Error", err)
		b.reply(msg.Chat.ID, msgDBError)
		return
	}
	if len(list) == 0 {
		b.reply(msg.Chat.ID, msgEmptyList)
		return
	}
	reply := tgbotapi.NewMessage(msg.Chat.ID, renderSaved(list))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.DisableWebPagePreview = true
	b.send(reply)
}

func (b *Bot) handleClear(ctx context.Context, msg *tgbotapi.Message) {
	err := b.store.Clear(ctx, msg.From.ID)
	if err != nil && !errors.Is(err, database.ErrUserNotFound) {
		b.notifier.Report(ctx, "Clear Error", err)
		b.reply(msg.Chat.ID, msgDBError)
		return
	}
	b.reply(msg.Chat.ID, msgCleared)
}

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	if b.exporter == nil {
		b.reply(msg.Chat.ID, msgNoExport)
		return
	}
	list, err := b.store.List(ctx, msg.From.ID)
	if err != nil && !errors.Is(err, database.ErrUserNotFound) {
		b.notifier.Report(ctx, "Export Error", err)
		b.reply(msg.Chat.ID, msgDBError)
		return
	}
	if len(list) == 0 {
		b.reply(msg.Chat.ID, msgEmptyList)
		return
	}

	pdfBytes, err := b.exporter.Generate(ctx, msg.From.FirstName, list)
	if err != nil {
		b.notifier.Report(ctx, "Export Error", err)
		b.reply(msg.Chat.ID, msgNoExport)
		return
	}
	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: "saved-vacancies.pdf", Bytes: pdfBytes})
	doc.Caption = fmt.Sprintf("📄 %d saved vacancies", len(list))
	b.send(doc)
}

func (b *Bot) handleTrigger(ctx context.Context, msg *tgbotapi.Message, text string) {
	url, filters, err := parseTrigger(text)
	if err != nil {
		if errors.Is(err, errNoURL) && !strings.HasPrefix(text, "{") {
			b.reply(msg.Chat.ID, msgUnknown)
		} else {
			b.reply(msg.Chat.ID, msgBadTrigger)
		}
		return
	}
	if !scraper.SupportedBoard(url) {
		b.reply(msg.Chat.ID, msgBadBoard)
		return
	}

	b.startSearch(ctx, searchRequest{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		FirstName: msg.From.FirstName,
		URL:       url,
		Filters:   filters,
	})
}

func (b *Bot) startSearch(ctx context.Context, req searchRequest) {
	if !b.acquire(req.UserID) {
		b.reply(req.ChatID, msgBusy)
		return
	}
	started := false
	defer func() {
		if !started {
			b.release(req.UserID)
		}
	}()

	if b.limiter != nil && !b.limiter.Allow(ctx, req.UserID) {
		b.reply(req.ChatID, msgRateLimited)
		return
	}

	if _, err := b.store.EnsureUser(ctx, models.User{ID: req.UserID, FirstName: req.FirstName}); err != nil {
		b.notifier.Report(ctx, "Start Error", err)
		b.reply(req.ChatID, msgDBError)
		return
	}
	left, err := b.store.ConsumeSearch(ctx, req.UserID)
	if errors.Is(err, database.ErrNoSearchesLeft) {
		b.reply(req.ChatID, msgNoSearches)
		return
	}
	if err != nil {
		b.notifier.Report(ctx, "Quota Error", err)
		b.reply(req.ChatID, msgDBError)
		return
	}

	// a new search supersedes whatever the user was reviewing
	if err := b.sessions.Delete(ctx, req.UserID); err != nil {
		b.log.Warn("⚠️ Could not drop previous review", "user_id", req.UserID, "err", err)
	}

	status, err := b.api.Send(tgbotapi.NewMessage(req.ChatID, msgStarting))
	if err != nil {
		b.log.Warn("⚠️ Could not send status message", "user_id", req.UserID, "err", err)
	}

	started = true
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.release(req.UserID)
		b.runSearch(ctx, req, status.MessageID, left)
	}()
}

func (b *Bot) runSearch(ctx context.Context, req searchRequest, statusID, searchesLeft int) {
	log := b.log.With("user_id", req.UserID)

	progress := func(p scraper.Progress) {
		switch p.Stage {
		case scraper.StageNavigating:
			b.editStatus(req.ChatID, statusID, msgNavigating)
		case scraper.StageLinksFound:
			b.editStatus(req.ChatID, statusID, renderLinksFound(p.Total))
		case scraper.StageChecking:
			b.editStatus(req.ChatID, statusID, renderChecking(p.Processed, p.Total))
		}
	}

	res, err := b.runner.Run(ctx, scraper.Request{URL: req.URL, Filters: req.Filters}, progress)
	b.deleteMessage(req.ChatID, statusID)

	switch {
	case err == nil:
	case ctx.Err() != nil:
		log.Info("🛑 Search cancelled")
		return
	case errors.Is(err, scraper.ErrSiteUnreachable):
		b.reply(req.ChatID, msgUnreachable)
		return
	case errors.Is(err, scraper.ErrNoLinksFound):
		if res != nil && len(res.Screenshot) > 0 {
			photo := tgbotapi.NewPhoto(req.ChatID, tgbotapi.FileBytes{Name: "search.png", Bytes: res.Screenshot})
			photo.Caption = msgNoLinks
			b.send(photo)
		} else {
			b.reply(req.ChatID, msgNoLinksText)
		}
		return
	default:
		log.Error("❌ Search failed", "err", err)
		b.reply(req.ChatID, msgCritical)
		return
	}

	if len(res.Candidates) == 0 {
		b.reply(req.ChatID, msgNoneMatched)
		return
	}

	b.reply(req.ChatID, renderFound(len(res.Candidates), searchesLeft))

	unlock := b.lockUser(req.UserID)
	defer unlock()
	review := session.NewReview(req.ChatID, res.Candidates)
	b.show(ctx, req.UserID, review)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil {
		return
	}
	userID := cq.From.ID

	unlock := b.lockUser(userID)
	defer unlock()

	review, err := b.sessions.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			b.log.Warn("⚠️ Could not load review", "user_id", userID, "err", err)
		}
		b.answer(cq.ID, msgExpired)
		return
	}
	if cq.Message != nil && review.Started && cq.Message.MessageID != review.MessageID {
		b.answer(cq.ID, msgOutdatedCard)
		return
	}

	switch cq.Data {
	case cbSave:
		inserted, err := review.Accept(ctx, b.store, userID)
		switch {
		case errors.Is(err, session.ErrExhausted):
			b.answer(cq.ID, "")
		case err != nil:
			b.notifier.Report(ctx, "Save Error", err)
			b.answer(cq.ID, msgSaveFailed)
			return
		case inserted:
			b.answer(cq.ID, msgSaved)
		default:
			b.answer(cq.ID, msgDuplicate)
		}
	case cbSkip:
		review.Reject()
		b.answer(cq.ID, msgSkipped)
	default:
		b.answer(cq.ID, "")
		return
	}

	b.show(ctx, userID, review)
}

// show renders the review's current card. The first card is a new message,
// later ones edit it in place. Callers hold the user's lock.
func (b *Bot) show(ctx context.Context, userID int64, review *session.Review) {
	if review.Exhausted() {
		b.finish(ctx, userID, review)
		return
	}

	cand, _ := review.Current()
	pos, total := review.Position()
	text := renderCard(cand, pos, total)

	if review.Started {
		edit := tgbotapi.NewEditMessageTextAndMarkup(review.ChatID, review.MessageID, text, reviewKeyboard())
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(edit); err == nil {
			b.putReview(ctx, userID, review)
			return
		}
	}

	msg := tgbotapi.NewMessage(review.ChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = reviewKeyboard()
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Warn("⚠️ Could not send card", "user_id", userID, "err", err)
		return
	}
	review.Started = true
	review.MessageID = sent.MessageID
	b.putReview(ctx, userID, review)
}

func (b *Bot) finish(ctx context.Context, userID int64, review *session.Review) {
	if review.Started {
		edit := tgbotapi.NewEditMessageText(review.ChatID, review.MessageID, msgFinished)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(edit); err != nil {
			b.reply(review.ChatID, msgFinished)
		}
	} else {
		b.reply(review.ChatID, msgFinished)
	}
	if err := b.sessions.Delete(ctx, userID); err != nil {
		b.log.Warn("⚠️ Could not drop finished review", "user_id", userID, "err", err)
	}
}

func (b *Bot) putReview(ctx context.Context, userID int64, review *session.Review) {
	if err := b.sessions.Put(ctx, userID, review); err != nil {
		b.notifier.Report(ctx, "Session Error", err)
	}
}

func (b *Bot) acquire(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inFlight[userID] {
		return false
	}
	b.inFlight[userID] = true
	return true
}

func (b *Bot) release(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inFlight, userID)
}

type userLock struct {
	mu   sync.Mutex
	refs int // holders plus waiters, guarded by Bot.mu
}

// lockUser serializes review changes for one user. The entry is dropped once
// nobody holds or waits on it.
func (b *Bot) lockUser(userID int64) func() {
	b.mu.Lock()
	l, ok := b.locks[userID]
	if !ok {
		l = &userLock{}
		b.locks[userID] = l
	}
	l.refs++
	b.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		b.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(b.locks, userID)
		}
		b.mu.Unlock()
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(msg)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Warn("⚠️ Telegram send failed", "err", err)
	}
}

func (b *Bot) editStatus(chatID int64, messageID int, text string) {
	if messageID == 0 {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.log.Debug("status edit failed", "err", err)
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Debug("status delete failed", "err", err)
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Debug("callback answer failed", "err", err)
	}
}
