package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-vacancy-swipe/internal/models"
)

const (
	btnSearch = "🚀 Search"
	btnSaved  = "📂 Saved vacancies"
	btnHelp   = "ℹ️ Help"

	cbSave = "save_next"
	cbSkip = "skip_next"
)

const (
	msgWelcome      = "Hi! Choose an action from the menu 👇"
	msgSearchHowTo  = "Send me a search link from Work.ua or Robota.ua.\nAdd the words <b>salary</b> and/or <b>remote</b> to keep only vacancies with a salary or remote work.\n\nExample:\n<code>https://www.work.ua/jobs-golang/ salary remote</code>"
	msgUnknown      = "🤔 I did not understand that. Send a Work.ua or Robota.ua search link or use the menu."
	msgBadBoard     = "⛔️ I only work with Work.ua and Robota.ua. Please paste a valid link."
	msgBadTrigger   = "❌ Could not read the search data."
	msgBusy         = "⏳ A search is already running. Please wait for it to finish."
	msgRateLimited  = "🐢 Too many searches in a short time. Try again later."
	msgNoSearches   = "🚫 You have no searches left."
	msgStarting     = "⚙️ Starting the search..."
	msgNavigating   = "🔎 Opening the site..."
	msgUnreachable  = "❌ Could not open the site."
	msgNoLinks      = "❌ No vacancies found (see photo). Possibly a captcha."
	msgNoLinksText  = "❌ No vacancies found. Possibly a captcha."
	msgCritical     = "❌ A critical error occurred. The administrator has been notified."
	msgNoneMatched  = "😔 No vacancy passed the AI filters."
	msgDBError      = "❌ Database error, please try again."
	msgEmptyList    = "📂 Your list is empty so far."
	msgCleared      = "🗑 List cleared!"
	msgNoExport     = "📄 PDF export is not available right now."
	msgFinished     = "🏁 <b>Review finished!</b>\nAll liked vacancies are saved in \"📂 Saved vacancies\"."
	msgSaved        = "✅ Saved!"
	msgDuplicate    = "⚠️ Already in your list!"
	msgSkipped      = "🗑 Skipped"
	msgSaveFailed   = "❌ Database error"
	msgExpired      = "⌛ This search has expired. Start a new one."
	msgOutdatedCard = "⌛ This card is outdated."
)

const msgHelp = "<b>🤖 How to use the bot:</b>\n\n" +
	"1. Press <b>🚀 Search</b>.\n" +
	"2. Paste a link from Work.ua or Robota.ua.\n" +
	"3. The bot analyzes the vacancies and shows the best ones.\n" +
	"4. Press ❤️ to save one to <b>📂 Saved vacancies</b>.\n" +
	"5. Press 👎 to skip it.\n\n" +
	"<i>/export sends your saved list as a PDF, /clear empties it.</i>"

func mainMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSearch)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSaved),
			tgbotapi.NewKeyboardButton(btnHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func reviewKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👎 Skip", cbSkip),
			tgbotapi.NewInlineKeyboardButtonData("❤️ Like", cbSave),
		),
	)
}

// renderCard formats one candidate with its [pos/total] marker.
func renderCard(c models.Candidate, pos, total int) string {
	return fmt.Sprintf("[%d/%d] <b>%s</b>\n\n🤖 %s\n\n👉 <a href=\"%s\">Details on the site</a>",
		pos, total, html.EscapeString(c.Title), html.EscapeString(c.Summary), html.EscapeString(c.URL))
}

func renderSaved(list []models.SavedVacancy) string {
	var sb strings.Builder
	sb.WriteString("<b>📂 Your saved vacancies:</b>\n\n")
	for i, v := range list {
		fmt.Fprintf(&sb, "%d. <a href=\"%s\">%s</a>\n", i+1, html.EscapeString(v.URL), html.EscapeString(v.Title))
	}
	sb.WriteString("\n<i>To clear the list, send /clear</i>")
	return sb.String()
}

func renderFound(n, searchesLeft int) string {
	return fmt.Sprintf("🎉 Found %d relevant vacancies! Searches left: %d", n, searchesLeft)
}

func renderLinksFound(n int) string {
	return fmt.Sprintf("🔎 Found %d. Analyzing...", n)
}

func renderChecking(done, total int) string {
	return fmt.Sprintf("⚙️ Processed %d of %d...", done, total)
}
