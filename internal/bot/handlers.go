package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/excel"
	"github.com/example/psychly/internal/quiz"
	"github.com/example/psychly/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackMainMenu      = "main_menu"
	callbackHelp          = "help"
	callbackStats         = "stats"
	callbackBadges        = "badges"
	callbackCalendar      = "calendar"
	callbackLeaderboard   = "leaderboard"
	callbackNotifications = "notifications"
	callbackCancelAction  = "cancel_action"

	prefixShow  = "show_"
	prefixGuess = "guess_"
	prefixVote  = "vote_"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	var chatID int64
	switch {
	case update.Message != nil:
		if update.Message.From == nil || update.Message.Chat == nil {
			return
		}
		chatID = update.Message.Chat.ID
		if update.Message.IsCommand() {
			err = b.HandleCommand(ctx, update.Message)
		} else {
			err = b.handleMessage(ctx, update.Message)
		}
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
		err = b.HandleCallback(ctx, update.CallbackQuery)
	default:
		return
	}

	if err != nil {
		b.log.Warn("failed to handle update", "update_id", update.UpdateID, "error", err)
		_ = b.sendText(chatID, "❌ "+apperr.Message(err))
	}
}

// HandleCommand dispatches a slash command
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		return b.handleStart(ctx, message)
	case "help":
		return b.handleHelp(message.Chat.ID)
	case "menu":
		return b.showMainMenu(message.Chat.ID)
	case "experiment":
		return b.showDay(ctx, message.Chat.ID, message.From.ID, models.Experiment)
	case "theory":
		return b.showDay(ctx, message.Chat.ID, message.From.ID, models.Theory)
	case "stats":
		return b.handleStats(ctx, message.Chat.ID, message.From.ID)
	case "badges":
		return b.handleBadges(ctx, message.Chat.ID, message.From.ID)
	case "calendar":
		return b.handleCalendar(ctx, message.Chat.ID)
	case "leaderboard":
		return b.handleLeaderboard(ctx, message.Chat.ID)
	case "notify":
		return b.handleNotifications(ctx, message.Chat.ID, message.From.ID)
	case "import":
		return b.handleImportCommand(message)
	default:
		return b.handleUnknownCommand(message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	state, ok := b.takeState(message.From.ID)
	if !ok {
		msg := tgbotapi.NewMessage(message.Chat.ID, "I don't understand. Use /menu to show the main menu.")
		msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
		return b.sendMessage(msg)
	}

	switch state.State {
	case stateAwaitingGuess:
		return b.submitGuess(ctx, message, state.ContentType)
	case stateAwaitingImport:
		if message.Document == nil {
			// keep waiting for the file
			b.setState(message.From.ID, stateAwaitingImport, "")
			return b.sendText(message.Chat.ID, "Please send an .xlsx or .csv file, or /menu to cancel.")
		}
		return b.processImport(ctx, message)
	}
	return nil
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	user := &models.User{
		ID:                  userKey(message.From.ID),
		ChatID:              message.Chat.ID,
		Username:            message.From.UserName,
		FirstName:           message.From.FirstName,
		NotificationEnabled: true,
	}
	if err := b.deps.Users.Upsert(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}

	name := message.From.FirstName
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi %s! Welcome to Psychly.\n\n"+
		"Every day there is one famous psychology experiment and one theory to guess. "+
		"Read the clues, send your answer and collect a badge for every correct guess.", name)
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "📖 Commands\n\n" +
		"/experiment - today's experiment\n" +
		"/theory - today's theory\n" +
		"/stats - your days, streak and rank\n" +
		"/badges - badges you have earned\n" +
		"/calendar - recent days and their badges\n" +
		"/leaderboard - most active players\n" +
		"/notify - turn the daily reminder on or off\n" +
		"/menu - main menu"
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleUnknownCommand(message *tgbotapi.Message) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Use /menu to show the main menu.")
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) showMainMenu(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Main Menu - choose an option:")
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🧪 Experiment", CallbackData: prefixShow + string(models.Experiment)},
			{Text: "💡 Theory", CallbackData: prefixShow + string(models.Theory)},
		},
		{
			{Text: "📊 Statistics", CallbackData: callbackStats},
			{Text: "🏅 Badges", CallbackData: callbackBadges},
		},
		{
			{Text: "📅 Calendar", CallbackData: callbackCalendar},
			{Text: "🏆 Leaderboard", CallbackData: callbackLeaderboard},
		},
		{
			{Text: "🔔 Notifications", CallbackData: callbackNotifications},
			{Text: "❓ Help", CallbackData: callbackHelp},
		},
	}
}

// showDay sends today's content of type t. The name stays hidden until the user has guessed.
func (b *Bot) showDay(ctx context.Context, chatID, telegramID int64, t models.ContentType) error {
	userID := userKey(telegramID)
	dateKey := b.today()

	day, err := b.deps.Quiz.Day(ctx, userID, t, dateKey)
	if err != nil {
		return err
	}
	if err := b.deps.Ledger.RecordView(ctx, userID, dateKey); err != nil {
		b.log.Warn("failed to record view", "user_id", userID, "error", err)
	}

	msg := tgbotapi.NewMessage(chatID, formatDay(day))
	var buttons [][]MenuButton
	if !day.Revealed {
		buttons = append(buttons, []MenuButton{{Text: "✍️ Guess", CallbackData: prefixGuess + string(t)}})
	}
	buttons = append(buttons, b.voteButtons(ctx, dateKey, userID))
	buttons = append(buttons, []MenuButton{{Text: "⬅️ Menu", CallbackData: callbackMainMenu}})
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

func (b *Bot) voteButtons(ctx context.Context, dateKey, userID string) []MenuButton {
	tally, err := b.deps.Votes.Load(ctx, dateKey, userID)
	if err != nil {
		b.log.Warn("failed to load votes", "date", dateKey, "error", err)
	}
	like, dislike := "👍", "👎"
	switch tally.UserVote {
	case models.VoteLike:
		like = "✅👍"
	case models.VoteDislike:
		dislike = "✅👎"
	}
	return []MenuButton{
		{Text: fmt.Sprintf("%s %d", like, tally.LikeCount), CallbackData: prefixVote + string(models.VoteLike) + "_" + dateKey},
		{Text: fmt.Sprintf("%s %d", dislike, tally.DislikeCount), CallbackData: prefixVote + string(models.VoteDislike) + "_" + dateKey},
	}
}

func formatDay(day *quiz.Day) string {
	c := day.Content
	var text strings.Builder

	if c.Type == models.Theory {
		text.WriteString("💡 Theory of the day\n\n")
	} else {
		text.WriteString("🧪 Experiment of the day\n\n")
	}
	if day.Revealed {
		fmt.Fprintf(&text, "%s %s\n\n", c.DisplayBadgeIcon(), c.Name)
	}
	text.WriteString(c.Info + "\n")
	if c.Period != "" {
		fmt.Fprintf(&text, "\n📅 %s", c.Period)
	}
	if c.People != "" {
		fmt.Fprintf(&text, "\n👤 %s", c.People)
	}
	if c.Type == models.Experiment && c.Hypothesis != "" {
		fmt.Fprintf(&text, "\n\n🔬 Hypothesis: %s", c.Hypothesis)
		if day.Revealed {
			if c.Rejected {
				text.WriteString(" (rejected)")
			} else {
				text.WriteString(" (supported)")
			}
		}
	}

	switch {
	case day.Answer != nil && day.Answer.Correct:
		fmt.Fprintf(&text, "\n\n✅ You guessed it: %s", day.Answer.Guess)
	case day.Answer != nil:
		fmt.Fprintf(&text, "\n\n❌ Your guess: %s", day.Answer.Guess)
	case !day.Revealed:
		text.WriteString("\n\nWhat is it? Tap Guess and send your answer.")
	}
	return text.String()
}

func (b *Bot) submitGuess(ctx context.Context, message *tgbotapi.Message, t models.ContentType) error {
	userID := userKey(message.From.ID)
	res, err := b.deps.Quiz.SubmitGuess(ctx, userID, t, b.today(), message.Text)
	if errors.Is(err, apperr.ErrInvalidInput) {
		b.setState(message.From.ID, stateAwaitingGuess, t)
		return b.sendText(message.Chat.ID, "Please send a guess of up to 200 characters.")
	}
	if err != nil {
		return err
	}

	var text strings.Builder
	switch {
	case res.AlreadyAnswered:
		fmt.Fprintf(&text, "You already answered today: %s\n", res.Answer.Guess)
	case res.Correct:
		text.WriteString("🎉 Correct!\n")
	default:
		text.WriteString("❌ Not quite.\n")
	}
	if res.Content != nil {
		fmt.Fprintf(&text, "\nIt was %s %s.", res.Content.DisplayBadgeIcon(), res.Content.Name)
	}
	if res.Reasoning != "" {
		fmt.Fprintf(&text, "\n%s", res.Reasoning)
	}
	fmt.Fprintf(&text, "\n\n🔥 Streak: %d  📆 Days: %d", res.Stats.Streak, res.Stats.DayCount)
	if res.Stats.Pending {
		text.WriteString("\n⚠️ Your progress will be saved once the server is reachable.")
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text.String())
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleStats(ctx context.Context, chatID, telegramID int64) error {
	snap, err := b.deps.Ledger.Stats(ctx, userKey(telegramID))
	if err != nil {
		return err
	}

	text := fmt.Sprintf("📊 Your statistics\n\n"+
		"📆 Days played: %d\n"+
		"🔥 Streak: %d\n"+
		"🌍 World rank: #%d\n"+
		"🧪 Experiments guessed: %d\n"+
		"💡 Theories guessed: %d",
		snap.DayCount, snap.Streak, snap.Rank, snap.CorrectExperiments, snap.CorrectTheories)
	return b.sendText(chatID, text)
}

func (b *Bot) handleBadges(ctx context.Context, chatID, telegramID int64) error {
	userID := userKey(telegramID)

	var text strings.Builder
	text.WriteString("🏅 Your badges\n")
	total := 0
	for _, t := range models.ContentTypes {
		badges, err := b.deps.Quiz.Badges(ctx, userID, t)
		if err != nil {
			return err
		}
		total += len(badges)
		if len(badges) == 0 {
			continue
		}
		fmt.Fprintf(&text, "\n%s (%d)\n", typeTitle(t), len(badges))
		for _, badge := range badges {
			fmt.Fprintf(&text, "%s %s - %s [%s]\n", badge.DateKey, badge.Name, badge.Icon, badge.Category)
		}
	}
	if total == 0 {
		return b.sendText(chatID, "You have no badges yet. Guess today's experiment or theory to earn one!")
	}
	return b.sendText(chatID, text.String())
}

func (b *Bot) handleCalendar(ctx context.Context, chatID int64) error {
	var text strings.Builder
	text.WriteString("📅 Recent days\n")
	for _, t := range models.ContentTypes {
		days, err := b.deps.Quiz.Calendar(ctx, t)
		if err != nil {
			return err
		}
		fmt.Fprintf(&text, "\n%s\n", typeTitle(t))
		if len(days) == 0 {
			text.WriteString("nothing yet\n")
			continue
		}
		// newest last
		if len(days) > b.config.CalendarDays {
			days = days[len(days)-b.config.CalendarDays:]
		}
		for _, d := range days {
			fmt.Fprintf(&text, "%s %s\n", d.DateKey, d.BadgeIcon)
		}
	}
	return b.sendText(chatID, text.String())
}

func (b *Bot) handleLeaderboard(ctx context.Context, chatID int64) error {
	entries, err := b.deps.Ledger.Leaderboard(ctx, b.config.LeaderboardSize)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return b.sendText(chatID, "Nobody is on the leaderboard yet.")
	}

	var text strings.Builder
	text.WriteString("🏆 Leaderboard\n\n")
	for _, e := range entries {
		name := e.Username
		if name == "" {
			name = "anonymous"
		}
		fmt.Fprintf(&text, "%d. %s - %d days\n", e.Rank, name, e.Days)
	}
	return b.sendText(chatID, text.String())
}

func (b *Bot) handleNotifications(ctx context.Context, chatID, telegramID int64) error {
	userID := userKey(telegramID)
	user, err := b.deps.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	if user == nil {
		return b.sendText(chatID, "Please send /start first.")
	}

	enabled := !user.NotificationEnabled
	if err := b.deps.Users.SetNotifications(ctx, userID, enabled); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	return b.sendText(chatID, "🔔 Daily reminder: "+boolToEnabledString(enabled))
}

func boolToEnabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func typeTitle(t models.ContentType) string {
	if t == models.Theory {
		return "💡 Theories"
	}
	return "🧪 Experiments"
}

func (b *Bot) handleImportCommand(message *tgbotapi.Message) error {
	if !b.isAdmin(message.From.ID) {
		msg := tgbotapi.NewMessage(message.Chat.ID, "This command is only available for administrators.")
		msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
		return b.sendMessage(msg)
	}
	b.setState(message.From.ID, stateAwaitingImport, "")
	text := "Send an .xlsx or .csv file with the columns:\n" +
		"Date, Type, Name, Info, Period, People, Hypothesis, Rejected, Category, Icon\n\n" +
		"The first row is treated as a header."
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "Cancel", CallbackData: callbackCancelAction}}})
	return b.sendMessage(msg)
}

func (b *Bot) processImport(ctx context.Context, message *tgbotapi.Message) error {
	if !b.isAdmin(message.From.ID) {
		return nil
	}
	doc := message.Document
	ext := strings.ToLower(filepath.Ext(doc.FileName))
	if ext != ".xlsx" && ext != ".csv" {
		return b.sendText(message.Chat.ID, "❌ Only .xlsx and .csv files can be imported.")
	}
	if int64(doc.FileSize) > b.config.MaxImportSize {
		return b.sendText(message.Chat.ID, "❌ The file is too large.")
	}

	ctx, cancel := context.WithTimeout(ctx, b.config.ImportTimeout)
	defer cancel()

	path, err := b.downloadFile(ctx, doc.FileID, ext)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	cfg := excel.DefaultImportConfig()
	cfg.FilePath = path
	result, err := b.deps.Importer.Import(ctx, cfg)
	if err != nil {
		b.log.Error("import failed", "file", doc.FileName, "error", err)
		return b.sendText(message.Chat.ID, "❌ Import failed: "+err.Error())
	}
	b.log.Info("import finished", "file", doc.FileName, "processed", result.TotalProcessed,
		"created", result.Created, "updated", result.Updated, "errors", len(result.Errors))

	var text strings.Builder
	fmt.Fprintf(&text, "✅ Import finished:\n"+
		"- Processed: %d\n"+
		"- Created: %d\n"+
		"- Updated: %d\n"+
		"- Unchanged: %d\n", result.TotalProcessed, result.Created, result.Updated, result.Skipped)
	if len(result.Errors) > 0 {
		fmt.Fprintf(&text, "\n❌ Errors (%d):\n", len(result.Errors))
		for i, e := range result.Errors {
			if i == 20 {
				fmt.Fprintf(&text, "... and %d more\n", len(result.Errors)-i)
				break
			}
			text.WriteString("- " + e + "\n")
		}
	}
	return b.sendText(message.Chat.ID, text.String())
}

// downloadFile saves a Telegram document to a temporary file and returns its path
func (b *Bot) downloadFile(ctx context.Context, fileID, ext string) (string, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to get file URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp("", "psychly-import-*"+ext)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, io.LimitReader(resp.Body, b.config.MaxImportSize)); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return f.Name(), nil
}

// HandleCallback handles inline button presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Debug("failed to answer callback", "error", err)
	}

	chatID := callback.Message.Chat.ID
	userID := callback.From.ID

	switch data := callback.Data; {
	case data == callbackMainMenu:
		return b.showMainMenu(chatID)
	case data == callbackHelp:
		return b.handleHelp(chatID)
	case data == callbackStats:
		return b.handleStats(ctx, chatID, userID)
	case data == callbackBadges:
		return b.handleBadges(ctx, chatID, userID)
	case data == callbackCalendar:
		return b.handleCalendar(ctx, chatID)
	case data == callbackLeaderboard:
		return b.handleLeaderboard(ctx, chatID)
	case data == callbackNotifications:
		return b.handleNotifications(ctx, chatID, userID)
	case data == callbackCancelAction:
		b.clearState(userID)
		return b.showMainMenu(chatID)
	case strings.HasPrefix(data, prefixShow):
		t, ok := models.ParseContentType(strings.TrimPrefix(data, prefixShow))
		if !ok {
			return apperr.ErrInvalidInput
		}
		return b.showDay(ctx, chatID, userID, t)
	case strings.HasPrefix(data, prefixGuess):
		t, ok := models.ParseContentType(strings.TrimPrefix(data, prefixGuess))
		if !ok {
			return apperr.ErrInvalidInput
		}
		b.setState(userID, stateAwaitingGuess, t)
		return b.sendText(chatID, fmt.Sprintf("Send your guess for today's %s.", t))
	case strings.HasPrefix(data, prefixVote):
		return b.handleVote(ctx, callback, strings.TrimPrefix(data, prefixVote))
	default:
		return b.sendText(chatID, "⚠️ Unknown action")
	}
}

// handleVote applies "<like|dislike>_<date>". Pressing the current vote again clears it.
func (b *Bot) handleVote(ctx context.Context, callback *tgbotapi.CallbackQuery, payload string) error {
	kind, dateKey, ok := strings.Cut(payload, "_")
	if !ok {
		return apperr.ErrInvalidInput
	}
	vote, ok := models.ParseVoteType(kind)
	if !ok || vote == models.VoteNone {
		return apperr.ErrInvalidInput
	}

	userID := userKey(callback.From.ID)
	current, err := b.deps.Votes.Load(ctx, dateKey, userID)
	if err != nil {
		return err
	}
	if current.UserVote == vote {
		vote = models.VoteNone
	}
	if _, err := b.deps.Votes.Vote(ctx, dateKey, userID, vote); err != nil {
		return err
	}

	// refresh the counters on the message the button belongs to
	markup := callback.Message.ReplyMarkup
	if markup == nil {
		return nil
	}
	row := b.voteButtons(ctx, dateKey, userID)
	for i, r := range markup.InlineKeyboard {
		if len(r) > 0 && r[0].CallbackData != nil && strings.HasPrefix(*r[0].CallbackData, prefixVote) {
			markup.InlineKeyboard[i] = createKeyboard([][]MenuButton{row}).InlineKeyboard[0]
		}
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(callback.Message.Chat.ID, callback.Message.MessageID, *markup)
	if _, err := b.api.Request(edit); err != nil {
		b.log.Debug("failed to update vote buttons", "error", err)
	}
	return nil
}
