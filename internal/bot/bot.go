package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/internal/excel"
	"github.com/example/psychly/internal/ledger"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/internal/quiz"
	"github.com/example/psychly/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// API is the part of the Telegram client the bot uses
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

// Quiz serves the daily content and grades guesses
type Quiz interface {
	Day(ctx context.Context, userID string, t models.ContentType, dateKey string) (*quiz.Day, error)
	SubmitGuess(ctx context.Context, userID string, t models.ContentType, dateKey, guess string) (*quiz.GuessResult, error)
	Badges(ctx context.Context, userID string, t models.ContentType) ([]models.Badge, error)
	Calendar(ctx context.Context, t models.ContentType) ([]models.CalendarDay, error)
}

// Ledger exposes per-user stats
type Ledger interface {
	Stats(ctx context.Context, userID string) (ledger.Snapshot, error)
	RecordView(ctx context.Context, userID, dateKey string) error
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// Votes records likes and dislikes
type Votes interface {
	Vote(ctx context.Context, dateKey, userID string, vote models.VoteType) (models.VoteTally, error)
	Load(ctx context.Context, dateKey, userID string) (models.VoteTally, error)
}

// UserStore persists Telegram users
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	SetNotifications(ctx context.Context, id string, enabled bool) error
}

// Importer loads content from an uploaded spreadsheet
type Importer interface {
	Import(ctx context.Context, config excel.ImportConfig) (*excel.ImportResult, error)
}

// Deps are the services the bot talks to
type Deps struct {
	Quiz     Quiz
	Ledger   Ledger
	Votes    Votes
	Users    UserStore
	Importer Importer
	Clock    datekey.Clock
	Log      *logger.Logger
}

const (
	stateAwaitingGuess  = "awaiting_guess"
	stateAwaitingImport = "awaiting_import"
)

// UserState represents the current state of a user in conversation with the bot
type UserState struct {
	State       string
	Timestamp   time.Time
	ContentType models.ContentType
}

// Bot represents the Telegram bot application
type Bot struct {
	api          API
	config       *BotConfig
	adminUserIDs map[int64]bool
	deps         Deps
	log          *logger.Logger

	mu         sync.Mutex
	userStates map[int64]UserState

	wg sync.WaitGroup
}

// NewAPI authorizes against Telegram with the given token
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	return api, nil
}

// New creates a new bot instance
func New(api API, config *BotConfig, adminUserIDs map[int64]bool, deps Deps) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	if deps.Clock == nil {
		deps.Clock = datekey.SystemClock{}
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if adminUserIDs == nil {
		adminUserIDs = make(map[int64]bool)
	}
	return &Bot{
		api:          api,
		config:       config,
		adminUserIDs: adminUserIDs,
		deps:         deps,
		log:          deps.Log.With("component", "bot"),
		userStates:   make(map[int64]UserState),
	}
}

// Run polls for updates until ctx is cancelled. Each update is handled in its own goroutine.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout

	updates := b.api.GetUpdatesChan(updateConfig)
	b.log.Info("bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.log.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

// SendDaily tells a user that today's puzzles are ready
func (b *Bot) SendDaily(ctx context.Context, user models.User) error {
	if user.ChatID == 0 {
		return fmt.Errorf("user %s has no chat", user.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	text := "🧠 Today's Psychly puzzles are ready!\n\n" +
		"Read the clues and guess the famous experiment and theory of the day."
	if snap, err := b.deps.Ledger.Stats(ctx, user.ID); err == nil && snap.Streak > 0 {
		text += fmt.Sprintf("\n\n🔥 Keep your %d-day streak going.", snap.Streak)
	}

	msg := tgbotapi.NewMessage(user.ChatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{
			{Text: "🧪 Experiment", CallbackData: "show_" + string(models.Experiment)},
			{Text: "💡 Theory", CallbackData: "show_" + string(models.Theory)},
		},
	})
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send daily message to %s: %w", user.ID, err)
	}
	return nil
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

func (b *Bot) today() string {
	return datekey.Today(b.deps.Clock)
}

func (b *Bot) setState(userID int64, state string, t models.ContentType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userStates[userID] = UserState{State: state, Timestamp: b.deps.Clock.Now(), ContentType: t}
}

// takeState returns and clears the user's state; expired states are dropped
func (b *Bot) takeState(userID int64) (UserState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.userStates[userID]
	if !ok {
		return UserState{}, false
	}
	delete(b.userStates, userID)
	if b.deps.Clock.Now().Sub(state.Timestamp) > b.config.StateTTL {
		return UserState{}, false
	}
	return state, true
}

func (b *Bot) clearState(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.userStates, userID)
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("failed to send message", "error", err)
		return err
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
