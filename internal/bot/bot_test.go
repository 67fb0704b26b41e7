package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/example/psychly/internal/ai"
	"github.com/example/psychly/internal/badge"
	"github.com/example/psychly/internal/content"
	"github.com/example/psychly/internal/database"
	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/internal/excel"
	"github.com/example/psychly/internal/ledger"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/internal/quiz"
	"github.com/example/psychly/internal/votes"
	"github.com/example/psychly/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminID int64 = 7
	aliceID int64 = 42
	chatID  int64 = 1000
)

var now = time.Date(2026, 1, 20, 9, 30, 0, 0, time.Local)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	fileURL  string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) GetFileDirectURL(string) (string, error) {
	return f.fileURL, nil
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "last sent item is not a message")
	return msg.Text
}

type fixture struct {
	bot     *Bot
	api     *fakeAPI
	users   *database.UserRepository
	content *database.ContentRepository
	votes   *votes.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.InitializeSchema(ctx, db))

	log := logger.Nop()
	clock := datekey.FixedClock{T: now}
	pools := badge.DefaultPools()
	gen := ai.NewFallback(pools.Categories())
	contentRepo := database.NewContentRepository(db)
	statsRepo := database.NewStatsRepository(db)
	userRepo := database.NewUserRepository(db)

	resolver := content.NewResolver(contentRepo, gen, pools, clock, log)
	l := ledger.New(statsRepo, clock, log)
	voteSvc := votes.NewService(database.NewVoteRepository(db), log)

	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	b := New(api, DefaultConfig(), map[int64]bool{adminID: true}, Deps{
		Quiz:     quiz.NewService(resolver, gen, l, contentRepo, statsRepo, log),
		Ledger:   l,
		Votes:    voteSvc,
		Users:    userRepo,
		Importer: excel.NewImporter(contentRepo, pools),
		Clock:    clock,
		Log:      log,
	})
	return &fixture{bot: b, api: api, users: userRepo, content: contentRepo, votes: voteSvc}
}

func command(from int64, text string) *tgbotapi.Message {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from, FirstName: "Ada", UserName: "ada"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func text(from int64, body string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 2,
		From:      &tgbotapi.User{ID: from},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      body,
	}
}

func callback(from int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: 3, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}
}

func TestStartRegistersUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: command(aliceID, "/start")})

	user, err := f.users.GetByID(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, chatID, user.ChatID)
	assert.Equal(t, "ada", user.Username)
	assert.True(t, user.NotificationEnabled)
	assert.Contains(t, f.api.lastText(t), "Welcome to Psychly")
}

func TestGuessFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: command(aliceID, "/experiment")})
	shown := f.api.lastText(t)
	assert.Contains(t, shown, "Experiment of the day")
	assert.NotContains(t, shown, "Stanford Prison Experiment")

	f.bot.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback(aliceID, "guess_experiment")})
	assert.Contains(t, f.api.lastText(t), "Send your guess")

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: text(aliceID, "stanford prison")})
	reply := f.api.lastText(t)
	assert.Contains(t, reply, "Correct")
	assert.Contains(t, reply, "Stanford Prison Experiment")
	assert.Contains(t, reply, "Streak: 1")

	// the state is consumed by the first guess
	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: text(aliceID, "milgram")})
	assert.Contains(t, f.api.lastText(t), "I don't understand")

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: command(aliceID, "/experiment")})
	assert.Contains(t, f.api.lastText(t), "You guessed it: stanford prison")
}

func TestEmptyGuessKeepsWaiting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback(aliceID, "guess_theory")})
	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: text(aliceID, "   ")})
	assert.Contains(t, f.api.lastText(t), "Please send a guess")

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: text(aliceID, "maslow hierarchy")})
	assert.Contains(t, f.api.lastText(t), "Correct")
}

func TestExpiredStateIsDropped(t *testing.T) {
	f := newFixture(t)

	f.bot.userStates[aliceID] = UserState{State: stateAwaitingGuess, Timestamp: now.Add(-time.Hour), ContentType: models.Theory}
	_, ok := f.bot.takeState(aliceID)
	assert.False(t, ok)
	assert.Empty(t, f.bot.userStates)
}

func TestVoteToggles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback(aliceID, "vote_like_2026-01-20")})
	tally, err := f.votes.Load(ctx, "2026-01-20", "42")
	require.NoError(t, err)
	assert.Equal(t, 1, tally.LikeCount)
	assert.Equal(t, models.VoteLike, tally.UserVote)

	f.bot.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback(aliceID, "vote_dislike_2026-01-20")})
	tally, err = f.votes.Load(ctx, "2026-01-20", "42")
	require.NoError(t, err)
	assert.Equal(t, 0, tally.LikeCount)
	assert.Equal(t, 1, tally.DislikeCount)

	f.bot.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback(aliceID, "vote_dislike_2026-01-20")})
	tally, err = f.votes.Load(ctx, "2026-01-20", "42")
	require.NoError(t, err)
	assert.Equal(t, 0, tally.DislikeCount)
	assert.Equal(t, models.VoteNone, tally.UserVote)
}

func TestImportRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: command(aliceID, "/import")})
	assert.Contains(t, f.api.lastText(t), "only available for administrators")
	assert.Empty(t, f.bot.userStates)
}

func TestImportUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("header\n2026-02-01,theory,Operant Conditioning,Consequences shape behavior,1938,B. F. Skinner,,,behavioral,\n"))
	}))
	defer srv.Close()
	f.api.fileURL = srv.URL

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: command(adminID, "/import")})
	assert.Contains(t, f.api.lastText(t), "Send an .xlsx or .csv file")

	upload := text(adminID, "")
	upload.Document = &tgbotapi.Document{FileID: "f1", FileName: "content.csv", FileSize: 120}
	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: upload})

	assert.Contains(t, f.api.lastText(t), "Created: 1")
	c, err := f.content.Get(ctx, models.Theory, "2026-02-01")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Operant Conditioning", c.Name)
}

func TestImportRejectsOtherFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: command(adminID, "/import")})
	upload := text(adminID, "")
	upload.Document = &tgbotapi.Document{FileID: "f1", FileName: "notes.txt"}
	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: upload})
	assert.Contains(t, f.api.lastText(t), "Only .xlsx and .csv")
}

func TestNotificationsToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: command(aliceID, "/notify")})
	assert.Contains(t, f.api.lastText(t), "/start first")

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: command(aliceID, "/start")})
	f.bot.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback(aliceID, "notifications")})
	assert.Contains(t, f.api.lastText(t), "disabled")

	user, err := f.users.GetByID(ctx, "42")
	require.NoError(t, err)
	assert.False(t, user.NotificationEnabled)
}

func TestStatsAfterGuess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback(aliceID, "guess_experiment")})
	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: text(aliceID, "stanford prison experiment")})

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: command(aliceID, "/stats")})
	stats := f.api.lastText(t)
	assert.Contains(t, stats, "Days played: 1")
	assert.Contains(t, stats, "World rank: #1")
	assert.Contains(t, stats, "Experiments guessed: 1")

	f.bot.handleUpdate(ctx, tgbotapi.Update{Message: command(aliceID, "/badges")})
	assert.Contains(t, f.api.lastText(t), "2026-01-20 Stanford Prison Experiment")
}

func TestSendDaily(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.Error(t, f.bot.SendDaily(ctx, models.User{ID: "42"}))

	require.NoError(t, f.bot.SendDaily(ctx, models.User{ID: "42", ChatID: chatID}))
	assert.Contains(t, f.api.lastText(t), "puzzles are ready")
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.bot.Run(ctx) }()

	f.api.updates <- tgbotapi.Update{Message: command(aliceID, "/help")}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("bot did not stop")
	}
	assert.Contains(t, f.api.lastText(t), "/experiment")
}
