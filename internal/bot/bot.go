package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"todo_bot/internal/domain"
	"todo_bot/internal/logger"
	"todo_bot/internal/metrics"
	"todo_bot/internal/ratelimit"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TaskStore is the persistence surface the bot needs. Implemented by
// repository.TaskRepository.
type TaskStore interface {
	Add(ctx context.Context, userID int64, description string) (int, error)
	List(ctx context.Context, userID int64, includeDone bool) ([]domain.Task, error)
	MarkDone(ctx context.Context, id int, userID int64) (int64, error)
	Delete(ctx context.Context, id int, userID int64) (int64, error)
}

// Bot runs the update loop and dispatches commands to the task store.
type Bot struct {
	api     *tgbotapi.BotAPI
	tasks   TaskStore
	limiter *ratelimit.Limiter
	log     *slog.Logger

	// chats whose next message is the text of a new task
	mu       sync.Mutex
	awaiting map[int64]bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func New(token string, tasks TaskStore, limiter *ratelimit.Limiter) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:      api,
		tasks:    tasks,
		limiter:  limiter,
		log:      log,
		awaiting: make(map[int64]bool),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start runs the long-polling update loop until Stop is called. Updates
// are handled one at a time; each handler issues its own synchronous
// store calls.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 20

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		}
	}
}

// Stop shuts the update loop down and waits for the handler in flight.
func (b *Bot) Stop() {
	close(b.stopCh)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout")
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	b.wg.Add(1)
	defer b.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if update.CallbackQuery != nil {
		b.handleCallbackUpdate(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.Text == "" || msg.From == nil {
		return
	}

	if !b.limiter.Allow(ctx, msg.From.ID) {
		metrics.RateLimited.Inc()
		b.send(msg.Chat.ID, reply{text: msgRateLimited})
		return
	}

	for _, r := range b.dispatchMessage(ctx, msg.Chat.ID, msg.From.ID, msg.Text) {
		b.send(msg.Chat.ID, r)
	}
}

func (b *Bot) handleCallbackUpdate(ctx context.Context, call *tgbotapi.CallbackQuery) {
	res := b.dispatchCallback(ctx, call.From.ID, call.Data)

	if _, err := b.api.Request(tgbotapi.NewCallback(call.ID, res.ack)); err != nil {
		b.log.Error("answering callback", "error", err)
	}

	// Removing the inline buttons from the originating list entry is
	// best-effort: the message may be gone or too old to edit.
	if res.clearMarkup && call.Message != nil {
		edit := tgbotapi.NewEditMessageReplyMarkup(
			call.Message.Chat.ID, call.Message.MessageID,
			tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
		)
		if _, err := b.api.Request(edit); err != nil {
			b.log.Debug("clearing inline keyboard", "error", err)
		}
	}

	if res.confirm != nil && call.Message != nil {
		b.send(call.Message.Chat.ID, *res.confirm)
	}
}

func (b *Bot) send(chatID int64, r reply) {
	msg := tgbotapi.NewMessage(chatID, r.text)
	if r.html {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	if r.markup != nil {
		msg.ReplyMarkup = r.markup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("sending message", "chat_id", chatID, "error", err)
	}
}

// setAwaiting arms the new-task continuation for a chat.
func (b *Bot) setAwaiting(chatID int64) {
	b.mu.Lock()
	b.awaiting[chatID] = true
	b.mu.Unlock()
}

// consumeAwaiting disarms the continuation and reports whether it was
// armed. Consumed exactly once per /new.
func (b *Bot) consumeAwaiting(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.awaiting[chatID] {
		delete(b.awaiting, chatID)
		return true
	}
	return false
}
