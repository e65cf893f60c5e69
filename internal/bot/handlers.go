package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"todo_bot/internal/metrics"
)

// dispatchMessage routes one incoming text message to its handler and
// returns the replies to send, in order. An armed continuation wins
// over everything: the next message from that chat is the new task's
// text, whatever it says.
func (b *Bot) dispatchMessage(ctx context.Context, chatID, userID int64, text string) []reply {
	if b.consumeAwaiting(chatID) {
		return b.createTask(ctx, userID, text)
	}

	// Кнопки главного меню эквивалентны командам
	switch text {
	case btnNewTask:
		text = "/new"
	case btnListTasks:
		text = "/list"
	case btnHelp:
		text = "/help"
	}

	if !strings.HasPrefix(text, "/") {
		return nil
	}

	parts := strings.Fields(text)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "/start", "/help":
		metrics.CommandsHandled.WithLabelValues("help").Inc()
		return []reply{{text: helpText, html: true, markup: mainMenu()}}

	case "/new":
		metrics.CommandsHandled.WithLabelValues("new").Inc()
		b.setAwaiting(chatID)
		return []reply{{text: msgNewTaskPrompt, markup: mainMenu()}}

	case "/list":
		metrics.CommandsHandled.WithLabelValues("list").Inc()
		return b.handleList(ctx, userID)

	case "/done":
		metrics.CommandsHandled.WithLabelValues("done").Inc()
		return b.handleDone(ctx, userID, args)

	case "/delete":
		metrics.CommandsHandled.WithLabelValues("delete").Inc()
		return b.handleDelete(ctx, userID, args)
	}

	return nil
}

// createTask consumes the /new continuation. Empty or whitespace-only
// text creates nothing and the user is back at a clean prompt.
func (b *Bot) createTask(ctx context.Context, userID int64, text string) []reply {
	text = strings.TrimSpace(text)
	if text == "" {
		return []reply{{text: msgEmptyTask, markup: mainMenu()}}
	}

	id, err := b.tasks.Add(ctx, userID, text)
	if err != nil {
		metrics.StoreErrors.Inc()
		b.log.Error("adding task", "user_id", userID, "error", err)
		return []reply{{text: msgSaveError, markup: mainMenu()}}
	}
	return []reply{{text: fmt.Sprintf(msgTaskSaved, id), markup: mainMenu()}}
}

func (b *Bot) handleList(ctx context.Context, userID int64) []reply {
	tasks, err := b.tasks.List(ctx, userID, false)
	if err != nil {
		metrics.StoreErrors.Inc()
		b.log.Error("listing tasks", "user_id", userID, "error", err)
		return []reply{{text: msgListError, markup: mainMenu()}}
	}

	if len(tasks) == 0 {
		return []reply{{text: msgNoTasks, markup: mainMenu()}}
	}

	// One message per task, each with its own complete/delete buttons.
	res := make([]reply, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, reply{
			text:   formatTask(t),
			html:   true,
			markup: taskKeyboard(t.ID),
		})
	}
	return res
}

func (b *Bot) handleDone(ctx context.Context, userID int64, args []string) []reply {
	if len(args) < 1 {
		return []reply{{text: msgDoneUsage, html: true}}
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return []reply{{text: msgIDNotNumber}}
	}

	affected, err := b.tasks.MarkDone(ctx, id, userID)
	if err != nil {
		metrics.StoreErrors.Inc()
		b.log.Error("marking task done", "task_id", id, "user_id", userID, "error", err)
		return []reply{{text: msgOpError}}
	}
	if affected == 0 {
		return []reply{{text: msgNotFound}}
	}
	return []reply{{text: fmt.Sprintf(msgTaskDone, id)}}
}

func (b *Bot) handleDelete(ctx context.Context, userID int64, args []string) []reply {
	if len(args) < 1 {
		return []reply{{text: msgDeleteUsage, html: true}}
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return []reply{{text: msgIDNotNumber}}
	}

	affected, err := b.tasks.Delete(ctx, id, userID)
	if err != nil {
		metrics.StoreErrors.Inc()
		b.log.Error("deleting task", "task_id", id, "user_id", userID, "error", err)
		return []reply{{text: msgOpError}}
	}
	if affected == 0 {
		return []reply{{text: msgNotFound}}
	}
	return []reply{{text: fmt.Sprintf(msgTaskDeleted, id)}}
}

// callbackResult is what an inline button press produces: the short
// callback answer, an optional follow-up message, and whether to strip
// the buttons off the originating list entry.
type callbackResult struct {
	ack         string
	confirm     *reply
	clearMarkup bool
}

// dispatchCallback handles done:<id> and del:<id> payloads. Semantics
// match /done and /delete for the pressing user's id.
func (b *Bot) dispatchCallback(ctx context.Context, userID int64, data string) callbackResult {
	action, rest, found := strings.Cut(data, ":")
	if !found {
		return callbackResult{ack: ackUnknown}
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		return callbackResult{ack: ackUnknown}
	}

	switch action {
	case "done":
		metrics.CallbacksHandled.WithLabelValues("done").Inc()
		affected, err := b.tasks.MarkDone(ctx, id, userID)
		if err != nil {
			metrics.StoreErrors.Inc()
			b.log.Error("marking task done", "task_id", id, "user_id", userID, "error", err)
			return callbackResult{ack: ackServerError}
		}
		if affected == 0 {
			return callbackResult{ack: ackNotFound}
		}
		return callbackResult{
			ack:         ackDone,
			confirm:     &reply{text: fmt.Sprintf(msgTaskDone, id), markup: mainMenu()},
			clearMarkup: true,
		}

	case "del":
		metrics.CallbacksHandled.WithLabelValues("del").Inc()
		affected, err := b.tasks.Delete(ctx, id, userID)
		if err != nil {
			metrics.StoreErrors.Inc()
			b.log.Error("deleting task", "task_id", id, "user_id", userID, "error", err)
			return callbackResult{ack: ackServerError}
		}
		if affected == 0 {
			return callbackResult{ack: ackNotFound}
		}
		return callbackResult{
			ack:         ackDeleted,
			confirm:     &reply{text: fmt.Sprintf(msgTaskDeleted, id), markup: mainMenu()},
			clearMarkup: true,
		}
	}

	return callbackResult{ack: ackUnknown}
}
