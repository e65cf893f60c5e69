package bot

import (
	"fmt"
	"html"

	"todo_bot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// reply is one outbound message: text, optional HTML parse mode and an
// optional keyboard.
type reply struct {
	text   string
	html   bool
	markup interface{}
}

const (
	btnNewTask   = "➕ Новая задача"
	btnListTasks = "📋 Список задач"
	btnHelp      = "ℹ️ Помощь"

	helpText = "Привет, мой достигатор!💪🏻🤓\n" +
		"Чувствуешь, что не справляешься и тебе нужен помощник в планировании задач?😩\n" +
		"Я буду твоим любимым!😏😉😘\n" +
		"Можешь пользоваться кнопками ниже или вводить команды вручную: 👇🏻\n" +
		"/new — создать новую задачу\n" +
		"/list — показать список текущих задач\n" +
		"/done &lt;id&gt; — отметить задачу выполненной\n" +
		"/delete &lt;id&gt; — удалить задачу\n" +
		"/help — показать это сообщение"

	msgNewTaskPrompt = "Напиши текст новой задачи:"
	msgEmptyTask     = "Пустой текст — задача не создана. Попробуйте ещё: /new"
	msgTaskSaved     = "Задача сохранена с id=%d"
	msgSaveError     = "Ошибка при сохранении задачи. Смотрите логи."
	msgNoTasks       = "У вас нет активных задач. Создать: /new"
	msgListError     = "Ошибка при запросе задач. Смотрите логи."
	msgDoneUsage     = "Использование: /done &lt;id&gt;"
	msgDeleteUsage   = "Использование: /delete &lt;id&gt;"
	msgIDNotNumber   = "id должен быть числом"
	msgTaskDone      = "Задача #%d отмечена как выполненная"
	msgTaskDeleted   = "Задача #%d удалена"
	msgNotFound      = "Задача не найдена или у вас нет к ней доступа"
	msgOpError       = "Ошибка при выполнении операции. Смотрите логи."
	msgRateLimited   = "Слишком много команд, попробуйте позже."

	ackDone        = "Отмечено как выполненное"
	ackDeleted     = "Удалено"
	ackNotFound    = "Не найдено или нет прав"
	ackUnknown     = "Неизвестная команда"
	ackServerError = "Ошибка на сервере"
)

// mainMenu is the persistent reply keyboard with the three primary
// actions.
func mainMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnNewTask),
			tgbotapi.NewKeyboardButton(btnListTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// taskKeyboard attaches complete/delete buttons to one list entry.
func taskKeyboard(id int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Выполнено", fmt.Sprintf("done:%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("del:%d", id)),
		),
	)
}

// formatTask renders one list entry in HTML parse mode.
func formatTask(t domain.Task) string {
	return fmt.Sprintf("<b>#%d</b> — %s\nсоздано: %s",
		t.ID,
		html.EscapeString(t.Description),
		t.CreatedAt.Format("02.01.2006 15:04"),
	)
}
