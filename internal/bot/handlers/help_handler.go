package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const helpText = `📖 Commands

/add <text> - add a task
/list - show open tasks (/list all includes done)
/done <n> - mark task n as done
/delete <n> - remove task n
/clear - remove all tasks
/remind <n> <when> - set a reminder, e.g. "30m", "tomorrow 9am", "friday 15:00"
/due <n> <when> - set a due date, e.g. "tomorrow", "friday 17:00", "dec 25"
/today - show tasks due today
/week - show tasks due this week
/tag <n> <category> - tag a task
/priority <n> <high|normal|low> - set priority
/search <text> - find tasks
/settings - show chat settings
/settings clean on|off - toggle automatic message cleanup
/settings retention <3|7|14|30> - how long my messages stay
/settings sort date|priority - list order`

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	if err := h.deps.Sender.SendMessage(ctx, update.Message.Chat.ID, helpText); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send help message",
			"error", err, "chat_id", update.Message.Chat.ID)
	}
}
