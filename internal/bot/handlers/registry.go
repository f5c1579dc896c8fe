package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler bundles a command handler with its registration
// pattern and middleware chain.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all bot commands
// with their handlers and middleware.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	command := func(pattern string, handler tgbot.HandlerFunc, mw ...tgbot.Middleware) {
		handlers["/"+pattern] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     handler,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  mw,
		}
	}

	command("start", NewStartHandler(deps))
	command("help", NewHelpHandler(deps))
	command("add", NewAddHandler(deps))
	command("list", NewListHandler(deps))
	command("done", NewDoneHandler(deps))
	command("delete", NewDeleteHandler(deps))
	command("clear", NewClearHandler(deps))
	command("remind", NewRemindHandler(deps))
	command("due", NewDueHandler(deps))
	command("today", NewTodayHandler(deps))
	command("week", NewWeekHandler(deps))
	command("tag", NewTagHandler(deps))
	command("priority", NewPriorityHandler(deps))
	command("search", NewSearchHandler(deps))
	command("settings", NewSettingsHandler(deps))

	adminOnly := AdminOnly(deps)
	command("stats", NewStatsHandler(deps), adminOnly)
	command("broadcast", NewBroadcastHandler(deps), adminOnly)

	return handlers
}
