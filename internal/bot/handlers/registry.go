package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/khalsirati/helperbot/internal/inbox"
	"github.com/khalsirati/helperbot/internal/menu"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands builds the trigger table: commands, fixed keyword
// buttons, one button per catalog entry and the reply callback. Messages no
// entry claims fall through to NewDefaultHandler.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)
	kw := deps.Config.Keywords

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/admin"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "admin",
		Handler:     NewAdminStatsHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  []tgbot.Middleware{AdminOnly(deps)},
	}

	keyword := func(text string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) {
		handlers[text] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     text,
			Handler:     h,
			MatchType:   tgbot.MatchTypeExact,
			Middleware:  mw,
		}
	}

	keyword(kw.Suggestion, NewSuggestionHandler(deps))
	keyword(kw.Social, NewCatalogMenuHandler(deps, menu.KindSocial))
	keyword(kw.Promo, NewCatalogMenuHandler(deps, menu.KindPromo))
	keyword(kw.Back, NewBackHandler(deps))

	// Only the admin sees these buttons; anyone else typing them is ignored.
	quiet := AdminOnlyQuiet(deps)
	keyword(kw.AllMessages, NewInboxListHandler(deps, inbox.FilterAll), quiet)
	keyword(kw.Unanswered, NewInboxListHandler(deps, inbox.FilterUnreplied), quiet)

	entryHandler := NewCatalogEntryHandler(deps)
	for _, kind := range []menu.Kind{menu.KindSocial, menu.KindPromo} {
		for _, name := range deps.Catalog.Names(kind) {
			keyword(name, entryHandler)
		}
	}

	handlers["reply-callback"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     inbox.ReplyCallbackPrefix,
		Handler:     NewReplyCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  []tgbot.Middleware{quiet},
	}

	return handlers
}
