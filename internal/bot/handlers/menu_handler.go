package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/khalsirati/helperbot/internal/menu"
)

// NewSuggestionHandler returns the handler for the suggestion button. The
// admin gets the inbox keyboard; everyone else enters suggestion mode.
func NewSuggestionHandler(deps HandlerDeps) bot.HandlerFunc {
	return suggestionHandler{deps}.Handle
}

type suggestionHandler struct {
	deps HandlerDeps
}

func (h suggestionHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "suggestion")
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if h.deps.Inbox.IsAdmin(userID) {
		log.InfoContext(ctx, "Admin opened the inbox menu", "user_id", userID)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.ChooseAction, h.deps.Catalog.AdminKeyboard())
		return
	}

	h.deps.Inbox.EnterSuggestionMode(userID)
	log.InfoContext(ctx, "User entered suggestion mode", "user_id", userID, "chat_id", chatID)
	sendText(ctx, b, log, chatID, h.deps.Config.Messages.SuggestionPrompt, nil)
}

// NewCatalogMenuHandler returns the handler that opens the social or promo submenu.
func NewCatalogMenuHandler(deps HandlerDeps, kind menu.Kind) bot.HandlerFunc {
	return catalogMenuHandler{deps: deps, kind: kind}.Handle
}

type catalogMenuHandler struct {
	deps HandlerDeps
	kind menu.Kind
}

func (h catalogMenuHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "catalog_menu", "kind", h.kind)
	if update.Message == nil {
		return
	}

	prompt := h.deps.Config.Messages.ChooseSocial
	if h.kind == menu.KindPromo {
		prompt = h.deps.Config.Messages.ChoosePromo
	}
	sendText(ctx, b, log, update.Message.Chat.ID, prompt, h.deps.Catalog.KindKeyboard(h.kind))
}

// NewBackHandler returns the handler for the Back button.
func NewBackHandler(deps HandlerDeps) bot.HandlerFunc {
	return backHandler{deps}.Handle
}

type backHandler struct {
	deps HandlerDeps
}

func (h backHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	log := h.deps.Logger.With("handler", "back")
	sendText(ctx, b, log, update.Message.Chat.ID, h.deps.Config.Messages.ChooseAction, h.deps.Catalog.MainKeyboard())
}

// NewCatalogEntryHandler returns the handler for the catalog buttons. It
// resolves the entry from the button text, logs the request for the
// statistics and sends the rendered entry.
func NewCatalogEntryHandler(deps HandlerDeps) bot.HandlerFunc {
	return catalogEntryHandler{deps: deps}.Handle
}

type catalogEntryHandler struct {
	deps HandlerDeps
}

func (h catalogEntryHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "catalog_entry")
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	entry, ok := h.deps.Catalog.Lookup(update.Message.Text)
	if !ok {
		log.WarnContext(ctx, "No catalog entry for button text", "text", update.Message.Text, "update_id", update.ID)
		return
	}
	log = log.With("kind", entry.Kind)

	storeCtx, cancel := context.WithTimeout(ctx, h.deps.Config.Bot.DBOperationTimeout)
	var err error
	switch entry.Kind {
	case menu.KindSocial:
		err = h.deps.Store.RecordSocialNetworkRequest(storeCtx, userID, entry.Name)
	case menu.KindPromo:
		err = h.deps.Store.RecordPromoRequest(storeCtx, userID, entry.Name)
	}
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "Failed to record catalog request", "error", err, "entry", entry.Name, "update_id", update.ID)
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      entry.Render(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send catalog entry", "error", err, "entry", entry.Name, "chat_id", chatID)
		return
	}
	log.DebugContext(ctx, "Sent catalog entry", "entry", entry.Name, "user_id", userID)
}
