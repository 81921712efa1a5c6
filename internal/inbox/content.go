package inbox

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/khalsirati/helperbot/internal/database"
)

// Sender is the subset of the Telegram client the inbox needs.
// *bot.Bot satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	SendVideo(ctx context.Context, params *bot.SendVideoParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	SendAudio(ctx context.Context, params *bot.SendAudioParams) (*models.Message, error)
	SendVoice(ctx context.Context, params *bot.SendVoiceParams) (*models.Message, error)
	SendVideoNote(ctx context.Context, params *bot.SendVideoNoteParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// ContentKind tags the variant held by a Content. The string values are
// what the messages.media_type column stores.
type ContentKind string

const (
	KindText      ContentKind = "text"
	KindPhoto     ContentKind = "photo"
	KindVideo     ContentKind = "video"
	KindDocument  ContentKind = "document"
	KindAudio     ContentKind = "audio"
	KindVoice     ContentKind = "voice"
	KindVideoNote ContentKind = "video_note"
)

// Content is a message body: either text or one media file referenced by
// its Telegram file ID. Caption is carried along for sending but never stored.
type Content struct {
	Kind    ContentKind
	Text    string
	FileID  string
	Caption string
}

// IsMedia reports whether the content references a file.
func (c Content) IsMedia() bool {
	return c.Kind != KindText
}

// ContentFromMessage extracts the content of an inbound message. It reports
// false for kinds the inbox does not handle (stickers, locations, polls...).
func ContentFromMessage(msg *models.Message) (Content, bool) {
	if msg == nil {
		return Content{}, false
	}

	switch {
	case msg.Text != "":
		return Content{Kind: KindText, Text: msg.Text}, true
	case len(msg.Photo) > 0:
		// Telegram lists sizes ascending; the last one is the largest.
		return Content{Kind: KindPhoto, FileID: msg.Photo[len(msg.Photo)-1].FileID, Caption: msg.Caption}, true
	case msg.Video != nil:
		return Content{Kind: KindVideo, FileID: msg.Video.FileID, Caption: msg.Caption}, true
	case msg.Document != nil:
		return Content{Kind: KindDocument, FileID: msg.Document.FileID, Caption: msg.Caption}, true
	case msg.Audio != nil:
		return Content{Kind: KindAudio, FileID: msg.Audio.FileID, Caption: msg.Caption}, true
	case msg.Voice != nil:
		return Content{Kind: KindVoice, FileID: msg.Voice.FileID, Caption: msg.Caption}, true
	case msg.VideoNote != nil:
		return Content{Kind: KindVideoNote, FileID: msg.VideoNote.FileID}, true
	}

	return Content{}, false
}

// ContentFromRecord rebuilds the content of a stored suggestion.
func ContentFromRecord(rec *database.InboxMessage) Content {
	if rec.HasText() {
		return Content{Kind: KindText, Text: rec.Message.String}
	}
	return Content{Kind: ContentKind(rec.MediaType.String), FileID: rec.MediaID.String}
}

// record builds the row for a suggestion sent by from.
func (c Content) record(from models.User) *database.InboxMessage {
	rec := &database.InboxMessage{
		UserID:    from.ID,
		FirstName: sql.NullString{String: from.FirstName, Valid: from.FirstName != ""},
		Username:  sql.NullString{String: from.Username, Valid: from.Username != ""},
	}
	if c.IsMedia() {
		rec.MediaType = sql.NullString{String: string(c.Kind), Valid: true}
		rec.MediaID = sql.NullString{String: c.FileID, Valid: true}
	} else {
		rec.Message = sql.NullString{String: c.Text, Valid: true}
	}
	return rec
}

// Send delivers content to chatID through the send operation matching its
// kind. caption overrides the content's own caption when non-empty; markup
// may be nil. Video notes cannot carry a caption, so it is dropped for them.
func Send(ctx context.Context, s Sender, chatID any, c Content, caption string, markup models.ReplyMarkup) error {
	if caption == "" {
		caption = c.Caption
	}
	file := &models.InputFileString{Data: c.FileID}

	var err error
	switch c.Kind {
	case KindText:
		_, err = s.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: c.Text, ReplyMarkup: markup})
	case KindPhoto:
		_, err = s.SendPhoto(ctx, &bot.SendPhotoParams{ChatID: chatID, Photo: file, Caption: caption, ReplyMarkup: markup})
	case KindVideo:
		_, err = s.SendVideo(ctx, &bot.SendVideoParams{ChatID: chatID, Video: file, Caption: caption, ReplyMarkup: markup})
	case KindDocument:
		_, err = s.SendDocument(ctx, &bot.SendDocumentParams{ChatID: chatID, Document: file, Caption: caption, ReplyMarkup: markup})
	case KindAudio:
		_, err = s.SendAudio(ctx, &bot.SendAudioParams{ChatID: chatID, Audio: file, Caption: caption, ReplyMarkup: markup})
	case KindVoice:
		_, err = s.SendVoice(ctx, &bot.SendVoiceParams{ChatID: chatID, Voice: file, Caption: caption, ReplyMarkup: markup})
	case KindVideoNote:
		_, err = s.SendVideoNote(ctx, &bot.SendVideoNoteParams{ChatID: chatID, VideoNote: file, ReplyMarkup: markup})
	default:
		return fmt.Errorf("unsupported content kind %q", c.Kind)
	}
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", c.Kind, err)
	}
	return nil
}
