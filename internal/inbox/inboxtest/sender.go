// Package inboxtest provides a recording Telegram sender for tests.
package inboxtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Sent is one recorded outbound call.
type Sent struct {
	Method  string
	ChatID  string
	Text    string
	FileID  string
	Caption string
	Markup  models.ReplyMarkup
}

// Sender records every call instead of talking to Telegram.
// FailOn makes the named method return an error.
type Sender struct {
	mu     sync.Mutex
	sent   []Sent
	FailOn map[string]error
}

// NewSender returns an empty recording sender.
func NewSender() *Sender {
	return &Sender{FailOn: make(map[string]error)}
}

// Sent returns a copy of all recorded calls.
func (s *Sender) Sent() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sent, len(s.sent))
	copy(out, s.sent)
	return out
}

// To returns the calls addressed to chatID.
func (s *Sender) To(chatID any) []Sent {
	id := fmt.Sprint(chatID)
	var out []Sent
	for _, c := range s.Sent() {
		if c.ChatID == id {
			out = append(out, c)
		}
	}
	return out
}

// Reset drops everything recorded so far.
func (s *Sender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}

func (s *Sender) record(c Sent) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailOn[c.Method]; err != nil {
		return nil, err
	}
	s.sent = append(s.sent, c)
	return &models.Message{ID: len(s.sent)}, nil
}

func fileID(f models.InputFile) string {
	if fs, ok := f.(*models.InputFileString); ok {
		return fs.Data
	}
	return ""
}

func (s *Sender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	return s.record(Sent{Method: "sendMessage", ChatID: fmt.Sprint(p.ChatID), Text: p.Text, Markup: p.ReplyMarkup})
}

func (s *Sender) SendPhoto(_ context.Context, p *bot.SendPhotoParams) (*models.Message, error) {
	return s.record(Sent{Method: "sendPhoto", ChatID: fmt.Sprint(p.ChatID), FileID: fileID(p.Photo), Caption: p.Caption, Markup: p.ReplyMarkup})
}

func (s *Sender) SendVideo(_ context.Context, p *bot.SendVideoParams) (*models.Message, error) {
	return s.record(Sent{Method: "sendVideo", ChatID: fmt.Sprint(p.ChatID), FileID: fileID(p.Video), Caption: p.Caption, Markup: p.ReplyMarkup})
}

func (s *Sender) SendDocument(_ context.Context, p *bot.SendDocumentParams) (*models.Message, error) {
	return s.record(Sent{Method: "sendDocument", ChatID: fmt.Sprint(p.ChatID), FileID: fileID(p.Document), Caption: p.Caption, Markup: p.ReplyMarkup})
}

func (s *Sender) SendAudio(_ context.Context, p *bot.SendAudioParams) (*models.Message, error) {
	return s.record(Sent{Method: "sendAudio", ChatID: fmt.Sprint(p.ChatID), FileID: fileID(p.Audio), Caption: p.Caption, Markup: p.ReplyMarkup})
}

func (s *Sender) SendVoice(_ context.Context, p *bot.SendVoiceParams) (*models.Message, error) {
	return s.record(Sent{Method: "sendVoice", ChatID: fmt.Sprint(p.ChatID), FileID: fileID(p.Voice), Caption: p.Caption, Markup: p.ReplyMarkup})
}

func (s *Sender) SendVideoNote(_ context.Context, p *bot.SendVideoNoteParams) (*models.Message, error) {
	return s.record(Sent{Method: "sendVideoNote", ChatID: fmt.Sprint(p.ChatID), FileID: fileID(p.VideoNote), Markup: p.ReplyMarkup})
}

func (s *Sender) AnswerCallbackQuery(_ context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	_, err := s.record(Sent{Method: "answerCallbackQuery", ChatID: p.CallbackQueryID, Text: p.Text})
	return err == nil, err
}
