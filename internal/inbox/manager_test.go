package inbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khalsirati/helperbot/internal/config"
	"github.com/khalsirati/helperbot/internal/database"
	"github.com/khalsirati/helperbot/internal/inbox/inboxtest"
)

const (
	adminID int64 = 9000
	userID  int64 = 42
)

type failingStore struct {
	Store
	saveErr error
	markErr error
}

func (f *failingStore) SaveInboxMessage(ctx context.Context, msg *database.InboxMessage) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Store.SaveInboxMessage(ctx, msg)
}

func (f *failingStore) MarkReplied(ctx context.Context, id int64) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	return f.Store.MarkReplied(ctx, id)
}

func newTestManager(t *testing.T) (*Manager, *failingStore, *inboxtest.Sender) {
	t.Helper()

	db, err := database.NewDB(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	cfg := config.Default()
	cfg.Telegram.AdminID = fmt.Sprint(adminID)

	store := &failingStore{Store: database.NewStore(db, nil)}
	return NewManager(store, nil, cfg, nil), store, inboxtest.NewSender()
}

func userMessage(id int64, text string) *models.Message {
	return &models.Message{
		Chat: models.Chat{ID: id},
		From: &models.User{ID: id, FirstName: "Amina", Username: "amina"},
		Text: text,
	}
}

func TestRouteOutsideSuggestionMode(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	require.NoError(t, m.Route(ctx, s, userMessage(userID, "hello")))

	sent := s.To(userID)
	require.Len(t, sent, 1)
	assert.Equal(t, m.msgs.PressSuggestionFirst, sent[0].Text)
	assert.Empty(t, s.To(adminID))

	msgs, err := m.ListMessages(ctx, FilterAll)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestCaptureConsumesFlagOnce(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	m.EnterSuggestionMode(userID)
	require.NoError(t, m.Route(ctx, s, userMessage(userID, "first")))
	require.NoError(t, m.Route(ctx, s, userMessage(userID, "second")))

	msgs, err := m.ListMessages(ctx, FilterAll)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "first", msgs[0].Message.String)
	assert.Equal(t, "Amina", msgs[0].FirstName.String)
	assert.False(t, msgs[0].Replied)

	toUser := s.To(userID)
	require.Len(t, toUser, 2)
	assert.Equal(t, m.msgs.SuggestionSent, toUser[0].Text)
	assert.Equal(t, m.msgs.PressSuggestionFirst, toUser[1].Text)

	toAdmin := s.To(adminID)
	require.Len(t, toAdmin, 1)
	assert.Equal(t, fmt.Sprintf(m.msgs.AdminNotify, 1), toAdmin[0].Text)
}

func TestCaptureMedia(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	m.EnterSuggestionMode(userID)
	msg := userMessage(userID, "")
	msg.Photo = []models.PhotoSize{{FileID: "small"}, {FileID: "large"}}
	msg.Caption = "look"
	require.NoError(t, m.Route(ctx, s, msg))

	msgs, err := m.ListMessages(ctx, FilterAll)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].Message.Valid)
	assert.Equal(t, "photo", msgs[0].MediaType.String)
	assert.Equal(t, "large", msgs[0].MediaID.String)
}

func TestUnsupportedContentKeepsFlag(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	m.EnterSuggestionMode(userID)
	msg := userMessage(userID, "")
	msg.Sticker = &models.Sticker{FileID: "sticker"}
	require.NoError(t, m.Route(ctx, s, msg))

	assert.True(t, m.Sessions().InSuggestion(userID))
	sent := s.To(userID)
	require.Len(t, sent, 1)
	assert.Equal(t, m.msgs.UnsupportedContent, sent[0].Text)
}

func TestCaptureRestoresFlagOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	m, store, s := newTestManager(t)
	store.saveErr = errors.New("disk full")

	m.EnterSuggestionMode(userID)
	_, err := m.CaptureMessage(ctx, s, models.User{ID: userID}, userID, Content{Kind: KindText, Text: "hi"})
	require.Error(t, err)
	assert.True(t, m.Sessions().InSuggestion(userID))
	assert.Empty(t, s.Sent())

	store.saveErr = nil
	_, err = m.CaptureMessage(ctx, s, models.User{ID: userID}, userID, Content{Kind: KindText, Text: "hi"})
	require.NoError(t, err)
	assert.False(t, m.Sessions().InSuggestion(userID))
}

func TestCaptureNotInSuggestionMode(t *testing.T) {
	m, _, s := newTestManager(t)

	_, err := m.CaptureMessage(context.Background(), s, models.User{ID: userID}, userID, Content{Kind: KindText, Text: "hi"})
	assert.ErrorIs(t, err, ErrNotInSuggestionMode)
}

func TestUnreadCountMatchesStore(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	for i := int64(1); i <= 3; i++ {
		m.EnterSuggestionMode(i)
		_, err := m.CaptureMessage(ctx, s, models.User{ID: i}, i, Content{Kind: KindText, Text: "q"})
		require.NoError(t, err)
	}

	notices := s.To(adminID)
	require.Len(t, notices, 3)
	for i, n := range notices {
		assert.Equal(t, fmt.Sprintf(m.msgs.AdminNotify, i+1), n.Text)
	}

	_, err := m.SelectForReply(ctx, adminID, 2)
	require.NoError(t, err)
	_, err = m.DeliverReply(ctx, s, adminID, adminID, Content{Kind: KindText, Text: "answer"})
	require.NoError(t, err)

	count, err := m.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	unreplied, err := m.ListMessages(ctx, FilterUnreplied)
	require.NoError(t, err)
	require.Len(t, unreplied, 2)
	assert.Equal(t, int64(1), unreplied[0].ID)
	assert.Equal(t, int64(3), unreplied[1].ID)
}

func TestReplyFlow(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	m.EnterSuggestionMode(userID)
	rec, err := m.CaptureMessage(ctx, s, models.User{ID: userID}, userID, Content{Kind: KindText, Text: "question"})
	require.NoError(t, err)
	s.Reset()

	b, err := m.SelectForReply(ctx, adminID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, Binding{TargetUserID: userID, MessageID: rec.ID}, b)

	admin := userMessage(adminID, "")
	admin.Voice = &models.Voice{FileID: "voice-1"}
	require.NoError(t, m.Route(ctx, s, admin))

	toUser := s.To(userID)
	require.Len(t, toUser, 2)
	assert.Equal(t, m.msgs.ReplyNotice, toUser[0].Text)
	assert.Equal(t, "sendVoice", toUser[1].Method)
	assert.Equal(t, "voice-1", toUser[1].FileID)

	toAdmin := s.To(adminID)
	require.Len(t, toAdmin, 1)
	assert.Equal(t, m.msgs.ReplySent, toAdmin[0].Text)

	got, err := m.store.GetInboxMessage(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Replied)

	// The binding is gone: the next admin message only re-sends the count.
	s.Reset()
	require.NoError(t, m.Route(ctx, s, userMessage(adminID, "again")))
	assert.Empty(t, s.To(userID))
	toAdmin = s.To(adminID)
	require.Len(t, toAdmin, 1)
	assert.Equal(t, fmt.Sprintf(m.msgs.AdminNotify, 0), toAdmin[0].Text)
}

func TestSelectForReplyMissing(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.SelectForReply(context.Background(), adminID, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	_, ok := m.Sessions().PeekBinding(adminID)
	assert.False(t, ok)
}

func TestDeliverReplyWithoutBinding(t *testing.T) {
	m, _, s := newTestManager(t)

	_, err := m.DeliverReply(context.Background(), s, adminID, adminID, Content{Kind: KindText, Text: "x"})
	assert.ErrorIs(t, err, ErrNoBinding)
	assert.Empty(t, s.Sent())
}

func TestDeliverReplyRestoresBindingOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	m, store, s := newTestManager(t)

	m.EnterSuggestionMode(userID)
	rec, err := m.CaptureMessage(ctx, s, models.User{ID: userID}, userID, Content{Kind: KindText, Text: "q"})
	require.NoError(t, err)
	_, err = m.SelectForReply(ctx, adminID, rec.ID)
	require.NoError(t, err)
	s.Reset()

	store.markErr = errors.New("locked")
	_, err = m.DeliverReply(ctx, s, adminID, adminID, Content{Kind: KindText, Text: "a"})
	require.Error(t, err)
	assert.Empty(t, s.Sent())

	b, ok := m.Sessions().PeekBinding(adminID)
	require.True(t, ok)
	assert.Equal(t, rec.ID, b.MessageID)
}

func TestConcurrentRepliesDeliverOnce(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	m.EnterSuggestionMode(userID)
	rec, err := m.CaptureMessage(ctx, s, models.User{ID: userID}, userID, Content{Kind: KindText, Text: "q"})
	require.NoError(t, err)
	_, err = m.SelectForReply(ctx, adminID, rec.ID)
	require.NoError(t, err)
	s.Reset()

	var wg sync.WaitGroup
	var mu sync.Mutex
	delivered := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.DeliverReply(ctx, s, adminID, adminID, Content{Kind: KindText, Text: fmt.Sprint("reply ", i)})
			if err == nil {
				mu.Lock()
				delivered++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, delivered)
	assert.Len(t, s.To(userID), 2)
}

func TestShowMessages(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	require.NoError(t, m.ShowMessages(ctx, s, adminID, FilterAll))
	require.NoError(t, m.ShowMessages(ctx, s, adminID, FilterUnreplied))
	sent := s.To(adminID)
	require.Len(t, sent, 2)
	assert.Equal(t, m.msgs.NoMessages, sent[0].Text)
	assert.Equal(t, m.msgs.NoUnreplied, sent[1].Text)
	s.Reset()

	from := models.User{ID: userID, FirstName: "Amina", Username: "amina"}
	contents := []Content{
		{Kind: KindText, Text: "question"},
		{Kind: KindPhoto, FileID: "photo-1"},
		{Kind: KindVideoNote, FileID: "note-1"},
	}
	for _, c := range contents {
		m.EnterSuggestionMode(userID)
		_, err := m.CaptureMessage(ctx, s, from, userID, c)
		require.NoError(t, err)
	}
	s.Reset()

	require.NoError(t, m.ShowMessages(ctx, s, adminID, FilterAll))
	sent = s.To(adminID)
	require.Len(t, sent, 4)

	info := fmt.Sprintf(m.msgs.SenderInfo, "Amina", "amina", userID)
	assert.Equal(t, info+": question", sent[0].Text)
	assert.Equal(t, "sendPhoto", sent[1].Method)
	assert.Equal(t, info, sent[1].Caption)
	assert.Equal(t, info, sent[2].Text)
	assert.Nil(t, sent[2].Markup)
	assert.Equal(t, "sendVideoNote", sent[3].Method)

	kb, ok := sent[1].Markup.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, ReplyCallbackData(2), kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, m.msgs.ReplyButton, kb.InlineKeyboard[0][0].Text)
}

func TestShowMessagesSkipsBrokenRow(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	from := models.User{ID: userID, FirstName: "Amina", Username: "amina"}
	for _, c := range []Content{
		{Kind: KindPhoto, FileID: "expired"},
		{Kind: KindText, Text: "question"},
	} {
		m.EnterSuggestionMode(userID)
		_, err := m.CaptureMessage(ctx, s, from, userID, c)
		require.NoError(t, err)
	}
	s.Reset()
	s.FailOn["sendPhoto"] = errors.New("Bad Request: wrong file identifier")

	require.NoError(t, m.ShowMessages(ctx, s, adminID, FilterAll))

	info := fmt.Sprintf(m.msgs.SenderInfo, "Amina", "amina", userID)
	sent := s.To(adminID)
	require.Len(t, sent, 2)

	assert.Equal(t, "sendMessage", sent[0].Method)
	assert.Equal(t, info, sent[0].Text)
	kb, ok := sent[0].Markup.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, ReplyCallbackData(1), kb.InlineKeyboard[0][0].CallbackData)

	assert.Equal(t, info+": question", sent[1].Text)
	kb, ok = sent[1].Markup.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, ReplyCallbackData(2), kb.InlineKeyboard[0][0].CallbackData)
}

func TestShowMessagesFailsWhenNothingRenders(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	m.EnterSuggestionMode(userID)
	_, err := m.CaptureMessage(ctx, s, models.User{ID: userID}, userID, Content{Kind: KindText, Text: "q"})
	require.NoError(t, err)
	s.Reset()
	s.FailOn["sendMessage"] = errors.New("Forbidden: bot was blocked by the user")

	err = m.ShowMessages(ctx, s, adminID, FilterAll)
	assert.ErrorContains(t, err, "bot was blocked")
	assert.Empty(t, s.Sent())
}

func TestConcurrentCaptureAnswersEveryMessage(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	const senders = 8
	m.EnterSuggestionMode(userID)

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, m.Route(ctx, s, userMessage(userID, fmt.Sprint("msg ", i))))
		}(i)
	}
	wg.Wait()

	msgs, err := m.ListMessages(ctx, FilterAll)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	toUser := s.To(userID)
	require.Len(t, toUser, senders)
	counts := map[string]int{}
	for _, c := range toUser {
		counts[c.Text]++
	}
	assert.Equal(t, 1, counts[m.msgs.SuggestionSent])
	assert.Equal(t, senders-1, counts[m.msgs.PressSuggestionFirst])
}

func TestDeliverReplyKeepsRepliedWhenSendFails(t *testing.T) {
	ctx := context.Background()
	m, _, s := newTestManager(t)

	m.EnterSuggestionMode(userID)
	rec, err := m.CaptureMessage(ctx, s, models.User{ID: userID}, userID, Content{Kind: KindText, Text: "q"})
	require.NoError(t, err)
	_, err = m.SelectForReply(ctx, adminID, rec.ID)
	require.NoError(t, err)
	s.Reset()
	s.FailOn["sendMessage"] = errors.New("Forbidden: bot was blocked by the user")

	_, err = m.DeliverReply(ctx, s, adminID, adminID, Content{Kind: KindText, Text: "a"})
	assert.ErrorContains(t, err, "reply notice")

	got, err := m.store.GetInboxMessage(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Replied)
	_, ok := m.Sessions().PeekBinding(adminID)
	assert.False(t, ok)
}

func TestParseReplyCallbackData(t *testing.T) {
	tests := []struct {
		data string
		id   int64
		ok   bool
	}{
		{"reply-17", 17, true},
		{ReplyCallbackData(5), 5, true},
		{"reply-", 0, false},
		{"reply-abc", 0, false},
		{"reply--3", 0, false},
		{"other-1", 0, false},
	}
	for _, tt := range tests {
		id, ok := ParseReplyCallbackData(tt.data)
		assert.Equal(t, tt.ok, ok, tt.data)
		assert.Equal(t, tt.id, id, tt.data)
	}
}
