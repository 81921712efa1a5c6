package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/stretchr/testify/require"
)

// apiCall is one request the bot made against the stub Telegram API.
type apiCall struct {
	Method string
	Params map[string]string
}

// telegramStub is a fake Bot API server that accepts every call.
type telegramStub struct {
	mu    sync.Mutex
	calls []apiCall
}

func (s *telegramStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	params := make(map[string]string)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				params[k] = v[0]
			}
		}
	} else {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err == nil {
			for k, v := range raw {
				params[k] = fmt.Sprint(v)
			}
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, apiCall{Method: method, Params: params})
	id := len(s.calls)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "answerCallbackQuery", "setMyCommands":
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	default:
		fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d,"date":0,"chat":{"id":1,"type":"private"}}}`, id)
	}
}

// Calls returns the recorded calls, optionally only those of one method.
func (s *telegramStub) Calls(method string) []apiCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []apiCall
	for _, c := range s.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// To returns the texts sent with sendMessage to chatID.
func (s *telegramStub) To(chatID int64) []string {
	var out []string
	for _, c := range s.Calls("sendMessage") {
		if c.Params["chat_id"] == fmt.Sprint(chatID) {
			out = append(out, c.Params["text"])
		}
	}
	return out
}

func (s *telegramStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func newStubBot(t *testing.T) (*tgbot.Bot, *telegramStub) {
	t.Helper()

	stub := &telegramStub{}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	b, err := tgbot.New("123456:test-token", tgbot.WithSkipGetMe(), tgbot.WithServerURL(srv.URL))
	require.NoError(t, err)
	return b, stub
}
