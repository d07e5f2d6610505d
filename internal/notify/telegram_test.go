package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zenitmed/siteapi/internal/models"
)

func TestNewTelegramSenderUnconfigured(t *testing.T) {
	require.Nil(t, NewTelegramSender(TelegramConfig{}, nil))
	require.Nil(t, NewTelegramSender(TelegramConfig{BotToken: "token"}, nil))
	require.Nil(t, NewTelegramSender(TelegramConfig{ChatID: "42"}, nil))
}

func TestTelegramSendSubmission(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	sender := NewTelegramSender(TelegramConfig{BotToken: "test-token", ChatID: "42"}, srv.Client())
	sender.baseURL = srv.URL

	err := sender.SendSubmission(context.Background(), &models.Submission{
		FormType: models.FormTypeProposal,
		Name:     "Иван Петров",
		Phone:    "+7 900 000-00-00",
	})
	require.NoError(t, err)
	require.Equal(t, "42", got["chat_id"])
	require.Contains(t, got["text"], "Запрос КП")
	require.Contains(t, got["text"], "Иван Петров")
}

func TestTelegramRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	sender := NewTelegramSender(TelegramConfig{BotToken: "t", ChatID: "1"}, srv.Client())
	sender.baseURL = srv.URL
	sender.retryInterval = time.Millisecond

	err := sender.sendMessage(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestTelegramClientErrorIsPermanent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	sender := NewTelegramSender(TelegramConfig{BotToken: "t", ChatID: "1"}, srv.Client())
	sender.baseURL = srv.URL

	err := sender.sendMessage(context.Background(), "hello")
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
