package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/zenitmed/siteapi/internal/models"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramConfig holds Bot API credentials. An empty token disables the
// telegram channel.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// TelegramSender posts submission notifications to a Telegram chat via
// the Bot API, retrying transient failures with exponential backoff.
type TelegramSender struct {
	cfg           TelegramConfig
	client        *http.Client
	baseURL       string
	retryInterval time.Duration
}

// NewTelegramSender returns nil when token or chat id is missing, which
// the Notifier treats as a disabled channel.
func NewTelegramSender(cfg TelegramConfig, client *http.Client) *TelegramSender {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TelegramSender{
		cfg:           cfg,
		client:        client,
		baseURL:       telegramAPIBase,
		retryInterval: 500 * time.Millisecond,
	}
}

// SendSubmission formats the submission and posts it as a chat message.
func (s *TelegramSender) SendSubmission(ctx context.Context, sub *models.Submission) error {
	label, ok := formTypeLabels[sub.FormType]
	if !ok {
		label = "Новая заявка"
	}

	var text strings.Builder
	fmt.Fprintf(&text, "🔔 %s\n\n", label)
	fmt.Fprintf(&text, "Имя: %s\n", sub.Name)
	if sub.Phone != "" {
		fmt.Fprintf(&text, "Телефон: %s\n", sub.Phone)
	}
	if sub.Email != "" {
		fmt.Fprintf(&text, "Email: %s\n", sub.Email)
	}
	if sub.City != "" {
		fmt.Fprintf(&text, "Город: %s\n", sub.City)
	}
	if sub.Institution != "" {
		fmt.Fprintf(&text, "Организация: %s\n", sub.Institution)
	}
	if sub.Message != "" {
		fmt.Fprintf(&text, "\n%s\n", sub.Message)
	}

	return s.sendMessage(ctx, text.String())
}

func (s *TelegramSender) sendMessage(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": s.cfg.ChatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.cfg.BotToken)

	operation := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return struct{}{}, fmt.Errorf("telegram api returned status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return struct{}{}, backoff.Permanent(fmt.Errorf("telegram api returned status %d: %s", resp.StatusCode, string(body)))
		}

		return struct{}{}, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryInterval

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(3),
	)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}
