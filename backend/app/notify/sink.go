package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Sink interface {
	Send(ctx context.Context, m Message) error
}

// LogSink writes notifications to the log. It is used when no chat
// credentials are configured.
type LogSink struct{ Logger zerolog.Logger }

func (s LogSink) Send(_ context.Context, m Message) error {
	s.Logger.Info().Str("notification", m.ID).Str("event", m.Event).Uint("bug", m.BugID).Msg(m.Text)
	return nil
}

const DefaultTelegramAPI = "https://api.telegram.org"

// TelegramSink posts notifications to a Telegram chat through the Bot API.
type TelegramSink struct {
	APIURL string
	Token  string
	ChatID string
	Client *http.Client
}

func NewTelegramSink(apiURL, token, chatID string) *TelegramSink {
	if apiURL == "" {
		apiURL = DefaultTelegramAPI
	}
	return &TelegramSink{
		APIURL: strings.TrimRight(apiURL, "/"),
		Token:  token,
		ChatID: chatID,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (s *TelegramSink) Send(ctx context.Context, m Message) error {
	body, err := json.Marshal(telegramRequest{ChatID: s.ChatID, Text: m.Text, ParseMode: "MarkdownV2"})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.APIURL, s.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.New("telegram: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		// url.Error carries the endpoint, which embeds the bot token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("telegram: %w", err)
	}
	defer resp.Body.Close()

	var out telegramResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out)
	if resp.StatusCode != http.StatusOK || !out.OK {
		return fmt.Errorf("telegram: status %d: %s", resp.StatusCode, out.Description)
	}
	return nil
}
