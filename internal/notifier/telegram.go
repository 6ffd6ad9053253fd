package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier delivers a formatted message somewhere a human will read it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// TelegramNotifier posts run summaries to one chat via the Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	// Backoff is the wait after the first failed attempt; it doubles on
	// every further failure.
	Backoff time.Duration
	Client  *http.Client
}

type sendMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
	// Summaries carry no links worth previewing.
	DisableWebPagePreview bool `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  defaultAPIBase,
		Backoff:  time.Second,
		Client:   &http.Client{Timeout: 30 * time.Second, Transport: transport},
	}
}

// Send posts text as an HTML message. Both a non-200 status and an
// "ok": false body are errors.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessage{
		ChatID:                t.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	endpoint := t.APIBase + "/bot" + t.BotToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil || resp.StatusCode != http.StatusOK || !out.OK {
		if out.Description != "" {
			return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, out.Description)
		}
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, raw)
	}
	return nil
}

// SendWithRetry makes up to maxRetries+1 attempts, waiting Backoff, then
// twice that, and so on between them.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	wait := t.Backoff
	attempts := maxRetries + 1
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = t.Send(ctx, text); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		log.Printf("[WARN] telegram send failed (%d/%d): %v, next try in %v", attempt, attempts, err, wait)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
	return fmt.Errorf("telegram: gave up after %d attempts: %w", attempts, err)
}
