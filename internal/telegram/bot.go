package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultAPIURL = "https://api.telegram.org"

// Option customizes a Bot.
type Option func(*Bot)

// WithAPIURL points the bot at another Bot API server.
func WithAPIURL(apiURL string) Option {
	return func(b *Bot) {
		if apiURL != "" {
			b.apiURL = strings.TrimRight(apiURL, "/")
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(b *Bot) {
		if client != nil {
			b.client = client
		}
	}
}

// New creates a Telegram bot.
func New(token string, opts ...Option) *Bot {
	b := &Bot{
		token:  token,
		apiURL: defaultAPIURL,
		client: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	b.baseURL = fmt.Sprintf("%s/bot%s", b.apiURL, token)
	return b
}

// GetUpdates long-polls for updates after offset.
func (b *Bot) GetUpdates(ctx context.Context, offset int, timeout time.Duration) ([]Update, error) {
	u := fmt.Sprintf("%s/getUpdates?offset=%d&timeout=%d", b.baseURL, offset, int(timeout.Seconds()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building getUpdates request: %w", err)
	}

	var response GetUpdatesResponse
	if err := b.do(req, &response); err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}

	if !response.OK {
		return nil, fmt.Errorf("telegram API error: %s", response.Description)
	}

	return response.Result, nil
}

// SendMessage sends a Markdown message.
func (b *Bot) SendMessage(chatID int64, text string) error {
	request := SendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	}

	var response SendMessageResponse
	if err := b.post("sendMessage", request, &response); err != nil {
		return err
	}

	if !response.OK {
		return fmt.Errorf("telegram API error on sendMessage: %s", response.Description)
	}

	return nil
}

// SendFormattedMessage formats and sends a message.
func (b *Bot) SendFormattedMessage(chatID int64, format string, args ...interface{}) error {
	text := fmt.Sprintf(format, args...)
	return b.SendMessage(chatID, text)
}

// SendVoice re-sends a voice note that is already stored on Telegram servers.
func (b *Bot) SendVoice(chatID int64, fileID, caption string) error {
	request := SendVoiceRequest{
		ChatID:  chatID,
		Voice:   fileID,
		Caption: caption,
	}

	var response SendMessageResponse
	if err := b.post("sendVoice", request, &response); err != nil {
		return err
	}

	if !response.OK {
		return fmt.Errorf("telegram API error on sendVoice: %s", response.Description)
	}

	return nil
}

// GetFile resolves a file id to a downloadable path.
func (b *Bot) GetFile(fileID string) (*File, error) {
	u := fmt.Sprintf("%s/getFile?file_id=%s", b.baseURL, url.QueryEscape(fileID))

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building getFile request: %w", err)
	}

	var response GetFileResponse
	if err := b.do(req, &response); err != nil {
		return nil, fmt.Errorf("getFile: %w", err)
	}

	if !response.OK || response.Result == nil {
		return nil, fmt.Errorf("telegram API error on getFile: %s", response.Description)
	}

	return response.Result, nil
}

// DownloadFile fetches file contents, refusing anything above maxBytes.
func (b *Bot) DownloadFile(file *File, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 && file.FileSize > maxBytes {
		return nil, fmt.Errorf("file is too large: %d bytes", file.FileSize)
	}

	u := fmt.Sprintf("%s/file/bot%s/%s", b.apiURL, b.token, file.FilePath)
	resp, err := b.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading file: HTTP %d", resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if maxBytes > 0 {
		reader = io.LimitReader(resp.Body, maxBytes+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("file is too large: more than %d bytes", maxBytes)
	}

	return data, nil
}

// StartPolling dispatches updates to handler until ctx is cancelled. Updates
// are handled one at a time in the order Telegram returned them.
func (b *Bot) StartPolling(ctx context.Context, timeout time.Duration, logger *zap.Logger, handler func(Update)) error {
	offset := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.GetUpdates(ctx, offset, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("getting updates", zap.Error(err))
			if !sleep(ctx, 5*time.Second) {
				return ctx.Err()
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			handler(update)
		}

		if len(updates) == 0 && !sleep(ctx, time.Second) {
			return ctx.Err()
		}
	}
}

func (b *Bot) post(method string, payload interface{}, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializing %s request: %w", method, err)
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/%s", b.baseURL, method), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := b.do(req, out); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (b *Bot) do(req *http.Request, out interface{}) error {
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing JSON (HTTP %d): %w", resp.StatusCode, err)
	}

	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
