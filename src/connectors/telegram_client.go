package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second

	// httpTimeoutMargin is added on top of the long-poll timeout.
	httpTimeoutMargin = 10 * time.Second
)

var ErrTelegramAPI = errors.New("telegram api error")

// telegramResponse is the envelope of every Bot API reply.
type telegramResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type TelegramUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type TelegramChat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

type TelegramMessage struct {
	MessageID int64         `json:"message_id"`
	From      *TelegramUser `json:"from"`
	Chat      TelegramChat  `json:"chat"`
	Text      string        `json:"text"`
}

type Update struct {
	UpdateID    int64            `json:"update_id"`
	Message     *TelegramMessage `json:"message"`
	ChannelPost *TelegramMessage `json:"channel_post"`
}

// TelegramClient is a minimal Bot API client for long polling and replies.
type TelegramClient struct {
	token string
	http  *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if r == nil {
		return false
	}

	code := r.StatusCode()
	return code >= 500 || code == 429 || code == 408
}

func NewTelegramClient(token, baseURL string, pollTimeout time.Duration) *TelegramClient {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
		logger.Warnf("No Telegram API URL provided, using default: %s", baseURL)
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetPathParam("token", token).
		SetTimeout(pollTimeout + httpTimeoutMargin).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &TelegramClient{token: token, http: httpClient}
}

func (c *TelegramClient) call(ctx context.Context, method string, body any, out any) error {
	var envelope telegramResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&envelope).
		SetError(&envelope).
		Post("/bot{token}/" + method)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}

	if !envelope.OK {
		return fmt.Errorf("%w: %s HTTP %d code %d: %s",
			ErrTelegramAPI, method, resp.StatusCode(), envelope.ErrorCode, envelope.Description)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for new updates starting at offset.
func (c *TelegramClient) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	body := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "channel_post"},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", body, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage posts text to chatID.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	body := map[string]any{
		"chat_id": strconv.FormatInt(chatID, 10),
		"text":    text,
	}
	return c.call(ctx, "sendMessage", body, nil)
}
