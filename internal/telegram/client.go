// Package telegram is a thin JSON client for the Telegram Bot API.
//
// Every operation is a single POST to {base}/bot{token}/{method}. The "ok"
// field of the response envelope is authoritative: a 200 with ok=false is
// reported as *LogicalError, network failures, timeouts and unreadable
// bodies as *TransportError. Nothing is retried.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/sushi-order-bot/internal/config"
)

// Bot API method names.
const (
	MethodGetMe             = "getMe"
	MethodSendMessage       = "sendMessage"
	MethodSetWebhook        = "setWebhook"
	MethodDeleteWebhook     = "deleteWebhook"
	MethodGetWebhookInfo    = "getWebhookInfo"
	MethodSetChatMenuButton = "setChatMenuButton"
	MethodGetChatMenuButton = "getChatMenuButton"
	MethodSetMyCommands     = "setMyCommands"
	MethodGetMyCommands     = "getMyCommands"
)

// maxResponseBytes caps how much of a Bot API response is read.
const maxResponseBytes = 1 << 20

// Client calls the Bot API. The zero value is not usable; use New.
// A Client is safe for concurrent use.
type Client struct {
	token string
	base  string
	http  *http.Client
}

// New builds a client from the bot settings. An empty token yields a client
// whose calls all fail with ErrNotConfigured.
func New(cfg config.TelegramConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		token: cfg.Token,
		base:  strings.TrimRight(cfg.APIBase, "/"),
		http:  &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient returns a copy of c that uses hc for transport.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.http = hc
	return &cp
}

// Configured reports whether a bot token is set.
func (c *Client) Configured() bool { return c != nil && c.token != "" }

// GetMe returns the bot's own account.
func (c *Client) GetMe(ctx context.Context) (tgbotapi.User, error) {
	var u tgbotapi.User
	ack, err := c.call(ctx, MethodGetMe, nil)
	if err != nil {
		return u, err
	}
	return u, c.decodeResult(MethodGetMe, ack, &u)
}

// SendMessage delivers msg.
func (c *Client) SendMessage(ctx context.Context, msg OutboundMessage) (Ack, error) {
	if msg.ChatID == "" {
		return Ack{}, errors.New("telegram: sendMessage: empty chat id")
	}
	return c.call(ctx, MethodSendMessage, sendMessageParams{
		ChatID:      msg.ChatID,
		Text:        msg.Text,
		ParseMode:   msg.ParseMode,
		ReplyMarkup: msg.ReplyMarkup,
	})
}

// SetWebhook points update delivery at url. A non-empty secret is echoed
// back by the platform in the X-Telegram-Bot-Api-Secret-Token header.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) (Ack, error) {
	return c.call(ctx, MethodSetWebhook, setWebhookParams{URL: url, SecretToken: secret})
}

// DeleteWebhook removes the webhook integration.
func (c *Client) DeleteWebhook(ctx context.Context) (Ack, error) {
	return c.call(ctx, MethodDeleteWebhook, nil)
}

// GetWebhookInfo returns the current webhook status.
func (c *Client) GetWebhookInfo(ctx context.Context) (tgbotapi.WebhookInfo, error) {
	var info tgbotapi.WebhookInfo
	ack, err := c.call(ctx, MethodGetWebhookInfo, nil)
	if err != nil {
		return info, err
	}
	return info, c.decodeResult(MethodGetWebhookInfo, ack, &info)
}

// SetChatMenuButton sets the menu button of chatID, or the default button
// for all chats when chatID is empty.
func (c *Client) SetChatMenuButton(ctx context.Context, chatID ChatID, btn MenuButton) (Ack, error) {
	return c.call(ctx, MethodSetChatMenuButton, chatMenuButtonParams{ChatID: chatID, MenuButton: &btn})
}

// GetChatMenuButton reads the menu button of chatID, or the default button
// when chatID is empty.
func (c *Client) GetChatMenuButton(ctx context.Context, chatID ChatID) (MenuButton, error) {
	var btn MenuButton
	ack, err := c.call(ctx, MethodGetChatMenuButton, chatMenuButtonParams{ChatID: chatID})
	if err != nil {
		return btn, err
	}
	return btn, c.decodeResult(MethodGetChatMenuButton, ack, &btn)
}

// SetMyCommands replaces the bot's command list.
func (c *Client) SetMyCommands(ctx context.Context, cmds []tgbotapi.BotCommand) (Ack, error) {
	return c.call(ctx, MethodSetMyCommands, map[string]any{"commands": cmds})
}

// GetMyCommands returns the bot's command list.
func (c *Client) GetMyCommands(ctx context.Context) ([]tgbotapi.BotCommand, error) {
	var cmds []tgbotapi.BotCommand
	ack, err := c.call(ctx, MethodGetMyCommands, nil)
	if err != nil {
		return nil, err
	}
	return cmds, c.decodeResult(MethodGetMyCommands, ack, &cmds)
}

// call performs one Bot API request and classifies the outcome.
func (c *Client) call(ctx context.Context, method string, params any) (ack Ack, err error) {
	ctx, span := otel.Tracer("telegram/Client").Start(ctx, method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("telegram.method", method)),
	)
	start := time.Now()
	defer func() {
		apiRequests.WithLabelValues(method, outcome(err)).Inc()
		apiLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome(err))
		}
		span.End()
	}()

	if !c.Configured() {
		return Ack{}, ErrNotConfigured
	}

	body := []byte("{}")
	if params != nil {
		if body, err = json.Marshal(params); err != nil {
			return Ack{}, fmt.Errorf("telegram: %s: encode: %w", method, err)
		}
	}

	endpoint := c.base + "/bot" + c.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Ack{}, &TransportError{Method: method, Err: redact(err, c.token)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Ack{}, &TransportError{Method: method, Err: redact(err, c.token)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Ack{}, &TransportError{Method: method, Status: resp.StatusCode, Err: err}
	}

	var env tgbotapi.APIResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return Ack{}, &TransportError{Method: method, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !env.Ok {
		code := env.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return Ack{}, &LogicalError{Method: method, Code: code, Description: env.Description}
	}
	return Ack{Description: env.Description, Result: env.Result}, nil
}

func (c *Client) decodeResult(method string, ack Ack, dst any) error {
	if len(ack.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(ack.Result, dst); err != nil {
		return &TransportError{Method: method, Err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}

// redact strips the bot token from errors that embed the request URL.
func redact(err error, token string) error {
	if err == nil || token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<token>"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
