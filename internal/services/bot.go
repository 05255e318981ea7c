package services

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tbourn/sushi-order-bot/internal/telegram"
)

// BotAPI is the part of the Telegram Bot API the services depend on.
// *telegram.Client implements it.
type BotAPI interface {
	Configured() bool
	GetMe(ctx context.Context) (tgbotapi.User, error)
	SendMessage(ctx context.Context, msg telegram.OutboundMessage) (telegram.Ack, error)
	SetWebhook(ctx context.Context, url, secret string) (telegram.Ack, error)
	DeleteWebhook(ctx context.Context) (telegram.Ack, error)
	GetWebhookInfo(ctx context.Context) (tgbotapi.WebhookInfo, error)
	SetChatMenuButton(ctx context.Context, chatID telegram.ChatID, btn telegram.MenuButton) (telegram.Ack, error)
	GetChatMenuButton(ctx context.Context, chatID telegram.ChatID) (telegram.MenuButton, error)
	SetMyCommands(ctx context.Context, cmds []tgbotapi.BotCommand) (telegram.Ack, error)
	GetMyCommands(ctx context.Context) ([]tgbotapi.BotCommand, error)
}

var _ BotAPI = (*telegram.Client)(nil)

// Outcome tells a caller whether an outbound action actually happened.
type Outcome string

const (
	// OutcomeSent means the platform accepted the call.
	OutcomeSent Outcome = "sent"
	// OutcomeSkipped means the action was not attempted because a credential
	// or target is not configured. It is not an error.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the call was attempted and failed.
	OutcomeFailed Outcome = "failed"
)

// Result is the reported shape of a reconciliation or notification call.
type Result struct {
	Outcome     Outcome `json:"outcome"               example:"sent"`
	Description string  `json:"description,omitempty" example:"Webhook was set"`
	Error       string  `json:"error,omitempty"`
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Outcome == OutcomeSent }

// resultOf folds an Ack/error pair into a Result, turning a missing token
// into OutcomeSkipped.
func resultOf(ack telegram.Ack, err error) (Result, error) {
	switch {
	case err == nil:
		return Result{Outcome: OutcomeSent, Description: ack.Description}, nil
	case errors.Is(err, telegram.ErrNotConfigured):
		return Result{Outcome: OutcomeSkipped, Description: "bot token not configured"}, nil
	default:
		r := Result{Outcome: OutcomeFailed, Error: err.Error()}
		var le *telegram.LogicalError
		if errors.As(err, &le) {
			r.Description = le.Description
		}
		return r, err
	}
}
