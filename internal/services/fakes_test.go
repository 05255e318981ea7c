package services

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tbourn/sushi-order-bot/internal/telegram"
)

// fakeBot is a stateful in-memory Bot API. Set operations overwrite state
// the way the platform does, so repeated calls converge.
type fakeBot struct {
	mu sync.Mutex

	unconfigured bool
	errs         map[string]error

	sent          []telegram.OutboundMessage
	webhookURL    string
	webhookSecret string
	menus         map[telegram.ChatID]telegram.MenuButton
	commands      []tgbotapi.BotCommand
	calls         map[string]int
}

func newFakeBot() *fakeBot {
	return &fakeBot{
		errs:  map[string]error{},
		menus: map[telegram.ChatID]telegram.MenuButton{},
		calls: map[string]int{},
	}
}

// enter records a call and returns the configured failure, if any.
func (b *fakeBot) enter(method string) error {
	b.calls[method]++
	if b.unconfigured {
		return telegram.ErrNotConfigured
	}
	return b.errs[method]
}

func (b *fakeBot) count(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

func (b *fakeBot) Configured() bool { return !b.unconfigured }

func (b *fakeBot) GetMe(context.Context) (tgbotapi.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(telegram.MethodGetMe); err != nil {
		return tgbotapi.User{}, err
	}
	return tgbotapi.User{ID: 1, IsBot: true, FirstName: "Sushi", UserName: "sushi_bot"}, nil
}

func (b *fakeBot) SendMessage(_ context.Context, msg telegram.OutboundMessage) (telegram.Ack, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(telegram.MethodSendMessage); err != nil {
		return telegram.Ack{}, err
	}
	b.sent = append(b.sent, msg)
	return telegram.Ack{}, nil
}

func (b *fakeBot) SetWebhook(_ context.Context, url, secret string) (telegram.Ack, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(telegram.MethodSetWebhook); err != nil {
		return telegram.Ack{}, err
	}
	b.webhookURL, b.webhookSecret = url, secret
	return telegram.Ack{Description: "Webhook was set"}, nil
}

func (b *fakeBot) DeleteWebhook(context.Context) (telegram.Ack, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(telegram.MethodDeleteWebhook); err != nil {
		return telegram.Ack{}, err
	}
	b.webhookURL, b.webhookSecret = "", ""
	return telegram.Ack{Description: "Webhook was deleted"}, nil
}

func (b *fakeBot) GetWebhookInfo(context.Context) (tgbotapi.WebhookInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(telegram.MethodGetWebhookInfo); err != nil {
		return tgbotapi.WebhookInfo{}, err
	}
	return tgbotapi.WebhookInfo{URL: b.webhookURL}, nil
}

func (b *fakeBot) SetChatMenuButton(_ context.Context, chatID telegram.ChatID, btn telegram.MenuButton) (telegram.Ack, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(telegram.MethodSetChatMenuButton); err != nil {
		return telegram.Ack{}, err
	}
	b.menus[chatID] = btn
	return telegram.Ack{}, nil
}

func (b *fakeBot) GetChatMenuButton(_ context.Context, chatID telegram.ChatID) (telegram.MenuButton, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(telegram.MethodGetChatMenuButton); err != nil {
		return telegram.MenuButton{}, err
	}
	if btn, ok := b.menus[chatID]; ok {
		return btn, nil
	}
	return telegram.MenuButton{Type: "default"}, nil
}

func (b *fakeBot) SetMyCommands(_ context.Context, cmds []tgbotapi.BotCommand) (telegram.Ack, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(telegram.MethodSetMyCommands); err != nil {
		return telegram.Ack{}, err
	}
	b.commands = append([]tgbotapi.BotCommand(nil), cmds...)
	return telegram.Ack{}, nil
}

func (b *fakeBot) GetMyCommands(context.Context) ([]tgbotapi.BotCommand, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(telegram.MethodGetMyCommands); err != nil {
		return nil, err
	}
	return append([]tgbotapi.BotCommand(nil), b.commands...), nil
}

var _ BotAPI = (*fakeBot)(nil)
