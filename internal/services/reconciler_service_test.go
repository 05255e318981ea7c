package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/sushi-order-bot/internal/config"
	"github.com/tbourn/sushi-order-bot/internal/telegram"
)

func newReconciler(bot BotAPI) *ReconcilerService {
	return NewReconcilerService(bot, config.Config{
		Telegram: config.TelegramConfig{
			WebAppURL:      "https://shop.test",
			MenuButtonText: "Меню",
			WebhookSecret:  "s3cr3t",
		},
	})
}

func TestNormalizeWebAppURL(t *testing.T) {
	cases := map[string]string{
		"https://x.test":       "https://x.test/",
		"https://x.test/":      "https://x.test/",
		"  https://x.test/a  ": "https://x.test/a/",
		"":                     "",
		"https://x.test/menu/": "https://x.test/menu/",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeWebAppURL(in), "input %q", in)
	}
}

func TestDefaultMenuButton_FallsBackToConfig(t *testing.T) {
	s := newReconciler(newFakeBot())
	assert.Equal(t, MenuButtonConfig{Label: "Меню", TargetURL: "https://shop.test"}, s.DefaultMenuButton(""))
	assert.Equal(t, "https://other.test", s.DefaultMenuButton("https://other.test").TargetURL)
}

func TestEnsureMenuButton_IdempotentAndNormalized(t *testing.T) {
	bot := newFakeBot()
	s := newReconciler(bot)
	ctx := context.Background()
	cfg := s.DefaultMenuButton("")

	first, err := s.EnsureMenuButton(ctx, cfg, "")
	require.NoError(t, err)
	stateAfterFirst := bot.menus[""]

	second, err := s.EnsureMenuButton(ctx, cfg, "")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same Result shape on repeat")
	assert.Equal(t, stateAfterFirst, bot.menus[""], "same remote state on repeat")
	assert.Len(t, bot.menus, 1)

	btn := bot.menus[""]
	assert.Equal(t, telegram.MenuButtonWebApp, btn.Type)
	assert.Equal(t, "Меню", btn.Text)
	require.NotNil(t, btn.WebApp)
	assert.Equal(t, "https://shop.test/", btn.WebApp.URL)
}

func TestEnsureMenuButton_PerChat(t *testing.T) {
	bot := newFakeBot()
	s := newReconciler(bot)

	_, err := s.EnsureMenuButton(context.Background(), s.DefaultMenuButton(""), "123")
	require.NoError(t, err)
	_, ok := bot.menus["123"]
	assert.True(t, ok)
	_, ok = bot.menus[""]
	assert.False(t, ok, "per-chat call must not touch the default button")
}

func TestEnsureMenuButton_Validation(t *testing.T) {
	bot := newFakeBot()
	s := newReconciler(bot)
	ctx := context.Background()

	_, err := s.EnsureMenuButton(ctx, MenuButtonConfig{Label: "Menu", TargetURL: "not a url"}, "")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("url"))

	_, err = s.EnsureMenuButton(ctx, MenuButtonConfig{Label: "  ", TargetURL: "https://x.test"}, "")
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("text"))

	assert.Equal(t, 0, bot.count(telegram.MethodSetChatMenuButton))
}

func TestEnsureWebhook(t *testing.T) {
	bot := newFakeBot()
	s := newReconciler(bot)
	ctx := context.Background()

	_, err := s.EnsureWebhook(ctx, "  ")
	assert.ErrorIs(t, err, ErrNoWebhookURL)

	_, err = s.EnsureWebhook(ctx, "/bot/webhook")
	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, bot.count(telegram.MethodSetWebhook))

	res, err := s.EnsureWebhook(ctx, "https://bot.test/bot/webhook")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, "Webhook was set", res.Description)
	assert.Equal(t, "https://bot.test/bot/webhook", bot.webhookURL)
	assert.Equal(t, "s3cr3t", bot.webhookSecret)

	again, err := s.EnsureWebhook(ctx, "https://bot.test/bot/webhook")
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestDeleteWebhook(t *testing.T) {
	bot := newFakeBot()
	s := newReconciler(bot)
	ctx := context.Background()

	_, err := s.EnsureWebhook(ctx, "https://bot.test/hook")
	require.NoError(t, err)
	res, err := s.DeleteWebhook(ctx)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Empty(t, bot.webhookURL)
}

func TestEnsureCommands_Idempotent(t *testing.T) {
	bot := newFakeBot()
	s := newReconciler(bot)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := s.EnsureCommands(ctx, DefaultCommands)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSent, res.Outcome)
	}
	assert.Equal(t, DefaultCommands, bot.commands)
}

func TestReconciler_NotConfiguredIsSkipped(t *testing.T) {
	bot := newFakeBot()
	bot.unconfigured = true
	s := newReconciler(bot)
	ctx := context.Background()

	res, err := s.EnsureCommands(ctx, DefaultCommands)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, res.Outcome)

	res, err = s.EnsureMenuButton(ctx, s.DefaultMenuButton(""), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
}

func TestReconciler_TransportFailure(t *testing.T) {
	bot := newFakeBot()
	bot.errs[telegram.MethodSetMyCommands] = &telegram.TransportError{Method: telegram.MethodSetMyCommands, Err: errors.New("connection refused")}

	res, err := newReconciler(bot).EnsureCommands(context.Background(), DefaultCommands)
	require.Error(t, err)
	assert.True(t, telegram.IsTransport(err))
	assert.Equal(t, OutcomeFailed, res.Outcome)
}

func TestSnapshot_LegsAreIndependent(t *testing.T) {
	bot := newFakeBot()
	s := newReconciler(bot)
	ctx := context.Background()

	_, err := s.EnsureCommands(ctx, DefaultCommands)
	require.NoError(t, err)
	_, err = s.EnsureMenuButton(ctx, s.DefaultMenuButton(""), "")
	require.NoError(t, err)
	bot.errs[telegram.MethodGetWebhookInfo] = &telegram.LogicalError{Method: telegram.MethodGetWebhookInfo, Code: 401, Description: "Unauthorized"}

	snap := s.Snapshot(ctx)

	assert.True(t, snap.Commands.OK)
	assert.Equal(t, DefaultCommands, snap.Commands.Value)
	assert.True(t, snap.MenuButton.OK)
	assert.Equal(t, "https://shop.test/", snap.MenuButton.Value.WebApp.URL)
	assert.False(t, snap.Webhook.OK)
	assert.Contains(t, snap.Webhook.Error, "Unauthorized")
}

func TestBotInfo(t *testing.T) {
	u, err := newReconciler(newFakeBot()).BotInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sushi_bot", u.UserName)
}
