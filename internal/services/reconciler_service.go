// Package services – ReconcilerService
//
// This file pushes the desired bot configuration (webhook URL, menu button,
// command list) to the Bot API and reads it back. The remote operations are
// set-not-append, so every Ensure* call is idempotent: repeating it with the
// same desired state yields the same remote state and the same Result shape.
package services

import (
	"context"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/sushi-order-bot/internal/config"
	"github.com/tbourn/sushi-order-bot/internal/telegram"
)

// DefaultCommands is the command list published by EnsureCommands.
var DefaultCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start the bot"},
	{Command: "menu", Description: "Show sushi menu"},
	{Command: "help", Description: "Get help"},
}

// MenuButtonConfig is the desired web-app menu button.
type MenuButtonConfig struct {
	Label     string
	TargetURL string
}

// button renders the wire representation with a normalized URL.
func (m MenuButtonConfig) button() telegram.MenuButton {
	return telegram.MenuButton{
		Type:   telegram.MenuButtonWebApp,
		Text:   m.Label,
		WebApp: &telegram.WebAppInfo{URL: NormalizeWebAppURL(m.TargetURL)},
	}
}

// NormalizeWebAppURL trims u and appends a trailing slash. The platform
// treats "https://x.test" and "https://x.test/" as different buttons.
func NormalizeWebAppURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

// Leg is one independently fetched part of a Snapshot.
type Leg[T any] struct {
	OK    bool   `json:"ok"`
	Value T      `json:"value"`
	Error string `json:"error,omitempty"`
}

// Snapshot is the remote bot configuration as read back from the platform.
// Each leg carries its own result; a failed leg does not invalidate others.
type Snapshot struct {
	Commands   Leg[[]tgbotapi.BotCommand] `json:"commands"`
	MenuButton Leg[telegram.MenuButton]   `json:"menu_button"`
	Webhook    Leg[tgbotapi.WebhookInfo]  `json:"webhook"`
}

// ReconcilerService applies and reads back bot configuration.
type ReconcilerService struct {
	Bot BotAPI

	// MenuButtonText and WebAppURL form the default menu button.
	MenuButtonText string
	WebAppURL      string
	// WebhookSecret is registered with the webhook when non-empty.
	WebhookSecret string
}

// NewReconcilerService builds a ReconcilerService from configuration.
func NewReconcilerService(bot BotAPI, cfg config.Config) *ReconcilerService {
	return &ReconcilerService{
		Bot:            bot,
		MenuButtonText: cfg.Telegram.MenuButtonText,
		WebAppURL:      cfg.Telegram.WebAppURL,
		WebhookSecret:  cfg.Telegram.WebhookSecret,
	}
}

// DefaultMenuButton returns the configured button. An empty targetURL
// selects the configured web-app URL.
func (s *ReconcilerService) DefaultMenuButton(targetURL string) MenuButtonConfig {
	if strings.TrimSpace(targetURL) == "" {
		targetURL = s.WebAppURL
	}
	return MenuButtonConfig{Label: s.MenuButtonText, TargetURL: targetURL}
}

// EnsureWebhook registers rawURL as the update delivery endpoint.
func (s *ReconcilerService) EnsureWebhook(ctx context.Context, rawURL string) (Result, error) {
	ctx, span := otel.Tracer("services/ReconcilerService").Start(ctx, "EnsureWebhook")
	defer span.End()

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Result{}, ErrNoWebhookURL
	}
	if err := checkAbsURL("url", rawURL); err != nil {
		return Result{}, err
	}
	res, err := resultOf(s.Bot.SetWebhook(ctx, rawURL, s.WebhookSecret))
	s.log(ctx, "setWebhook", res, err)
	return res, err
}

// DeleteWebhook removes the webhook integration.
func (s *ReconcilerService) DeleteWebhook(ctx context.Context) (Result, error) {
	ctx, span := otel.Tracer("services/ReconcilerService").Start(ctx, "DeleteWebhook")
	defer span.End()

	res, err := resultOf(s.Bot.DeleteWebhook(ctx))
	s.log(ctx, "deleteWebhook", res, err)
	return res, err
}

// EnsureMenuButton sets the web-app menu button for chatID, or the default
// button for every chat when chatID is empty. The target URL is normalized
// before the call.
func (s *ReconcilerService) EnsureMenuButton(ctx context.Context, cfg MenuButtonConfig, chatID telegram.ChatID) (Result, error) {
	ctx, span := otel.Tracer("services/ReconcilerService").Start(ctx, "EnsureMenuButton",
		trace.WithAttributes(attribute.String("chat.id", string(chatID))),
	)
	defer span.End()

	btn := cfg.button()
	if err := checkAbsURL("url", btn.WebApp.URL); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(btn.Text) == "" {
		return Result{}, &ValidationError{Fields: []FieldError{{Field: "text", Message: "is required"}}}
	}
	res, err := resultOf(s.Bot.SetChatMenuButton(ctx, chatID, btn))
	s.log(ctx, "setChatMenuButton", res, err)
	return res, err
}

// EnsureCommands publishes cmds as the bot's command list.
func (s *ReconcilerService) EnsureCommands(ctx context.Context, cmds []tgbotapi.BotCommand) (Result, error) {
	ctx, span := otel.Tracer("services/ReconcilerService").Start(ctx, "EnsureCommands",
		trace.WithAttributes(attribute.Int("commands", len(cmds))),
	)
	defer span.End()

	res, err := resultOf(s.Bot.SetMyCommands(ctx, cmds))
	s.log(ctx, "setMyCommands", res, err)
	return res, err
}

// Snapshot reads commands, default menu button and webhook info
// concurrently. It never fails as a whole; see the per-leg results.
func (s *ReconcilerService) Snapshot(ctx context.Context) Snapshot {
	ctx, span := otel.Tracer("services/ReconcilerService").Start(ctx, "Snapshot")
	defer span.End()

	var (
		snap Snapshot
		g    errgroup.Group
	)
	g.Go(func() error {
		v, err := s.Bot.GetMyCommands(ctx)
		snap.Commands = legOf(v, err)
		return nil
	})
	g.Go(func() error {
		v, err := s.Bot.GetChatMenuButton(ctx, "")
		snap.MenuButton = legOf(v, err)
		return nil
	})
	g.Go(func() error {
		v, err := s.Bot.GetWebhookInfo(ctx)
		snap.Webhook = legOf(v, err)
		return nil
	})
	_ = g.Wait()
	return snap
}

// BotInfo returns the bot account behind the token.
func (s *ReconcilerService) BotInfo(ctx context.Context) (tgbotapi.User, error) {
	return s.Bot.GetMe(ctx)
}

func legOf[T any](v T, err error) Leg[T] {
	if err != nil {
		return Leg[T]{Error: err.Error()}
	}
	return Leg[T]{OK: true, Value: v}
}

func (s *ReconcilerService) log(ctx context.Context, method string, res Result, err error) {
	lg := zerolog.Ctx(ctx)
	if err != nil {
		lg.Warn().Err(err).Str("method", method).Msg("bot reconciliation failed")
		return
	}
	lg.Info().Str("method", method).Str("outcome", string(res.Outcome)).Msg("bot reconciliation")
}

func checkAbsURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return &ValidationError{Fields: []FieldError{{Field: field, Message: "must be an absolute URL"}}}
	}
	return nil
}
