// Package services – NotificationService
//
// This file renders outbound chat messages: the admin alert for a new order
// and the fixed replies to bot commands. Rendering is deterministic so the
// same order or command always yields the same text. Delivery goes through
// BotAPI; a missing token or admin chat makes the call a no-op reported as
// OutcomeSkipped.
package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/sushi-order-bot/internal/config"
	"github.com/tbourn/sushi-order-bot/internal/domain"
	"github.com/tbourn/sushi-order-bot/internal/telegram"
)

// Reply texts.
const (
	welcomeText = "🍣 Welcome to Oh My Sushi!\n\n" +
		"Tap “%s” below to browse the menu and place an order. " +
		"We will confirm it by phone."
	showMenuText  = "Tap the button below to open our menu 👇"
	unknownText   = "Sorry, I didn't understand that.\n\nTry one of these:\n/start - Start the bot\n/menu - Show sushi menu\n/help - Get help"
	openMenuLabel = "🍱 Open Menu"
)

// NotificationService formats and sends admin alerts and command replies.
type NotificationService struct {
	Bot BotAPI

	// AdminChatID receives new-order alerts; empty disables them.
	AdminChatID string
	// Currency is appended to every amount, e.g. "MDL".
	Currency string
	// WebAppURL is the mini-app opened by menu buttons.
	WebAppURL   string
	ContactText string
	AboutText   string
}

// NewNotificationService builds a NotificationService from configuration.
func NewNotificationService(bot BotAPI, cfg config.Config) *NotificationService {
	return &NotificationService{
		Bot:         bot,
		AdminChatID: cfg.Telegram.AdminChatID,
		Currency:    cfg.Shop.Currency,
		WebAppURL:   NormalizeWebAppURL(cfg.Telegram.WebAppURL),
		ContactText: cfg.Shop.ContactText,
		AboutText:   cfg.Shop.AboutText,
	}
}

// NotifyAdmin sends the new-order alert for o to the admin chat.
// The "Total" line is the sum of the item subtotals, not o.Total.
func (s *NotificationService) NotifyAdmin(ctx context.Context, o *domain.Order) (Result, error) {
	ctx, span := otel.Tracer("services/NotificationService").Start(ctx, "NotifyAdmin",
		trace.WithAttributes(attribute.String("order.id", o.ID)),
	)
	defer span.End()

	if s.AdminChatID == "" || s.Bot == nil || !s.Bot.Configured() {
		zerolog.Ctx(ctx).Debug().Str("order_id", o.ID).Msg("admin notification skipped: not configured")
		return Result{Outcome: OutcomeSkipped, Description: "admin chat or bot token not configured"}, nil
	}

	ack, err := s.Bot.SendMessage(ctx, telegram.OutboundMessage{
		ChatID:    telegram.ChatID(s.AdminChatID),
		Text:      AdminOrderMessage(o, s.Currency),
		ParseMode: telegram.ParseModeHTML,
	})
	res, err := resultOf(ack, err)
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

// AdminOrderMessage renders the admin alert. Customer-entered text is HTML
// escaped because the message is sent with parse_mode HTML.
func AdminOrderMessage(o *domain.Order, currency string) string {
	var b strings.Builder
	b.WriteString("🆕 New Order!\n\n")
	if o.ID != "" {
		fmt.Fprintf(&b, "Order: %s\n", html.EscapeString(o.ID))
	}
	if d := o.DeliveryInfo; d != nil {
		fmt.Fprintf(&b, "Customer: %s\n", html.EscapeString(d.Name))
		fmt.Fprintf(&b, "Phone: %s\n", html.EscapeString(d.Phone))
		fmt.Fprintf(&b, "Address: %s\n", html.EscapeString(d.Address))
		if d.Notes != "" {
			fmt.Fprintf(&b, "Notes: %s\n", html.EscapeString(d.Notes))
		}
	}
	b.WriteString("\nItems:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s x %d: %s %s\n", html.EscapeString(it.ItemName), it.Quantity, it.Subtotal().String(), currency)
	}
	fmt.Fprintf(&b, "\nTotal: %s %s", domain.ItemsTotal(o.Items).String(), currency)
	return b.String()
}

// ReplyTo sends the fixed reply for cmd to chatID. Every command, including
// CommandUnknown, produces exactly one message.
func (s *NotificationService) ReplyTo(ctx context.Context, chatID telegram.ChatID, cmd domain.Command) (Result, error) {
	ctx, span := otel.Tracer("services/NotificationService").Start(ctx, "ReplyTo",
		trace.WithAttributes(
			attribute.String("chat.id", string(chatID)),
			attribute.String("command", cmd.String()),
		),
	)
	defer span.End()

	if s.Bot == nil {
		return Result{Outcome: OutcomeSkipped, Description: "bot not configured"}, nil
	}
	res, err := resultOf(s.Bot.SendMessage(ctx, s.Reply(chatID, cmd)))
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

// Reply renders the message for cmd without sending it.
func (s *NotificationService) Reply(chatID telegram.ChatID, cmd domain.Command) telegram.OutboundMessage {
	msg := telegram.OutboundMessage{ChatID: chatID}
	webApp := &telegram.WebAppInfo{URL: s.WebAppURL}

	switch cmd {
	case domain.CommandStart:
		msg.Text = fmt.Sprintf(welcomeText, openMenuLabel)
		msg.ReplyMarkup = telegram.ReplyKeyboardMarkup{
			Keyboard: [][]telegram.KeyboardButton{
				{{Text: openMenuLabel, WebApp: webApp}},
				{{Text: domain.ContactUsLabel}, {Text: domain.AboutUsLabel}},
			},
			ResizeKeyboard: true,
		}
	case domain.CommandShowMenu:
		msg.Text = showMenuText
		msg.ReplyMarkup = telegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]telegram.InlineKeyboardButton{
				{{Text: openMenuLabel, WebApp: webApp}},
			},
		}
	case domain.CommandContactUs:
		msg.Text = s.ContactText
	case domain.CommandAboutUs:
		msg.Text = s.AboutText
	default:
		msg.Text = unknownText
	}
	return msg
}
