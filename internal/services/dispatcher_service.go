// Package services – DispatcherService
//
// This file handles one inbound chat-platform update per call. The text of
// the message is classified into a domain.Command and exactly one reply is
// sent for every update that carries text. Updates without text are accepted
// and ignored. No conversation state is kept between updates.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/sushi-order-bot/internal/domain"
	"github.com/tbourn/sushi-order-bot/internal/telegram"
)

// ErrMalformedUpdate is returned by ParseUpdate for bodies that are not a
// JSON update object.
var ErrMalformedUpdate = errors.New("malformed update")

// Update is one inbound event from the chat platform.
type Update struct {
	UpdateID    int
	ChatID      telegram.ChatID
	CommandText string
	From        *tgbotapi.User
	Raw         json.RawMessage
}

// ParseUpdate decodes a webhook body. Only message updates carry a chat and
// text; every other kind parses to an Update with empty CommandText.
func ParseUpdate(body []byte) (Update, error) {
	var tu tgbotapi.Update
	if err := json.Unmarshal(body, &tu); err != nil {
		return Update{}, errors.Join(ErrMalformedUpdate, err)
	}
	u := Update{UpdateID: tu.UpdateID, Raw: json.RawMessage(body)}
	if m := tu.Message; m != nil {
		if m.Chat != nil {
			u.ChatID = telegram.ChatIDFromInt(m.Chat.ID)
		}
		u.CommandText = m.Text
		u.From = m.From
	}
	return u, nil
}

// UpdateGuard reports whether an update id is seen for the first time.
type UpdateGuard interface {
	FirstSeen(ctx context.Context, updateID int) (bool, error)
}

// UserStore persists chat users.
type UserStore interface {
	UpsertUser(ctx context.Context, db *gorm.DB, u *domain.User) error
}

// Replier sends the fixed reply for a command.
type Replier interface {
	ReplyTo(ctx context.Context, chatID telegram.ChatID, cmd domain.Command) (Result, error)
}

// MenuReconciler sets a per-chat menu button.
type MenuReconciler interface {
	DefaultMenuButton(targetURL string) MenuButtonConfig
	EnsureMenuButton(ctx context.Context, cfg MenuButtonConfig, chatID telegram.ChatID) (Result, error)
}

// DispatchResult describes what Dispatch did with an update.
type DispatchResult struct {
	Command   domain.Command
	Ignored   bool // no text or no chat
	Duplicate bool // update id already handled
	Reply     Result
}

// DispatcherService routes updates to command handlers.
type DispatcherService struct {
	DB    *gorm.DB
	Users UserStore

	Replier    Replier
	Reconciler MenuReconciler

	// Guard is optional; when nil every update is handled.
	Guard UpdateGuard
}

// Dispatch handles u. It never fails: reply and side-effect errors are
// logged and reported in the result only.
func (s *DispatcherService) Dispatch(ctx context.Context, u Update) DispatchResult {
	ctx, span := otel.Tracer("services/DispatcherService").Start(ctx, "Dispatch",
		trace.WithAttributes(attribute.Int("update.id", u.UpdateID)),
	)
	defer span.End()

	lg := zerolog.Ctx(ctx).With().Int("update_id", u.UpdateID).Str("chat_id", string(u.ChatID)).Logger()

	if u.CommandText == "" || u.ChatID == "" {
		botUpdates.WithLabelValues("ignored").Inc()
		return DispatchResult{Ignored: true}
	}

	if s.Guard != nil && u.UpdateID != 0 {
		first, err := s.Guard.FirstSeen(ctx, u.UpdateID)
		switch {
		case err != nil:
			lg.Warn().Err(err).Msg("update dedupe unavailable, handling anyway")
		case !first:
			lg.Info().Msg("duplicate update skipped")
			botUpdates.WithLabelValues("duplicate").Inc()
			return DispatchResult{Duplicate: true}
		}
	}

	cmd := domain.ClassifyCommand(u.CommandText)
	span.SetAttributes(attribute.String("command", cmd.String()))
	botUpdates.WithLabelValues(cmd.String()).Inc()

	if cmd == domain.CommandStart {
		s.onStart(ctx, lg, u)
	}

	res, err := s.Replier.ReplyTo(ctx, u.ChatID, cmd)
	if err != nil {
		span.RecordError(err)
		lg.Warn().Err(err).Str("command", cmd.String()).Msg("reply failed")
	}
	return DispatchResult{Command: cmd, Reply: res}
}

// onStart runs the /start side effects. Failures never block the reply.
func (s *DispatcherService) onStart(ctx context.Context, lg zerolog.Logger, u Update) {
	if u.From != nil && s.Users != nil && s.DB != nil {
		user := &domain.User{
			TelegramID: strconv.FormatInt(u.From.ID, 10),
			FirstName:  u.From.FirstName,
			LastName:   u.From.LastName,
			Username:   u.From.UserName,
		}
		if err := s.Users.UpsertUser(ctx, s.DB, user); err != nil {
			lg.Warn().Err(err).Msg("user upsert failed")
		}
	}
	if s.Reconciler != nil {
		cfg := s.Reconciler.DefaultMenuButton("")
		if _, err := s.Reconciler.EnsureMenuButton(ctx, cfg, u.ChatID); err != nil {
			lg.Warn().Err(err).Msg("per-chat menu button setup failed")
		}
	}
}
