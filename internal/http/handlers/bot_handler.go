// Bot HTTP handlers.
//
// This file exposes the Telegram webhook and the setup endpoints an operator
// hits once after deploying:
//   - POST /bot/webhook          (inbound updates)
//   - GET  /set_webhook          (setWebhook)
//   - GET  /delete_webhook       (deleteWebhook)
//   - GET  /set_menu_button      (global web-app menu button)
//   - GET  /setup_commands       (setMyCommands with the fixed table)
//   - GET  /menu_button_status   (read-back snapshot)
//   - GET  /bot_info             (getMe)
package handlers

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/sushi-order-bot/internal/http/middleware"
	"github.com/tbourn/sushi-order-bot/internal/services"
	"github.com/tbourn/sushi-order-bot/internal/telegram"
)

// WebhookAck is returned for every accepted update.
type WebhookAck struct {
	OK bool `json:"ok" example:"true"`
}

// WebhookError is the fixed body for an empty webhook request.
type WebhookError struct {
	Error string `json:"error" example:"Empty request body"`
}

// SetupResponse echoes the platform's answer to a setup call.
type SetupResponse struct {
	OK          bool             `json:"ok" example:"true"`
	Outcome     services.Outcome `json:"outcome" swaggertype:"string" enums:"sent,skipped,failed" example:"sent"`
	Description string           `json:"description,omitempty" example:"Webhook was set"`
	Error       string           `json:"error,omitempty"`
}

// Webhook godoc
// @ID          botWebhook
// @Summary     Telegram webhook
// @Description Receives one Update. Replies are sent from here; the response is always {ok:true} once the update is classified, whatever happened to the reply.
// @Tags        Bot
// @Accept      json
// @Produce     json
// @Param       X-Telegram-Bot-Api-Secret-Token  header  string  false  "Required when a webhook secret is configured"
// @Param       body  body  object  true  "Telegram Update"
// @Success     200  {object} handlers.WebhookAck
// @Failure     400  {object} handlers.WebhookError  "Empty request body"
// @Failure     401  {object} handlers.ErrorResponse "Secret token mismatch"
// @Router      /bot/webhook [post]
func (h *Handlers) Webhook(c *gin.Context) {
	if secret := h.site.WebhookSecret; secret != "" {
		got := c.GetHeader(middleware.HeaderTelegramSecret)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid webhook secret")
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read body")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, WebhookError{Error: "Empty request body"})
		return
	}
	u, err := services.ParseUpdate(body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeMalformedUpdate, "malformed update")
		return
	}

	h.dispatcher.Dispatch(c.Request.Context(), u)
	ok(c, http.StatusOK, WebhookAck{OK: true})
}

// SetWebhook godoc
// @ID          setWebhook
// @Summary     Register the webhook
// @Description Calls setWebhook with the given absolute URL and the configured secret token.
// @Tags        Bot setup
// @Produce     json
// @Param       url  query  string  true  "Public webhook URL"  example(https://bot.example.com/bot/webhook)
// @Success     200  {object} handlers.SetupResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing or invalid url"
// @Failure     502  {object} handlers.SetupResponse "Platform unreachable"
// @Router      /set_webhook [get]
func (h *Handlers) SetWebhook(c *gin.Context) {
	res, err := h.bot.EnsureWebhook(c.Request.Context(), c.Query("url"))
	h.setupResult(c, res, err)
}

// DeleteWebhook godoc
// @ID          deleteWebhook
// @Summary     Remove the webhook
// @Tags        Bot setup
// @Produce     json
// @Success     200  {object} handlers.SetupResponse
// @Failure     502  {object} handlers.SetupResponse "Platform unreachable"
// @Router      /delete_webhook [get]
func (h *Handlers) DeleteWebhook(c *gin.Context) {
	res, err := h.bot.DeleteWebhook(c.Request.Context())
	h.setupResult(c, res, err)
}

// SetMenuButton godoc
// @ID          setMenuButton
// @Summary     Set the default menu button
// @Description Points the global menu button at the Mini App. Without url the configured WEBAPP_URL is used; the URL is normalized to end with "/".
// @Tags        Bot setup
// @Produce     json
// @Param       url   query  string  false  "Mini App URL"   example(https://ohmysushi.md/)
// @Param       text  query  string  false  "Button label"   example(Меню)
// @Success     200  {object} handlers.SetupResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid url or text"
// @Failure     502  {object} handlers.SetupResponse "Platform unreachable"
// @Router      /set_menu_button [get]
func (h *Handlers) SetMenuButton(c *gin.Context) {
	cfg := h.bot.DefaultMenuButton(c.Query("url"))
	if text, has := c.GetQuery("text"); has {
		cfg.Label = text
	}
	res, err := h.bot.EnsureMenuButton(c.Request.Context(), cfg, "")
	h.setupResult(c, res, err)
}

// SetupCommands godoc
// @ID          setupCommands
// @Summary     Publish the command list
// @Description Calls setMyCommands with start, menu and help.
// @Tags        Bot setup
// @Produce     json
// @Success     200  {object} handlers.SetupResponse
// @Failure     502  {object} handlers.SetupResponse "Platform unreachable"
// @Router      /setup_commands [get]
func (h *Handlers) SetupCommands(c *gin.Context) {
	res, err := h.bot.EnsureCommands(c.Request.Context(), services.DefaultCommands)
	h.setupResult(c, res, err)
}

// MenuButtonStatus godoc
// @ID          menuButtonStatus
// @Summary     Read back bot configuration
// @Description Fetches commands, the default menu button and webhook info independently; each leg reports its own ok/error.
// @Tags        Bot setup
// @Produce     json
// @Success     200  {object} services.Snapshot
// @Router      /menu_button_status [get]
func (h *Handlers) MenuButtonStatus(c *gin.Context) {
	ok(c, http.StatusOK, h.bot.Snapshot(c.Request.Context()))
}

// BotInfo godoc
// @ID          botInfo
// @Summary     Bot identity
// @Description Calls getMe, useful to verify the token.
// @Tags        Bot setup
// @Produce     json
// @Success     200  {object} object
// @Failure     502  {object} handlers.ErrorResponse "Platform error"
// @Failure     503  {object} handlers.ErrorResponse "Bot token not configured"
// @Router      /bot_info [get]
func (h *Handlers) BotInfo(c *gin.Context) {
	u, err := h.bot.BotInfo(c.Request.Context())
	switch {
	case err == nil:
		ok(c, http.StatusOK, u)
	case errors.Is(err, telegram.ErrNotConfigured):
		fail(c, http.StatusServiceUnavailable, ErrCodeBotNotConfigured, "bot token not configured")
	default:
		fail(c, http.StatusBadGateway, ErrCodeBotAPIFailed, err.Error())
	}
}

// setupResult writes a reconciliation outcome. Input problems are 400,
// transport failures 502; platform refusals are echoed with 200 and ok=false.
func (h *Handlers) setupResult(c *gin.Context, res services.Result, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		failValidation(c, ve)
		return
	case errors.Is(err, services.ErrNoWebhookURL):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	if telegram.IsTransport(err) {
		status = http.StatusBadGateway
	}
	ok(c, status, SetupResponse{
		OK:          res.OK(),
		Outcome:     res.Outcome,
		Description: res.Description,
		Error:       res.Error,
	})
}
