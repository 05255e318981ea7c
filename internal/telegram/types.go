package telegram

import (
	"encoding/json"
	"strconv"
)

// ChatID addresses a chat. Numeric ids are sent as JSON numbers, anything
// else (e.g. "@channel") as a string. The empty ChatID means "no chat".
type ChatID string

// MarshalJSON implements json.Marshaler.
func (id ChatID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

// ChatIDFromInt converts the platform's int64 chat id.
func ChatIDFromInt(id int64) ChatID { return ChatID(strconv.FormatInt(id, 10)) }

// ParseMode values accepted by sendMessage.
const (
	ParseModeHTML = "HTML"
)

// WebAppInfo describes a mini-app opened from a button.
type WebAppInfo struct {
	URL string `json:"url"`
}

// MenuButton is the chat menu button definition. Type is "web_app",
// "commands" or "default"; Text and WebApp are only used for "web_app".
type MenuButton struct {
	Type   string      `json:"type"`
	Text   string      `json:"text,omitempty"`
	WebApp *WebAppInfo `json:"web_app,omitempty"`
}

// MenuButtonWebApp is the only button type the bot configures.
const MenuButtonWebApp = "web_app"

// ReplyMarkup is one of the keyboard descriptors accepted by sendMessage.
type ReplyMarkup interface {
	replyMarkup()
}

// KeyboardButton is a button of a custom reply keyboard.
type KeyboardButton struct {
	Text   string      `json:"text"`
	WebApp *WebAppInfo `json:"web_app,omitempty"`
}

// ReplyKeyboardMarkup is a custom keyboard shown instead of the system one.
type ReplyKeyboardMarkup struct {
	Keyboard       [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
	IsPersistent   bool               `json:"is_persistent,omitempty"`
}

func (ReplyKeyboardMarkup) replyMarkup() {}

// InlineKeyboardButton is a button attached to a message.
type InlineKeyboardButton struct {
	Text   string      `json:"text"`
	URL    string      `json:"url,omitempty"`
	WebApp *WebAppInfo `json:"web_app,omitempty"`
}

// InlineKeyboardMarkup is a keyboard attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

func (InlineKeyboardMarkup) replyMarkup() {}

// OutboundMessage is a message to be delivered with sendMessage. It is built
// by the notification layer and never persisted.
type OutboundMessage struct {
	ChatID      ChatID
	Text        string
	ParseMode   string
	ReplyMarkup ReplyMarkup
}

// Ack is a successful Bot API answer. Description is often empty; Result is
// the raw "result" field.
type Ack struct {
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type sendMessageParams struct {
	ChatID      ChatID      `json:"chat_id"`
	Text        string      `json:"text"`
	ParseMode   string      `json:"parse_mode,omitempty"`
	ReplyMarkup ReplyMarkup `json:"reply_markup,omitempty"`
}

type setWebhookParams struct {
	URL         string `json:"url"`
	SecretToken string `json:"secret_token,omitempty"`
}

type chatMenuButtonParams struct {
	ChatID     ChatID      `json:"chat_id,omitempty"`
	MenuButton *MenuButton `json:"menu_button,omitempty"`
}
