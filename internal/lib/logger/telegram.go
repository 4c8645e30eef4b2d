package logger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PaulSonOfLars/gotgbot/v2"
)

// TelegramSender can deliver a plain text message to a chat.
type TelegramSender interface {
	SendMessage(chatID int64, text string) error
}

// BotSender adapts a gotgbot.Bot to the TelegramSender interface.
type BotSender struct {
	bot *gotgbot.Bot
}

// NewBotSender wraps an initialized Telegram bot.
func NewBotSender(bot *gotgbot.Bot) *BotSender {
	return &BotSender{bot: bot}
}

func (s *BotSender) SendMessage(chatID int64, text string) error {
	_, err := s.bot.SendMessage(chatID, text, nil)
	return err
}

// TelegramHandler forwards records at or above a minimum level to an ops
// Telegram chat while delegating everything to the wrapped handler.
type TelegramHandler struct {
	next     slog.Handler
	sender   TelegramSender
	chatID   int64
	minLevel slog.Level
}

// SetupTelegramHandler wraps the logger so that error records are pushed to
// the ops chat. The wrapped handler still receives every record.
func SetupTelegramHandler(log *slog.Logger, sender TelegramSender, chatID int64, minLevel slog.Level) *slog.Logger {
	return slog.New(&TelegramHandler{
		next:     log.Handler(),
		sender:   sender,
		chatID:   chatID,
		minLevel: minLevel,
	})
}

func (h *TelegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *TelegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.minLevel && h.sender != nil {
		text := fmt.Sprintf("[%s] %s", r.Level.String(), r.Message)
		r.Attrs(func(a slog.Attr) bool {
			text += fmt.Sprintf("\n%s: %s", a.Key, a.Value.String())
			return true
		})
		// Best effort: alerting must never break the request path.
		_ = h.sender.SendMessage(h.chatID, text)
	}
	return h.next.Handle(ctx, r)
}

func (h *TelegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TelegramHandler{
		next:     h.next.WithAttrs(attrs),
		sender:   h.sender,
		chatID:   h.chatID,
		minLevel: h.minLevel,
	}
}

func (h *TelegramHandler) WithGroup(name string) slog.Handler {
	return &TelegramHandler{
		next:     h.next.WithGroup(name),
		sender:   h.sender,
		chatID:   h.chatID,
		minLevel: h.minLevel,
	}
}
