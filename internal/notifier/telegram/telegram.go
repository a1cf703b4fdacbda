// Package telegram delivers notifications as Telegram bot messages.
package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/julianstephens/dayquote/internal/notifier"
)

var ErrNoChat = errors.New("telegram chat id is not configured")

// Sender posts to a single chat.
type Sender struct {
	bot    *bot.Bot
	chatID int64
}

// New builds a sender without contacting Telegram; use Probe to verify the token.
func New(token string, chatID int64, opts ...bot.Option) (*Sender, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}
	b, err := bot.New(token, append([]bot.Option{bot.WithSkipGetMe()}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Sender{bot: b, chatID: chatID}, nil
}

func (s *Sender) Send(ctx context.Context, msg notifier.Message) error {
	if s.chatID == 0 {
		return ErrNoChat
	}
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    s.chatID,
		Text:      Format(msg),
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// Probe checks the token with getMe.
func (s *Sender) Probe(ctx context.Context) error {
	if s.chatID == 0 {
		return ErrNoChat
	}
	if _, err := s.bot.GetMe(ctx); err != nil {
		return fmt.Errorf("telegram bot unreachable: %w", err)
	}
	return nil
}

// Format renders a bold title line followed by the body, escaped for MarkdownV2.
func Format(msg notifier.Message) string {
	if msg.Title == "" {
		return bot.EscapeMarkdown(msg.Body)
	}
	return "*" + bot.EscapeMarkdown(msg.Title) + "*\n" + bot.EscapeMarkdown(msg.Body)
}
