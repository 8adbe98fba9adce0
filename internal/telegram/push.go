// Package telegram delivers push notifications to users who linked a Telegram
// chat and runs the bot that performs the linking.
package telegram

import (
	"context"
	"fmt"
	"strings"

	"tutorchat/backend/internal/models"
	"tutorchat/backend/internal/notify"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the subset of *tgbotapi.BotAPI used to send messages.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ChatDirectory finds the Telegram chat linked to a user.
type ChatDirectory interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// PushClient is the push channel of the notification fan-out.
type PushClient struct {
	Bot       BotAPI
	Directory ChatDirectory
}

func NewPushClient(bot BotAPI, dir ChatDirectory) *PushClient {
	return &PushClient{Bot: bot, Directory: dir}
}

// Push sends one message to the recipient's linked chat. A recipient without a
// linked chat is not an error: nothing is sent.
func (p *PushClient) Push(ctx context.Context, c notify.Contract) notify.PushOutcome {
	var out notify.PushOutcome

	profile, err := p.Directory.GetProfile(ctx, c.RecipientID)
	if err != nil {
		out.Errors = append(out.Errors, fmt.Sprintf("profile lookup: %v", err))
		return out
	}
	if profile == nil || profile.TelegramChatID == nil {
		return out
	}

	msg := tgbotapi.NewMessage(*profile.TelegramChatID, pushText(c))
	if c.ActionURL != "" {
		text := c.ActionText
		if text == "" {
			text = c.ActionURL
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(text, c.ActionURL)),
		)
	}

	if _, err := p.Bot.Send(msg); err != nil {
		out.Errors = append(out.Errors, fmt.Sprintf("telegram send: %v", err))
		return out
	}
	out.Sent = 1
	return out
}

// pushText is plain text; no parse mode, so user content needs no escaping.
func pushText(c notify.Contract) string {
	var b strings.Builder
	b.WriteString(c.Title)
	if c.Message != "" {
		b.WriteString("\n\n")
		b.WriteString(c.Message)
	}
	return b.String()
}
