package telegram

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// LinkStorage defines the storage methods required by the link handler.
type LinkStorage interface {
	SetTelegramChat(ctx context.Context, userID string, chatID *int64) error
}

// LinkVerifier resolves the user id carried by a deep-link token.
type LinkVerifier interface {
	Parse(tokenString, purpose string) (string, error)
}

const (
	textLinked       = "Telegram is now linked. New messages from your conversations will arrive here."
	textUnlinked     = "Telegram notifications are turned off. Use the link in your notification settings to turn them back on."
	textBadLink      = "This link is invalid or has expired. Open your notification settings to get a new one."
	textNeedLink     = "Open your notification settings on the website and follow the Telegram link there."
	textLinkFailed   = "Failed to update your settings. Please try again later."
	linkTokenPurpose = "telegram_link"
)

// HandleLinkCommand processes /start <token> and /stop.
// /start <token> links the chat to the user the token names; /stop <token> unlinks it.
func HandleLinkCommand(ctx context.Context, update *tgbotapi.Update, s LinkStorage, v LinkVerifier, bot BotAPI) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	chatID := update.Message.Chat.ID
	var responseText string

	switch update.Message.Command() {
	case "start":
		token := strings.TrimSpace(update.Message.CommandArguments())
		if token == "" {
			responseText = textNeedLink
			break
		}

		userID, err := v.Parse(token, linkTokenPurpose)
		if err != nil {
			responseText = textBadLink
			break
		}

		if err := s.SetTelegramChat(ctx, userID, &chatID); err != nil {
			log.Printf("ERROR: linking telegram chat %d to user %s: %v", chatID, userID, err)
			responseText = textLinkFailed
			break
		}
		log.Printf("INFO: telegram chat %d linked to user %s", chatID, userID)
		responseText = textLinked

	case "stop":
		token := strings.TrimSpace(update.Message.CommandArguments())
		userID, err := v.Parse(token, linkTokenPurpose)
		if err != nil {
			responseText = textBadLink
			break
		}
		if err := s.SetTelegramChat(ctx, userID, nil); err != nil {
			log.Printf("ERROR: unlinking telegram chat for user %s: %v", userID, err)
			responseText = textLinkFailed
			break
		}
		responseText = textUnlinked

	default:
		return
	}

	msg := tgbotapi.NewMessage(chatID, responseText)
	if _, err := bot.Send(msg); err != nil {
		log.Printf("ERROR: sending link confirmation to chat %d: %v", chatID, err)
	}
}
