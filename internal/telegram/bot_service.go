package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotService receives Telegram updates and handles the link commands.
type BotService struct {
	BotAPI   *tgbotapi.BotAPI
	Storage  LinkStorage
	Verifier LinkVerifier
}

// NewBotService creates a new BotService instance.
func NewBotService(token string, s LinkStorage, v LinkVerifier) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	return &BotService{
		BotAPI:   bot,
		Storage:  s,
		Verifier: v,
	}, nil
}

// Start polls for updates until ctx is cancelled.
func (s *BotService) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			s.BotAPI.StopReceivingUpdates()
			return
		case update := <-updates:
			HandleLinkCommand(ctx, &update, s.Storage, s.Verifier, s.BotAPI)
		}
	}
}
