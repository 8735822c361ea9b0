package notifier

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/rajat-gondkar/pat3on/pkg/logger"
)

type TelegramNotifier struct {
	logger *logger.Logger
	bot    *bot.Bot
}

func NewTelegramNotifier(logger *logger.Logger, token string) (*TelegramNotifier, error) {
	provider := &TelegramNotifier{logger: logger}
	opts := []bot.Option{
		bot.WithDefaultHandler(provider.handler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	go b.Start(context.Background())
	provider.bot = b

	return provider, nil
}

func (t *TelegramNotifier) SendNotification(ctx context.Context, chatID, message string) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   message,
	}
	_, err := t.bot.SendMessage(ctx, params)
	if err != nil {
		t.logger.Error("Failed to send telegram notification: ", err)
	}
}

// handler answers /start with the chat ID so users can register it on their
// profile and receive renewal notifications here.
func (t *TelegramNotifier) handler(ctx context.Context, b *bot.Bot, update *tgModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	t.logger.Debug("Telegram update: ", update.Message.From.Username, " ", update.Message.Text)
	if update.Message.Text == "/start" {
		chatID := fmt.Sprint(update.Message.Chat.ID)
		t.SendNotification(ctx, chatID,
			"Your chat ID is "+chatID+". Add it to your account settings to receive subscription notifications here.")
	}
}
