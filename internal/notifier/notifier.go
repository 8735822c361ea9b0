// Package notifier persists notifications and fans them out to whatever
// channels the recipient has registered. Persistence is the contract:
// notifications are the only way scheduler outcomes reach users. Fan-out is
// best-effort and never fails a send.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rajat-gondkar/pat3on/internal/models"
	"github.com/rajat-gondkar/pat3on/pkg/logger"
)

type Service struct {
	logger *logger.Logger
	repo   models.Repository

	Telegram *TelegramNotifier
	Email    *EmailNotifier
}

func NewService(repo models.Repository, log *logger.Logger, telegram *TelegramNotifier, email *EmailNotifier) *Service {
	return &Service{logger: log, repo: repo, Telegram: telegram, Email: email}
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (s *Service) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Send stores the notification and pushes a copy to the recipient's
// registered channels. Only the store failure is reported to the caller.
func (s *Service) Send(ctx context.Context, n *models.Notification) error {
	if err := s.repo.CreateNotification(n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	user, err := s.repo.GetUser(n.UserID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("Failed to load notification recipient ", "user ", n.UserID, " error ", err)
		}
		return nil
	}

	message := n.Title + "\n\n" + n.Message
	if s.Telegram != nil && user.TelegramChatID != "" {
		chatID := user.TelegramChatID
		s.safeCall(func() { s.Telegram.SendNotification(ctx, chatID, message) }, "telegramNotification")
	}
	if s.Email != nil && user.Email != "" {
		email := user.Email
		title := n.Title
		s.safeCall(func() { s.Email.SendNotification(email, title, n.Message) }, "emailNotification")
	}
	return nil
}
