package notifier

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/rajat-gondkar/pat3on/internal/models"
	"github.com/rajat-gondkar/pat3on/internal/repository"
	"github.com/rajat-gondkar/pat3on/pkg/logger"
)

var notifierDBCounter atomic.Int64

func newTestService(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	log := logger.NewTestLogger(t)
	dsn := fmt.Sprintf("file:notifier_test_%d?mode=memory&cache=shared", notifierDBCounter.Add(1))
	store, err := repository.New(sqlite.Open(dsn), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, log, nil, nil), store
}

func TestSendPersistsNotification(t *testing.T) {
	service, store := newTestService(t)

	user := &models.User{Email: "alice@example.com"}
	require.NoError(t, store.CreateUser(user))

	err := service.Send(context.Background(), &models.Notification{
		UserID:   user.ID,
		Type:     models.NotificationTypeRenewed,
		Title:    "Subscription Renewed",
		Message:  "All good.",
		Priority: models.PriorityLow,
	})
	require.NoError(t, err)

	notifications, err := store.NotificationsForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Subscription Renewed", notifications[0].Title)
}

func TestSendSucceedsForUnknownRecipient(t *testing.T) {
	// The recipient row may be gone by the time the notification lands, for
	// example for a user deleted mid-tick. The notification is still stored.
	service, store := newTestService(t)

	err := service.Send(context.Background(), &models.Notification{
		UserID:   "00000000-0000-0000-0000-000000000000",
		Type:     models.NotificationTypeRenewalFailed,
		Title:    "Renewal Error",
		Message:  "Something happened.",
		Priority: models.PriorityHigh,
	})
	require.NoError(t, err)

	notifications, err := store.NotificationsForUser("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
}
