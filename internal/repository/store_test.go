package repository

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/rajat-gondkar/pat3on/internal/models"
	"github.com/rajat-gondkar/pat3on/pkg/logger"
)

var testDBCounter atomic.Int64

// newTestStore opens a store on a fresh in-memory sqlite database. Each test
// gets its own database so tests stay independent.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:store_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	store, err := New(sqlite.Open(dsn), logger.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return value
}

func TestUserLifecycle(t *testing.T) {
	store := newTestStore(t)

	user := &models.User{Email: "alice@example.com", Role: "user"}
	require.NoError(t, store.CreateUser(user))
	require.NotEmpty(t, user.ID)

	loaded, err := store.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", loaded.Email)
	assert.False(t, loaded.HasCustodialWallet())

	_, err = store.GetUser("00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetUserWallet(t *testing.T) {
	store := newTestStore(t)

	user := &models.User{Email: "bob@example.com"}
	require.NoError(t, store.CreateUser(user))

	createdAt := time.Now().UTC().Truncate(time.Second)
	address := "0x1111111111111111111111111111111111111111"
	require.NoError(t, store.SetUserWallet(user.ID, address, `{"encrypted":"aa","iv":"bb","authTag":"cc"}`, createdAt))

	loaded, err := store.GetUser(user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.HasCustodialWallet())
	assert.Equal(t, address, loaded.WalletAddress)
	assert.NotEmpty(t, loaded.EncryptedPrivateKey)
	require.NotNil(t, loaded.WalletCreatedAt)
	assert.Nil(t, loaded.FundedAt)

	byAddress, err := store.GetUserByWalletAddress(address)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byAddress.ID)

	fundedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.SetUserWalletFunding(user.ID, fundedAt, "0xdead"))
	loaded, err = store.GetUser(user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.FundedAt)
	assert.Equal(t, "0xdead", loaded.FundingTxHash)

	// Updates against a missing user report not found.
	err = store.SetUserWallet("00000000-0000-0000-0000-000000000000", address, "key", createdAt)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPlanSubscriberCounters(t *testing.T) {
	store := newTestStore(t)

	plan := &models.Plan{AuthorID: "author-1", TierName: "Gold", Price: mustDecimal(t, "10")}
	require.NoError(t, store.CreatePlan(plan))

	require.NoError(t, store.IncrementPlanSubscribers(plan.ID))
	require.NoError(t, store.IncrementPlanSubscribers(plan.ID))
	require.NoError(t, store.DecrementPlanSubscribers(plan.ID))

	loaded, err := store.GetPlan(plan.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, loaded.SubscriberCount)

	// The counter floors at zero even if decremented too often.
	require.NoError(t, store.DecrementPlanSubscribers(plan.ID))
	require.NoError(t, store.DecrementPlanSubscribers(plan.ID))
	loaded, err = store.GetPlan(plan.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, loaded.SubscriberCount)
}

func TestAuthorSubscriberCounters(t *testing.T) {
	store := newTestStore(t)

	profile := &models.AuthorProfile{UserID: "author-1", TotalSubscribers: 1}
	require.NoError(t, store.CreateAuthorProfile(profile))

	require.NoError(t, store.DecrementAuthorSubscribers("author-1"))
	require.NoError(t, store.DecrementAuthorSubscribers("author-1"))

	loaded, err := store.GetAuthorProfile("author-1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, loaded.TotalSubscribers)
}

func TestDueSubscriptionsWindow(t *testing.T) {
	store := newTestStore(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	horizon := now.Add(5 * time.Minute)

	create := func(endDate time.Time, status string, autoRenew bool) *models.Subscription {
		sub := &models.Subscription{
			SubscriberID: "subscriber-1",
			AuthorID:     "author-1",
			PlanID:       "plan-1",
			StartDate:    endDate.Add(-30 * 24 * time.Hour),
			EndDate:      endDate,
			Status:       status,
			AutoRenew:    autoRenew,
		}
		require.NoError(t, store.CreateSubscription(sub))
		return sub
	}

	// Both interval ends are inclusive.
	atNow := create(now, models.SubscriptionStatusActive, true)
	atHorizon := create(horizon, models.SubscriptionStatusActive, true)
	inside := create(now.Add(2*time.Minute), models.SubscriptionStatusActive, true)
	// Outside the window, or filtered out by status and auto-renew.
	create(now.Add(-time.Millisecond), models.SubscriptionStatusActive, true)
	create(horizon.Add(time.Millisecond), models.SubscriptionStatusActive, true)
	create(now.Add(time.Minute), models.SubscriptionStatusCancelled, true)
	create(now.Add(time.Minute), models.SubscriptionStatusActive, false)

	due, err := store.DueSubscriptions(now, horizon)
	require.NoError(t, err)
	require.Len(t, due, 3)

	// Ordered by end date ascending.
	assert.Equal(t, atNow.ID, due[0].ID)
	assert.Equal(t, inside.ID, due[1].ID)
	assert.Equal(t, atHorizon.ID, due[2].ID)
}

func TestSubscriptionUpdateAndDelete(t *testing.T) {
	store := newTestStore(t)

	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := &models.Subscription{
		SubscriberID: "subscriber-1",
		AuthorID:     "author-1",
		PlanID:       "plan-1",
		StartDate:    end.Add(-30 * 24 * time.Hour),
		EndDate:      end,
		Status:       models.SubscriptionStatusActive,
		AutoRenew:    true,
	}
	require.NoError(t, store.CreateSubscription(sub))

	sub.StartDate = sub.EndDate
	sub.EndDate = sub.EndDate.Add(30 * 24 * time.Hour)
	sub.TransactionHash = "0xabc"
	require.NoError(t, store.UpdateSubscription(sub))

	loaded, err := store.GetSubscription(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", loaded.TransactionHash)
	assert.True(t, loaded.EndDate.Equal(end.Add(30*24*time.Hour)))

	require.NoError(t, store.DeleteSubscription(sub.ID))
	_, err = store.GetSubscription(sub.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestNotifications(t *testing.T) {
	store := newTestStore(t)

	first := &models.Notification{
		UserID:   "user-1",
		Type:     models.NotificationTypeRenewed,
		Title:    "Subscription Renewed",
		Message:  "Your subscription was renewed.",
		Priority: models.PriorityLow,
	}
	require.NoError(t, store.CreateNotification(first))
	second := &models.Notification{
		UserID:   "user-1",
		Type:     models.NotificationTypeRenewalFailed,
		Title:    "Renewal Error",
		Message:  "Your subscription could not be renewed.",
		Priority: models.PriorityHigh,
	}
	require.NoError(t, store.CreateNotification(second))

	notifications, err := store.NotificationsForUser("user-1")
	require.NoError(t, err)
	assert.Len(t, notifications, 2)

	notifications, err = store.NotificationsForUser("someone-else")
	require.NoError(t, err)
	assert.Empty(t, notifications)
}
