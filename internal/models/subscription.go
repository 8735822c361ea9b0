package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription status values.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

// Subscription represents one subscriber's membership of one plan. At most
// one active subscription exists per (subscriber, plan) pair. The renewal
// scheduler advances it in place on success and deletes it on failure.
type Subscription struct {
	// ID is the unique identifier for the subscription.
	ID string `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	// SubscriberID is the paying user.
	SubscriberID string `json:"subscriber_id" gorm:"column:subscriber_id;index;not null"`
	// AuthorID is the user receiving payments.
	AuthorID string `json:"author_id" gorm:"column:author_id;index;not null"`
	// PlanID is the plan being paid for.
	PlanID string `json:"plan_id" gorm:"column:plan_id;index;not null"`
	// StartDate is the beginning of the current paid period.
	StartDate time.Time `json:"start_date" gorm:"column:start_date;not null"`
	// EndDate is the end of the current paid period; renewal is due when it
	// falls inside the scheduler's lookahead window.
	EndDate time.Time `json:"end_date" gorm:"column:end_date;index;not null"`
	// Status is one of active, cancelled, expired.
	Status string `json:"status" gorm:"column:status;index;default:active"`
	// TransactionHash is the hash of the most recent payment transaction.
	TransactionHash string `json:"transaction_hash" gorm:"column:transaction_hash"`
	// AutoRenew indicates whether the scheduler should renew the subscription.
	AutoRenew bool `json:"auto_renew" gorm:"column:auto_renew;default:true"`
	// LastRenewalAttempt is the time of the most recent renewal attempt.
	LastRenewalAttempt *time.Time `json:"last_renewal_attempt" gorm:"column:last_renewal_attempt"`
	// RenewalFailureCount is tracked for observability. No retry or grace
	// policy consults it; a failed renewal deletes the subscription outright.
	RenewalFailureCount int `json:"renewal_failure_count" gorm:"column:renewal_failure_count;default:0"`
	// CreatedAt is the time the subscription was created.
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
