package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationTypeRenewed       = "subscription_renewed"
	NotificationTypeRenewalFailed = "subscription_renewal_failed"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Notification is the one channel through which the renewal scheduler
// reaches users. The scheduler only writes; reading and acknowledging is
// handled elsewhere.
type Notification struct {
	// ID is the unique identifier for the notification.
	ID string `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	// UserID is the recipient.
	UserID string `json:"user_id" gorm:"column:user_id;index;not null"`
	// Type is the notification type (subscription_renewed, subscription_renewal_failed).
	Type string `json:"type" gorm:"column:type;not null"`
	// Title is a short headline.
	Title string `json:"title" gorm:"column:title;not null"`
	// Message is the full notification text.
	Message string `json:"message" gorm:"column:message;not null"`
	// Priority is one of low, medium, high.
	Priority string `json:"priority" gorm:"column:priority;default:medium"`
	// RelatedSubscriptionID links the notification to a subscription, if any.
	RelatedSubscriptionID *string `json:"related_subscription_id" gorm:"column:related_subscription_id"`
	// RelatedPlanID links the notification to a plan, if any.
	RelatedPlanID *string `json:"related_plan_id" gorm:"column:related_plan_id"`
	// IsRead indicates whether the recipient has seen the notification.
	IsRead bool `json:"is_read" gorm:"column:is_read;default:false"`
	// CreatedAt is the time the notification was created.
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
