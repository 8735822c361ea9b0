package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Plan represents a subscription tier offered by an author.
type Plan struct {
	// ID is the unique identifier for the plan.
	ID string `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	// AuthorID is the author offering the plan.
	AuthorID string `json:"author_id" gorm:"column:author_id;index;not null"`
	// TierName is the display name of the tier.
	TierName string `json:"tier_name" gorm:"column:tier_name;not null"`
	// Description is an optional description of the tier.
	Description string `json:"description" gorm:"column:description"`
	// Price is the stable-token price per renewal period, in human units.
	Price decimal.Decimal `json:"price" gorm:"column:price;type:decimal(20,8);not null"`
	// Currency is the token symbol the plan is priced in.
	Currency string `json:"currency" gorm:"column:currency;default:USDC"`
	// IsActive indicates whether the plan accepts new subscribers.
	IsActive bool `json:"is_active" gorm:"column:is_active;default:true"`
	// SubscriberCount is the number of active subscriptions referencing this
	// plan. Updated with atomic increments, never read-modify-write.
	SubscriberCount int64 `json:"subscriber_count" gorm:"column:subscriber_count;default:0"`
	// CreatedAt is the time the plan was created.
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
