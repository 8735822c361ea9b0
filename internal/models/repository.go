package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned by repository lookups when no row matches.
var ErrNotFound = errors.New("record not found")

type Repository interface {
	CreateUser(*User) error
	GetUser(id string) (*User, error)
	GetUserByWalletAddress(address string) (*User, error)
	SetUserWallet(userID, address, encryptedKey string, createdAt time.Time) error
	SetUserWalletFunding(userID string, fundedAt time.Time, txHash string) error

	CreatePlan(*Plan) error
	GetPlan(id string) (*Plan, error)
	IncrementPlanSubscribers(planID string) error
	DecrementPlanSubscribers(planID string) error

	CreateAuthorProfile(*AuthorProfile) error
	GetAuthorProfile(userID string) (*AuthorProfile, error)
	DecrementAuthorSubscribers(userID string) error

	CreateSubscription(*Subscription) error
	GetSubscription(id string) (*Subscription, error)
	DueSubscriptions(now, horizon time.Time) ([]*Subscription, error)
	UpdateSubscription(*Subscription) error
	DeleteSubscription(id string) error

	CreateNotification(*Notification) error
	NotificationsForUser(userID string) ([]*Notification, error)
}
