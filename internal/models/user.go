package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a platform account. The custodial wallet columns are
// populated once, when the wallet is created, and the encrypted key is
// never stored in any other form.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	// Email is the e-mail address of the user, also used for notification fan-out.
	Email string `json:"email" gorm:"column:email;unique;not null"`
	// Role is the role of the user (user, author).
	Role string `json:"role" gorm:"column:role;default:user"`
	// TelegramChatID is the optional telegram chat used for notification fan-out.
	TelegramChatID string `json:"telegram_chat_id" gorm:"column:telegram_chat_id"`
	// WalletAddress is the address of the platform-held custodial wallet.
	WalletAddress string `json:"wallet_address" gorm:"column:wallet_address;index"`
	// EncryptedPrivateKey is the AEAD-encrypted private key of the custodial
	// wallet. Legacy rows hold a colon-delimited string, newer rows a JSON
	// object; both are normalized by the wallet package before use.
	EncryptedPrivateKey string `json:"-" gorm:"column:encrypted_private_key"`
	// HasWallet indicates whether a custodial wallet has been created.
	HasWallet bool `json:"has_wallet" gorm:"column:has_wallet;default:false"`
	// WalletCreatedAt is the time the custodial wallet was generated.
	WalletCreatedAt *time.Time `json:"wallet_created_at" gorm:"column:wallet_created_at"`
	// FundedAt is the time the wallet received its initial gas funding, if any.
	FundedAt *time.Time `json:"funded_at" gorm:"column:funded_at"`
	// FundingTxHash is the hash of the initial funding transaction, if any.
	FundingTxHash string `json:"funding_tx_hash" gorm:"column:funding_tx_hash"`
	// CreatedAt is the time the user registered.
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// HasCustodialWallet reports whether the user has a usable custodial wallet.
func (u *User) HasCustodialWallet() bool {
	return u.HasWallet && u.WalletAddress != ""
}

// AuthorProfile holds denormalized author-level counters.
type AuthorProfile struct {
	// ID is the unique identifier for the profile.
	ID string `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	// UserID is the author this profile belongs to.
	UserID string `json:"user_id" gorm:"column:user_id;unique;not null"`
	// TotalSubscribers is the number of active subscribers across all of the
	// author's plans. Updated with atomic increments, never read-modify-write.
	TotalSubscribers int64 `json:"total_subscribers" gorm:"column:total_subscribers;default:0"`
}

func (p *AuthorProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
