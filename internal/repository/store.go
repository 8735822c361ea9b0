// Package repository implements the persistent store over gorm. Production
// runs on Postgres; tests run the same implementation on in-memory sqlite.
package repository

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/rajat-gondkar/pat3on/internal/models"
	"github.com/rajat-gondkar/pat3on/pkg/logger"
)

type Store struct {
	logger *logger.Logger

	Conn *gorm.DB
}

// NewPostgres connects to PostgreSQL and migrates the schema.
func NewPostgres(user, password, dbname, host string, port int, logger *logger.Logger) (*Store, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)
	return New(postgres.Open(dsn), logger)
}

// New opens the store on any gorm dialector and migrates the schema.
func New(dialector gorm.Dialector, appLogger *logger.Logger) (*Store, error) {
	// Configure GORM logger to suppress "record not found" messages
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %s", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.AuthorProfile{},
		&models.Plan{},
		&models.Subscription{},
		&models.Notification{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	appLogger.Info("Successfully connected to the database")
	return &Store{Conn: db, logger: appLogger}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}

func (s *Store) CreateUser(user *models.User) error {
	if err := s.Conn.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %s", err)
	}
	return nil
}

func (s *Store) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := s.Conn.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %s", err)
	}
	return &user, nil
}

func (s *Store) GetUserByWalletAddress(address string) (*models.User, error) {
	var user models.User
	if err := s.Conn.Where("wallet_address = ?", address).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by wallet address: %s", err)
	}
	return &user, nil
}

func (s *Store) SetUserWallet(userID, address, encryptedKey string, createdAt time.Time) error {
	result := s.Conn.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"wallet_address":        address,
		"encrypted_private_key": encryptedKey,
		"has_wallet":            true,
		"wallet_created_at":     createdAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to set user wallet: %s", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) SetUserWalletFunding(userID string, fundedAt time.Time, txHash string) error {
	result := s.Conn.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"funded_at":       fundedAt,
		"funding_tx_hash": txHash,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to set user wallet funding: %s", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) CreatePlan(plan *models.Plan) error {
	if err := s.Conn.Create(plan).Error; err != nil {
		return fmt.Errorf("failed to create plan: %s", err)
	}
	return nil
}

func (s *Store) GetPlan(id string) (*models.Plan, error) {
	var plan models.Plan
	if err := s.Conn.Where("id = ?", id).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %s", err)
	}
	return &plan, nil
}

// IncrementPlanSubscribers bumps the denormalized counter atomically in SQL,
// never via read-modify-write.
func (s *Store) IncrementPlanSubscribers(planID string) error {
	if err := s.Conn.Model(&models.Plan{}).Where("id = ?", planID).
		UpdateColumn("subscriber_count", gorm.Expr("subscriber_count + 1")).Error; err != nil {
		return fmt.Errorf("failed to increment plan subscribers: %s", err)
	}
	return nil
}

// DecrementPlanSubscribers decrements atomically, with a floor of zero.
func (s *Store) DecrementPlanSubscribers(planID string) error {
	if err := s.Conn.Model(&models.Plan{}).Where("id = ? AND subscriber_count > 0", planID).
		UpdateColumn("subscriber_count", gorm.Expr("subscriber_count - 1")).Error; err != nil {
		return fmt.Errorf("failed to decrement plan subscribers: %s", err)
	}
	return nil
}

func (s *Store) CreateAuthorProfile(profile *models.AuthorProfile) error {
	if err := s.Conn.Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create author profile: %s", err)
	}
	return nil
}

func (s *Store) GetAuthorProfile(userID string) (*models.AuthorProfile, error) {
	var profile models.AuthorProfile
	if err := s.Conn.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get author profile: %s", err)
	}
	return &profile, nil
}

func (s *Store) DecrementAuthorSubscribers(userID string) error {
	if err := s.Conn.Model(&models.AuthorProfile{}).Where("user_id = ? AND total_subscribers > 0", userID).
		UpdateColumn("total_subscribers", gorm.Expr("total_subscribers - 1")).Error; err != nil {
		return fmt.Errorf("failed to decrement author subscribers: %s", err)
	}
	return nil
}

func (s *Store) CreateSubscription(subscription *models.Subscription) error {
	if err := s.Conn.Create(subscription).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %s", err)
	}
	return nil
}

func (s *Store) GetSubscription(id string) (*models.Subscription, error) {
	var subscription models.Subscription
	if err := s.Conn.Where("id = ?", id).First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %s", err)
	}
	return &subscription, nil
}

// DueSubscriptions selects active, auto-renewing subscriptions whose end
// date falls inside [now, horizon]. Both interval ends are inclusive.
func (s *Store) DueSubscriptions(now, horizon time.Time) ([]*models.Subscription, error) {
	var subscriptions []*models.Subscription
	if err := s.Conn.
		Where("status = ? AND auto_renew = ? AND end_date >= ? AND end_date <= ?",
			models.SubscriptionStatusActive, true, now, horizon).
		Order("end_date asc").
		Find(&subscriptions).Error; err != nil {
		return nil, fmt.Errorf("failed to select due subscriptions: %s", err)
	}
	return subscriptions, nil
}

func (s *Store) UpdateSubscription(subscription *models.Subscription) error {
	if err := s.Conn.Save(subscription).Error; err != nil {
		return fmt.Errorf("failed to update subscription: %s", err)
	}
	return nil
}

func (s *Store) DeleteSubscription(id string) error {
	if err := s.Conn.Where("id = ?", id).Delete(&models.Subscription{}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %s", err)
	}
	return nil
}

func (s *Store) CreateNotification(notification *models.Notification) error {
	if err := s.Conn.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %s", err)
	}
	return nil
}

func (s *Store) NotificationsForUser(userID string) ([]*models.Notification, error) {
	var notifications []*models.Notification
	if err := s.Conn.Where("user_id = ?", userID).Order("created_at desc").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to get notifications: %s", err)
	}
	return notifications, nil
}
