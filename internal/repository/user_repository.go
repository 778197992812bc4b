package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"plansey/internal/model"
)

// UserRepository handles users and their role records.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithRole stores the user and the role record matching
// user.DefaultAccount in one transaction. Exactly one of the role arguments
// is expected to be non-nil; its UserID is filled in.
func (r *UserRepository) CreateWithRole(ctx context.Context, user *model.User, planner *model.Planner, vendor *model.Vendor, storyteller *model.Storyteller) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		switch {
		case planner != nil:
			planner.UserID = user.ID
			if err := tx.Create(planner).Error; err != nil {
				return fmt.Errorf("create planner: %w", err)
			}
			user.Planner = planner
		case vendor != nil:
			vendor.UserID = user.ID
			if err := tx.Create(vendor).Error; err != nil {
				return fmt.Errorf("create vendor: %w", err)
			}
			user.Vendor = vendor
		case storyteller != nil:
			storyteller.UserID = user.ID
			if err := tx.Create(storyteller).Error; err != nil {
				return fmt.Errorf("create storyteller: %w", err)
			}
			user.Storyteller = storyteller
		}
		return nil
	})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads the user with its role records.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Planner").
		Preload("Vendor").
		Preload("Storyteller").
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LinkTelegram attaches a Telegram chat to the user, detaching it from any
// other account first.
func (r *UserRepository) LinkTelegram(ctx context.Context, userID uint, telegramID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).
			Where("telegram_id = ? AND id <> ?", telegramID, userID).
			Update("telegram_id", nil).Error; err != nil {
			return fmt.Errorf("unlink telegram: %w", err)
		}
		res := tx.Model(&model.User{}).Where("id = ?", userID).Update("telegram_id", telegramID)
		if res.Error != nil {
			return fmt.Errorf("link telegram: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListTelegramLinked returns active users that linked a Telegram chat.
func (r *UserRepository) ListTelegramLinked(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).
		Where("telegram_id IS NOT NULL AND is_active = ?", true).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
