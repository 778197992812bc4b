package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"plansey/internal/model"
)

// WeddingRepository handles CRUD for weddings.
type WeddingRepository struct {
	db *gorm.DB
}

func NewWeddingRepository(db *gorm.DB) *WeddingRepository {
	return &WeddingRepository{db: db}
}

// CreateForPlanner stores the wedding, links the planner to it and clears
// the creator's first-login flag in one transaction.
func (r *WeddingRepository) CreateForPlanner(ctx context.Context, wedding *model.Wedding, plannerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(wedding).Error; err != nil {
			return fmt.Errorf("create wedding: %w", err)
		}
		link := model.WeddingPlanner{WeddingID: wedding.ID, PlannerID: plannerID}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("link planner: %w", err)
		}
		if err := tx.Model(&model.User{}).
			Where("id = ?", wedding.CreatedBy).
			Update("is_first_login", false).Error; err != nil {
			return fmt.Errorf("update first login: %w", err)
		}
		return nil
	})
}

func (r *WeddingRepository) FindByID(ctx context.Context, id uint) (*model.Wedding, error) {
	var wedding model.Wedding
	if err := r.db.WithContext(ctx).First(&wedding, id).Error; err != nil {
		return nil, err
	}
	return &wedding, nil
}

// AliasTaken reports whether another wedding than exceptID uses alias.
func (r *WeddingRepository) AliasTaken(ctx context.Context, alias string, exceptID uint) (bool, error) {
	var wedding model.Wedding
	err := r.db.WithContext(ctx).Where("alias = ? AND id <> ?", alias, exceptID).First(&wedding).Error
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("find alias: %w", err)
	}
}

// Update writes every editable column, including cleared ones.
func (r *WeddingRepository) Update(ctx context.Context, wedding *model.Wedding) error {
	err := r.db.WithContext(ctx).
		Model(wedding).
		Select("WeddingDate", "Zipcode", "Location", "EstimateBudget", "Alias").
		Updates(wedding).Error
	if err != nil {
		return fmt.Errorf("update wedding: %w", err)
	}
	return nil
}
