package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"plansey/internal/model"
)

// PlannerRepository answers questions about planners and their weddings.
type PlannerRepository struct {
	db *gorm.DB
}

func NewPlannerRepository(db *gorm.DB) *PlannerRepository {
	return &PlannerRepository{db: db}
}

func (r *PlannerRepository) FindByUserID(ctx context.Context, userID uint) (*model.Planner, error) {
	var planner model.Planner
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&planner).Error; err != nil {
		return nil, err
	}
	return &planner, nil
}

// IsLinked reports whether the user's planner record is linked to the wedding.
func (r *PlannerRepository) IsLinked(ctx context.Context, userID, weddingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.WeddingPlanner{}).
		Joins("JOIN planners ON planners.id = wedding_planners.planner_id").
		Where("planners.user_id = ? AND wedding_planners.wedding_id = ?", userID, weddingID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check wedding link: %w", err)
	}
	return count > 0, nil
}

// LatestWedding returns the wedding most recently linked to the user's
// planner record, or nil when the user has none.
func (r *PlannerRepository) LatestWedding(ctx context.Context, userID uint) (*model.Wedding, error) {
	var link model.WeddingPlanner
	err := r.db.WithContext(ctx).
		Joins("JOIN planners ON planners.id = wedding_planners.planner_id").
		Where("planners.user_id = ?", userID).
		Order("wedding_planners.id DESC").
		Preload("Wedding").
		First(&link).Error
	switch {
	case err == nil:
		return link.Wedding, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find latest wedding: %w", err)
	}
}
