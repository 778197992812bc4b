package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"plansey/internal/model"
)

// WeddingTaskChange describes a status write. Deadline is applied only when
// SetDeadline is true; a nil Deadline then clears the stored one.
type WeddingTaskChange struct {
	Status      model.TaskStatus
	Deadline    *time.Time
	SetDeadline bool
}

// WeddingTaskRepository stores per-wedding task state.
type WeddingTaskRepository struct {
	db *gorm.DB
}

func NewWeddingTaskRepository(db *gorm.DB) *WeddingTaskRepository {
	return &WeddingTaskRepository{db: db}
}

// Upsert updates the row for (weddingID, task.ID) or creates it with the
// task's chapter and display order = rows of the wedding + 1. A concurrent
// insert of the same pair loses on the unique index and is retried once as
// an update.
func (r *WeddingTaskRepository) Upsert(ctx context.Context, weddingID uint, task *model.Task, change WeddingTaskChange) (*model.WeddingTask, error) {
	out, err := r.upsert(ctx, weddingID, task, change)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		out, err = r.upsert(ctx, weddingID, task, change)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *WeddingTaskRepository) upsert(ctx context.Context, weddingID uint, task *model.Task, change WeddingTaskChange) (*model.WeddingTask, error) {
	var out model.WeddingTask
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("wedding_id = ? AND task_id = ?", weddingID, task.ID).First(&out).Error
		switch {
		case err == nil:
			out.Status = change.Status
			if change.SetDeadline {
				out.Deadline = change.Deadline
			}
			if err := tx.Save(&out).Error; err != nil {
				return fmt.Errorf("update wedding task: %w", err)
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			var count int64
			if err := tx.Model(&model.WeddingTask{}).Where("wedding_id = ?", weddingID).Count(&count).Error; err != nil {
				return fmt.Errorf("count wedding tasks: %w", err)
			}
			out = model.WeddingTask{
				WeddingID: weddingID,
				TaskID:    task.ID,
				ChapterID: task.ChapterID,
				Status:    change.Status,
				SortOrder: int(count) + 1,
			}
			if change.SetDeadline {
				out.Deadline = change.Deadline
			}
			if err := tx.Create(&out).Error; err != nil {
				return fmt.Errorf("create wedding task: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("find wedding task: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOpenWithDeadline returns unfinished tasks of the wedding that have a
// deadline, earliest first, with their template task loaded.
func (r *WeddingTaskRepository) ListOpenWithDeadline(ctx context.Context, weddingID uint) ([]model.WeddingTask, error) {
	var rows []model.WeddingTask
	if err := r.db.WithContext(ctx).
		Where("wedding_id = ? AND status <> ? AND deadline IS NOT NULL", weddingID, model.StatusDone).
		Order("deadline ASC, sort_order ASC").
		Preload("Task").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list open wedding tasks: %w", err)
	}
	return rows, nil
}
