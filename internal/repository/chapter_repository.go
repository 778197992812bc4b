package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"plansey/internal/model"
)

// ChapterRepository reads the shared task catalog.
type ChapterRepository struct {
	db *gorm.DB
}

func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// ListPublic returns public chapters by ascending rank with their public
// tasks by ascending rank. When weddingID is non-nil each task carries the
// wedding's WeddingTask, if any.
func (r *ChapterRepository) ListPublic(ctx context.Context, weddingID *uint) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("sort_order ASC, id ASC").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_public = ?", true).Order("sort_order ASC, id ASC")
		}).
		Find(&chapters).Error
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	if weddingID == nil {
		return chapters, nil
	}

	var taskIDs []uint
	for _, ch := range chapters {
		for _, t := range ch.Tasks {
			taskIDs = append(taskIDs, t.ID)
		}
	}
	if len(taskIDs) == 0 {
		return chapters, nil
	}

	var rows []model.WeddingTask
	if err := r.db.WithContext(ctx).
		Where("wedding_id = ? AND task_id IN ?", *weddingID, taskIDs).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list wedding tasks: %w", err)
	}
	byTask := make(map[uint]model.WeddingTask, len(rows))
	for _, row := range rows {
		byTask[row.TaskID] = row
	}

	for ci := range chapters {
		for ti := range chapters[ci].Tasks {
			task := &chapters[ci].Tasks[ti]
			if row, ok := byTask[task.ID]; ok {
				task.WeddingTasks = []model.WeddingTask{row}
			}
		}
	}
	return chapters, nil
}

func (r *ChapterRepository) FindTask(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}
