package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"plansey/internal/checklist"
	"plansey/internal/model"
	"plansey/internal/repository"
)

// Checklist is the catalog as seen by one user.
type Checklist struct {
	WeddingID *uint
	Chapters  []model.Chapter
	Progress  checklist.Progress
}

// StatusUpdate is a requested status transition. Deadline is applied only
// when SetDeadline is true; a nil Deadline then clears it.
type StatusUpdate struct {
	Status      model.TaskStatus
	Deadline    *time.Time
	SetDeadline bool
}

// ChecklistService wraps checklist business logic.
type ChecklistService struct {
	chapters     *repository.ChapterRepository
	weddingTasks *repository.WeddingTaskRepository
	planners     *repository.PlannerRepository
	guard        *OwnershipGuard
}

func NewChecklistService(chapters *repository.ChapterRepository, weddingTasks *repository.WeddingTaskRepository, planners *repository.PlannerRepository, guard *OwnershipGuard) *ChecklistService {
	return &ChecklistService{chapters: chapters, weddingTasks: weddingTasks, planners: planners, guard: guard}
}

// Catalog returns the public catalog, scoped to weddingID when given.
func (s *ChecklistService) Catalog(ctx context.Context, weddingID *uint) ([]model.Chapter, error) {
	return s.chapters.ListPublic(ctx, weddingID)
}

// ForUser returns the catalog scoped to the user's current wedding, or the
// unscoped catalog when the user has none.
func (s *ChecklistService) ForUser(ctx context.Context, userID uint) (*Checklist, error) {
	wedding, err := s.planners.LatestWedding(ctx, userID)
	if err != nil {
		return nil, err
	}
	var weddingID *uint
	if wedding != nil {
		weddingID = &wedding.ID
	}
	chapters, err := s.Catalog(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	return &Checklist{
		WeddingID: weddingID,
		Chapters:  chapters,
		Progress:  checklist.Summarize(chapters),
	}, nil
}

// UpdateStatus records a status change of a task for a wedding the user
// plans.
func (s *ChecklistService) UpdateStatus(ctx context.Context, userID, weddingID, taskID uint, in StatusUpdate) (*model.WeddingTask, error) {
	if weddingID == 0 || taskID == 0 {
		return nil, fmt.Errorf("%w: invalid id", ErrBadArguments)
	}
	if err := s.guard.Authorize(ctx, userID, weddingID); err != nil {
		return nil, err
	}
	status, err := model.ParseTaskStatus(string(in.Status))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid status", ErrBadArguments)
	}

	task, err := s.chapters.FindTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task", ErrNotFound)
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	return s.weddingTasks.Upsert(ctx, weddingID, task, repository.WeddingTaskChange{
		Status:      status,
		Deadline:    in.Deadline,
		SetDeadline: in.SetDeadline,
	})
}

// BoardUpdater adapts UpdateStatus for a checklist.Board acting on behalf of
// one user. Deadlines are left untouched.
func (s *ChecklistService) BoardUpdater(userID uint) checklist.Updater {
	return boardUpdater{svc: s, userID: userID}
}

type boardUpdater struct {
	svc    *ChecklistService
	userID uint
}

func (u boardUpdater) UpdateStatus(ctx context.Context, weddingID, taskID uint, status model.TaskStatus) error {
	_, err := u.svc.UpdateStatus(ctx, u.userID, weddingID, taskID, StatusUpdate{Status: status})
	return err
}
