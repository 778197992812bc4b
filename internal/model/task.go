package model

import (
	"fmt"
	"time"
)

// Task is a template checklist item of a chapter.
type Task struct {
	ID           uint   `gorm:"primaryKey"`
	ChapterID    uint   `gorm:"index;not null"`
	Name         string `gorm:"not null"`
	SortOrder    int    `gorm:"not null"`
	IsPublic     bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	WeddingTasks []WeddingTask `gorm:"foreignKey:TaskID"`
}

// TaskStatus is the completion state of a task within one wedding.
type TaskStatus string

const (
	StatusNew        TaskStatus = "New"
	StatusInprogress TaskStatus = "Inprogress"
	StatusDone       TaskStatus = "Done"
)

// Valid reports whether s is one of the three known states.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInprogress, StatusDone:
		return true
	default:
		return false
	}
}

// Next advances one step along New -> Inprogress -> Done -> New.
// Unknown values restart the cycle.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case StatusNew:
		return StatusInprogress
	case StatusInprogress:
		return StatusDone
	default:
		return StatusNew
	}
}

// ParseTaskStatus accepts only the exact canonical names.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	st := TaskStatus(raw)
	if !st.Valid() {
		return "", fmt.Errorf("unknown task status %q", raw)
	}
	return st, nil
}

// WeddingTask is the state of one template task within one wedding.
// At most one row exists per (WeddingID, TaskID).
type WeddingTask struct {
	ID        uint       `gorm:"primaryKey"`
	WeddingID uint       `gorm:"uniqueIndex:idx_wedding_task;not null"`
	TaskID    uint       `gorm:"uniqueIndex:idx_wedding_task;not null"`
	ChapterID uint       `gorm:"index;not null"`
	Status    TaskStatus `gorm:"type:varchar(16);not null"`
	Deadline  *time.Time
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time

	Task *Task `gorm:"foreignKey:TaskID"`
}
