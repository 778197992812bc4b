package checklist

import (
	"context"
	"errors"
	"sync"

	"plansey/internal/model"
)

var (
	ErrUnknownTask = errors.New("task is not on the board")
	ErrTaskBusy    = errors.New("task update already in flight")
)

// Updater persists a status change for one task of a wedding.
type Updater interface {
	UpdateStatus(ctx context.Context, weddingID, taskID uint, status model.TaskStatus) error
}

// Board holds one client's view of a wedding checklist. Toggles are applied
// locally before the Updater confirms them and rolled back when it fails.
// Toggles of different tasks run independently; a task with a toggle in
// flight rejects further toggles until it resolves.
type Board struct {
	weddingID uint
	updater   Updater

	mu       sync.Mutex
	statuses map[uint]model.TaskStatus
	inflight map[uint]bool
}

// NewBoard snapshots the derived status of every task in chapters.
func NewBoard(weddingID uint, chapters []model.Chapter, updater Updater) *Board {
	b := &Board{
		weddingID: weddingID,
		updater:   updater,
		statuses:  make(map[uint]model.TaskStatus),
		inflight:  make(map[uint]bool),
	}
	for _, ch := range chapters {
		for _, task := range ch.Tasks {
			b.statuses[task.ID] = TaskStatus(task)
		}
	}
	return b
}

func (b *Board) WeddingID() uint {
	return b.weddingID
}

// Status returns the displayed status of a task.
func (b *Board) Status(taskID uint) (model.TaskStatus, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.statuses[taskID]
	return st, ok
}

// Busy reports whether a toggle of the task is awaiting confirmation.
func (b *Board) Busy(taskID uint) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inflight[taskID]
}

// Pending is a toggle that has been shown on the board but not yet
// persisted.
type Pending struct {
	TaskID uint
	Prev   model.TaskStatus
	Next   model.TaskStatus
}

// Begin advances the displayed status of a task one step along the cycle
// and marks it in flight. It fails with ErrTaskBusy while an earlier toggle
// of the same task is unresolved. Every successful Begin must be followed by
// Finish.
func (b *Board) Begin(taskID uint) (Pending, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	current, ok := b.statuses[taskID]
	if !ok {
		return Pending{}, ErrUnknownTask
	}
	if b.inflight[taskID] {
		return Pending{}, ErrTaskBusy
	}
	next := current.Next()
	b.statuses[taskID] = next
	b.inflight[taskID] = true
	return Pending{TaskID: taskID, Prev: current, Next: next}, nil
}

// Finish persists a pending toggle. On failure the previous status is
// restored and returned with the error.
func (b *Board) Finish(ctx context.Context, p Pending) (model.TaskStatus, error) {
	err := b.updater.UpdateStatus(ctx, b.weddingID, p.TaskID, p.Next)

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inflight, p.TaskID)
	if err != nil {
		b.statuses[p.TaskID] = p.Prev
		return p.Prev, err
	}
	return p.Next, nil
}

// Toggle is Begin followed by Finish.
func (b *Board) Toggle(ctx context.Context, taskID uint) (model.TaskStatus, error) {
	p, err := b.Begin(taskID)
	if err != nil {
		if errors.Is(err, ErrTaskBusy) {
			st, _ := b.Status(taskID)
			return st, err
		}
		return "", err
	}
	return b.Finish(ctx, p)
}

// Progress computes done/total over the displayed statuses.
func (b *Board) Progress() Progress {
	b.mu.Lock()
	defer b.mu.Unlock()
	done := 0
	for _, st := range b.statuses {
		if st == model.StatusDone {
			done++
		}
	}
	return NewProgress(done, len(b.statuses))
}

// ProgressOf computes done/total over the displayed statuses of the given
// tasks, skipping tasks that are not on the board.
func (b *Board) ProgressOf(taskIDs []uint) Progress {
	b.mu.Lock()
	defer b.mu.Unlock()
	var done, total int
	for _, id := range taskIDs {
		st, ok := b.statuses[id]
		if !ok {
			continue
		}
		total++
		if st == model.StatusDone {
			done++
		}
	}
	return NewProgress(done, total)
}
