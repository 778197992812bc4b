// Package checklist derives per-task status and progress from the shared
// catalog and drives the optimistic status toggle used by interactive
// clients.
package checklist

import (
	"math"

	"plansey/internal/model"
)

// Progress counts done tasks against all visible tasks.
type Progress struct {
	Done    int
	Total   int
	Percent int
}

// NewProgress rounds done/total to the nearest percent; zero tasks is 0%.
func NewProgress(done, total int) Progress {
	p := Progress{Done: done, Total: total}
	if total > 0 {
		p.Percent = int(math.Round(float64(done) * 100 / float64(total)))
	}
	return p
}

// TaskStatus is the status of a catalog task for the wedding its
// WeddingTasks were loaded for, New when none was recorded.
func TaskStatus(task model.Task) model.TaskStatus {
	if len(task.WeddingTasks) > 0 && task.WeddingTasks[0].Status.Valid() {
		return task.WeddingTasks[0].Status
	}
	return model.StatusNew
}

// Summarize computes progress over every task of the given chapters.
func Summarize(chapters []model.Chapter) Progress {
	var done, total int
	for _, ch := range chapters {
		for _, task := range ch.Tasks {
			total++
			if TaskStatus(task) == model.StatusDone {
				done++
			}
		}
	}
	return NewProgress(done, total)
}

// SummarizeChapter computes progress over one chapter.
func SummarizeChapter(chapter model.Chapter) Progress {
	return Summarize([]model.Chapter{chapter})
}
