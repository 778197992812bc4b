package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"plansey/internal/model"
	"plansey/internal/repository"
)

// ReminderService builds human-readable deadline summaries for a wedding.
type ReminderService struct {
	planners     *repository.PlannerRepository
	weddingTasks *repository.WeddingTaskRepository
}

func NewReminderService(planners *repository.PlannerRepository, weddingTasks *repository.WeddingTaskRepository) *ReminderService {
	return &ReminderService{planners: planners, weddingTasks: weddingTasks}
}

// SummaryForUser renders the summary of the user's current wedding. It
// returns false when the user plans no wedding.
func (s *ReminderService) SummaryForUser(ctx context.Context, userID uint, now time.Time) (string, bool, error) {
	wedding, err := s.planners.LatestWedding(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if wedding == nil {
		return "", false, nil
	}
	text, err := s.WeddingSummary(ctx, *wedding, now)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (s *ReminderService) WeddingSummary(ctx context.Context, wedding model.Wedding, now time.Time) (string, error) {
	tasks, err := s.weddingTasks.ListOpenWithDeadline(ctx, wedding.ID)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Wedding checklist</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n", now.Format("2006-01-02")))
	if wedding.WeddingDate != nil {
		builder.WriteString(formatCountdown(*wedding.WeddingDate, now))
	}

	builder.WriteString("\n⏰ <b>Upcoming deadlines</b>\n")
	if len(tasks) == 0 {
		builder.WriteString("— no open tasks with a deadline\n")
	} else {
		for _, task := range tasks {
			builder.WriteString(formatDeadline(task, now))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatCountdown(date time.Time, now time.Time) string {
	days := calendarDays(now, date)
	switch {
	case days > 1:
		return fmt.Sprintf("💍 %d days until the wedding (%s)\n", days, date.Format("2006-01-02"))
	case days == 1:
		return "💍 The wedding is tomorrow!\n"
	case days == 0:
		return "💍 The wedding is today!\n"
	default:
		return fmt.Sprintf("💍 Married since %s\n", date.Format("2006-01-02"))
	}
}

func formatDeadline(task model.WeddingTask, now time.Time) string {
	var sb strings.Builder

	d := task.Deadline.In(now.Location())
	days := calendarDays(now, d)

	icon := "🟢"
	switch {
	case days < 0:
		icon = "⚠️"
	case d.Sub(now) <= 48*time.Hour:
		icon = "⏳"
	}

	name := fmt.Sprintf("Task #%d", task.TaskID)
	if task.Task != nil {
		name = strings.TrimSpace(task.Task.Name)
	}
	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(name)))
	if task.Status == model.StatusInprogress {
		sb.WriteString(" <i>(in progress)</i>")
	}

	if days < 0 {
		sb.WriteString(fmt.Sprintf("\n   ⏰ due %s — <b>overdue</b>", d.Format("2006-01-02")))
	} else {
		sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · %d days left", d.Format("2006-01-02"), days))
	}

	sb.WriteByte('\n')
	return sb.String()
}

// calendarDays counts whole calendar days from now to t in now's location.
func calendarDays(now, t time.Time) int {
	y, m, d := now.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = t.In(now.Location()).Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
