package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plansey/internal/model"
)

func TestWeddingSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "anna@example.com", model.RolePlanner)
	wedding, err := env.weddings.Create(ctx, user.ID, WeddingInput{WeddingDate: datePtr(2026, 10, 25)})
	require.NoError(t, err)

	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	set := func(taskID uint, status model.TaskStatus, deadline *time.Time) {
		_, err := env.checklists.UpdateStatus(ctx, user.ID, wedding.ID, taskID, StatusUpdate{
			Status: status, Deadline: deadline, SetDeadline: true,
		})
		require.NoError(t, err)
	}
	set(1, model.StatusNew, datePtr(2026, 10, 10))
	set(2, model.StatusInprogress, datePtr(2026, 10, 16))
	set(3, model.StatusNew, datePtr(2026, 10, 20))
	set(4, model.StatusDone, datePtr(2026, 10, 11))
	set(5, model.StatusNew, nil)

	text, ok, err := env.reminders.SummaryForUser(ctx, user.ID, now)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Contains(t, text, "10 days until the wedding")
	assert.Contains(t, text, "⚠️ Set budget")
	assert.Contains(t, text, "<b>overdue</b>")
	assert.Contains(t, text, "⏳ Pick date <i>(in progress)</i>")
	assert.Contains(t, text, "🟢 Book photographer")
	assert.Contains(t, text, "5 days left")
	assert.NotContains(t, text, "Book DJ")
	assert.NotContains(t, text, "Order flowers")
	assert.Less(t, strings.Index(text, "Set budget"), strings.Index(text, "Pick date"))
}

func TestSummaryForUserWithoutWedding(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "anna@example.com", model.RolePlanner)

	_, ok, err := env.reminders.SummaryForUser(context.Background(), user.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFormatCountdown(t *testing.T) {
	now := time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC)
	assert.Contains(t, formatCountdown(*datePtr(2026, 10, 16), now), "tomorrow")
	assert.Contains(t, formatCountdown(*datePtr(2026, 10, 15), now), "today")
	assert.Contains(t, formatCountdown(*datePtr(2026, 9, 1), now), "Married since 2026-09-01")
}
