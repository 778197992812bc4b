package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plansey/internal/checklist"
	"plansey/internal/model"
)

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Book the DJ", shortTitle("  Book   the\nDJ ", 20))
	assert.Equal(t, "Choose th…", shortTitle("Choose the rings", 10))
	assert.Equal(t, "C", shortTitle("Choose", 1))
}

func TestParseID(t *testing.T) {
	id, err := parseID("task:12", cbTaskPrefix)
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	for _, bad := range []string{"task:", "task:0", "task:-1", "task:x"} {
		_, err := parseID(bad, cbTaskPrefix)
		assert.Error(t, err, bad)
	}
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, iconNew, statusIcon(model.StatusNew))
	assert.Equal(t, iconInprogress, statusIcon(model.StatusInprogress))
	assert.Equal(t, iconDone, statusIcon(model.StatusDone))
	assert.Equal(t, iconNew, statusIcon("bogus"))
}

func TestProgressText(t *testing.T) {
	chapters := []model.Chapter{
		{ID: 1, Name: "Rings & <Attire>", Tasks: []model.Task{
			{ID: 1, WeddingTasks: []model.WeddingTask{{Status: model.StatusDone}}},
		}},
		{ID: 2, Name: "Vendors", Tasks: []model.Task{{ID: 2}, {ID: 3}}},
	}
	text := progressText(chapters, checklist.Summarize(chapters))

	assert.Contains(t, text, "1/3 · 33%")
	assert.Contains(t, text, "✅ Rings &amp; &lt;Attire&gt; — 1/1")
	assert.Contains(t, text, "• Vendors — 0/2")
}

func TestChapterKeyboardUsesStatusFunc(t *testing.T) {
	chapter := model.Chapter{ID: 1, Name: "First", Tasks: []model.Task{{ID: 5, Name: "Pick date"}}}
	kb := chapterKeyboard(chapter, func(uint) model.TaskStatus { return model.StatusInprogress })

	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, iconInprogress+" Pick date", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "task:5", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, cbChapters, *kb.InlineKeyboard[1][0].CallbackData)
}
