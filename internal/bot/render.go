package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"plansey/internal/checklist"
	"plansey/internal/model"
)

const (
	cbChapterPrefix = "chapter:"
	cbTaskPrefix    = "task:"
	cbChapters      = "chapters"
)

const (
	iconNew        = "⬜"
	iconInprogress = "🔄"
	iconDone       = "✅"
)

func statusIcon(st model.TaskStatus) string {
	switch st {
	case model.StatusDone:
		return iconDone
	case model.StatusInprogress:
		return iconInprogress
	default:
		return iconNew
	}
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.Join(strings.Fields(title), " ")
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func parseID(data, prefix string) (uint, error) {
	raw := strings.TrimPrefix(data, prefix)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func taskIDs(chapter model.Chapter) []uint {
	ids := make([]uint, 0, len(chapter.Tasks))
	for _, task := range chapter.Tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

func progressLine(p checklist.Progress) string {
	return fmt.Sprintf("%d/%d · %d%%", p.Done, p.Total, p.Percent)
}

func chapterListText(total checklist.Progress) string {
	return fmt.Sprintf("📋 <b>Wedding checklist</b>\nDone: %s\n\nPick a chapter:", progressLine(total))
}

func chapterListKeyboard(chapters []model.Chapter, board *checklist.Board) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(chapters))
	for _, ch := range chapters {
		p := board.ProgressOf(taskIDs(ch))
		label := fmt.Sprintf("%s · %d/%d", shortTitle(ch.Name, 28), p.Done, p.Total)
		if p.Total > 0 && p.Done == p.Total {
			label = iconDone + " " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbChapterPrefix, ch.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func chapterText(chapter model.Chapter, p checklist.Progress) string {
	return fmt.Sprintf("📂 <b>%s</b>\nDone: %s\n\nTap a task to move it forward:\n%s new → %s in progress → %s done",
		escape(chapter.Name), progressLine(p), iconNew, iconInprogress, iconDone)
}

// chapterKeyboard renders one button per task with the status reported by
// status.
func chapterKeyboard(chapter model.Chapter, status func(taskID uint) model.TaskStatus) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(chapter.Tasks)+1)
	for _, task := range chapter.Tasks {
		label := fmt.Sprintf("%s %s", statusIcon(status(task.ID)), shortTitle(task.Name, 32))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbTaskPrefix, task.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Chapters", cbChapters),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func progressText(chapters []model.Chapter, total checklist.Progress) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 <b>Progress</b>: %s\n", progressLine(total)))
	for _, ch := range chapters {
		p := checklist.SummarizeChapter(ch)
		icon := "•"
		if p.Total > 0 && p.Done == p.Total {
			icon = iconDone
		}
		sb.WriteString(fmt.Sprintf("%s %s — %d/%d\n", icon, escape(ch.Name), p.Done, p.Total))
	}
	return strings.TrimSpace(sb.String())
}

func findChapter(chapters []model.Chapter, id uint) (model.Chapter, bool) {
	for _, ch := range chapters {
		if ch.ID == id {
			return ch, true
		}
	}
	return model.Chapter{}, false
}

func chapterOfTask(chapters []model.Chapter, taskID uint) (model.Chapter, bool) {
	for _, ch := range chapters {
		for _, task := range ch.Tasks {
			if task.ID == taskID {
				return ch, true
			}
		}
	}
	return model.Chapter{}, false
}
