package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plansey/internal/model"
)

// SeedChapter is one chapter of the built-in checklist.
type SeedChapter struct {
	Name  string
	Tasks []string
}

// DefaultCatalog is the checklist every wedding starts from.
var DefaultCatalog = []SeedChapter{
	{Name: "First steps", Tasks: []string{
		"Set the wedding budget",
		"Pick the wedding date",
		"Draft the guest list",
		"Decide on style and theme",
		"Contact the registry office",
	}},
	{Name: "Location & Catering", Tasks: []string{
		"Visit and book the venue",
		"Request caterers and plan the menu",
		"Plan the wedding cake",
		"Organise drinks and bar",
		"Create the seating plan",
	}},
	{Name: "Vendors", Tasks: []string{
		"Book the photographer",
		"Book the videographer",
		"Book a DJ or band",
		"Plan florist and floral decoration",
		"Contact the officiant",
		"Book hair and make-up artist",
	}},
	{Name: "Attire & Rings", Tasks: []string{
		"Choose and buy the wedding dress",
		"Plan the groom's outfit",
		"Choose and order the rings",
		"Buy shoes and accessories",
		"Plan outfits for the witnesses",
	}},
	{Name: "Invitations & Stationery", Tasks: []string{
		"Send save-the-date cards",
		"Design and send invitations",
		"Design menu cards",
		"Create place cards",
		"Prepare thank-you cards",
	}},
	{Name: "Honeymoon & Travel", Tasks: []string{
		"Choose the honeymoon destination",
		"Book flights and hotel",
		"Check travel documents",
		"Take out travel insurance",
	}},
	{Name: "Final preparations", Tasks: []string{
		"Write the wedding day schedule",
		"Finalise guest list and RSVPs",
		"Reconfirm all vendors",
		"Lay out rings and documents",
		"Pack the emergency kit",
	}},
}

// SeedCatalog upserts chapters and tasks by position-derived ids, so running
// it again renames and reorders in place instead of duplicating rows.
func SeedCatalog(ctx context.Context, db *gorm.DB, catalog []SeedChapter) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskID uint
		for ci, ch := range catalog {
			chapter := model.Chapter{
				ID:        uint(ci + 1),
				Name:      ch.Name,
				SortOrder: ci + 1,
				IsPublic:  true,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "sort_order", "updated_at"}),
			}).Create(&chapter).Error; err != nil {
				return fmt.Errorf("seed chapter %q: %w", ch.Name, err)
			}

			for ti, name := range ch.Tasks {
				taskID++
				task := model.Task{
					ID:        taskID,
					ChapterID: chapter.ID,
					Name:      name,
					SortOrder: ti + 1,
					IsPublic:  true,
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{"name", "sort_order", "updated_at"}),
				}).Create(&task).Error; err != nil {
					return fmt.Errorf("seed task %q: %w", name, err)
				}
			}
		}
		return nil
	})
}
