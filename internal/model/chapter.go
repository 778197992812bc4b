package model

import "time"

// Chapter groups checklist tasks by area (location, vendors, attire, etc.).
// Chapters are seeded once and shared by every wedding.
type Chapter struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	SortOrder int    `gorm:"index;not null"`
	IsPublic  bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Tasks     []Task `gorm:"foreignKey:ChapterID"`
}
