package model

import "time"

// Wedding is the planning entity shared by its linked planners.
type Wedding struct {
	ID             uint `gorm:"primaryKey"`
	WeddingDate    *time.Time
	Zipcode        *string
	Location       *string
	EstimateBudget *float64
	Alias          *string `gorm:"uniqueIndex"`
	Code           string  `gorm:"size:6;not null"`
	CreatedBy      uint    `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Planners []WeddingPlanner `gorm:"foreignKey:WeddingID"`
}

// WeddingPlanner links a planner to a wedding.
type WeddingPlanner struct {
	ID        uint `gorm:"primaryKey"`
	WeddingID uint `gorm:"uniqueIndex:idx_wedding_planner;not null"`
	PlannerID uint `gorm:"uniqueIndex:idx_wedding_planner;index;not null"`
	CreatedAt time.Time

	Wedding *Wedding `gorm:"foreignKey:WeddingID"`
	Planner *Planner `gorm:"foreignKey:PlannerID"`
}
