package model

import "time"

// Role is the account kind picked at registration.
type Role string

const (
	RolePlanner     Role = "planner"
	RoleVendor      Role = "vendor"
	RoleStoryteller Role = "storyteller"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePlanner, RoleVendor, RoleStoryteller:
		return true
	default:
		return false
	}
}

// User stores credentials and account metadata.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;not null"`
	PasswordHash   string `gorm:"not null"`
	FirstName      string
	LastName       *string
	DefaultAccount Role   `gorm:"type:varchar(16)"`
	IsActive       bool   `gorm:"not null"`
	IsFirstLogin   bool   `gorm:"not null"`
	TelegramID     *int64 `gorm:"uniqueIndex"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Planner     *Planner     `gorm:"foreignKey:UserID"`
	Vendor      *Vendor      `gorm:"foreignKey:UserID"`
	Storyteller *Storyteller `gorm:"foreignKey:UserID"`
}

// DisplayName returns "First Last" or the email when no name is known.
func (u User) DisplayName() string {
	if u.FirstName == "" {
		return u.Email
	}
	if u.LastName == nil || *u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + *u.LastName
}

// Planner is the role record of a person planning a wedding.
type Planner struct {
	ID              uint `gorm:"primaryKey"`
	UserID          uint `gorm:"uniqueIndex;not null"`
	FirstName       string
	LastName        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	WeddingPlanners []WeddingPlanner `gorm:"foreignKey:PlannerID"`
}

// Vendor is the role record of a service provider.
type Vendor struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex;not null"`
	Name      string
	Email     string
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Storyteller is the role record of a wedding reporter.
type Storyteller struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex;not null"`
	FirstName string
	LastName  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
