package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"plansey/internal/checklist"
	"plansey/internal/model"
	"plansey/internal/repository"
)

// QuickLink is a dashboard shortcut.
type QuickLink struct {
	Title       string
	Description string
	Path        string
}

// Dashboard is a closed variant over the user's role: exactly one of
// Planner, Vendor and Storyteller is set, matching Role.
type Dashboard struct {
	Role        model.Role
	FirstName   string
	Planner     *PlannerDashboard
	Vendor      *VendorDashboard
	Storyteller *StorytellerDashboard
}

type PlannerDashboard struct {
	IsFirstLogin bool
	Wedding      *model.Wedding
	Progress     checklist.Progress
	Links        []QuickLink
}

type VendorDashboard struct {
	Name  string
	Type  string
	Links []QuickLink
}

type StorytellerDashboard struct {
	Name  string
	Links []QuickLink
}

var (
	plannerLinks = []QuickLink{
		{Title: "Tasks", Description: "Checklist & planning", Path: "/dashboard/tasks"},
		{Title: "Budget", Description: "Costs at a glance", Path: "/dashboard/budget"},
		{Title: "Guest list", Description: "Guests & RSVPs", Path: "/dashboard/guests"},
	}
	vendorLinks = []QuickLink{
		{Title: "Profile", Description: "Photos, prices and services", Path: "/dashboard/profile"},
		{Title: "Inquiries", Description: "Requests from couples", Path: "/dashboard/inquiries"},
	}
	storytellerLinks = []QuickLink{
		{Title: "Stories", Description: "Write and manage wedding stories", Path: "/dashboard/stories"},
	}
)

// DashboardService assembles the role specific start page.
type DashboardService struct {
	users     *repository.UserRepository
	weddings  *WeddingService
	checklist *ChecklistService
}

func NewDashboardService(users *repository.UserRepository, weddings *WeddingService, checklists *ChecklistService) *DashboardService {
	return &DashboardService{users: users, weddings: weddings, checklist: checklists}
}

func (s *DashboardService) Build(ctx context.Context, userID uint) (*Dashboard, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	role := user.DefaultAccount
	if !role.Valid() {
		role = model.RolePlanner
	}
	d := &Dashboard{Role: role, FirstName: user.FirstName}

	switch role {
	case model.RoleVendor:
		v := &VendorDashboard{Name: user.DisplayName(), Links: vendorLinks}
		if user.Vendor != nil {
			v.Name = user.Vendor.Name
			v.Type = user.Vendor.Type
		}
		d.Vendor = v
	case model.RoleStoryteller:
		d.Storyteller = &StorytellerDashboard{Name: user.DisplayName(), Links: storytellerLinks}
	default:
		cl, err := s.checklist.ForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		p := &PlannerDashboard{
			IsFirstLogin: user.IsFirstLogin,
			Progress:     cl.Progress,
			Links:        plannerLinks,
		}
		if cl.WeddingID != nil {
			if p.Wedding, err = s.weddings.Current(ctx, userID); err != nil {
				return nil, err
			}
		}
		d.Planner = p
	}
	return d, nil
}
