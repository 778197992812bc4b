package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"plansey/internal/checklist"
	"plansey/internal/model"
	"plansey/internal/service"
)

const dateLayout = "2006-01-02"

type RegisterIn struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type LoginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type WeddingIn struct {
	WeddingDate    *string `json:"weddingDate"`
	Zipcode        string  `json:"zipcode"`
	Location       string  `json:"location"`
	EstimateBudget Budget  `json:"estimateBudget"`
	Alias          string  `json:"alias"`
}

func (in WeddingIn) toInput() (service.WeddingInput, error) {
	out := service.WeddingInput{
		Zipcode:        in.Zipcode,
		Location:       in.Location,
		EstimateBudget: in.EstimateBudget.Value,
		Alias:          in.Alias,
	}
	if in.WeddingDate != nil && strings.TrimSpace(*in.WeddingDate) != "" {
		d, err := parseDate(*in.WeddingDate)
		if err != nil {
			return out, err
		}
		out.WeddingDate = &d
	}
	return out, nil
}

var errInvalidBudget = errors.New("invalid budget")

// Budget accepts a JSON number or a numeric string. null and "" leave it
// unset.
type Budget struct {
	Value *float64
}

func (b *Budget) UnmarshalJSON(data []byte) error {
	b.Value = nil
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errInvalidBudget
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return errInvalidBudget
	}
	b.Value = &v
	return nil
}

type TaskStatusIn struct {
	Status   string       `json:"status"`
	Deadline OptionalDate `json:"deadline"`
}

// OptionalDate tells an absent field apart from an explicit null. Set is
// true whenever the field was present; Value is nil for null or "".
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

func (d *OptionalDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	d.Value = nil
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("deadline must be a date string")
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Value = &t
	return nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and returns UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

type UserOut struct {
	ID             uint       `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName"`
	LastName       *string    `json:"lastName"`
	DefaultAccount model.Role `json:"defaultAccount"`
	IsFirstLogin   bool       `json:"isFirstLogin"`
	TelegramLinked bool       `json:"telegramLinked"`
}

func toUserOut(u *model.User) UserOut {
	return UserOut{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		DefaultAccount: u.DefaultAccount,
		IsFirstLogin:   u.IsFirstLogin,
		TelegramLinked: u.TelegramID != nil,
	}
}

type LoginOut struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserOut   `json:"user"`
}

type WeddingOut struct {
	ID             uint     `json:"id"`
	WeddingDate    *string  `json:"weddingDate"`
	Zipcode        *string  `json:"zipcode"`
	Location       *string  `json:"location"`
	EstimateBudget *float64 `json:"estimateBudget"`
	Alias          *string  `json:"alias"`
	Code           string   `json:"code"`
}

func toWeddingOut(w *model.Wedding) *WeddingOut {
	if w == nil {
		return nil
	}
	return &WeddingOut{
		ID:             w.ID,
		WeddingDate:    formatDate(w.WeddingDate),
		Zipcode:        w.Zipcode,
		Location:       w.Location,
		EstimateBudget: w.EstimateBudget,
		Alias:          w.Alias,
		Code:           w.Code,
	}
}

type ProgressOut struct {
	Done    int `json:"done"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

func toProgressOut(p checklist.Progress) ProgressOut {
	return ProgressOut{Done: p.Done, Total: p.Total, Percent: p.Percent}
}

type WeddingTaskOut struct {
	ID        uint             `json:"id"`
	WeddingID uint             `json:"weddingId"`
	TaskID    uint             `json:"taskId"`
	ChapterID uint             `json:"chapterId"`
	Status    model.TaskStatus `json:"status"`
	Deadline  *string          `json:"deadline"`
	Order     int              `json:"order"`
}

func toWeddingTaskOut(wt *model.WeddingTask) *WeddingTaskOut {
	if wt == nil {
		return nil
	}
	return &WeddingTaskOut{
		ID:        wt.ID,
		WeddingID: wt.WeddingID,
		TaskID:    wt.TaskID,
		ChapterID: wt.ChapterID,
		Status:    wt.Status,
		Deadline:  formatDate(wt.Deadline),
		Order:     wt.SortOrder,
	}
}

type TaskOut struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Order       int              `json:"order"`
	Status      model.TaskStatus `json:"status"`
	WeddingTask *WeddingTaskOut  `json:"weddingTask"`
}

type ChapterOut struct {
	ID    uint      `json:"id"`
	Name  string    `json:"name"`
	Order int       `json:"order"`
	Tasks []TaskOut `json:"tasks"`
}

type ChecklistOut struct {
	WeddingID *uint        `json:"weddingId"`
	Chapters  []ChapterOut `json:"chapters"`
	Progress  ProgressOut  `json:"progress"`
}

func toChecklistOut(cl *service.Checklist) ChecklistOut {
	out := ChecklistOut{
		WeddingID: cl.WeddingID,
		Chapters:  make([]ChapterOut, 0, len(cl.Chapters)),
		Progress:  toProgressOut(cl.Progress),
	}
	for _, ch := range cl.Chapters {
		c := ChapterOut{ID: ch.ID, Name: ch.Name, Order: ch.SortOrder, Tasks: make([]TaskOut, 0, len(ch.Tasks))}
		for _, task := range ch.Tasks {
			t := TaskOut{ID: task.ID, Name: task.Name, Order: task.SortOrder, Status: checklist.TaskStatus(task)}
			if len(task.WeddingTasks) > 0 {
				t.WeddingTask = toWeddingTaskOut(&task.WeddingTasks[0])
			}
			c.Tasks = append(c.Tasks, t)
		}
		out.Chapters = append(out.Chapters, c)
	}
	return out
}

type QuickLinkOut struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Path        string `json:"path"`
}

func toLinksOut(links []service.QuickLink) []QuickLinkOut {
	out := make([]QuickLinkOut, 0, len(links))
	for _, l := range links {
		out = append(out, QuickLinkOut{Title: l.Title, Description: l.Description, Path: l.Path})
	}
	return out
}

type PlannerDashboardOut struct {
	IsFirstLogin bool           `json:"isFirstLogin"`
	Wedding      *WeddingOut    `json:"wedding"`
	Progress     ProgressOut    `json:"progress"`
	Links        []QuickLinkOut `json:"links"`
}

type VendorDashboardOut struct {
	Name  string         `json:"name"`
	Type  string         `json:"type"`
	Links []QuickLinkOut `json:"links"`
}

type StorytellerDashboardOut struct {
	Name  string         `json:"name"`
	Links []QuickLinkOut `json:"links"`
}

type DashboardOut struct {
	Role        model.Role               `json:"role"`
	FirstName   string                   `json:"firstName"`
	Planner     *PlannerDashboardOut     `json:"planner,omitempty"`
	Vendor      *VendorDashboardOut      `json:"vendor,omitempty"`
	Storyteller *StorytellerDashboardOut `json:"storyteller,omitempty"`
}

func toDashboardOut(d *service.Dashboard) DashboardOut {
	out := DashboardOut{Role: d.Role, FirstName: d.FirstName}
	switch {
	case d.Planner != nil:
		out.Planner = &PlannerDashboardOut{
			IsFirstLogin: d.Planner.IsFirstLogin,
			Wedding:      toWeddingOut(d.Planner.Wedding),
			Progress:     toProgressOut(d.Planner.Progress),
			Links:        toLinksOut(d.Planner.Links),
		}
	case d.Vendor != nil:
		out.Vendor = &VendorDashboardOut{Name: d.Vendor.Name, Type: d.Vendor.Type, Links: toLinksOut(d.Vendor.Links)}
	case d.Storyteller != nil:
		out.Storyteller = &StorytellerDashboardOut{Name: d.Storyteller.Name, Links: toLinksOut(d.Storyteller.Links)}
	}
	return out
}
