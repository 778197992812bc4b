package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"plansey/internal/model"
	"plansey/internal/repository"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var aliasPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// WeddingInput holds the editable fields of a wedding. Empty strings and nil
// pointers mean "not set".
type WeddingInput struct {
	WeddingDate    *time.Time
	Zipcode        string
	Location       string
	EstimateBudget *float64
	Alias          string
}

// WeddingService creates and edits weddings on behalf of planners.
type WeddingService struct {
	weddings *repository.WeddingRepository
	planners *repository.PlannerRepository
	guard    *OwnershipGuard
}

func NewWeddingService(weddings *repository.WeddingRepository, planners *repository.PlannerRepository, guard *OwnershipGuard) *WeddingService {
	return &WeddingService{weddings: weddings, planners: planners, guard: guard}
}

// Create opens a wedding and links the user's planner record to it.
func (s *WeddingService) Create(ctx context.Context, userID uint, in WeddingInput) (*model.Wedding, error) {
	planner, err := s.planners.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: only planners can create weddings", ErrForbidden)
		}
		return nil, fmt.Errorf("find planner: %w", err)
	}

	wedding := &model.Wedding{CreatedBy: userID}
	if err := s.apply(ctx, wedding, in); err != nil {
		return nil, err
	}

	code, err := newInvitationCode()
	if err != nil {
		return nil, err
	}
	wedding.Code = code

	if err := s.weddings.CreateForPlanner(ctx, wedding, planner.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: alias is already taken", ErrAlreadyExists)
		}
		return nil, err
	}
	return wedding, nil
}

// Current returns the user's most recently linked wedding, nil if none.
func (s *WeddingService) Current(ctx context.Context, userID uint) (*model.Wedding, error) {
	return s.planners.LatestWedding(ctx, userID)
}

// Get returns a wedding the user plans.
func (s *WeddingService) Get(ctx context.Context, userID, weddingID uint) (*model.Wedding, error) {
	if weddingID == 0 {
		return nil, fmt.Errorf("%w: invalid id", ErrBadArguments)
	}
	if err := s.guard.Authorize(ctx, userID, weddingID); err != nil {
		return nil, err
	}
	wedding, err := s.weddings.FindByID(ctx, weddingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: wedding", ErrNotFound)
		}
		return nil, fmt.Errorf("find wedding: %w", err)
	}
	return wedding, nil
}

// Update replaces every editable field; fields missing from in are cleared.
func (s *WeddingService) Update(ctx context.Context, userID, weddingID uint, in WeddingInput) (*model.Wedding, error) {
	wedding, err := s.Get(ctx, userID, weddingID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, wedding, in); err != nil {
		return nil, err
	}
	if err := s.weddings.Update(ctx, wedding); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: alias is already taken", ErrAlreadyExists)
		}
		return nil, err
	}
	return wedding, nil
}

func (s *WeddingService) apply(ctx context.Context, wedding *model.Wedding, in WeddingInput) error {
	if in.EstimateBudget != nil && *in.EstimateBudget < 0 {
		return fmt.Errorf("%w: budget must not be negative", ErrBadArguments)
	}

	alias := strings.ToLower(strings.TrimSpace(in.Alias))
	if alias != "" {
		if !aliasPattern.MatchString(alias) || strings.Contains(alias, "--") {
			return fmt.Errorf("%w: alias must be 3-64 lowercase letters, digits or single hyphens", ErrBadArguments)
		}
		taken, err := s.weddings.AliasTaken(ctx, alias, wedding.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: alias is already taken", ErrAlreadyExists)
		}
	}

	wedding.WeddingDate = in.WeddingDate
	wedding.Zipcode = optional(in.Zipcode)
	wedding.Location = optional(in.Location)
	wedding.EstimateBudget = in.EstimateBudget
	wedding.Alias = optional(alias)
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func newInvitationCode() (string, error) {
	var sb strings.Builder
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
