package service

import (
	"context"

	"plansey/internal/repository"
)

// OwnershipGuard decides whether a user may touch a wedding. Unlinked and
// missing weddings are both reported as ErrForbidden.
type OwnershipGuard struct {
	planners *repository.PlannerRepository
}

func NewOwnershipGuard(planners *repository.PlannerRepository) *OwnershipGuard {
	return &OwnershipGuard{planners: planners}
}

func (g *OwnershipGuard) Authorize(ctx context.Context, userID, weddingID uint) error {
	linked, err := g.planners.IsLinked(ctx, userID, weddingID)
	if err != nil {
		return err
	}
	if !linked {
		return ErrForbidden
	}
	return nil
}
