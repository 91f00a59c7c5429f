package service

import (
	"context"
	"fmt"

	"VolunteerHub/internal/model"
	"VolunteerHub/internal/repository"
)

// ConflictChecker decides whether a volunteer may be added to a shift.
type ConflictChecker struct {
	signups repository.SignupStore
}

func NewConflictChecker(signups repository.SignupStore) *ConflictChecker {
	return &ConflictChecker{signups: signups}
}

// HasExistingSignup reports whether the exact (user, shift) pair is
// already taken.
func (c *ConflictChecker) HasExistingSignup(ctx context.Context, userID, shiftID int64) (bool, error) {
	signup, err := c.signups.FindByUserAndShift(ctx, userID, shiftID)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing signup: %w", err)
	}
	return signup != nil, nil
}

// FindTimeConflict returns the first of the user's signed-up shifts whose
// window overlaps the candidate, or nil when the candidate is legal.
// Windows are half-open, so a shift ending exactly when the candidate
// starts does not conflict.
func (c *ConflictChecker) FindTimeConflict(ctx context.Context, userID int64, candidate *model.Shift) (*model.Shift, error) {
	signups, err := c.signups.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups for conflict check: %w", err)
	}

	for _, signup := range signups {
		if signup.Shift == nil || signup.ShiftID == candidate.ID {
			continue
		}
		if signup.Shift.Overlaps(candidate) {
			return signup.Shift, nil
		}
	}

	return nil, nil
}
