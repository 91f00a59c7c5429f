package service

import (
	"context"
	"testing"
	"time"

	"VolunteerHub/internal/model"
)

func testShift(id, publicID int64, start, end time.Time) *model.Shift {
	shift := &model.Shift{
		PublicID: publicID,
		RoleID:   1,
		StartsAt: start,
		EndsAt:   end,
	}
	shift.ID = id
	return shift
}

func TestHasExistingSignup(t *testing.T) {
	ctx := context.Background()
	store := newFakeSignupStore()
	checker := NewConflictChecker(store)

	if err := store.Insert(ctx, &model.Signup{PublicID: 100, UserID: 1, ShiftID: 10}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	exists, err := checker.HasExistingSignup(ctx, 1, 10)
	if err != nil {
		t.Fatalf("HasExistingSignup() error = %v", err)
	}
	if !exists {
		t.Error("HasExistingSignup() = false for an existing pair, want true")
	}

	exists, err = checker.HasExistingSignup(ctx, 1, 11)
	if err != nil {
		t.Fatalf("HasExistingSignup() error = %v", err)
	}
	if exists {
		t.Error("HasExistingSignup() = true for a missing pair, want false")
	}
}

func TestFindTimeConflict(t *testing.T) {
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	at := func(hour int) time.Time { return day.Add(time.Duration(hour) * time.Hour) }

	morning := testShift(1, 101, at(9), at(12))
	store := newFakeSignupStore(morning)
	checker := NewConflictChecker(store)

	ctx := context.Background()
	if err := store.Insert(ctx, &model.Signup{PublicID: 100, UserID: 1, ShiftID: morning.ID}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	tests := []struct {
		name      string
		candidate *model.Shift
		wantShift int64 // public ID of the conflicting shift, 0 for none
	}{
		{
			name:      "overlapping candidate conflicts",
			candidate: testShift(2, 102, at(11), at(13)),
			wantShift: 101,
		},
		{
			name:      "back to back candidate is legal",
			candidate: testShift(3, 103, at(12), at(14)),
			wantShift: 0,
		},
		{
			name:      "same shift is skipped",
			candidate: morning,
			wantShift: 0,
		},
		{
			name:      "disjoint candidate is legal",
			candidate: testShift(4, 104, at(15), at(17)),
			wantShift: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflicting, err := checker.FindTimeConflict(ctx, 1, tt.candidate)
			if err != nil {
				t.Fatalf("FindTimeConflict() error = %v", err)
			}

			if tt.wantShift == 0 {
				if conflicting != nil {
					t.Errorf("FindTimeConflict() = shift %d, want none", conflicting.PublicID)
				}
				return
			}

			if conflicting == nil {
				t.Fatalf("FindTimeConflict() = nil, want shift %d", tt.wantShift)
			}
			if conflicting.PublicID != tt.wantShift {
				t.Errorf("FindTimeConflict() = shift %d, want %d", conflicting.PublicID, tt.wantShift)
			}
		})
	}
}

func TestFindTimeConflictOtherUserUnaffected(t *testing.T) {
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	morning := testShift(1, 101, day.Add(9*time.Hour), day.Add(12*time.Hour))

	store := newFakeSignupStore(morning)
	checker := NewConflictChecker(store)

	ctx := context.Background()
	if err := store.Insert(ctx, &model.Signup{PublicID: 100, UserID: 1, ShiftID: morning.ID}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	// user 2 has no signups, so the same window is free for them
	candidate := testShift(2, 102, day.Add(10*time.Hour), day.Add(11*time.Hour))
	conflicting, err := checker.FindTimeConflict(ctx, 2, candidate)
	if err != nil {
		t.Fatalf("FindTimeConflict() error = %v", err)
	}
	if conflicting != nil {
		t.Errorf("FindTimeConflict() for unrelated user = shift %d, want none", conflicting.PublicID)
	}
}
