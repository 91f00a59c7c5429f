package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"VolunteerHub/internal/model"
	pkgerrors "VolunteerHub/pkg/errors"
	"VolunteerHub/pkg/snowflake"
)

func TestMain(m *testing.M) {
	if err := snowflake.Init(1, 0); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testUser(id, publicID int64) *model.User {
	user := &model.User{
		PublicID: publicID,
		Name:     "Test Volunteer",
		Email:    "volunteer@example.com",
		Status:   model.UserStatusActive,
	}
	user.ID = id
	return user
}

var testDay = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func hour(h int) time.Time { return testDay.Add(time.Duration(h) * time.Hour) }

func TestCreateSignup(t *testing.T) {
	ctx := context.Background()

	morning := testShift(1, 101, hour(9), hour(12))
	midday := testShift(2, 102, hour(11), hour(13))
	afternoon := testShift(3, 103, hour(12), hour(14))

	newService := func() (*SignupService, *fakeSignupStore) {
		store := newFakeSignupStore(morning, midday, afternoon)
		svc := NewSignupService(
			newFakeShiftRepo(morning, midday, afternoon),
			store,
			newFakeUserRepo(testUser(1, 1001)),
			nil,
		)
		return svc, store
	}

	t.Run("first signup succeeds", func(t *testing.T) {
		svc, _ := newService()

		signup, err := svc.Create(ctx, 1001, 101, "bring gloves")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if signup.PublicID == 0 {
			t.Error("Create() returned a signup without a public ID")
		}
		if signup.Status() != model.SignupStatusActive {
			t.Errorf("new signup status = %q, want %q", signup.Status(), model.SignupStatusActive)
		}
		if signup.Notes != "bring gloves" {
			t.Errorf("signup notes = %q, want %q", signup.Notes, "bring gloves")
		}
	})

	t.Run("duplicate signup is rejected", func(t *testing.T) {
		svc, _ := newService()

		if _, err := svc.Create(ctx, 1001, 101, ""); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		_, err := svc.Create(ctx, 1001, 101, "")
		if !errors.Is(err, pkgerrors.AlreadySignedUp) {
			t.Errorf("Create() on duplicate error = %v, want %v", err, pkgerrors.AlreadySignedUp)
		}
	})

	t.Run("overlapping signup is rejected with conflict details", func(t *testing.T) {
		svc, _ := newService()

		if _, err := svc.Create(ctx, 1001, 101, ""); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		_, err := svc.Create(ctx, 1001, 102, "")
		if !errors.Is(err, pkgerrors.ShiftConflict) {
			t.Fatalf("Create() on overlap error = %v, want %v", err, pkgerrors.ShiftConflict)
		}

		var details ConflictDetailsError
		if !errors.As(err, &details) {
			t.Fatalf("Create() on overlap error = %v, want ConflictDetailsError", err)
		}
		if details.ConflictingShiftID != 101 {
			t.Errorf("conflicting shift ID = %d, want 101", details.ConflictingShiftID)
		}
		if !details.ConflictStartsAt.Equal(hour(9)) || !details.ConflictEndsAt.Equal(hour(12)) {
			t.Errorf("conflict window = [%v, %v), want [%v, %v)",
				details.ConflictStartsAt, details.ConflictEndsAt, hour(9), hour(12))
		}
	})

	t.Run("back to back signup succeeds", func(t *testing.T) {
		svc, _ := newService()

		if _, err := svc.Create(ctx, 1001, 101, ""); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if _, err := svc.Create(ctx, 1001, 103, ""); err != nil {
			t.Errorf("Create() for back-to-back shift error = %v, want nil", err)
		}
	})

	t.Run("unknown shift", func(t *testing.T) {
		svc, _ := newService()

		_, err := svc.Create(ctx, 1001, 999, "")
		if !errors.Is(err, pkgerrors.ShiftNotFound) {
			t.Errorf("Create() error = %v, want %v", err, pkgerrors.ShiftNotFound)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newService()

		_, err := svc.Create(ctx, 9999, 101, "")
		if !errors.Is(err, pkgerrors.UserNotFound) {
			t.Errorf("Create() error = %v, want %v", err, pkgerrors.UserNotFound)
		}
	})

	t.Run("insert race maps duplicate key to already signed up", func(t *testing.T) {
		svc, store := newService()
		store.failOps["insert"] = gorm.ErrDuplicatedKey

		_, err := svc.Create(ctx, 1001, 101, "")
		if !errors.Is(err, pkgerrors.AlreadySignedUp) {
			t.Errorf("Create() error = %v, want %v", err, pkgerrors.AlreadySignedUp)
		}
	})
}

func TestCreateSignupPublishesEvent(t *testing.T) {
	ctx := context.Background()
	morning := testShift(1, 101, hour(9), hour(12))
	store := newFakeSignupStore(morning)
	publisher := &capturePublisher{}

	svc := NewSignupService(
		newFakeShiftRepo(morning),
		store,
		newFakeUserRepo(testUser(1, 1001)),
		nil,
		WithEventPublisher(publisher),
	)

	signup, err := svc.Create(ctx, 1001, 101, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(publisher.created) != 1 {
		t.Fatalf("published %d created messages, want 1", len(publisher.created))
	}
	msg := publisher.created[0]
	if msg.SignupID != signup.PublicID {
		t.Errorf("message signup ID = %d, want %d", msg.SignupID, signup.PublicID)
	}
	if msg.ShiftID != 101 {
		t.Errorf("message shift ID = %d, want 101", msg.ShiftID)
	}
	if msg.MessageID == "" {
		t.Error("message ID is empty")
	}
}

func TestCreateSignupPublishFailureDoesNotFailSignup(t *testing.T) {
	ctx := context.Background()
	morning := testShift(1, 101, hour(9), hour(12))
	publisher := &capturePublisher{err: errors.New("broker down")}

	svc := NewSignupService(
		newFakeShiftRepo(morning),
		newFakeSignupStore(morning),
		newFakeUserRepo(testUser(1, 1001)),
		nil,
		WithEventPublisher(publisher),
	)

	if _, err := svc.Create(ctx, 1001, 101, ""); err != nil {
		t.Errorf("Create() error = %v, want nil despite publish failure", err)
	}
}

func TestCreateSignupLockDegradesToUnlocked(t *testing.T) {
	ctx := context.Background()
	morning := testShift(1, 101, hour(9), hour(12))

	tests := []struct {
		name   string
		locker *stubLocker
	}{
		{name: "lock backend unavailable", locker: &stubLocker{err: errors.New("redis down")}},
		{name: "lock contended", locker: &stubLocker{acquired: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSignupService(
				newFakeShiftRepo(morning),
				newFakeSignupStore(morning),
				newFakeUserRepo(testUser(1, 1001)),
				nil,
				WithSignupLocker(tt.locker, time.Second),
			)

			if _, err := svc.Create(ctx, 1001, 101, ""); err != nil {
				t.Errorf("Create() error = %v, want nil when the lock degrades", err)
			}
			if tt.locker.unlocks != 0 {
				t.Errorf("Unlock() called %d times for a lock that was never held", tt.locker.unlocks)
			}
		})
	}
}

func TestCreateSignupReleasesLock(t *testing.T) {
	ctx := context.Background()
	morning := testShift(1, 101, hour(9), hour(12))
	locker := &stubLocker{acquired: true}

	svc := NewSignupService(
		newFakeShiftRepo(morning),
		newFakeSignupStore(morning),
		newFakeUserRepo(testUser(1, 1001)),
		nil,
		WithSignupLocker(locker, time.Second),
	)

	if _, err := svc.Create(ctx, 1001, 101, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if locker.locks != 1 || locker.unlocks != 1 {
		t.Errorf("lock/unlock calls = %d/%d, want 1/1", locker.locks, locker.unlocks)
	}
}

func TestCheckIn(t *testing.T) {
	ctx := context.Background()
	morning := testShift(1, 101, hour(9), hour(12))

	setup := func() (*SignupService, *model.Signup) {
		store := newFakeSignupStore(morning)
		svc := NewSignupService(
			newFakeShiftRepo(morning),
			store,
			newFakeUserRepo(testUser(1, 1001), testUser(2, 1002)),
			nil,
		)
		signup, err := svc.Create(ctx, 1001, 101, "")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		return svc, signup
	}

	t.Run("inside window succeeds", func(t *testing.T) {
		svc, signup := setup()

		ts := hour(9).Add(5 * time.Minute)
		updated, err := svc.CheckIn(ctx, 1001, signup.PublicID, ts)
		if err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}
		if updated.Status() != model.SignupStatusCheckedIn {
			t.Errorf("status after check-in = %q, want %q", updated.Status(), model.SignupStatusCheckedIn)
		}
		if !updated.CheckInAt.Equal(ts) {
			t.Errorf("check-in time = %v, want %v", updated.CheckInAt, ts)
		}
	})

	t.Run("exactly at shift start succeeds", func(t *testing.T) {
		svc, signup := setup()

		if _, err := svc.CheckIn(ctx, 1001, signup.PublicID, hour(9)); err != nil {
			t.Errorf("CheckIn() at shift start error = %v, want nil", err)
		}
	})

	t.Run("before shift start is rejected", func(t *testing.T) {
		svc, signup := setup()

		_, err := svc.CheckIn(ctx, 1001, signup.PublicID, hour(8))
		if !errors.Is(err, pkgerrors.CheckInOutsideWindow) {
			t.Errorf("CheckIn() error = %v, want %v", err, pkgerrors.CheckInOutsideWindow)
		}
	})

	t.Run("at shift end is rejected", func(t *testing.T) {
		svc, signup := setup()

		// the window is half-open, the end instant is outside it
		_, err := svc.CheckIn(ctx, 1001, signup.PublicID, hour(12))
		if !errors.Is(err, pkgerrors.CheckInOutsideWindow) {
			t.Errorf("CheckIn() error = %v, want %v", err, pkgerrors.CheckInOutsideWindow)
		}
	})

	t.Run("second check-in is rejected", func(t *testing.T) {
		svc, signup := setup()

		if _, err := svc.CheckIn(ctx, 1001, signup.PublicID, hour(9)); err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}

		_, err := svc.CheckIn(ctx, 1001, signup.PublicID, hour(10))
		if !errors.Is(err, pkgerrors.InvalidTransition) {
			t.Errorf("CheckIn() error = %v, want %v", err, pkgerrors.InvalidTransition)
		}
	})

	t.Run("another user's signup is not visible", func(t *testing.T) {
		svc, signup := setup()

		_, err := svc.CheckIn(ctx, 1002, signup.PublicID, hour(9))
		if !errors.Is(err, pkgerrors.SignupNotFound) {
			t.Errorf("CheckIn() error = %v, want %v", err, pkgerrors.SignupNotFound)
		}
	})

	t.Run("unknown signup", func(t *testing.T) {
		svc, _ := setup()

		_, err := svc.CheckIn(ctx, 1001, 424242, hour(9))
		if !errors.Is(err, pkgerrors.SignupNotFound) {
			t.Errorf("CheckIn() error = %v, want %v", err, pkgerrors.SignupNotFound)
		}
	})
}

func TestCheckOut(t *testing.T) {
	ctx := context.Background()
	morning := testShift(1, 101, hour(9), hour(12))

	setup := func(checkedIn bool) (*SignupService, *model.Signup) {
		store := newFakeSignupStore(morning)
		svc := NewSignupService(
			newFakeShiftRepo(morning),
			store,
			newFakeUserRepo(testUser(1, 1001)),
			nil,
		)
		signup, err := svc.Create(ctx, 1001, 101, "")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if checkedIn {
			if _, err := svc.CheckIn(ctx, 1001, signup.PublicID, hour(9)); err != nil {
				t.Fatalf("CheckIn() error = %v", err)
			}
		}
		return svc, signup
	}

	t.Run("after check-in succeeds", func(t *testing.T) {
		svc, signup := setup(true)

		ts := hour(11).Add(30 * time.Minute)
		updated, err := svc.CheckOut(ctx, 1001, signup.PublicID, ts)
		if err != nil {
			t.Fatalf("CheckOut() error = %v", err)
		}
		if updated.Status() != model.SignupStatusCheckedOut {
			t.Errorf("status after check-out = %q, want %q", updated.Status(), model.SignupStatusCheckedOut)
		}
		if got := updated.HoursWorked(); got != 2.5 {
			t.Errorf("HoursWorked() = %v, want 2.5", got)
		}
	})

	t.Run("before check-in is rejected", func(t *testing.T) {
		svc, signup := setup(true)

		_, err := svc.CheckOut(ctx, 1001, signup.PublicID, hour(8))
		if !errors.Is(err, pkgerrors.CheckOutBeforeCheckIn) {
			t.Errorf("CheckOut() error = %v, want %v", err, pkgerrors.CheckOutBeforeCheckIn)
		}
	})

	t.Run("equal to check-in is rejected", func(t *testing.T) {
		svc, signup := setup(true)

		_, err := svc.CheckOut(ctx, 1001, signup.PublicID, hour(9))
		if !errors.Is(err, pkgerrors.CheckOutBeforeCheckIn) {
			t.Errorf("CheckOut() error = %v, want %v", err, pkgerrors.CheckOutBeforeCheckIn)
		}
	})

	t.Run("without check-in is rejected", func(t *testing.T) {
		svc, signup := setup(false)

		_, err := svc.CheckOut(ctx, 1001, signup.PublicID, hour(11))
		if !errors.Is(err, pkgerrors.InvalidTransition) {
			t.Errorf("CheckOut() error = %v, want %v", err, pkgerrors.InvalidTransition)
		}
	})

	t.Run("second check-out is rejected", func(t *testing.T) {
		svc, signup := setup(true)

		if _, err := svc.CheckOut(ctx, 1001, signup.PublicID, hour(11)); err != nil {
			t.Fatalf("CheckOut() error = %v", err)
		}

		_, err := svc.CheckOut(ctx, 1001, signup.PublicID, hour(12))
		if !errors.Is(err, pkgerrors.InvalidTransition) {
			t.Errorf("CheckOut() error = %v, want %v", err, pkgerrors.InvalidTransition)
		}
	})
}

func TestAutoCheckOut(t *testing.T) {
	ctx := context.Background()

	ended := testShift(1, 101, hour(9), hour(12))
	ongoing := testShift(2, 102, hour(9), hour(18))

	setup := func(now time.Time) (*SignupService, *fakeSignupStore, *capturePublisher) {
		store := newFakeSignupStore(ended, ongoing)
		publisher := &capturePublisher{}
		svc := NewSignupService(
			newFakeShiftRepo(ended, ongoing),
			store,
			newFakeUserRepo(testUser(1, 1001)),
			nil,
			WithEventPublisher(publisher),
			WithClock(func() time.Time { return now }),
		)
		return svc, store, publisher
	}

	t.Run("stamps shift end on overdue checked-in signups", func(t *testing.T) {
		svc, store, publisher := setup(hour(13))

		overdue, err := svc.Create(ctx, 1001, 101, "")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := svc.CheckIn(ctx, 1001, overdue.PublicID, hour(9)); err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}

		stillRunning, err := svc.Create(ctx, 1001, 102, "")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := svc.CheckIn(ctx, 1001, stillRunning.PublicID, hour(10)); err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}

		result, err := svc.AutoCheckOut(ctx)
		if err != nil {
			t.Fatalf("AutoCheckOut() error = %v", err)
		}
		if result.Scanned != 1 || result.Closed != 1 || result.Failed != 0 {
			t.Errorf("SweepResult = %+v, want {Scanned:1 Closed:1 Failed:0}", result)
		}

		closed := store.get(overdue.ID)
		if closed.CheckOutAt == nil {
			t.Fatal("overdue signup was not checked out")
		}
		if !closed.CheckOutAt.Equal(hour(12)) {
			t.Errorf("auto check-out time = %v, want shift end %v", closed.CheckOutAt, hour(12))
		}

		open := store.get(stillRunning.ID)
		if open.CheckOutAt != nil {
			t.Errorf("signup on a running shift was checked out at %v", open.CheckOutAt)
		}

		if len(publisher.autoClosed) != 1 {
			t.Fatalf("published %d auto-closed messages, want 1", len(publisher.autoClosed))
		}
		if publisher.autoClosed[0].SignupID != overdue.PublicID {
			t.Errorf("auto-closed message signup ID = %d, want %d",
				publisher.autoClosed[0].SignupID, overdue.PublicID)
		}
	})

	t.Run("never-checked-in signups are left alone", func(t *testing.T) {
		svc, store, _ := setup(hour(13))

		absent, err := svc.Create(ctx, 1001, 101, "")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		result, err := svc.AutoCheckOut(ctx)
		if err != nil {
			t.Fatalf("AutoCheckOut() error = %v", err)
		}
		if result.Scanned != 0 {
			t.Errorf("SweepResult.Scanned = %d, want 0", result.Scanned)
		}

		if got := store.get(absent.ID); got.CheckOutAt != nil {
			t.Errorf("no-show signup was checked out at %v", got.CheckOutAt)
		}
	})

	t.Run("sweep is idempotent", func(t *testing.T) {
		svc, _, publisher := setup(hour(13))

		overdue, err := svc.Create(ctx, 1001, 101, "")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := svc.CheckIn(ctx, 1001, overdue.PublicID, hour(9)); err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}

		if _, err := svc.AutoCheckOut(ctx); err != nil {
			t.Fatalf("AutoCheckOut() error = %v", err)
		}

		result, err := svc.AutoCheckOut(ctx)
		if err != nil {
			t.Fatalf("second AutoCheckOut() error = %v", err)
		}
		if result.Scanned != 0 || result.Closed != 0 {
			t.Errorf("second SweepResult = %+v, want empty", result)
		}
		if len(publisher.autoClosed) != 1 {
			t.Errorf("published %d auto-closed messages over two sweeps, want 1", len(publisher.autoClosed))
		}
	})

	t.Run("per-signup failure does not abort the batch", func(t *testing.T) {
		svc, store, _ := setup(hour(13))

		overdue, err := svc.Create(ctx, 1001, 101, "")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := svc.CheckIn(ctx, 1001, overdue.PublicID, hour(9)); err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}

		store.failOps["update_check_out"] = errors.New("connection reset")

		result, err := svc.AutoCheckOut(ctx)
		if err != nil {
			t.Fatalf("AutoCheckOut() error = %v", err)
		}
		if result.Scanned != 1 || result.Closed != 0 || result.Failed != 1 {
			t.Errorf("SweepResult = %+v, want {Scanned:1 Closed:0 Failed:1}", result)
		}
	})
}

func TestTotalHoursWorked(t *testing.T) {
	ctx := context.Background()

	morning := testShift(1, 101, hour(9), hour(12))
	afternoon := testShift(2, 102, hour(13), hour(17))

	store := newFakeSignupStore(morning, afternoon)
	svc := NewSignupService(
		newFakeShiftRepo(morning, afternoon),
		store,
		newFakeUserRepo(testUser(1, 1001)),
		nil,
	)

	if got, err := svc.TotalHoursWorked(ctx, 1001); err != nil || got != 0 {
		t.Errorf("TotalHoursWorked() with no signups = %v, %v; want 0, nil", got, err)
	}

	first, err := svc.Create(ctx, 1001, 101, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.CheckIn(ctx, 1001, first.PublicID, hour(9)); err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if _, err := svc.CheckOut(ctx, 1001, first.PublicID, hour(11).Add(30*time.Minute)); err != nil {
		t.Fatalf("CheckOut() error = %v", err)
	}

	// a second signup still checked in contributes nothing yet
	second, err := svc.Create(ctx, 1001, 102, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.CheckIn(ctx, 1001, second.PublicID, hour(13)); err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}

	got, err := svc.TotalHoursWorked(ctx, 1001)
	if err != nil {
		t.Fatalf("TotalHoursWorked() error = %v", err)
	}
	if got != 2.5 {
		t.Errorf("TotalHoursWorked() = %v, want 2.5", got)
	}
}

func TestTotalHoursForAllUsers(t *testing.T) {
	ctx := context.Background()

	morning := testShift(1, 101, hour(9), hour(12))
	afternoon := testShift(2, 102, hour(13), hour(17))

	alice := testUser(1, 1001)
	bob := testUser(2, 1002)

	store := newFakeSignupStore(morning, afternoon)
	svc := NewSignupService(
		newFakeShiftRepo(morning, afternoon),
		store,
		newFakeUserRepo(alice, bob),
		nil,
	)

	complete := func(userPublicID, shiftPublicID int64, in, out time.Time) {
		t.Helper()
		signup, err := svc.Create(ctx, userPublicID, shiftPublicID, "")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := svc.CheckIn(ctx, userPublicID, signup.PublicID, in); err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}
		if _, err := svc.CheckOut(ctx, userPublicID, signup.PublicID, out); err != nil {
			t.Fatalf("CheckOut() error = %v", err)
		}
	}

	complete(1001, 101, hour(9), hour(12))
	complete(1001, 102, hour(13), hour(15))
	complete(1002, 101, hour(9), hour(10).Add(30*time.Minute))

	totals, err := svc.TotalHoursForAllUsers(ctx)
	if err != nil {
		t.Fatalf("TotalHoursForAllUsers() error = %v", err)
	}

	want := map[int64]float64{1001: 5, 1002: 1.5}
	if len(totals) != len(want) {
		t.Fatalf("TotalHoursForAllUsers() returned %d users, want %d", len(totals), len(want))
	}
	for _, total := range totals {
		expected, ok := want[total.UserPublicID]
		if !ok {
			t.Errorf("unexpected user %d in totals", total.UserPublicID)
			continue
		}
		if total.Hours != expected {
			t.Errorf("hours for user %d = %v, want %v", total.UserPublicID, total.Hours, expected)
		}
	}
}
