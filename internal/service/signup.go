package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"VolunteerHub/internal/model"
	"VolunteerHub/internal/repository"
	pkgerrors "VolunteerHub/pkg/errors"
	"VolunteerHub/pkg/metrics"
	"VolunteerHub/pkg/snowflake"
)

// SignupLocker is a best-effort lock that narrows the window between the
// conflict check and the insert for one user. Redis-backed in
// production, absent in tests.
type SignupLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// EventPublisher pushes signup lifecycle messages to the notification
// pipeline. Publish failures never fail the signup operation.
type EventPublisher interface {
	PublishSignupCreated(msg model.SignupCreatedMessage) error
	PublishSignupAutoClosed(msg model.SignupAutoClosedMessage) error
}

// ConflictDetailsError decorates ShiftConflict with the conflicting
// shift so the HTTP layer can tell the caller which one collided.
type ConflictDetailsError struct {
	ConflictingShiftID int64
	ConflictStartsAt   time.Time
	ConflictEndsAt     time.Time
}

func (e ConflictDetailsError) Error() string {
	return pkgerrors.ShiftConflict.Message
}

func (e ConflictDetailsError) Unwrap() error {
	return pkgerrors.ShiftConflict
}

// SweepResult summarizes one auto-checkout run.
type SweepResult struct {
	Scanned int
	Closed  int
	Failed  int
}

// SignupService orchestrates signup creation, the check-in/check-out
// state machine, the auto-checkout sweep, and hour aggregation. All
// collaborators are constructor-injected.
type SignupService struct {
	shifts   repository.ShiftRepository
	signups  repository.SignupStore
	users    repository.UserRepository
	conflict *ConflictChecker

	locker    SignupLocker
	lockTTL   time.Duration
	publisher EventPublisher

	logger *zap.Logger
	now    func() time.Time
}

type SignupServiceOption func(*SignupService)

// WithSignupLocker attaches the best-effort per-user lock.
func WithSignupLocker(locker SignupLocker, ttl time.Duration) SignupServiceOption {
	return func(s *SignupService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// WithEventPublisher attaches the notification pipeline.
func WithEventPublisher(publisher EventPublisher) SignupServiceOption {
	return func(s *SignupService) {
		s.publisher = publisher
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) SignupServiceOption {
	return func(s *SignupService) {
		s.now = now
	}
}

func NewSignupService(
	shifts repository.ShiftRepository,
	signups repository.SignupStore,
	users repository.UserRepository,
	logger *zap.Logger,
	opts ...SignupServiceOption,
) *SignupService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SignupService{
		shifts:   shifts,
		signups:  signups,
		users:    users,
		conflict: NewConflictChecker(signups),
		logger:   logger,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create signs a volunteer up for a shift. The duplicate check runs
// before the overlap check: it is cheaper and yields the more specific
// rejection. Reads and the insert are sequential with no cross-call
// transaction; the (user, shift) unique index backstops the duplicate
// race, the per-user lock narrows the overlap race.
func (s *SignupService) Create(ctx context.Context, userPublicID, shiftPublicID int64, notes string) (*model.Signup, error) {
	user, err := s.resolveUser(ctx, userPublicID)
	if err != nil {
		return nil, err
	}

	shift, err := s.shifts.GetByPublicID(ctx, shiftPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ShiftNotFound
		}
		return nil, fmt.Errorf("failed to query shift: %w", err)
	}

	if unlock := s.tryUserLock(ctx, user.ID); unlock != nil {
		defer unlock()
	}

	exists, err := s.conflict.HasExistingSignup(ctx, user.ID, shift.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.RecordSignupRejected(ctx, "duplicate")
		return nil, pkgerrors.AlreadySignedUp
	}

	conflicting, err := s.conflict.FindTimeConflict(ctx, user.ID, shift)
	if err != nil {
		return nil, err
	}
	if conflicting != nil {
		metrics.RecordSignupRejected(ctx, "overlap")
		s.logger.Info("Signup rejected: shift conflict",
			zap.Int64("user_id", userPublicID),
			zap.Int64("shift_id", shiftPublicID),
			zap.Int64("conflicting_shift_id", conflicting.PublicID),
		)
		return nil, ConflictDetailsError{
			ConflictingShiftID: conflicting.PublicID,
			ConflictStartsAt:   conflicting.StartsAt,
			ConflictEndsAt:     conflicting.EndsAt,
		}
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate signup ID: %w", err)
	}

	signup := &model.Signup{
		PublicID: publicID,
		UserID:   user.ID,
		ShiftID:  shift.ID,
		Notes:    notes,
	}

	if err := s.signups.Insert(ctx, signup); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			metrics.RecordSignupRejected(ctx, "duplicate")
			return nil, pkgerrors.AlreadySignedUp
		}
		return nil, err
	}
	signup.Shift = shift

	metrics.RecordSignupCreated(ctx)
	s.logger.Info("Signup created",
		zap.Int64("signup_id", signup.PublicID),
		zap.Int64("user_id", userPublicID),
		zap.Int64("shift_id", shiftPublicID),
	)

	s.publishCreated(user, shift, signup)

	return signup, nil
}

// CheckIn transitions Active -> CheckedIn. The timestamp must fall
// inside the shift window.
func (s *SignupService) CheckIn(ctx context.Context, userPublicID, signupPublicID int64, ts time.Time) (*model.Signup, error) {
	signup, err := s.getOwnedSignup(ctx, userPublicID, signupPublicID)
	if err != nil {
		return nil, err
	}

	if signup.Status() != model.SignupStatusActive {
		return nil, pkgerrors.InvalidTransition
	}

	if signup.Shift != nil {
		if ts.Before(signup.Shift.StartsAt) || !ts.Before(signup.Shift.EndsAt) {
			return nil, pkgerrors.CheckInOutsideWindow
		}
	}

	if err := s.signups.UpdateCheckIn(ctx, signup.ID, ts); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.SignupNotFound
		}
		return nil, err
	}
	signup.CheckInAt = &ts

	metrics.RecordCheckIn(ctx)
	s.logger.Info("Volunteer checked in",
		zap.Int64("signup_id", signupPublicID),
		zap.Time("check_in_at", ts),
	)

	return signup, nil
}

// CheckOut transitions CheckedIn -> CheckedOut. Requires a prior
// check-in and a timestamp after it.
func (s *SignupService) CheckOut(ctx context.Context, userPublicID, signupPublicID int64, ts time.Time) (*model.Signup, error) {
	signup, err := s.getOwnedSignup(ctx, userPublicID, signupPublicID)
	if err != nil {
		return nil, err
	}

	if signup.Status() != model.SignupStatusCheckedIn {
		return nil, pkgerrors.InvalidTransition
	}

	if !ts.After(*signup.CheckInAt) {
		return nil, pkgerrors.CheckOutBeforeCheckIn
	}

	if err := s.signups.UpdateCheckOut(ctx, signup.ID, ts); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.SignupNotFound
		}
		return nil, err
	}
	signup.CheckOutAt = &ts

	metrics.RecordCheckOut(ctx)
	s.logger.Info("Volunteer checked out",
		zap.Int64("signup_id", signupPublicID),
		zap.Time("check_out_at", ts),
	)

	return signup, nil
}

// AutoCheckOut force-closes every checked-in signup whose shift has
// ended, stamping the shift's end instant (not the sweep's wall clock)
// so hour accounting reflects the scheduled duration. Per-signup
// failures are logged and counted, never abort the batch.
func (s *SignupService) AutoCheckOut(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	candidates, err := s.signups.FindCheckedInPastEnd(ctx, s.now())
	if err != nil {
		return result, fmt.Errorf("failed to scan for auto-checkout candidates: %w", err)
	}
	result.Scanned = len(candidates)

	for _, signup := range candidates {
		if signup.Shift == nil {
			result.Failed++
			s.logger.Error("Auto-checkout candidate has no shift loaded",
				zap.Int64("signup_id", signup.PublicID),
			)
			continue
		}

		if err := s.signups.UpdateCheckOut(ctx, signup.ID, signup.Shift.EndsAt); err != nil {
			result.Failed++
			s.logger.Error("Failed to auto-checkout signup",
				zap.Int64("signup_id", signup.PublicID),
				zap.Error(err),
			)
			continue
		}

		result.Closed++
		s.logger.Info("Signup auto-checked out",
			zap.Int64("signup_id", signup.PublicID),
			zap.Time("check_out_at", signup.Shift.EndsAt),
		)

		s.publishAutoClosed(signup)
	}

	metrics.RecordAutoCheckouts(ctx, int64(result.Closed))
	metrics.RecordSweepErrors(ctx, int64(result.Failed))

	return result, nil
}

// ListUserSignups returns all of a volunteer's signups with shift data.
func (s *SignupService) ListUserSignups(ctx context.Context, userPublicID int64) ([]*model.Signup, error) {
	user, err := s.resolveUser(ctx, userPublicID)
	if err != nil {
		return nil, err
	}

	return s.signups.FindAllByUser(ctx, user.ID)
}

// TotalHoursWorked sums fractional hours over the user's checked-out
// signups; zero when there are none.
func (s *SignupService) TotalHoursWorked(ctx context.Context, userPublicID int64) (float64, error) {
	user, err := s.resolveUser(ctx, userPublicID)
	if err != nil {
		return 0, err
	}

	signups, err := s.signups.FindCheckedOutByUser(ctx, user.ID)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, signup := range signups {
		total += signup.HoursWorked()
	}

	return total, nil
}

// UserHoursTotal is one user's aggregate in the all-user report.
type UserHoursTotal struct {
	UserPublicID int64
	Hours        float64
}

// TotalHoursForAllUsers aggregates hours per user over every
// checked-out signup.
func (s *SignupService) TotalHoursForAllUsers(ctx context.Context) ([]UserHoursTotal, error) {
	signups, err := s.signups.FindAllCheckedOut(ctx)
	if err != nil {
		return nil, err
	}

	hoursByUser := make(map[int64]float64)
	order := make([]int64, 0)
	for _, signup := range signups {
		if _, seen := hoursByUser[signup.UserID]; !seen {
			order = append(order, signup.UserID)
		}
		hoursByUser[signup.UserID] += signup.HoursWorked()
	}

	users, err := s.users.ListByIDs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users for hours report: %w", err)
	}
	publicByID := make(map[int64]int64, len(users))
	for _, user := range users {
		publicByID[user.ID] = user.PublicID
	}

	totals := make([]UserHoursTotal, 0, len(order))
	for _, userID := range order {
		publicID, ok := publicByID[userID]
		if !ok {
			// user deleted since checkout; skip rather than fail the report
			continue
		}
		totals = append(totals, UserHoursTotal{
			UserPublicID: publicID,
			Hours:        hoursByUser[userID],
		})
	}

	return totals, nil
}

func (s *SignupService) resolveUser(ctx context.Context, userPublicID int64) (*model.User, error) {
	user, err := s.users.GetByPublicID(ctx, userPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.UserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *SignupService) getOwnedSignup(ctx context.Context, userPublicID, signupPublicID int64) (*model.Signup, error) {
	user, err := s.resolveUser(ctx, userPublicID)
	if err != nil {
		return nil, err
	}

	signup, err := s.signups.GetByPublicID(ctx, signupPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.SignupNotFound
		}
		return nil, fmt.Errorf("failed to query signup: %w", err)
	}

	if signup.UserID != user.ID {
		return nil, pkgerrors.SignupNotFound
	}

	return signup, nil
}

// tryUserLock returns an unlock func, or nil when the lock was not
// taken. Lock failures degrade to running unlocked: the check is
// best-effort by design and the unique index still holds.
func (s *SignupService) tryUserLock(ctx context.Context, userID int64) func() {
	if s.locker == nil {
		return nil
	}

	key := fmt.Sprintf("signup:user:%d", userID)
	acquired, err := s.locker.TryLock(ctx, key, s.lockTTL)
	if err != nil {
		s.logger.Warn("Signup lock unavailable, proceeding unlocked",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil
	}
	if !acquired {
		s.logger.Warn("Concurrent signup in flight for user, proceeding unlocked",
			zap.Int64("user_id", userID),
		)
		return nil
	}

	return func() {
		if err := s.locker.Unlock(ctx, key); err != nil {
			s.logger.Warn("Failed to release signup lock",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}
}

func (s *SignupService) publishCreated(user *model.User, shift *model.Shift, signup *model.Signup) {
	if s.publisher == nil {
		return
	}

	msg := model.SignupCreatedMessage{
		MessageID:     fmt.Sprintf("signup_created_%d", signup.PublicID),
		UserID:        user.ID,
		SignupID:      signup.PublicID,
		ShiftID:       shift.PublicID,
		ShiftStartsAt: shift.StartsAt.Format(time.RFC3339),
		ShiftEndsAt:   shift.EndsAt.Format(time.RFC3339),
		CreatedAt:     s.now().Format(time.RFC3339),
	}

	if err := s.publisher.PublishSignupCreated(msg); err != nil {
		s.logger.Warn("Failed to publish signup created message",
			zap.Int64("signup_id", signup.PublicID),
			zap.Error(err),
		)
	}
}

func (s *SignupService) publishAutoClosed(signup *model.Signup) {
	if s.publisher == nil {
		return
	}

	msg := model.SignupAutoClosedMessage{
		MessageID:  fmt.Sprintf("signup_autoclosed_%d", signup.PublicID),
		UserID:     signup.UserID,
		SignupID:   signup.PublicID,
		ShiftID:    signup.Shift.PublicID,
		CheckOutAt: signup.Shift.EndsAt.Format(time.RFC3339),
		SweptAt:    s.now().Format(time.RFC3339),
	}

	if err := s.publisher.PublishSignupAutoClosed(msg); err != nil {
		s.logger.Warn("Failed to publish auto-checkout message",
			zap.Int64("signup_id", signup.PublicID),
			zap.Error(err),
		)
	}
}
