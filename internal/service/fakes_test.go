package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"VolunteerHub/internal/model"
)

// In-memory stand-ins for the gorm-backed repositories. They mirror the
// real stores' contracts: finders miss with (nil, nil), getters miss
// with gorm.ErrRecordNotFound, Insert reports duplicate (user, shift)
// pairs as gorm.ErrDuplicatedKey.

type fakeSignupStore struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*model.Signup
	shifts  map[int64]*model.Shift
	failOps map[string]error
}

func newFakeSignupStore(shifts ...*model.Shift) *fakeSignupStore {
	byID := make(map[int64]*model.Shift, len(shifts))
	for _, shift := range shifts {
		byID[shift.ID] = shift
	}
	return &fakeSignupStore{
		nextID:  1,
		byID:    make(map[int64]*model.Signup),
		shifts:  byID,
		failOps: make(map[string]error),
	}
}

func (f *fakeSignupStore) Insert(ctx context.Context, signup *model.Signup) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failOps["insert"]; err != nil {
		return err
	}

	for _, existing := range f.byID {
		if existing.UserID == signup.UserID && existing.ShiftID == signup.ShiftID {
			return gorm.ErrDuplicatedKey
		}
	}

	signup.ID = f.nextID
	f.nextID++
	stored := *signup
	f.byID[signup.ID] = &stored
	return nil
}

func (f *fakeSignupStore) GetByPublicID(ctx context.Context, publicID int64) (*model.Signup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, signup := range f.byID {
		if signup.PublicID == publicID {
			return f.withShift(signup), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSignupStore) FindByUserAndShift(ctx context.Context, userID, shiftID int64) (*model.Signup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, signup := range f.byID {
		if signup.UserID == userID && signup.ShiftID == shiftID {
			copied := *signup
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeSignupStore) FindAllByUser(ctx context.Context, userID int64) ([]*model.Signup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var signups []*model.Signup
	for _, signup := range f.byID {
		if signup.UserID == userID {
			signups = append(signups, f.withShift(signup))
		}
	}
	sortSignups(signups)
	return signups, nil
}

func (f *fakeSignupStore) FindCheckedOutByUser(ctx context.Context, userID int64) ([]*model.Signup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var signups []*model.Signup
	for _, signup := range f.byID {
		if signup.UserID == userID && signup.CheckInAt != nil && signup.CheckOutAt != nil {
			copied := *signup
			signups = append(signups, &copied)
		}
	}
	sortSignups(signups)
	return signups, nil
}

func (f *fakeSignupStore) FindAllCheckedOut(ctx context.Context) ([]*model.Signup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var signups []*model.Signup
	for _, signup := range f.byID {
		if signup.CheckInAt != nil && signup.CheckOutAt != nil {
			copied := *signup
			signups = append(signups, &copied)
		}
	}
	sortSignups(signups)
	return signups, nil
}

func (f *fakeSignupStore) FindCheckedInPastEnd(ctx context.Context, now time.Time) ([]*model.Signup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var signups []*model.Signup
	for _, signup := range f.byID {
		if signup.CheckInAt == nil || signup.CheckOutAt != nil {
			continue
		}
		shift, ok := f.shifts[signup.ShiftID]
		if !ok || !shift.EndsAt.Before(now) {
			continue
		}
		signups = append(signups, f.withShift(signup))
	}
	sortSignups(signups)
	return signups, nil
}

func (f *fakeSignupStore) UpdateCheckIn(ctx context.Context, id int64, ts time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	signup, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	signup.CheckInAt = &ts
	return nil
}

func (f *fakeSignupStore) UpdateCheckOut(ctx context.Context, id int64, ts time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failOps["update_check_out"]; err != nil {
		return err
	}

	signup, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	signup.CheckOutAt = &ts
	return nil
}

func (f *fakeSignupStore) withShift(signup *model.Signup) *model.Signup {
	copied := *signup
	if shift, ok := f.shifts[signup.ShiftID]; ok {
		copied.Shift = shift
	}
	return &copied
}

func (f *fakeSignupStore) get(id int64) *model.Signup {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *f.byID[id]
	return &copied
}

func sortSignups(signups []*model.Signup) {
	sort.Slice(signups, func(i, j int) bool {
		return signups[i].ID < signups[j].ID
	})
}

type fakeShiftRepo struct {
	shifts []*model.Shift
}

func newFakeShiftRepo(shifts ...*model.Shift) *fakeShiftRepo {
	return &fakeShiftRepo{shifts: shifts}
}

func (f *fakeShiftRepo) GetByPublicID(ctx context.Context, publicID int64) (*model.Shift, error) {
	for _, shift := range f.shifts {
		if shift.PublicID == publicID {
			return shift, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeShiftRepo) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*model.Shift, error) {
	var upcoming []*model.Shift
	for _, shift := range f.shifts {
		if shift.EndsAt.After(from) {
			upcoming = append(upcoming, shift)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].StartsAt.Before(upcoming[j].StartsAt)
	})
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

type fakeUserRepo struct {
	users []*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	return &fakeUserRepo{users: users}
}

func (f *fakeUserRepo) GetByPublicID(ctx context.Context, publicID int64) (*model.User, error) {
	for _, user := range f.users {
		if user.PublicID == publicID {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var users []*model.User
	for _, user := range f.users {
		if wanted[user.ID] {
			users = append(users, user)
		}
	}
	return users, nil
}

// capturePublisher records published messages for assertions.
type capturePublisher struct {
	mu         sync.Mutex
	created    []model.SignupCreatedMessage
	autoClosed []model.SignupAutoClosedMessage
	err        error
}

func (p *capturePublisher) PublishSignupCreated(msg model.SignupCreatedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.created = append(p.created, msg)
	return nil
}

func (p *capturePublisher) PublishSignupAutoClosed(msg model.SignupAutoClosedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.autoClosed = append(p.autoClosed, msg)
	return nil
}

// stubLocker scripts the lock outcome.
type stubLocker struct {
	acquired bool
	err      error
	locks    int
	unlocks  int
}

func (l *stubLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.locks++
	return l.acquired, l.err
}

func (l *stubLocker) Unlock(ctx context.Context, key string) error {
	l.unlocks++
	return nil
}
