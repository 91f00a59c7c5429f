package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"VolunteerHub/internal/model"
)

// SignupStore owns the signup records. Finder methods that can miss
// return (nil, nil) rather than an error; Get methods return
// gorm.ErrRecordNotFound so callers can map it to a business error.
type SignupStore interface {
	Insert(ctx context.Context, signup *model.Signup) error
	GetByPublicID(ctx context.Context, publicID int64) (*model.Signup, error)
	FindByUserAndShift(ctx context.Context, userID, shiftID int64) (*model.Signup, error)
	FindAllByUser(ctx context.Context, userID int64) ([]*model.Signup, error)
	FindCheckedOutByUser(ctx context.Context, userID int64) ([]*model.Signup, error)
	FindAllCheckedOut(ctx context.Context) ([]*model.Signup, error)
	FindCheckedInPastEnd(ctx context.Context, now time.Time) ([]*model.Signup, error)
	UpdateCheckIn(ctx context.Context, id int64, ts time.Time) error
	UpdateCheckOut(ctx context.Context, id int64, ts time.Time) error
}

type GormSignupStore struct {
	db *gorm.DB
}

func NewSignupStore(db *gorm.DB) *GormSignupStore {
	return &GormSignupStore{db: db}
}

func (s *GormSignupStore) Insert(ctx context.Context, signup *model.Signup) error {
	if err := s.db.WithContext(ctx).Create(signup).Error; err != nil {
		return fmt.Errorf("failed to insert signup: %w", err)
	}
	return nil
}

func (s *GormSignupStore) GetByPublicID(ctx context.Context, publicID int64) (*model.Signup, error) {
	var signup model.Signup
	err := s.db.WithContext(ctx).
		Preload("Shift").
		Where("public_id = ?", publicID).
		First(&signup).Error
	if err != nil {
		return nil, err
	}
	return &signup, nil
}

func (s *GormSignupStore) FindByUserAndShift(ctx context.Context, userID, shiftID int64) (*model.Signup, error) {
	var signup model.Signup
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND shift_id = ?", userID, shiftID).
		First(&signup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query signup by user and shift: %w", err)
	}
	return &signup, nil
}

func (s *GormSignupStore) FindAllByUser(ctx context.Context, userID int64) ([]*model.Signup, error) {
	var signups []*model.Signup
	err := s.db.WithContext(ctx).
		Preload("Shift").
		Where("user_id = ?", userID).
		Order("id").
		Find(&signups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list signups for user: %w", err)
	}
	return signups, nil
}

func (s *GormSignupStore) FindCheckedOutByUser(ctx context.Context, userID int64) ([]*model.Signup, error) {
	var signups []*model.Signup
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("check_in_at IS NOT NULL").
		Where("check_out_at IS NOT NULL").
		Find(&signups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checked-out signups for user: %w", err)
	}
	return signups, nil
}

func (s *GormSignupStore) FindAllCheckedOut(ctx context.Context) ([]*model.Signup, error) {
	var signups []*model.Signup
	err := s.db.WithContext(ctx).
		Where("check_in_at IS NOT NULL").
		Where("check_out_at IS NOT NULL").
		Find(&signups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checked-out signups: %w", err)
	}
	return signups, nil
}

// FindCheckedInPastEnd returns the auto-checkout candidates: checked in,
// not checked out, shift already ended at the given instant.
func (s *GormSignupStore) FindCheckedInPastEnd(ctx context.Context, now time.Time) ([]*model.Signup, error) {
	var signups []*model.Signup
	err := s.db.WithContext(ctx).
		Joins("JOIN shifts ON shifts.id = signups.shift_id").
		Where("shifts.deleted_at IS NULL").
		Where("signups.check_in_at IS NOT NULL").
		Where("signups.check_out_at IS NULL").
		Where("shifts.ends_at < ?", now).
		Preload("Shift").
		Find(&signups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query auto-checkout candidates: %w", err)
	}
	return signups, nil
}

func (s *GormSignupStore) UpdateCheckIn(ctx context.Context, id int64, ts time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&model.Signup{}).
		Where("id = ?", id).
		Update("check_in_at", ts)
	if res.Error != nil {
		return fmt.Errorf("failed to update check-in: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *GormSignupStore) UpdateCheckOut(ctx context.Context, id int64, ts time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&model.Signup{}).
		Where("id = ?", id).
		Update("check_out_at", ts)
	if res.Error != nil {
		return fmt.Errorf("failed to update check-out: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
