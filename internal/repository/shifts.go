package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"VolunteerHub/internal/model"
)

// ShiftRepository is read-only: shifts are owned by event management.
type ShiftRepository interface {
	GetByPublicID(ctx context.Context, publicID int64) (*model.Shift, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*model.Shift, error)
}

type GormShiftRepository struct {
	db *gorm.DB
}

func NewShiftRepository(db *gorm.DB) *GormShiftRepository {
	return &GormShiftRepository{db: db}
}

func (r *GormShiftRepository) GetByPublicID(ctx context.Context, publicID int64) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("public_id = ?", publicID).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *GormShiftRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*model.Shift, error) {
	var shifts []*model.Shift
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("ends_at > ?", from).
		Order("starts_at").
		Limit(limit).
		Find(&shifts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming shifts: %w", err)
	}
	return shifts, nil
}
