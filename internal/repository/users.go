package repository

import (
	"context"

	"gorm.io/gorm"

	"VolunteerHub/internal/model"
)

type UserRepository interface {
	GetByPublicID(ctx context.Context, publicID int64) (*model.User, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByPublicID(ctx context.Context, publicID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var users []*model.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
