package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"VolunteerHub/internal/model"
)

type NotificationStore interface {
	Insert(ctx context.Context, task *model.NotificationTask) error
	ExistsByMessageID(ctx context.Context, messageID string) (bool, error)
}

type GormNotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *GormNotificationStore {
	return &GormNotificationStore{db: db}
}

func (s *GormNotificationStore) Insert(ctx context.Context, task *model.NotificationTask) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to insert notification task: %w", err)
	}
	return nil
}

// ExistsByMessageID lets the consumer drop redelivered messages.
func (s *GormNotificationStore) ExistsByMessageID(ctx context.Context, messageID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.NotificationTask{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count notification tasks: %w", err)
	}
	return count > 0, nil
}
