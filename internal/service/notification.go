package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"VolunteerHub/internal/model"
	"VolunteerHub/internal/repository"
)

// NotificationService turns signup lifecycle messages into pending
// notification tasks. Delivery itself (mail, push) is an external
// dispatcher's concern; this service only records what should be sent.
type NotificationService struct {
	store  repository.NotificationStore
	logger *zap.Logger
}

func NewNotificationService(store repository.NotificationStore, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, logger: logger}
}

// RecordSignupCreated persists a confirmation task for a new signup.
// Redelivered messages are dropped by message ID.
func (s *NotificationService) RecordSignupCreated(ctx context.Context, msg model.SignupCreatedMessage) error {
	exists, err := s.store.ExistsByMessageID(ctx, msg.MessageID)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("Duplicate signup created message, skipping",
			zap.String("message_id", msg.MessageID),
		)
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	task := &model.NotificationTask{
		MessageID:   msg.MessageID,
		UserID:      msg.UserID,
		SignupID:    msg.SignupID,
		Category:    model.NotificationCategorySignupCreated,
		Status:      model.NotificationStatusPending,
		ScheduledAt: time.Now(),
		Payload:     string(payload),
	}

	if err := s.store.Insert(ctx, task); err != nil {
		return err
	}

	s.logger.Info("Signup confirmation task recorded",
		zap.String("message_id", msg.MessageID),
		zap.Int64("signup_id", msg.SignupID),
	)

	return nil
}

// RecordSignupAutoClosed persists a task telling the volunteer their
// signup was closed by the sweep.
func (s *NotificationService) RecordSignupAutoClosed(ctx context.Context, msg model.SignupAutoClosedMessage) error {
	exists, err := s.store.ExistsByMessageID(ctx, msg.MessageID)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("Duplicate auto-checkout message, skipping",
			zap.String("message_id", msg.MessageID),
		)
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	task := &model.NotificationTask{
		MessageID:   msg.MessageID,
		UserID:      msg.UserID,
		SignupID:    msg.SignupID,
		Category:    model.NotificationCategorySignupAutoClosed,
		Status:      model.NotificationStatusPending,
		ScheduledAt: time.Now(),
		Payload:     string(payload),
	}

	if err := s.store.Insert(ctx, task); err != nil {
		return err
	}

	s.logger.Info("Auto-checkout notice task recorded",
		zap.String("message_id", msg.MessageID),
		zap.Int64("signup_id", msg.SignupID),
	)

	return nil
}
