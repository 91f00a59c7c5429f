package model

import "time"

// NotificationCategory classifies what a task notifies about.
type NotificationCategory string

const (
	NotificationCategorySignupCreated    NotificationCategory = "signup_created"
	NotificationCategorySignupAutoClosed NotificationCategory = "signup_auto_checked_out"
)

// NotificationStatus tracks dispatch progress. The worker only ever
// records tasks as pending; delivery is an external dispatcher's job.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// NotificationTask is one queued user notification, written by the
// worker from signup lifecycle messages.
type NotificationTask struct {
	BaseModel
	MessageID   string               `gorm:"uniqueIndex;type:varchar(64);not null" json:"message_id"`
	UserID      int64                `gorm:"not null;index" json:"user_id"`
	SignupID    int64                `gorm:"not null;index" json:"signup_id"`
	Category    NotificationCategory `gorm:"type:varchar(32);not null;index" json:"category"`
	Status      NotificationStatus   `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ScheduledAt time.Time            `gorm:"type:timestamptz;not null" json:"scheduled_at"`
	Payload     string               `gorm:"type:text;not null;default:''" json:"payload"`
}

func (NotificationTask) TableName() string {
	return "notification_tasks"
}
