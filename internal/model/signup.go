package model

import "time"

// SignupStatus is derived from the check-in/check-out timestamps.
type SignupStatus string

const (
	SignupStatusActive     SignupStatus = "active"
	SignupStatusCheckedIn  SignupStatus = "checked_in"
	SignupStatusCheckedOut SignupStatus = "checked_out"
)

// Signup binds one volunteer to one shift. Signups are hard-deleted
// (admin removal, shift/user cascade) rather than soft-deleted so the
// (user_id, shift_id) unique index enforces one active signup per pair.
type Signup struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	PublicID   int64      `gorm:"uniqueIndex;not null" json:"public_id"`
	UserID     int64      `gorm:"not null;uniqueIndex:idx_signups_user_shift;index:idx_signups_user" json:"user_id"`
	ShiftID    int64      `gorm:"not null;uniqueIndex:idx_signups_user_shift;index:idx_signups_shift" json:"shift_id"`
	CheckInAt  *time.Time `gorm:"type:timestamptz" json:"check_in_at,omitempty"`
	CheckOutAt *time.Time `gorm:"type:timestamptz" json:"check_out_at,omitempty"`
	Notes      string     `gorm:"type:text;not null;default:''" json:"notes"`

	Shift *Shift `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`
}

func (Signup) TableName() string {
	return "signups"
}

// Status derives the state machine position: Active -> CheckedIn ->
// CheckedOut, with CheckedOut terminal.
func (s *Signup) Status() SignupStatus {
	switch {
	case s.CheckOutAt != nil:
		return SignupStatusCheckedOut
	case s.CheckInAt != nil:
		return SignupStatusCheckedIn
	default:
		return SignupStatusActive
	}
}

// HoursWorked is the fractional hour span between check-in and check-out,
// zero unless the signup is checked out.
func (s *Signup) HoursWorked() float64 {
	if s.CheckInAt == nil || s.CheckOutAt == nil {
		return 0
	}
	return s.CheckOutAt.Sub(*s.CheckInAt).Hours()
}
