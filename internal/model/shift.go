package model

import "time"

// Shift is a time-bounded slot for one role. Invariant: StartsAt < EndsAt.
// Shifts are owned by event management and read-only from the scheduler's
// perspective.
type Shift struct {
	BaseModel
	PublicID int64     `gorm:"uniqueIndex;not null" json:"public_id"`
	RoleID   int64     `gorm:"not null;index" json:"role_id"`
	StartsAt time.Time `gorm:"type:timestamptz;not null;index:idx_shifts_starts_at" json:"starts_at"`
	EndsAt   time.Time `gorm:"type:timestamptz;not null;index:idx_shifts_ends_at" json:"ends_at"`

	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (Shift) TableName() string {
	return "shifts"
}

// Overlaps tests the half-open windows [s.StartsAt, s.EndsAt) and
// [other.StartsAt, other.EndsAt). Back-to-back shifts that touch at a
// boundary do not overlap.
func (s *Shift) Overlaps(other *Shift) bool {
	return s.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(s.EndsAt)
}
