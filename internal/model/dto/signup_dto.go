package dto

import "time"

// CreateSignupRequest is the body of POST /v1/signups.
type CreateSignupRequest struct {
	ShiftID string `json:"shift_id" vd:"len($)>0"`
	Notes   string `json:"notes"`
}

// CheckRequest optionally overrides the transition timestamp; empty
// means "now". RFC 3339.
type CheckRequest struct {
	Timestamp string `json:"timestamp"`
}

// SignupItem is the API view of one signup.
type SignupItem struct {
	ID         string     `json:"id"`
	ShiftID    string     `json:"shift_id"`
	Status     string     `json:"status"`
	CheckInAt  *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt *time.Time `json:"check_out_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	Shift *ShiftItem `json:"shift,omitempty"`
}

// UserHours is one row of the all-user hours report.
type UserHours struct {
	UserID string  `json:"user_id"`
	Hours  float64 `json:"hours"`
}

// HoursReport is the single-user hours response.
type HoursReport struct {
	UserID string  `json:"user_id"`
	Hours  float64 `json:"hours"`
}
