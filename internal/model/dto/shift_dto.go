package dto

import "time"

// ShiftItem is the API view of one shift.
type ShiftItem struct {
	ID       string    `json:"id"`
	RoleName string    `json:"role_name,omitempty"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}
