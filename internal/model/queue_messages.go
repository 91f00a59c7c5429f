package model

// Queue messages stay inside the backend, so UserID is the internal row
// ID; SignupID and ShiftID are the public ones since notifications
// reference them back through the API.

// SignupCreatedMessage announces a new signup to the notification worker.
type SignupCreatedMessage struct {
	MessageID     string `json:"message_id"`
	UserID        int64  `json:"user_id"`
	SignupID      int64  `json:"signup_id"`
	ShiftID       int64  `json:"shift_id"`
	ShiftStartsAt string `json:"shift_starts_at"`
	ShiftEndsAt   string `json:"shift_ends_at"`
	CreatedAt     string `json:"created_at"`
}

// SignupAutoClosedMessage announces a sweep-forced checkout.
type SignupAutoClosedMessage struct {
	MessageID  string `json:"message_id"`
	UserID     int64  `json:"user_id"`
	SignupID   int64  `json:"signup_id"`
	ShiftID    int64  `json:"shift_id"`
	CheckOutAt string `json:"check_out_at"`
	SweptAt    string `json:"swept_at"`
}
