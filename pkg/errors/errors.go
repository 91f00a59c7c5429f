package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition carries a stable business error code with a default message.
type Definition struct {
	Code    string
	Message string
}

// Signup scheduling errors. Duplicate and overlap are distinct kinds so
// callers can present different messages.
var (
	ShiftNotFound   = Definition{Code: "SHIFT_NOT_FOUND", Message: "Shift not found"}
	SignupNotFound  = Definition{Code: "SIGNUP_NOT_FOUND", Message: "Signup not found"}
	UserNotFound    = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
	AlreadySignedUp = Definition{Code: "ALREADY_SIGNED_UP", Message: "Already signed up for this shift"}
	ShiftConflict   = Definition{Code: "SHIFT_CONFLICT", Message: "Shift overlaps an existing signup"}
)

// Check-in / check-out transition errors.
var (
	InvalidTransition     = Definition{Code: "INVALID_TRANSITION", Message: "Signup is not in a state that allows this transition"}
	CheckInOutsideWindow  = Definition{Code: "CHECK_IN_OUTSIDE_WINDOW", Message: "Check-in time is outside the shift window"}
	CheckOutBeforeCheckIn = Definition{Code: "CHECK_OUT_BEFORE_CHECK_IN", Message: "Check-out time must be after check-in"}
)

var (
	Unauthorized   = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidRequest = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	InvalidUserID  = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
)

// Token plumbing errors, used by pkg/token.
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = errors.New("unexpected signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
)

// Lookup resolves a code back to its Definition.
var Lookup = map[string]Definition{
	ShiftNotFound.Code:         ShiftNotFound,
	SignupNotFound.Code:        SignupNotFound,
	UserNotFound.Code:          UserNotFound,
	AlreadySignedUp.Code:       AlreadySignedUp,
	ShiftConflict.Code:         ShiftConflict,
	InvalidTransition.Code:     InvalidTransition,
	CheckInOutsideWindow.Code:  CheckInOutsideWindow,
	CheckOutBeforeCheckIn.Code: CheckOutBeforeCheckIn,
	Unauthorized.Code:          Unauthorized,
	InvalidRequest.Code:        InvalidRequest,
	InvalidUserID.Code:         InvalidUserID,
}

// Get returns the Definition for a code, or a generic one if unknown.
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// IsDefinition reports whether err is (or wraps) a business Definition.
func IsDefinition(err error) (Definition, bool) {
	var def Definition
	if errors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}
