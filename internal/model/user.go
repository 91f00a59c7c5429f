package model

// UserStatus marks whether a volunteer may be scheduled.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is a volunteer account. Account management lives outside the
// scheduler; the fields here are what signups and hour reports need.
type User struct {
	BaseModel
	PublicID int64      `gorm:"uniqueIndex;not null" json:"public_id"`
	Name     string     `gorm:"type:varchar(128);not null;default:''" json:"name"`
	Email    string     `gorm:"uniqueIndex;type:varchar(256);not null" json:"email"`
	Status   UserStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_users_status" json:"status"`
}

func (User) TableName() string {
	return "users"
}
