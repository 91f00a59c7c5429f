package model

// Role is the volunteer position a shift is scheduled for.
type Role struct {
	BaseModel
	PublicID    int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	Name        string `gorm:"type:varchar(128);not null" json:"name"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
}

func (Role) TableName() string {
	return "roles"
}
