package db

import "time"

// Session is the single persisted login record. There is at most one row (ID 1).
type Session struct {
	ID           uint   `gorm:"primaryKey" json:"-"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         string `gorm:"column:user_profile" json:"user,omitempty"` // serialized profile
	UpdatedAt    time.Time
}

const sessionRowID = 1
