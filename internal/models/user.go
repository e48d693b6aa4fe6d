package models

import (
	"time"
)

// User is keyed by the transport's external user id, treated as an opaque
// string. Rows are created on first activity or first goal interaction and
// never physically deleted.
type User struct {
	UserID    string    `json:"userId" gorm:"primaryKey"`
	Username  string    `json:"username"`
	GoalKm    float64   `json:"goalKm" gorm:"default:0"`
	IsActive  bool      `json:"isActive" gorm:"default:true"`
	ChatType  string    `json:"chatType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdateProfileRequest struct {
	Username *string  `json:"username"`
	GoalKm   *float64 `json:"goalKm"`
	ChatType *string  `json:"chatType"`
}
