package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RunEntry is one immutable recorded distance for one user on one date.
// GroupID, when set, is always stored in normalized form.
type RunEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"userId" gorm:"index;not null"`
	Km        float64   `json:"km" gorm:"not null"`
	Date      time.Time `json:"date" gorm:"type:date;index;not null"`
	Notes     *string   `json:"notes"`
	GroupID   *string   `json:"groupId" gorm:"index"`
	GroupKind *string   `json:"groupKind"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *RunEntry) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type SubmitRunRequest struct {
	Km        float64 `json:"km"`
	Date      string  `json:"date"` // YYYY-MM-DD; empty means today
	Notes     *string `json:"notes"`
	GroupID   *string `json:"groupId"`
	GroupKind *string `json:"groupKind"`
}
