package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeScope discriminates how a challenge attributes progress: personal
// challenges sum the linked users' entries, group challenges sum every entry
// tagged with the group id (implicit, non-rostered membership).
type ChallengeScope string

const (
	ScopePersonal ChallengeScope = "personal"
	ScopeGroup    ChallengeScope = "group"
)

// Challenge is a target distance over a bounded date window. ScopeKey holds
// the user id for personal scope and the normalized group id for group
// scope. The composite unique index keeps one challenge per scope and year.
type Challenge struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Title          string         `json:"title"`
	Scope          ChallengeScope `json:"scope" gorm:"not null;uniqueIndex:idx_challenge_scope_year"`
	ScopeKey       string         `json:"scopeKey" gorm:"not null;uniqueIndex:idx_challenge_scope_year"`
	Year           int            `json:"year" gorm:"not null;uniqueIndex:idx_challenge_scope_year"`
	TargetKm       float64        `json:"targetKm" gorm:"not null"`
	StartDate      time.Time      `json:"startDate" gorm:"type:date;not null"`
	EndDate        time.Time      `json:"endDate" gorm:"type:date;not null"`
	IssuedBySystem bool           `json:"issuedBySystem" gorm:"default:false"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ChallengeParticipant links a user to a personal-scope challenge. Group
// challenges have no rows here; their membership is computed from the ledger.
type ChallengeParticipant struct {
	ChallengeID uuid.UUID `json:"challengeId" gorm:"type:uuid;primaryKey"`
	UserID      string    `json:"userId" gorm:"primaryKey"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SetGoalRequest struct {
	Year     int     `json:"year"`
	TargetKm float64 `json:"targetKm"`
}
