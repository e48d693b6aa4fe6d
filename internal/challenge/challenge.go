// Package challenge manages goal entities and their progress. Personal
// challenges attribute progress through explicit participant links; group
// challenges have no roster and cover every user with at least one entry in
// the group during the window.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/runclub/runlog-api/internal/groupid"
	"github.com/runclub/runlog-api/internal/ledger"
	"github.com/runclub/runlog-api/internal/logger"
	"github.com/runclub/runlog-api/internal/models"
)

// ErrGoalNotFound signals absence, which callers treat as "no goal
// configured yet", not as a failure.
var ErrGoalNotFound = errors.New("challenge not found")

// State of a challenge relative to a date. Derived from the window on every
// read; never stored.
type State string

const (
	StatePending State = "pending"
	StateActive  State = "active"
	StateClosed  State = "closed"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func New(db *gorm.DB, log *logger.Logger) *Service {
	return &Service{
		db:  db,
		log: log.With("service", "challenge"),
		now: time.Now,
	}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func yearWindow(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// SetPersonalGoal creates the user's yearly challenge or updates its target
// when one already exists. The unique (scope, scope_key, year) index backs
// the create path, so two concurrent calls cannot produce duplicates: the
// loser's insert fails and falls through to the update.
func (s *Service) SetPersonalGoal(ctx context.Context, userID string, year int, targetKm float64) (models.Challenge, error) {
	start, end := yearWindow(year)
	c := models.Challenge{
		Title:     fmt.Sprintf("Yearly goal %d", year),
		Scope:     models.ScopePersonal,
		ScopeKey:  userID,
		Year:      year,
		TargetKm:  targetKm,
		StartDate: start,
		EndDate:   end,
	}
	existing, err := s.findGoal(ctx, models.ScopePersonal, userID, year)
	switch {
	case err == nil:
		if err := s.UpdateTarget(ctx, existing.ID, targetKm); err != nil {
			return models.Challenge{}, err
		}
		existing.TargetKm = targetKm
		return existing, nil
	case errors.Is(err, ErrGoalNotFound):
		if err := s.createWithParticipant(ctx, &c, userID); err != nil {
			return s.retrySetTarget(ctx, models.ScopePersonal, userID, year, targetKm, err)
		}
		s.log.Info("personal challenge created", "user_id", userID, "year", year, "target_km", targetKm)
		return c, nil
	default:
		return models.Challenge{}, err
	}
}

// SetGroupGoal creates or updates the group's yearly challenge. The group id
// may arrive raw; the stored scope key is always canonical.
func (s *Service) SetGroupGoal(ctx context.Context, rawGroupID string, year int, targetKm float64, issuedBySystem bool) (models.Challenge, error) {
	key := groupid.Normalize(rawGroupID)
	start, end := yearWindow(year)
	c := models.Challenge{
		Title:          fmt.Sprintf("Group goal %d", year),
		Scope:          models.ScopeGroup,
		ScopeKey:       key,
		Year:           year,
		TargetKm:       targetKm,
		StartDate:      start,
		EndDate:        end,
		IssuedBySystem: issuedBySystem,
	}
	existing, err := s.findGoal(ctx, models.ScopeGroup, key, year)
	switch {
	case err == nil:
		if err := s.UpdateTarget(ctx, existing.ID, targetKm); err != nil {
			return models.Challenge{}, err
		}
		existing.TargetKm = targetKm
		return existing, nil
	case errors.Is(err, ErrGoalNotFound):
		if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
			return s.retrySetTarget(ctx, models.ScopeGroup, key, year, targetKm, err)
		}
		s.log.Info("group challenge created", "group_id", key, "year", year, "target_km", targetKm)
		return c, nil
	default:
		return models.Challenge{}, err
	}
}

// EnsureYearlyGroupGoal returns the group's system-issued challenge for the
// year, creating a zero-target Jan 1..Dec 31 one when none exists.
func (s *Service) EnsureYearlyGroupGoal(ctx context.Context, rawGroupID string, year int) (models.Challenge, error) {
	key := groupid.Normalize(rawGroupID)
	existing, err := s.findGoal(ctx, models.ScopeGroup, key, year)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrGoalNotFound) {
		return models.Challenge{}, err
	}
	return s.SetGroupGoal(ctx, key, year, 0, true)
}

// UpdateTarget changes the target distance only, as a single atomic UPDATE.
// Window and scope are never touched after creation.
func (s *Service) UpdateTarget(ctx context.Context, goalID uuid.UUID, targetKm float64) error {
	res := s.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ?", goalID).
		Update("target_km", targetKm)
	if res.Error != nil {
		return fmt.Errorf("update challenge target: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// PersonalGoal returns the user's challenge for the year, or ErrGoalNotFound.
func (s *Service) PersonalGoal(ctx context.Context, userID string, year int) (models.Challenge, error) {
	return s.findGoal(ctx, models.ScopePersonal, userID, year)
}

// GroupGoal returns the group's challenge for the year, or ErrGoalNotFound.
// Raw supergroup ids are accepted.
func (s *Service) GroupGoal(ctx context.Context, rawGroupID string, year int) (models.Challenge, error) {
	return s.findGoal(ctx, models.ScopeGroup, groupid.Normalize(rawGroupID), year)
}

// Progress returns the distance covered inside the challenge window:
// participants' entries for personal scope, every group-tagged entry for
// group scope.
func (s *Service) Progress(ctx context.Context, c models.Challenge) (float64, error) {
	var sum float64
	var err error
	switch c.Scope {
	case models.ScopeGroup:
		err = s.db.WithContext(ctx).
			Model(&models.RunEntry{}).
			Select("COALESCE(SUM(km), 0)").
			Where("group_id = ? AND date >= ? AND date <= ?", c.ScopeKey, c.StartDate, c.EndDate).
			Scan(&sum).Error
	default:
		err = s.db.WithContext(ctx).
			Model(&models.RunEntry{}).
			Select("COALESCE(SUM(km), 0)").
			Joins("JOIN challenge_participants cp ON cp.user_id = run_entries.user_id").
			Where("cp.challenge_id = ? AND date >= ? AND date <= ?", c.ID, c.StartDate, c.EndDate).
			Scan(&sum).Error
	}
	if err != nil {
		return 0, fmt.Errorf("challenge progress: %w", err)
	}
	return sum, nil
}

// ParticipantCount returns the explicit link count for personal scope and
// the distinct number of users who logged in the group during the window for
// group scope.
func (s *Service) ParticipantCount(ctx context.Context, c models.Challenge) (int64, error) {
	var count int64
	var err error
	switch c.Scope {
	case models.ScopeGroup:
		err = s.db.WithContext(ctx).
			Model(&models.RunEntry{}).
			Select("COUNT(DISTINCT user_id)").
			Where("group_id = ? AND date >= ? AND date <= ?", c.ScopeKey, c.StartDate, c.EndDate).
			Scan(&count).Error
	default:
		err = s.db.WithContext(ctx).
			Model(&models.ChallengeParticipant{}).
			Where("challenge_id = ?", c.ID).
			Count(&count).Error
	}
	if err != nil {
		return 0, fmt.Errorf("challenge participants: %w", err)
	}
	return count, nil
}

// GoalProgress bundles covered distance, target and completion percentage.
func (s *Service) GoalProgress(ctx context.Context, c models.Challenge) (models.GoalProgress, error) {
	covered, err := s.Progress(ctx, c)
	if err != nil {
		return models.GoalProgress{}, err
	}
	return models.GoalProgress{
		CoveredKm: covered,
		TargetKm:  c.TargetKm,
		Percent:   PercentComplete(covered, c.TargetKm),
	}, nil
}

// PercentComplete is progress/target*100, defined as 0 for non-positive
// targets so a fresh zero-target challenge never divides by zero.
func PercentComplete(progress, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return progress / target * 100
}

// ChallengeState derives the lifecycle state from the window, bounds
// inclusive on both ends.
func ChallengeState(c models.Challenge, today time.Time) State {
	d := ledger.DateOnly(today)
	switch {
	case d.Before(c.StartDate):
		return StatePending
	case d.After(c.EndDate):
		return StateClosed
	default:
		return StateActive
	}
}

// State evaluates the challenge against the service clock.
func (s *Service) State(c models.Challenge) State {
	return ChallengeState(c, s.now())
}

// ClearPersonalGoals removes all of the user's personal challenges and their
// participant links, returning the number of challenges removed.
func (s *Service) ClearPersonalGoals(ctx context.Context, userID string) (int64, error) {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&models.Challenge{}).
			Where("scope = ? AND scope_key = ?", models.ScopePersonal, userID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("challenge_id IN ?", ids).Delete(&models.ChallengeParticipant{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Challenge{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("clear personal challenges: %w", err)
	}
	return removed, nil
}

func (s *Service) findGoal(ctx context.Context, scope models.ChallengeScope, key string, year int) (models.Challenge, error) {
	var c models.Challenge
	err := s.db.WithContext(ctx).
		Where("scope = ? AND scope_key = ? AND year = ?", scope, key, year).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Challenge{}, ErrGoalNotFound
	}
	if err != nil {
		return models.Challenge{}, fmt.Errorf("find challenge: %w", err)
	}
	return c, nil
}

func (s *Service) createWithParticipant(ctx context.Context, c *models.Challenge, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return tx.Create(&models.ChallengeParticipant{ChallengeID: c.ID, UserID: userID}).Error
	})
}

// retrySetTarget handles the insert race: when a concurrent caller won the
// unique index, fall back to updating the row that now exists.
func (s *Service) retrySetTarget(ctx context.Context, scope models.ChallengeScope, key string, year int, targetKm float64, createErr error) (models.Challenge, error) {
	existing, err := s.findGoal(ctx, scope, key, year)
	if err != nil {
		return models.Challenge{}, fmt.Errorf("create challenge: %w", createErr)
	}
	if err := s.UpdateTarget(ctx, existing.ID, targetKm); err != nil {
		return models.Challenge{}, err
	}
	existing.TargetKm = targetKm
	return existing, nil
}
