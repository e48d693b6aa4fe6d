// Package ledger owns the append-only record of run entries: validation,
// insertion, and the administrative correction paths.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/runclub/runlog-api/internal/groupid"
	"github.com/runclub/runlog-api/internal/logger"
	"github.com/runclub/runlog-api/internal/models"
)

var (
	// ErrDistanceOutOfRange rejects non-positive distances and distances
	// above the configured maximum before anything is written.
	ErrDistanceOutOfRange = errors.New("distance out of range")
	// ErrEntryNotFound is returned when deleting an entry the user does not own.
	ErrEntryNotFound = errors.New("run entry not found")
)

type Service struct {
	db    *gorm.DB
	log   *logger.Logger
	maxKm float64
}

func New(db *gorm.DB, log *logger.Logger, maxKm float64) *Service {
	return &Service{
		db:    db,
		log:   log.With("service", "ledger"),
		maxKm: maxKm,
	}
}

// AppendInput is one submitted run. Username is used only when the user row
// does not exist yet.
type AppendInput struct {
	UserID    string
	Username  string
	Km        float64
	Date      time.Time
	Notes     *string
	GroupID   *string
	GroupKind *string
}

// Append validates and stores one immutable entry. The owning user row is
// created on first activity; group ids are normalized before storage so the
// canonical form is the only one that ever hits the table.
func (s *Service) Append(ctx context.Context, in AppendInput) (uuid.UUID, error) {
	if in.Km <= 0 || in.Km > s.maxKm {
		s.log.Warn("rejected run entry", "user_id", in.UserID, "km", in.Km)
		return uuid.Nil, fmt.Errorf("%w: %.2f km (max %.0f)", ErrDistanceOutOfRange, in.Km, s.maxKm)
	}

	var normalized *string
	if in.GroupID != nil && *in.GroupID != "" {
		g := groupid.Normalize(*in.GroupID)
		normalized = &g
	}

	user := models.User{UserID: in.UserID, Username: in.Username, IsActive: true}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", in.UserID).
		FirstOrCreate(&user).Error; err != nil {
		return uuid.Nil, fmt.Errorf("ensure user: %w", err)
	}

	entry := models.RunEntry{
		UserID:    in.UserID,
		Km:        in.Km,
		Date:      DateOnly(in.Date),
		Notes:     in.Notes,
		GroupID:   normalized,
		GroupKind: in.GroupKind,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return uuid.Nil, fmt.Errorf("append run entry: %w", err)
	}

	s.log.Info("run entry added", "user_id", in.UserID, "km", in.Km, "date", entry.Date.Format("2006-01-02"))
	return entry.ID, nil
}

// ListRecent returns the user's newest entries, most recent date first.
func (s *Service) ListRecent(ctx context.Context, userID string, limit int) ([]models.RunEntry, error) {
	if limit < 1 {
		limit = 5
	}
	var entries []models.RunEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	return entries, nil
}

// DeleteEntry hard-deletes one entry owned by the given user.
func (s *Service) DeleteEntry(ctx context.Context, userID string, entryID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&models.RunEntry{})
	if res.Error != nil {
		return fmt.Errorf("delete run entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// DeleteByDateRange hard-deletes every entry whose date falls inside the
// inclusive range, across all users. The affected-row count is returned for
// the caller's confirmation display.
func (s *Service) DeleteByDateRange(ctx context.Context, start, end time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", DateOnly(start), DateOnly(end)).
		Delete(&models.RunEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete by date range: %w", res.Error)
	}
	s.log.Info("deleted entries by date range",
		"start", DateOnly(start).Format("2006-01-02"),
		"end", DateOnly(end).Format("2006-01-02"),
		"count", res.RowsAffected)
	return res.RowsAffected, nil
}

// DateOnly truncates a timestamp to its UTC calendar date, the form every
// stored entry date uses.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
