// Package stats is the read-only aggregation layer over the run ledger.
// Every query scans live rows; there is no materialized cache. Entry volume
// per user or group is small enough that re-scanning is the simpler trade.
package stats

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/runclub/runlog-api/internal/groupid"
	"github.com/runclub/runlog-api/internal/models"
)

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// PeriodRange returns the half-open [start, end) window for a year, or for
// one month of it when month is 1..12.
func PeriodRange(year, month int) (time.Time, time.Time) {
	if month >= 1 && month <= 12 {
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

type periodRow struct {
	Count int64
	Sum   float64
	Avg   float64
}

// UserTotal returns count, sum and average for a user's entries in the given
// year, narrowed to one month when month is 1..12. Empty periods yield
// zeros, never NaN.
func (s *Service) UserTotal(ctx context.Context, userID string, year, month int) (models.PeriodStats, error) {
	start, end := PeriodRange(year, month)

	var row periodRow
	err := s.db.WithContext(ctx).
		Model(&models.RunEntry{}).
		Select("COUNT(*) AS count, COALESCE(SUM(km), 0) AS sum, COALESCE(AVG(km), 0) AS avg").
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Scan(&row).Error
	if err != nil {
		return models.PeriodStats{}, fmt.Errorf("user total: %w", err)
	}
	return models.PeriodStats{Count: row.Count, Sum: row.Sum, Avg: row.Avg}, nil
}

type bestRow struct {
	BestRun   float64
	TotalRuns int64
	TotalKm   float64
}

// UserBestStats returns the user's all-time best single run, run count and
// total distance.
func (s *Service) UserBestStats(ctx context.Context, userID string) (models.BestStats, error) {
	var row bestRow
	err := s.db.WithContext(ctx).
		Model(&models.RunEntry{}).
		Select("COALESCE(MAX(km), 0) AS best_run, COUNT(*) AS total_runs, COALESCE(SUM(km), 0) AS total_km").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return models.BestStats{}, fmt.Errorf("user best stats: %w", err)
	}
	return models.BestStats{BestRun: row.BestRun, TotalRuns: row.TotalRuns, TotalKm: row.TotalKm}, nil
}

// TopRunners returns the yearly leaderboard ordered by total distance
// descending, ties broken by ascending user id so the ordering is
// deterministic and matches rank.Service. groupID narrows the board to one
// group; raw supergroup ids are accepted.
func (s *Service) TopRunners(ctx context.Context, year, limit int, groupID string) ([]models.RunnerTotals, error) {
	if limit < 1 {
		limit = 10
	}
	start, end := PeriodRange(year, 0)

	q := s.db.WithContext(ctx).
		Model(&models.RunEntry{}).
		Select("run_entries.user_id AS user_id, COALESCE(users.username, '') AS username, "+
			"COALESCE(SUM(km), 0) AS sum, COUNT(*) AS count, "+
			"COALESCE(AVG(km), 0) AS avg, COALESCE(MAX(km), 0) AS max").
		Joins("LEFT JOIN users ON users.user_id = run_entries.user_id").
		Where("date >= ? AND date < ?", start, end).
		Group("run_entries.user_id, users.username").
		Order("SUM(km) DESC, run_entries.user_id ASC").
		Limit(limit)

	if groupID != "" {
		q = q.Where("run_entries.group_id = ?", groupid.Normalize(groupID))
	}

	var rows []models.RunnerTotals
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("top runners: %w", err)
	}
	return rows, nil
}

type dateKmRow struct {
	Date time.Time
	Km   float64
}

// UserMonthlyBreakdown returns twelve zero-filled month totals for the
// user's entries in the given year.
func (s *Service) UserMonthlyBreakdown(ctx context.Context, userID string, year int) ([]models.MonthTotal, error) {
	start, end := PeriodRange(year, 0)
	var rows []dateKmRow
	err := s.db.WithContext(ctx).
		Model(&models.RunEntry{}).
		Select("date, km").
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("user monthly breakdown: %w", err)
	}
	return bucketByMonth(rows), nil
}

// GroupMonthlyBreakdown returns twelve zero-filled month totals for a
// group's entries in the given year.
func (s *Service) GroupMonthlyBreakdown(ctx context.Context, groupID string, year int) ([]models.MonthTotal, error) {
	start, end := PeriodRange(year, 0)
	var rows []dateKmRow
	err := s.db.WithContext(ctx).
		Model(&models.RunEntry{}).
		Select("date, km").
		Where("group_id = ? AND date >= ? AND date < ?", groupid.Normalize(groupID), start, end).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("group monthly breakdown: %w", err)
	}
	return bucketByMonth(rows), nil
}

// Month extraction happens here rather than in SQL so the same query text
// runs on both sqlite and postgres.
func bucketByMonth(rows []dateKmRow) []models.MonthTotal {
	out := make([]models.MonthTotal, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, r := range rows {
		out[int(r.Date.Month())-1].Sum += r.Km
	}
	return out
}

type groupRow struct {
	Sum           float64
	Count         int64
	DistinctUsers int64
}

// GroupStats returns a group's totals for a year, narrowed to one month when
// month is 1..12.
func (s *Service) GroupStats(ctx context.Context, groupID string, year, month int) (models.GroupStats, error) {
	start, end := PeriodRange(year, month)
	return s.groupStatsBetween(ctx, groupID, start, end)
}

// GroupStatsUntilDate returns a group's cumulative totals for entries dated
// on or before (year, month, day). Used for same-day-last-year comparisons;
// the boundary date is inclusive.
func (s *Service) GroupStatsUntilDate(ctx context.Context, groupID string, year, month, day int) (models.GroupStats, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	boundary := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return s.groupStatsBetween(ctx, groupID, start, boundary.AddDate(0, 0, 1))
}

func (s *Service) groupStatsBetween(ctx context.Context, groupID string, start, end time.Time) (models.GroupStats, error) {
	var row groupRow
	err := s.db.WithContext(ctx).
		Model(&models.RunEntry{}).
		Select("COALESCE(SUM(km), 0) AS sum, COUNT(*) AS count, COUNT(DISTINCT user_id) AS distinct_users").
		Where("group_id = ? AND date >= ? AND date < ?", groupid.Normalize(groupID), start, end).
		Scan(&row).Error
	if err != nil {
		return models.GroupStats{}, fmt.Errorf("group stats: %w", err)
	}
	return models.GroupStats{Sum: row.Sum, Count: row.Count, DistinctUsers: row.DistinctUsers}, nil
}

// AllGroupsSummary returns per-group totals for cross-group reporting,
// largest total first.
func (s *Service) AllGroupsSummary(ctx context.Context, year int) ([]models.GroupSummary, error) {
	start, end := PeriodRange(year, 0)
	var rows []models.GroupSummary
	err := s.db.WithContext(ctx).
		Model(&models.RunEntry{}).
		Select("group_id AS group_id, COALESCE(SUM(km), 0) AS sum, COUNT(*) AS count, COUNT(DISTINCT user_id) AS distinct_users").
		Where("group_id IS NOT NULL AND group_id <> '' AND date >= ? AND date < ?", start, end).
		Group("group_id").
		Order("SUM(km) DESC, group_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("all groups summary: %w", err)
	}
	return rows, nil
}
