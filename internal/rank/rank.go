// Package rank locates a user on the yearly leaderboard. It orders exactly
// like stats.TopRunners (sum descending, user id ascending), so the two
// views can never disagree for the same data.
package rank

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/runclub/runlog-api/internal/models"
	"github.com/runclub/runlog-api/internal/stats"
)

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

type totalRow struct {
	UserID string
	Sum    float64
}

// Rank returns the user's 1-based position among every user with at least
// one entry in the year. A user without entries is unranked: Position 0,
// with TotalParticipants still reporting the field size.
func (s *Service) Rank(ctx context.Context, userID string, year int) (models.RankResult, error) {
	start, end := stats.PeriodRange(year, 0)

	var rows []totalRow
	err := s.db.WithContext(ctx).
		Model(&models.RunEntry{}).
		Select("user_id AS user_id, COALESCE(SUM(km), 0) AS sum").
		Where("date >= ? AND date < ?", start, end).
		Group("user_id").
		Order("SUM(km) DESC, user_id ASC").
		Scan(&rows).Error
	if err != nil {
		return models.RankResult{}, fmt.Errorf("rank: %w", err)
	}

	result := models.RankResult{TotalParticipants: int64(len(rows))}
	for i, row := range rows {
		if row.UserID == userID {
			result.Position = int64(i + 1)
			result.TotalKm = row.Sum
			break
		}
	}
	return result, nil
}
