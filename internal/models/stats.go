package models

// Shared result vocabulary for the aggregation, goal and ranking services.
// Every stats-shaped response across the engine uses one of these, never an
// ad hoc map.

// PeriodStats summarizes a user's entries over a year or a single month.
// Avg is Sum/Count and is zero when Count is zero.
type PeriodStats struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Avg   float64 `json:"avg"`
}

// BestStats is a user's all-time highlights.
type BestStats struct {
	BestRun   float64 `json:"bestRun"`
	TotalRuns int64   `json:"totalRuns"`
	TotalKm   float64 `json:"totalKm"`
}

// RunnerTotals is one leaderboard row.
type RunnerTotals struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Sum      float64 `json:"sum"`
	Count    int64   `json:"count"`
	Avg      float64 `json:"avg"`
	Max      float64 `json:"max"`
}

// MonthTotal is one slot of a zero-filled 12-month breakdown.
type MonthTotal struct {
	Month int     `json:"month"`
	Sum   float64 `json:"sum"`
}

// GroupStats summarizes a group's entries over a period.
type GroupStats struct {
	Sum           float64 `json:"sum"`
	Count         int64   `json:"count"`
	DistinctUsers int64   `json:"distinctUsers"`
}

// GroupSummary is one row of the cross-group yearly report.
type GroupSummary struct {
	GroupID       string  `json:"groupId"`
	Sum           float64 `json:"sum"`
	Count         int64   `json:"count"`
	DistinctUsers int64   `json:"distinctUsers"`
}

// GoalProgress pairs a challenge's covered distance with its target.
// Percent is zero when the target is not positive.
type GoalProgress struct {
	CoveredKm float64 `json:"coveredKm"`
	TargetKm  float64 `json:"targetKm"`
	Percent   float64 `json:"percent"`
}

// RankResult locates a user on the yearly leaderboard. Position is 1-based;
// zero means the user has no entries for that year.
type RankResult struct {
	Position          int64   `json:"position"`
	TotalParticipants int64   `json:"totalParticipants"`
	TotalKm           float64 `json:"totalKm"`
}
