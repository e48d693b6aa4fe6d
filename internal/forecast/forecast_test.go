package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectWindowLengthHandlesLeapYear(t *testing.T) {
	p := Project(1000, 0, date(2024, time.January, 1), date(2024, time.December, 31), date(2024, time.January, 1))
	assert.Equal(t, 366, p.DaysInWindow)

	p = Project(1000, 0, date(2025, time.January, 1), date(2025, time.December, 31), date(2025, time.June, 1))
	assert.Equal(t, 365, p.DaysInWindow)
}

func TestProjectDayOneHasNoDivisionErrors(t *testing.T) {
	p := Project(1000, 0, date(2024, time.January, 1), date(2024, time.December, 31), date(2024, time.January, 1))

	assert.Zero(t, p.DaysElapsed)
	assert.Zero(t, p.ExpectedKm)
	assert.Zero(t, p.PaceKmPerYear)
	assert.Nil(t, p.CompletionDate)
	assert.False(t, p.OnTrackForWindow)
	assert.False(t, math.IsNaN(p.ExpectedKm))
	assert.False(t, math.IsInf(p.PaceKmPerYear, 0))
}

func TestProjectZeroTargetZeroProgress(t *testing.T) {
	p := Project(0, 0, date(2024, time.January, 1), date(2024, time.December, 31), date(2024, time.July, 1))

	assert.Zero(t, p.ExpectedKm)
	assert.Zero(t, p.PaceKmPerYear)
	assert.Zero(t, p.RemainingKm)
	assert.Nil(t, p.CompletionDate)
}

func TestProjectTodayBeforeWindowClampsElapsed(t *testing.T) {
	p := Project(1000, 0, date(2024, time.March, 1), date(2024, time.December, 31), date(2024, time.February, 1))
	assert.Zero(t, p.DaysElapsed)
}

func TestProjectOnPaceForecastsInsideWindow(t *testing.T) {
	// 100 days in, 300 of 1000 km: ahead of the straight line.
	start := date(2024, time.January, 1)
	today := start.AddDate(0, 0, 100)
	p := Project(1000, 300, start, date(2024, time.December, 31), today)

	assert.Equal(t, 100, p.DaysElapsed)
	assert.InDelta(t, 1000.0*100/366, p.ExpectedKm, 1e-9)
	assert.InDelta(t, 300.0*366/100, p.PaceKmPerYear, 1e-9)
	assert.InDelta(t, 700, p.RemainingKm, 1e-9)

	require.NotNil(t, p.CompletionDate)
	assert.True(t, p.OnTrackForWindow)
	// 3 km/day pace, 700 km left: ~233 days out, well inside the year.
	expected := today.AddDate(0, 0, 233)
	assert.Equal(t, expected, *p.CompletionDate)
}

func TestProjectBehindPaceReportsUnreachable(t *testing.T) {
	// 300 days in, only 100 of 1000 km: the line lands next year.
	start := date(2024, time.January, 1)
	p := Project(1000, 100, start, date(2024, time.December, 31), start.AddDate(0, 0, 300))

	assert.Nil(t, p.CompletionDate)
	assert.False(t, p.OnTrackForWindow)
	assert.Positive(t, p.PaceKmPerYear)
}

func TestProjectTargetAlreadyReached(t *testing.T) {
	today := date(2024, time.November, 1)
	p := Project(1000, 1200, date(2024, time.January, 1), date(2024, time.December, 31), today)

	assert.Zero(t, p.RemainingKm)
	require.NotNil(t, p.CompletionDate)
	assert.Equal(t, today, *p.CompletionDate)
	assert.True(t, p.OnTrackForWindow)
}
