// Package forecast computes straight-line goal projections from pace to
// date. Everything here is pure arithmetic over the challenge window.
package forecast

import "time"

// Projection is the linear outlook for a goal at a point in time.
type Projection struct {
	DaysElapsed   int     `json:"daysElapsed"`
	DaysInWindow  int     `json:"daysInWindow"`
	ExpectedKm    float64 `json:"expectedKm"`    // straight-line pace check: target * elapsed/window
	PaceKmPerYear float64 `json:"paceKmPerYear"` // progress annualized over the window
	RemainingKm   float64 `json:"remainingKm"`
	// CompletionDate is the day the target is reached at the current pace.
	// Nil when there is no positive pace or when the forecast lands outside
	// the window, in which case OnTrackForWindow is false.
	CompletionDate   *time.Time `json:"completionDate,omitempty"`
	OnTrackForWindow bool       `json:"onTrackForWindow"`
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Project evaluates a goal's pace against its window as of today. Zero
// elapsed days, zero targets and zero progress all resolve to zero-valued
// fields rather than division errors: a freshly created goal on day one is
// the normal case, not an edge.
func Project(targetKm, progressKm float64, start, end, today time.Time) Projection {
	start, end, today = dateOnly(start), dateOnly(end), dateOnly(today)

	daysElapsed := int(today.Sub(start).Hours() / 24)
	if daysElapsed < 0 {
		daysElapsed = 0
	}
	// Window length is inclusive of both endpoints, so a calendar year gives
	// 365 or 366.
	daysInWindow := int(end.Sub(start).Hours()/24) + 1
	if daysInWindow < 1 {
		daysInWindow = 1
	}

	p := Projection{
		DaysElapsed:  daysElapsed,
		DaysInWindow: daysInWindow,
		ExpectedKm:   targetKm * float64(daysElapsed) / float64(daysInWindow),
		RemainingKm:  targetKm - progressKm,
	}
	if p.RemainingKm < 0 {
		p.RemainingKm = 0
	}

	if daysElapsed > 0 {
		p.PaceKmPerYear = progressKm * float64(daysInWindow) / float64(daysElapsed)
	}

	if progressKm >= targetKm && targetKm > 0 {
		p.CompletionDate = &today
		p.OnTrackForWindow = true
		return p
	}

	if p.PaceKmPerYear > 0 {
		daysToGoal := p.RemainingKm / (p.PaceKmPerYear / float64(daysInWindow))
		completion := today.AddDate(0, 0, int(daysToGoal))
		if !completion.After(end) {
			p.CompletionDate = &completion
			p.OnTrackForWindow = true
		}
	}
	return p
}
