package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runclub/runlog-api/internal/challenge"
	"github.com/runclub/runlog-api/internal/config"
	"github.com/runclub/runlog-api/internal/handlers"
	"github.com/runclub/runlog-api/internal/ledger"
	"github.com/runclub/runlog-api/internal/logger"
	"github.com/runclub/runlog-api/internal/middleware"
	"github.com/runclub/runlog-api/internal/models"
	"github.com/runclub/runlog-api/internal/rank"
	"github.com/runclub/runlog-api/internal/routes"
	"github.com/runclub/runlog-api/internal/stats"
	"github.com/runclub/runlog-api/internal/testutil"
	"github.com/runclub/runlog-api/internal/users"
)

type fixture struct {
	app *fiber.App
	cfg *config.Config
}

func newFixture(t *testing.T, today time.Time) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		BotAPIKey:     "bot-key",
		MaxDistanceKm: 100,
		AdminUserIDs:  []string{"admin"},
	}
	zl := logger.NewNop()
	clock := func() time.Time { return today }

	h := handlers.New(
		cfg,
		zl,
		ledger.New(db, zl, cfg.MaxDistanceKm),
		stats.New(db),
		challenge.New(db, zl).WithClock(clock),
		rank.New(db),
		users.New(db, zl),
	).WithClock(clock)

	app := fiber.New()
	routes.Setup(app, cfg, h)
	return &fixture{app: app, cfg: cfg}
}

func (f *fixture) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := middleware.GenerateToken(userID, "user-"+userID, f.cfg.JWTSecret)
	require.NoError(t, err)
	return token
}

func (f *fixture) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestIssueTokenRequiresAPIKey(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 1))

	resp := f.request(t, http.MethodPost, "/api/auth/token", "", map[string]string{
		"apiKey": "wrong", "userId": "42",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.request(t, http.MethodPost, "/api/auth/token", "", map[string]string{
		"apiKey": "bot-key", "userId": "42", "username": "runner",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "42", body.User.UserID)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 1))

	resp := f.request(t, http.MethodGet, "/api/stats/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubmitRunAndUserTotal(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 1))
	token := f.token(t, "42")

	for _, run := range []map[string]interface{}{
		{"km": 5.0, "date": "2024-01-10"},
		{"km": 7.5, "date": "2024-01-20"},
	} {
		resp := f.request(t, http.MethodPost, "/api/runs/", token, run)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := f.request(t, http.MethodGet, "/api/stats/me?year=2024", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var period models.PeriodStats
	decode(t, resp, &period)
	assert.Equal(t, int64(2), period.Count)
	assert.InDelta(t, 12.5, period.Sum, 1e-9)
	assert.InDelta(t, 6.25, period.Avg, 1e-9)
}

func TestSubmitRunRejectsOutOfRange(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 1))
	token := f.token(t, "42")

	resp := f.request(t, http.MethodPost, "/api/runs/", token, map[string]interface{}{
		"km": 150.0, "date": "2024-01-10",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = f.request(t, http.MethodGet, "/api/stats/me?year=2024", token, nil)
	var period models.PeriodStats
	decode(t, resp, &period)
	assert.Zero(t, period.Count)
}

func TestPersonalGoalLifecycle(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 1))
	token := f.token(t, "42")

	resp := f.request(t, http.MethodGet, "/api/goals/personal?year=2024", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.request(t, http.MethodPut, "/api/goals/personal", token, models.SetGoalRequest{
		Year: 2024, TargetKm: 1000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, run := range []map[string]interface{}{
		{"km": 5.0, "date": "2024-01-10"},
		{"km": 7.5, "date": "2024-01-20"},
	} {
		f.request(t, http.MethodPost, "/api/runs/", token, run)
	}

	resp = f.request(t, http.MethodGet, "/api/goals/personal?year=2024", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view handlers.GoalView
	decode(t, resp, &view)
	assert.Equal(t, challenge.StateActive, view.State)
	assert.InDelta(t, 12.5, view.Progress.CoveredKm, 1e-9)
	assert.InDelta(t, 1.25, view.Progress.Percent, 1e-9)
	assert.Equal(t, int64(1), view.Participants)
	assert.Equal(t, 366, view.Projection.DaysInWindow)
}

func TestGroupGoalAcceptsRawAndCanonicalIDs(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 1))
	token := f.token(t, "42")

	resp := f.request(t, http.MethodPut, "/api/groups/-1001234567890/goal", token, models.SetGoalRequest{
		Year: 2024, TargetKm: 500,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f.request(t, http.MethodPost, "/api/runs/", token, map[string]interface{}{
		"km": 10.0, "date": "2024-02-01", "groupId": "-1001234567890",
	})

	for _, id := range []string{"-1001234567890", "1234567890"} {
		resp := f.request(t, http.MethodGet, fmt.Sprintf("/api/groups/%s/goal?year=2024", id), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, "id=%q", id)

		var view handlers.GoalView
		decode(t, resp, &view)
		assert.InDelta(t, 10, view.Progress.CoveredKm, 1e-9, "id=%q", id)
		assert.Equal(t, int64(1), view.Participants)
	}
}

func TestAdminDeleteByRange(t *testing.T) {
	f := newFixture(t, testutil.Date(2025, time.February, 1))
	userToken := f.token(t, "42")
	adminToken := f.token(t, "admin")

	for _, date := range []string{"2025-01-06", "2025-01-07", "2025-01-07", "2025-01-08", "2025-01-09"} {
		f.request(t, http.MethodPost, "/api/runs/", userToken, map[string]interface{}{
			"km": 5.0, "date": date,
		})
	}

	// Non-admins are refused.
	resp := f.request(t, http.MethodDelete, "/api/admin/runs?start=2025-01-07&end=2025-01-08", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.request(t, http.MethodDelete, "/api/admin/runs?start=2025-01-07&end=2025-01-08", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Deleted int64 `json:"deleted"`
	}
	decode(t, resp, &body)
	assert.Equal(t, int64(3), body.Deleted)

	resp = f.request(t, http.MethodGet, "/api/stats/me?year=2025", userToken, nil)
	var period models.PeriodStats
	decode(t, resp, &period)
	assert.Equal(t, int64(2), period.Count)
}

func TestRecentRunsAndDelete(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 1))
	token := f.token(t, "42")

	for _, date := range []string{"2024-03-01", "2024-03-05", "2024-03-03"} {
		f.request(t, http.MethodPost, "/api/runs/", token, map[string]interface{}{"km": 5.0, "date": date})
	}

	resp := f.request(t, http.MethodGet, "/api/runs/recent?limit=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []models.RunEntry
	decode(t, resp, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-03-05", entries[0].Date.UTC().Format("2006-01-02"))

	resp = f.request(t, http.MethodDelete, "/api/runs/"+entries[0].ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.request(t, http.MethodGet, "/api/stats/me?year=2024", token, nil)
	var period models.PeriodStats
	decode(t, resp, &period)
	assert.Equal(t, int64(2), period.Count)
}

func TestUpdateProfileSetsDefaultGoal(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 1))
	token := f.token(t, "42")

	goal := 1200.0
	name := "marathoner"
	resp := f.request(t, http.MethodPut, "/api/users/me", token, models.UpdateProfileRequest{
		Username: &name,
		GoalKm:   &goal,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	decode(t, resp, &user)
	assert.Equal(t, "marathoner", user.Username)
	assert.Equal(t, 1200.0, user.GoalKm)
}
