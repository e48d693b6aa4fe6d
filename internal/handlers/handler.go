// Package handlers is the HTTP boundary consumed by the conversational
// gateway. Handlers parse and validate transport input, call the services,
// and return plain structured JSON; all rendering belongs to the caller.
package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/runclub/runlog-api/internal/challenge"
	"github.com/runclub/runlog-api/internal/config"
	"github.com/runclub/runlog-api/internal/ledger"
	"github.com/runclub/runlog-api/internal/logger"
	"github.com/runclub/runlog-api/internal/rank"
	"github.com/runclub/runlog-api/internal/stats"
	"github.com/runclub/runlog-api/internal/users"
)

type Handler struct {
	cfg        *config.Config
	log        *logger.Logger
	ledger     *ledger.Service
	stats      *stats.Service
	challenges *challenge.Service
	rank       *rank.Service
	users      *users.Service
	now        func() time.Time
}

func New(
	cfg *config.Config,
	log *logger.Logger,
	ledgerSvc *ledger.Service,
	statsSvc *stats.Service,
	challengeSvc *challenge.Service,
	rankSvc *rank.Service,
	userSvc *users.Service,
) *Handler {
	return &Handler{
		cfg:        cfg,
		log:        log.With("component", "handlers"),
		ledger:     ledgerSvc,
		stats:      statsSvc,
		challenges: challengeSvc,
		rank:       rankSvc,
		users:      userSvc,
		now:        time.Now,
	}
}

// WithClock overrides the handler clock. Tests only.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// queryYear reads ?year=, defaulting to the current year.
func (h *Handler) queryYear(c *fiber.Ctx) int {
	if y, err := strconv.Atoi(c.Query("year")); err == nil && y > 0 {
		return y
	}
	return h.now().Year()
}

// queryMonth reads ?month=; zero means the whole year.
func queryMonth(c *fiber.Ctx) int {
	if m, err := strconv.Atoi(c.Query("month")); err == nil && m >= 1 && m <= 12 {
		return m
	}
	return 0
}

const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}
