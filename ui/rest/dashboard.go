package rest

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	groupusecase "github.com/sorogrupos/jobcast/groups/usecase"
	scheduleusecase "github.com/sorogrupos/jobcast/schedules/usecase"
)

// DashboardHandler aggregates the counters the dashboard home screen shows.
type DashboardHandler struct {
	schedules *scheduleusecase.ScheduleUsecase
	groups    *groupusecase.GroupUsecase
	startedAt time.Time
}

func NewDashboardHandler(schedules *scheduleusecase.ScheduleUsecase, groups *groupusecase.GroupUsecase) *DashboardHandler {
	return &DashboardHandler{schedules: schedules, groups: groups, startedAt: time.Now()}
}

func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.Counters)
}

func (h *DashboardHandler) Counters(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	stats, err := h.schedules.Stats(c.UserContext(), user)
	if err != nil {
		return respondError(c, err)
	}
	groups, err := h.groups.List(c.UserContext(), user, "", "")
	if err != nil {
		return respondError(c, err)
	}

	return ok(c, "Dashboard retrieved", fiber.Map{
		"pending": stats.Pending,
		"sent":    stats.Sent,
		"failed":  stats.Failed,
		"groups":  len(groups),
		"uptime":  humanize.Time(h.startedAt),
	})
}
