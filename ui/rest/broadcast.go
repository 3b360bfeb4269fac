package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sorogrupos/jobcast/broadcast/usecase"
	"github.com/sorogrupos/jobcast/pkg/fanout"
	scheduledomain "github.com/sorogrupos/jobcast/schedules/domain"
	"github.com/sorogrupos/jobcast/validations"
)

type BroadcastHandler struct {
	uc   *usecase.BroadcastUsecase
	pool *fanout.Pool
}

func NewBroadcastHandler(uc *usecase.BroadcastUsecase, pool *fanout.Pool) *BroadcastHandler {
	return &BroadcastHandler{uc: uc, pool: pool}
}

func (h *BroadcastHandler) Register(router fiber.Router) {
	g := router.Group("/broadcasts")
	g.Post("/", h.Compose)
	g.Post("/send-now", h.SendNowCompose)
	g.Post("/:batchId/send-now", h.SendNow)
	g.Get("/history", h.History)
	g.Get("/pool", h.PoolStats)
}

func (h *BroadcastHandler) Compose(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	var req usecase.ComposeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	req.UserID = user
	if err := validations.ValidateCompose(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}

	rows, err := h.uc.CreateSchedules(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "Broadcast scheduled", rows)
}

// SendNowCompose turns a fresh composer selection into a batch stamped
// with the current moment and dispatches it immediately.
func (h *BroadcastHandler) SendNowCompose(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	var req usecase.SendNowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	req.UserID = user
	if err := validations.ValidateSendNow(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}

	rows, err := h.uc.ComposeAndSend(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "Broadcast sent", rows)
}

func (h *BroadcastHandler) SendNow(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	dispatched, err := h.uc.SendNow(c.UserContext(), user, c.Params("batchId"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Batch queued for delivery", fiber.Map{"dispatched": dispatched})
}

func (h *BroadcastHandler) History(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	raw := c.Query("status", "all")
	if raw == "all" {
		rows, err := h.uc.HistoryAll(c.UserContext(), user)
		if err != nil {
			return respondError(c, err)
		}
		return ok(c, "History retrieved", rows)
	}

	status, err := parsePublishStatus(raw)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be all, -1, 0, 1, failed, pending or sent"})
	}

	rows, err := h.uc.History(c.UserContext(), user, status)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "History retrieved", rows)
}

func (h *BroadcastHandler) PoolStats(c *fiber.Ctx) error {
	return ok(c, "Pool stats retrieved", h.pool.GetStats())
}

func parsePublishStatus(raw string) (scheduledomain.PublishStatus, error) {
	switch raw {
	case "failed":
		return scheduledomain.PublishFailed, nil
	case "pending":
		return scheduledomain.PublishPending, nil
	case "sent":
		return scheduledomain.PublishSent, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < -1 || n > 1 {
		return 0, fiber.ErrBadRequest
	}
	return scheduledomain.PublishStatus(n), nil
}
