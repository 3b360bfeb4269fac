package rest

import (
	"context"

	"github.com/gofiber/fiber/v2"
	jobdomain "github.com/sorogrupos/jobcast/jobs/domain"
	"github.com/sorogrupos/jobcast/pkg/utils"
	scheduledomain "github.com/sorogrupos/jobcast/schedules/domain"
	scheduleusecase "github.com/sorogrupos/jobcast/schedules/usecase"
	"github.com/sorogrupos/jobcast/validations"
)

type ScheduleHandler struct {
	uc    *scheduleusecase.ScheduleUsecase
	store *scheduleusecase.ScheduleStore
	jobs  jobdomain.JobRepository
}

func NewScheduleHandler(uc *scheduleusecase.ScheduleUsecase, store *scheduleusecase.ScheduleStore, jobs jobdomain.JobRepository) *ScheduleHandler {
	return &ScheduleHandler{uc: uc, store: store, jobs: jobs}
}

func (h *ScheduleHandler) Register(router fiber.Router) {
	g := router.Group("/schedules")
	g.Get("/", h.List)
	g.Get("/calendar", h.Calendar)
	g.Get("/quarantined", h.Quarantined)
	g.Get("/stats", h.Stats)
	g.Get("/batches/:id", h.GetBatch)
	g.Post("/batches/:id/reschedule", h.Reschedule)
	g.Post("/batches/:id/groups", h.AddGroups)
	g.Delete("/batches/:id", h.DeleteBatch)
	g.Delete("/rows/:id", h.DeleteRow)
}

func (h *ScheduleHandler) List(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	rows, err := h.uc.ListRows(c.UserContext(), user)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Schedules retrieved", rows)
}

func (h *ScheduleHandler) Calendar(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	if _, err := h.store.Refresh(c.UserContext(), user); err != nil {
		return respondError(c, err)
	}
	return ok(c, "Calendar retrieved", h.store.Calendar(user))
}

func (h *ScheduleHandler) Quarantined(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	rows, err := h.uc.ListQuarantined(c.UserContext(), user)
	utils.PanicIfNeeded(err)
	return ok(c, "Quarantined rows retrieved", rows)
}

func (h *ScheduleHandler) Stats(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	stats, err := h.uc.Stats(c.UserContext(), user)
	utils.PanicIfNeeded(err)
	return ok(c, "Stats retrieved", stats)
}

func (h *ScheduleHandler) GetBatch(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	batch, err := h.uc.GetBatch(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	h.store.OpenBatch(user, batch.ID)
	return ok(c, "Batch retrieved", fiber.Map{
		"batch":   batch,
		"preview": h.batchPreview(c.UserContext(), user, batch),
	})
}

// batchPreview joins the batch's primary job for the card header. Missing
// jobs (deleted after scheduling) just leave the preview empty.
func (h *ScheduleHandler) batchPreview(ctx context.Context, userID string, batch *scheduledomain.Batch) fiber.Map {
	if len(batch.Rows) == 0 || len(batch.Rows[0].JobIDs) == 0 {
		return nil
	}
	job, err := h.jobs.GetByID(ctx, userID, batch.Rows[0].JobIDs[0])
	if err != nil {
		return nil
	}
	preview := fiber.Map{"title": job.Title, "city": job.City}
	if !job.HideCompany {
		preview["company"] = job.Company
	}
	return preview
}

func (h *ScheduleHandler) Reschedule(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	var req validations.RescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	req.BatchID = c.Params("id")
	if err := validations.ValidateReschedule(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}

	var moved int
	err := h.store.Mutate(c.UserContext(), user, func(ctx context.Context) error {
		n, err := h.uc.Reschedule(ctx, user, req.BatchID, req.Date, req.Time)
		moved = n
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Batch rescheduled", fiber.Map{"rows_moved": moved})
}

func (h *ScheduleHandler) AddGroups(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	var req validations.AddGroupsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	req.BatchID = c.Params("id")
	if err := validations.ValidateAddGroups(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}

	rows, err := h.uc.AddGroups(c.UserContext(), user, req.BatchID, req.GroupIDs)
	if err != nil {
		return respondError(c, err)
	}
	// The insert already happened transactionally; the cached view just
	// gains the new rows instead of re-reading everything.
	h.store.Append(user, rows)
	return created(c, "Groups added to batch", rows)
}

func (h *ScheduleHandler) DeleteBatch(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	deleted, err := h.store.DeleteBatch(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Batch deleted", fiber.Map{"rows_deleted": deleted})
}

func (h *ScheduleHandler) DeleteRow(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	if err := h.store.DeleteRow(c.UserContext(), user, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return ok(c, "Row deleted", nil)
}
