package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sorogrupos/jobcast/jobs/domain"
	"github.com/sorogrupos/jobcast/jobs/usecase"
	"github.com/sorogrupos/jobcast/validations"
)

type JobHandler struct {
	uc *usecase.JobUsecase
}

func NewJobHandler(uc *usecase.JobUsecase) *JobHandler {
	return &JobHandler{uc: uc}
}

func (h *JobHandler) Register(router fiber.Router) {
	g := router.Group("/jobs")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Put("/:id", h.Update)
	g.Post("/:id/pause", h.Pause)
	g.Post("/:id/activate", h.Activate)
	g.Delete("/:id", h.Delete)
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	var job domain.Job
	if err := c.BodyParser(&job); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	job.UserID = user
	if err := validations.ValidateJob(c.UserContext(), job); err != nil {
		return respondError(c, err)
	}

	if err := h.uc.Create(c.UserContext(), &job); err != nil {
		return respondError(c, err)
	}
	return created(c, "Job created", job)
}

func (h *JobHandler) List(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	jobs, err := h.uc.List(c.UserContext(), user)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Jobs retrieved", jobs)
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	job, err := h.uc.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Job retrieved", job)
}

func (h *JobHandler) Update(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	var job domain.Job
	if err := c.BodyParser(&job); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	job.ID = c.Params("id")
	job.UserID = user
	if err := validations.ValidateJob(c.UserContext(), job); err != nil {
		return respondError(c, err)
	}

	if err := h.uc.Update(c.UserContext(), &job); err != nil {
		return respondError(c, err)
	}
	return ok(c, "Job updated", job)
}

func (h *JobHandler) Pause(c *fiber.Ctx) error {
	return h.setStatus(c, domain.JobPaused, "Job paused")
}

func (h *JobHandler) Activate(c *fiber.Ctx) error {
	return h.setStatus(c, domain.JobActive, "Job activated")
}

func (h *JobHandler) setStatus(c *fiber.Ctx, status domain.JobStatus, message string) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	job, err := h.uc.SetStatus(c.UserContext(), user, c.Params("id"), status)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, message, job)
}

func (h *JobHandler) Delete(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	touched, err := h.uc.Delete(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Job deleted", fiber.Map{"schedule_rows_adjusted": touched})
}
