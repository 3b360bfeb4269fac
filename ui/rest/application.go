package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sorogrupos/jobcast/applications/domain"
	"github.com/sorogrupos/jobcast/applications/usecase"
	"github.com/sorogrupos/jobcast/validations"
)

type ApplicationHandler struct {
	uc *usecase.ApplicationUsecase
}

func NewApplicationHandler(uc *usecase.ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

func (h *ApplicationHandler) Register(router fiber.Router) {
	g := router.Group("/applications")
	g.Post("/", h.Submit)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Post("/:id/review", h.Review)
	g.Put("/:id/note", h.Note)
	g.Post("/:id/block", h.Block)
}

func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	var app domain.Application
	if err := c.BodyParser(&app); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	app.UserID = user
	if err := validations.ValidateApplication(c.UserContext(), app); err != nil {
		return respondError(c, err)
	}

	if err := h.uc.Submit(c.UserContext(), &app); err != nil {
		return respondError(c, err)
	}
	return created(c, "Application recorded", app)
}

func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	apps, err := h.uc.List(c.UserContext(), user, c.Query("job_id"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Applications retrieved", apps)
}

func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	app, err := h.uc.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Application retrieved", app)
}

func (h *ApplicationHandler) Review(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	type req struct {
		Status domain.ApplicationStatus `json:"status"`
	}
	var r req
	if err := c.BodyParser(&r); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := h.uc.Review(c.UserContext(), user, c.Params("id"), r.Status); err != nil {
		return respondError(c, err)
	}
	return ok(c, "Application reviewed", nil)
}

func (h *ApplicationHandler) Note(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	type req struct {
		Note string `json:"note"`
	}
	var r req
	if err := c.BodyParser(&r); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := h.uc.Annotate(c.UserContext(), user, c.Params("id"), r.Note); err != nil {
		return respondError(c, err)
	}
	return ok(c, "Note saved", nil)
}

func (h *ApplicationHandler) Block(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	type req struct {
		Blocked bool `json:"blocked"`
	}
	var r req
	if err := c.BodyParser(&r); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := h.uc.SetBlocked(c.UserContext(), user, c.Params("id"), r.Blocked); err != nil {
		return respondError(c, err)
	}
	return ok(c, "Candidate block updated", nil)
}
