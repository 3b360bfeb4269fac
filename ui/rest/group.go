package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sorogrupos/jobcast/groups/domain"
	"github.com/sorogrupos/jobcast/groups/usecase"
	"github.com/sorogrupos/jobcast/validations"
)

type GroupHandler struct {
	uc *usecase.GroupUsecase
}

func NewGroupHandler(uc *usecase.GroupUsecase) *GroupHandler {
	return &GroupHandler{uc: uc}
}

func (h *GroupHandler) Register(router fiber.Router) {
	g := router.Group("/groups")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Put("/:id", h.Update)
	g.Put("/:id/tags", h.SetTags)
	g.Delete("/:id", h.Delete)

	t := router.Group("/tags")
	t.Post("/", h.CreateTag)
	t.Get("/", h.ListTags)
	t.Delete("/:id", h.DeleteTag)
}

func (h *GroupHandler) Create(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	var group domain.Group
	if err := c.BodyParser(&group); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	group.UserID = user
	if err := validations.ValidateGroup(c.UserContext(), group); err != nil {
		return respondError(c, err)
	}

	if err := h.uc.Register(c.UserContext(), &group); err != nil {
		return respondError(c, err)
	}
	return created(c, "Group registered", group)
}

func (h *GroupHandler) List(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	groups, err := h.uc.List(c.UserContext(), user, c.Query("tag"), c.Query("name"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Groups retrieved", groups)
}

func (h *GroupHandler) Get(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	group, err := h.uc.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Group retrieved", group)
}

func (h *GroupHandler) Update(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	var group domain.Group
	if err := c.BodyParser(&group); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	group.ID = c.Params("id")
	group.UserID = user
	if err := validations.ValidateGroup(c.UserContext(), group); err != nil {
		return respondError(c, err)
	}

	if err := h.uc.Update(c.UserContext(), &group); err != nil {
		return respondError(c, err)
	}
	return ok(c, "Group updated", group)
}

func (h *GroupHandler) SetTags(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	type req struct {
		TagIDs []string `json:"tag_ids"`
	}
	var r req
	if err := c.BodyParser(&r); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := h.uc.SetTags(c.UserContext(), user, c.Params("id"), r.TagIDs); err != nil {
		return respondError(c, err)
	}
	return ok(c, "Tags updated", nil)
}

func (h *GroupHandler) Delete(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	if err := h.uc.Delete(c.UserContext(), user, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return ok(c, "Group deleted", nil)
}

func (h *GroupHandler) CreateTag(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}

	var tag domain.Tag
	if err := c.BodyParser(&tag); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	tag.UserID = user
	if tag.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	if err := h.uc.CreateTag(c.UserContext(), &tag); err != nil {
		return respondError(c, err)
	}
	return created(c, "Tag created", tag)
}

func (h *GroupHandler) ListTags(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	tags, err := h.uc.ListTags(c.UserContext(), user)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Tags retrieved", tags)
}

func (h *GroupHandler) DeleteTag(c *fiber.Ctx) error {
	user, okUser := requireUserID(c)
	if !okUser {
		return nil
	}
	if err := h.uc.DeleteTag(c.UserContext(), user, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return ok(c, "Tag deleted", nil)
}
