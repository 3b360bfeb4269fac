package rest

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/sorogrupos/jobcast/core/config"
	"github.com/sorogrupos/jobcast/infrastructure/valkey"
)

type HealthHandler struct {
	startedAt time.Time
	vk        *valkey.Client
}

func NewHealthHandler(vk *valkey.Client) *HealthHandler {
	return &HealthHandler{startedAt: time.Now(), vk: vk}
}

func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.Status)
}

func (h *HealthHandler) Status(c *fiber.Ctx) error {
	valkeyStatus := "disabled"
	if h.vk != nil {
		if h.vk.IsConnected() {
			valkeyStatus = "connected"
		} else {
			valkeyStatus = "unreachable"
		}
	}

	return ok(c, "Service healthy", fiber.Map{
		"version": config.Global.App.Version,
		"started": humanize.Time(h.startedAt),
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"valkey":  valkeyStatus,
	})
}
