package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	applicationdomain "github.com/sorogrupos/jobcast/applications/domain"
	broadcastusecase "github.com/sorogrupos/jobcast/broadcast/usecase"
	groupdomain "github.com/sorogrupos/jobcast/groups/domain"
	jobdomain "github.com/sorogrupos/jobcast/jobs/domain"
	pkgError "github.com/sorogrupos/jobcast/pkg/error"
	"github.com/sorogrupos/jobcast/pkg/utils"
	scheduledomain "github.com/sorogrupos/jobcast/schedules/domain"
)

// userID resolves the tenant for the request. Auth sits in front of the
// API; this only scopes data access.
func userID(c *fiber.Ctx) string {
	if id := c.Get("X-User-ID"); id != "" {
		return id
	}
	return c.Query("user_id")
}

func requireUserID(c *fiber.Ctx) (string, bool) {
	id := userID(c)
	if id == "" {
		_ = respondError(c, pkgError.ForbiddenError("X-User-ID header or user_id query parameter is required"))
		return "", false
	}
	return id, true
}

func ok(c *fiber.Ctx, message string, results any) error {
	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: message,
		Results: results,
	})
}

func created(c *fiber.Ctx, message string, results any) error {
	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  fiber.StatusCreated,
		Code:    "CREATED",
		Message: message,
		Results: results,
	})
}

var notFoundErrs = []error{
	scheduledomain.ErrScheduleNotFound,
	scheduledomain.ErrBatchNotFound,
	jobdomain.ErrJobNotFound,
	groupdomain.ErrGroupNotFound,
	groupdomain.ErrTagNotFound,
	applicationdomain.ErrApplicationNotFound,
}

var badRequestErrs = []error{
	scheduledomain.ErrScheduleTooSoon,
	scheduledomain.ErrNoNewGroups,
	applicationdomain.ErrInvalidStatus,
	jobdomain.ErrJobPaused,
	broadcastusecase.ErrNoJobs,
	broadcastusecase.ErrTooManyJobs,
	broadcastusecase.ErrNoGroups,
	broadcastusecase.ErrNoDates,
	broadcastusecase.ErrOutsideWindow,
	broadcastusecase.ErrNotHourlySlot,
}

var conflictErrs = []error{
	scheduledomain.ErrBatchLocked,
	scheduledomain.ErrRowInPast,
	groupdomain.ErrDuplicateGroup,
	broadcastusecase.ErrBroadcastBusy,
}

// respondError maps domain errors onto HTTP statuses in one place.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "INTERNAL_SERVER_ERROR"

	switch {
	case matchAny(err, notFoundErrs):
		// typed so the recovery middleware and this path agree on shape
		err = pkgError.NotFoundError(err.Error())
	case matchAny(err, badRequestErrs):
		status, code = fiber.StatusBadRequest, "BAD_REQUEST"
	case matchAny(err, conflictErrs):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, broadcastusecase.ErrPoolSaturated):
		status, code = fiber.StatusServiceUnavailable, "QUEUE_FULL"
	}

	if generic, isGeneric := err.(pkgError.GenericError); isGeneric {
		status, code = generic.StatusCode(), generic.ErrCode()
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    code,
		Message: err.Error(),
	})
}

func matchAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
