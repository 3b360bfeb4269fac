package domain

import "errors"

var (
	// ErrScheduleNotFound is returned when a schedule row does not exist or
	// belongs to another user.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrBatchNotFound is returned when a batch has no rows for the user.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrBatchLocked is returned when a batch can no longer be edited
	// because a row was already sent or its send moment passed.
	ErrBatchLocked = errors.New("batch already sent or past its send time")

	// ErrScheduleTooSoon is returned when the requested send moment is less
	// than the minimum lead away.
	ErrScheduleTooSoon = errors.New("schedule must be at least 30 minutes in the future")

	// ErrRowInPast is returned when deleting a row whose send moment passed.
	ErrRowInPast = errors.New("past schedules cannot be deleted")

	// ErrNoNewGroups is returned when every requested group already targets
	// the batch.
	ErrNoNewGroups = errors.New("no new groups to add")
)
