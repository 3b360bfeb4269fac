package domain

import "context"

// ScheduleRepository defines persistence for schedule rows. Batch-wide
// mutations are transactional: either every sibling row changes or none do.
type ScheduleRepository interface {
	// CreateRows inserts the rows in one transaction. Empty ids are filled in.
	CreateRows(ctx context.Context, rows []*ScheduleRow) error

	GetRow(ctx context.Context, userID, rowID string) (*ScheduleRow, error)
	ListByUser(ctx context.Context, userID string) ([]ScheduleRow, error)
	ListBatch(ctx context.Context, userID, batchID string) ([]ScheduleRow, error)

	// RescheduleBatch moves every row of the batch to the new date/time in
	// one transaction and returns the number of rows updated.
	RescheduleBatch(ctx context.Context, userID, batchID, newDate, newTime string) (int, error)

	DeleteRow(ctx context.Context, userID, rowID string) error

	// UpdateJobIDs rewrites a row's job list (job-delete cascade).
	UpdateJobIDs(ctx context.Context, rowID string, jobIDs []string) error

	// ListFutureByJob returns rows containing the job scheduled on or after
	// fromDate, across the whole table (cascade runs as the row owner).
	ListFutureByJob(ctx context.Context, jobID, fromDate string) ([]ScheduleRow, error)

	CountByPublishStatus(ctx context.Context, userID string, status PublishStatus) (int64, error)
	ListByPublishStatus(ctx context.Context, userID string, status PublishStatus) ([]ScheduleRow, error)

	// ListQuarantined returns rows whose jobs_ids could not be decoded.
	ListQuarantined(ctx context.Context, userID string) ([]ScheduleRow, error)
}
