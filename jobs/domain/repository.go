package domain

import "context"

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, userID, jobID string) (*Job, error)
	ListByUser(ctx context.Context, userID string) ([]Job, error)
	Update(ctx context.Context, job *Job) error
	Delete(ctx context.Context, userID, jobID string) error
}
