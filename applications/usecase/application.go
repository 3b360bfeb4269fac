package usecase

import (
	"context"
	"fmt"

	"github.com/sorogrupos/jobcast/applications/domain"
	jobdomain "github.com/sorogrupos/jobcast/jobs/domain"
)

type ApplicationUsecase struct {
	repo domain.ApplicationRepository
	jobs jobdomain.JobRepository
}

func NewApplicationUsecase(repo domain.ApplicationRepository, jobs jobdomain.JobRepository) *ApplicationUsecase {
	return &ApplicationUsecase{repo: repo, jobs: jobs}
}

// Submit records an application after checking the job still exists.
func (u *ApplicationUsecase) Submit(ctx context.Context, app *domain.Application) error {
	if _, err := u.jobs.GetByID(ctx, app.UserID, app.JobID); err != nil {
		return err
	}
	if err := u.repo.Create(ctx, app); err != nil {
		return fmt.Errorf("failed to record application: %w", err)
	}
	return nil
}

func (u *ApplicationUsecase) Get(ctx context.Context, userID, id string) (*domain.Application, error) {
	return u.repo.GetByID(ctx, userID, id)
}

// List returns applications for the user, optionally narrowed to one job.
func (u *ApplicationUsecase) List(ctx context.Context, userID, jobID string) ([]domain.Application, error) {
	if jobID != "" {
		return u.repo.ListByJob(ctx, userID, jobID)
	}
	return u.repo.ListByUser(ctx, userID)
}

func (u *ApplicationUsecase) Review(ctx context.Context, userID, id string, status domain.ApplicationStatus) error {
	if !domain.ValidStatus(status) {
		return domain.ErrInvalidStatus
	}
	return u.repo.UpdateStatus(ctx, userID, id, status)
}

// Annotate replaces the reviewer note on an application.
func (u *ApplicationUsecase) Annotate(ctx context.Context, userID, id, note string) error {
	return u.repo.UpdateNote(ctx, userID, id, note)
}

// SetBlocked flags a candidate so later broadcasts can skip them.
func (u *ApplicationUsecase) SetBlocked(ctx context.Context, userID, id string, blocked bool) error {
	return u.repo.UpdateBlocked(ctx, userID, id, blocked)
}

func (u *ApplicationUsecase) CountForJob(ctx context.Context, userID, jobID string) (int64, error) {
	return u.repo.CountByJob(ctx, userID, jobID)
}
