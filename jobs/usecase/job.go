package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sorogrupos/jobcast/jobs/domain"
	"github.com/sorogrupos/jobcast/pkg/timeutils"
	scheduledomain "github.com/sorogrupos/jobcast/schedules/domain"
)

type JobUsecase struct {
	repo      domain.JobRepository
	schedules scheduledomain.ScheduleRepository
	clock     func() time.Time
}

func NewJobUsecase(repo domain.JobRepository, schedules scheduledomain.ScheduleRepository) *JobUsecase {
	return &JobUsecase{
		repo:      repo,
		schedules: schedules,
		clock:     time.Now,
	}
}

func (u *JobUsecase) Create(ctx context.Context, job *domain.Job) error {
	if err := u.repo.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (u *JobUsecase) Get(ctx context.Context, userID, jobID string) (*domain.Job, error) {
	return u.repo.GetByID(ctx, userID, jobID)
}

func (u *JobUsecase) List(ctx context.Context, userID string) ([]domain.Job, error) {
	return u.repo.ListByUser(ctx, userID)
}

func (u *JobUsecase) Update(ctx context.Context, job *domain.Job) error {
	return u.repo.Update(ctx, job)
}

func (u *JobUsecase) SetStatus(ctx context.Context, userID, jobID string, status domain.JobStatus) (*domain.Job, error) {
	job, err := u.repo.GetByID(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	job.Status = status
	if err := u.repo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete removes the job and scrubs it from every future schedule row. Rows
// where the job was the only one left are removed outright; rows sharing it
// with other jobs just lose the reference. Past rows keep their history.
func (u *JobUsecase) Delete(ctx context.Context, userID, jobID string) (int, error) {
	if _, err := u.repo.GetByID(ctx, userID, jobID); err != nil {
		return 0, err
	}

	today := u.clock().UTC().Format(timeutils.DateLayout)
	rows, err := u.schedules.ListFutureByJob(ctx, jobID, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list schedules for job: %w", err)
	}

	touched := 0
	for _, row := range rows {
		remaining := make([]string, 0, len(row.JobIDs))
		for _, id := range row.JobIDs {
			if id != jobID {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) == 0 {
			if err := u.schedules.DeleteRow(ctx, row.UserID, row.ID); err != nil {
				return touched, fmt.Errorf("failed to remove schedule row %s: %w", row.ID, err)
			}
		} else {
			if err := u.schedules.UpdateJobIDs(ctx, row.ID, remaining); err != nil {
				return touched, fmt.Errorf("failed to update schedule row %s: %w", row.ID, err)
			}
		}
		touched++
	}

	if err := u.repo.Delete(ctx, userID, jobID); err != nil {
		return touched, err
	}

	logrus.Infof("[JOB] job %s deleted, %d future schedule rows adjusted", jobID, touched)
	return touched, nil
}
