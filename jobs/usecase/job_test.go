package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/sorogrupos/jobcast/jobs/domain"
	jobrepo "github.com/sorogrupos/jobcast/jobs/repository"
	scheduledomain "github.com/sorogrupos/jobcast/schedules/domain"
	schedulerepo "github.com/sorogrupos/jobcast/schedules/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func setupJobUsecase(t *testing.T) (*JobUsecase, scheduledomain.ScheduleRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	jobs := jobrepo.NewJobGormRepository(db)
	schedules := schedulerepo.NewScheduleGormRepository(db)
	ctx := context.Background()
	if err := jobs.Init(ctx); err != nil {
		t.Fatalf("migrate jobs: %v", err)
	}
	if err := schedules.Init(ctx); err != nil {
		t.Fatalf("migrate schedules: %v", err)
	}

	u := NewJobUsecase(jobs, schedules)
	u.clock = func() time.Time { return testNow }
	return u, schedules
}

func seedJob(t *testing.T, u *JobUsecase, title string) *domain.Job {
	t.Helper()
	job := &domain.Job{
		UserID:  "user-1",
		Title:   title,
		Company: "Acme",
		City:    "Sorocaba",
	}
	if err := u.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func seedSchedule(t *testing.T, schedules scheduledomain.ScheduleRepository, date string, jobIDs ...string) *scheduledomain.ScheduleRow {
	t.Helper()
	row := &scheduledomain.ScheduleRow{
		UserID:        "user-1",
		BatchID:       "batch-" + date,
		JobIDs:        jobIDs,
		GroupID:       "group-1",
		ScheduledDate: date,
		ScheduledTime: "10:00",
		PublishStatus: scheduledomain.PublishPending,
	}
	if err := schedules.CreateRows(context.Background(), []*scheduledomain.ScheduleRow{row}); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
	return row
}

func TestCreateDefaultsToActive(t *testing.T) {
	u, _ := setupJobUsecase(t)
	job := seedJob(t, u, "Auxiliar de Producao")

	got, err := u.Get(context.Background(), "user-1", job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.JobActive {
		t.Errorf("new job must be active, got %q", got.Status)
	}
}

func TestContactsSurviveStorage(t *testing.T) {
	u, _ := setupJobUsecase(t)
	ctx := context.Background()

	job := &domain.Job{
		UserID:  "user-1",
		Title:   "Motorista CNH D",
		Company: "Acme",
		Contacts: []domain.Contact{
			{Type: domain.ContactWhatsApp, Value: "+5515988887777"},
			{Type: domain.ContactEmail, Value: "rh@acme.com.br"},
		},
	}
	if err := u.Create(ctx, job); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := u.Get(ctx, "user-1", job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(got.Contacts))
	}
	if got.Contacts[0].Type != domain.ContactWhatsApp || got.Contacts[1].Value != "rh@acme.com.br" {
		t.Errorf("contacts came back mangled: %+v", got.Contacts)
	}
}

func TestSetStatusPause(t *testing.T) {
	u, _ := setupJobUsecase(t)
	job := seedJob(t, u, "Vendedor")

	paused, err := u.SetStatus(context.Background(), "user-1", job.ID, domain.JobPaused)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if paused.IsActive() {
		t.Error("job must be paused")
	}
}

func TestDeleteCascadesOverFutureSchedules(t *testing.T) {
	u, schedules := setupJobUsecase(t)
	job := seedJob(t, u, "Motorista")
	other := seedJob(t, u, "Cozinheiro")
	ctx := context.Background()

	shared := seedSchedule(t, schedules, "2026-09-05", job.ID, other.ID)
	solo := seedSchedule(t, schedules, "2026-09-06", job.ID)
	past := seedSchedule(t, schedules, "2026-08-20", job.ID)

	touched, err := u.Delete(ctx, "user-1", job.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if touched != 2 {
		t.Errorf("expected 2 future rows adjusted, got %d", touched)
	}

	// shared row loses the job but survives
	got, err := schedules.GetRow(ctx, "user-1", shared.ID)
	if err != nil {
		t.Fatalf("GetRow shared: %v", err)
	}
	if len(got.JobIDs) != 1 || got.JobIDs[0] != other.ID {
		t.Errorf("shared row must keep the other job, got %v", got.JobIDs)
	}

	// solo row disappears
	if _, err := schedules.GetRow(ctx, "user-1", solo.ID); err != scheduledomain.ErrScheduleNotFound {
		t.Errorf("solo row must be deleted, got %v", err)
	}

	// past row is untouched history
	got, err = schedules.GetRow(ctx, "user-1", past.ID)
	if err != nil {
		t.Fatalf("GetRow past: %v", err)
	}
	if len(got.JobIDs) != 1 || got.JobIDs[0] != job.ID {
		t.Errorf("past row must keep its job reference, got %v", got.JobIDs)
	}

	if _, err := u.Get(ctx, "user-1", job.ID); err != domain.ErrJobNotFound {
		t.Errorf("job must be gone, got %v", err)
	}
}
