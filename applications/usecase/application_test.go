package usecase

import (
	"context"
	"testing"

	"github.com/sorogrupos/jobcast/applications/domain"
	apprepo "github.com/sorogrupos/jobcast/applications/repository"
	jobdomain "github.com/sorogrupos/jobcast/jobs/domain"
	jobrepo "github.com/sorogrupos/jobcast/jobs/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApplicationUsecase(t *testing.T) (*ApplicationUsecase, *jobdomain.Job) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	apps := apprepo.NewApplicationGormRepository(db)
	jobs := jobrepo.NewJobGormRepository(db)
	ctx := context.Background()
	if err := apps.Init(ctx); err != nil {
		t.Fatalf("migrate applications: %v", err)
	}
	if err := jobs.Init(ctx); err != nil {
		t.Fatalf("migrate jobs: %v", err)
	}

	job := &jobdomain.Job{UserID: "user-1", Title: "Atendente"}
	if err := jobs.Create(ctx, job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return NewApplicationUsecase(apps, jobs), job
}

func TestSubmitAndReview(t *testing.T) {
	u, job := setupApplicationUsecase(t)
	ctx := context.Background()

	app := &domain.Application{
		UserID: "user-1",
		JobID:  job.ID,
		Name:   "Maria Souza",
		Phone:  "+5515999990000",
	}
	if err := u.Submit(ctx, app); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got, err := u.Get(ctx, "user-1", app.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.ApplicationNew {
		t.Errorf("new application must start as new, got %q", got.Status)
	}

	if err := u.Review(ctx, "user-1", app.ID, domain.ApplicationApproved); err != nil {
		t.Fatalf("Review: %v", err)
	}
	got, err = u.Get(ctx, "user-1", app.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.ApplicationApproved {
		t.Errorf("expected approved, got %q", got.Status)
	}
}

func TestSubmitRejectsUnknownJob(t *testing.T) {
	u, _ := setupApplicationUsecase(t)

	app := &domain.Application{UserID: "user-1", JobID: "missing", Name: "Ana"}
	if err := u.Submit(context.Background(), app); err != jobdomain.ErrJobNotFound {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestReviewRejectsUnknownStatus(t *testing.T) {
	u, job := setupApplicationUsecase(t)
	ctx := context.Background()

	app := &domain.Application{UserID: "user-1", JobID: job.ID, Name: "Ana"}
	if err := u.Submit(ctx, app); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := u.Review(ctx, "user-1", app.ID, "archived"); err != domain.ErrInvalidStatus {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestAnnotateAndBlock(t *testing.T) {
	u, job := setupApplicationUsecase(t)
	ctx := context.Background()

	app := &domain.Application{
		UserID:    "user-1",
		JobID:     job.ID,
		Name:      "Carlos Lima",
		ResumeURL: "https://files.example.com/cv/carlos.pdf",
	}
	if err := u.Submit(ctx, app); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := u.Annotate(ctx, "user-1", app.ID, "sem experiência com empilhadeira"); err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if err := u.SetBlocked(ctx, "user-1", app.ID, true); err != nil {
		t.Fatalf("SetBlocked: %v", err)
	}

	got, err := u.Get(ctx, "user-1", app.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Note != "sem experiência com empilhadeira" {
		t.Errorf("unexpected note %q", got.Note)
	}
	if !got.Blocked {
		t.Error("expected candidate to be blocked")
	}
	if got.ResumeURL != app.ResumeURL {
		t.Errorf("resume url lost: %q", got.ResumeURL)
	}

	if err := u.SetBlocked(ctx, "user-1", "missing", false); err != domain.ErrApplicationNotFound {
		t.Errorf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestCountForJob(t *testing.T) {
	u, job := setupApplicationUsecase(t)
	ctx := context.Background()

	for _, name := range []string{"Ana", "Bruno", "Clara"} {
		app := &domain.Application{UserID: "user-1", JobID: job.ID, Name: name}
		if err := u.Submit(ctx, app); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	n, err := u.CountForJob(ctx, "user-1", job.ID)
	if err != nil {
		t.Fatalf("CountForJob: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 applications, got %d", n)
	}
}
