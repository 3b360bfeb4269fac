package domain

import (
	"context"
	"errors"
	"time"
)

type ApplicationStatus string

const (
	ApplicationNew      ApplicationStatus = "new"
	ApplicationReviewed ApplicationStatus = "reviewed"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is one candidate answering a broadcast job.
type Application struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	JobID     string            `json:"job_id"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Email     string            `json:"email"`
	Message   string            `json:"message"`
	ResumeURL string            `json:"resume_url"`
	Status    ApplicationStatus `json:"status"`
	Note      string            `json:"note"`
	Blocked   bool              `json:"blocked"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("invalid application status")
)

// ValidStatus reports whether s is one of the review states.
func ValidStatus(s ApplicationStatus) bool {
	switch s {
	case ApplicationNew, ApplicationReviewed, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, userID, id string) (*Application, error)
	ListByJob(ctx context.Context, userID, jobID string) ([]Application, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	UpdateStatus(ctx context.Context, userID, id string, status ApplicationStatus) error
	UpdateNote(ctx context.Context, userID, id, note string) error
	UpdateBlocked(ctx context.Context, userID, id string, blocked bool) error
	CountByJob(ctx context.Context, userID, jobID string) (int64, error)
}
