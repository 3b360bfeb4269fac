package domain

import (
	"errors"
	"time"
)

type JobStatus string

const (
	JobActive JobStatus = "active"
	JobPaused JobStatus = "paused"
)

type ContactType string

const (
	ContactWhatsApp ContactType = "whatsapp"
	ContactEmail    ContactType = "email"
	ContactAddress  ContactType = "address"
	ContactLink     ContactType = "link"
)

// Contact is one way candidates reach the poster.
type Contact struct {
	Type  ContactType `json:"type"`
	Value string      `json:"value"`
}

// Job is a vacancy a tenant broadcasts to its WhatsApp groups.
type Job struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Role         string    `json:"role"`
	JobCode      string    `json:"job_code"`
	Company      string    `json:"company"`
	CompanyID    string    `json:"company_id"`
	HideCompany  bool      `json:"hide_company"`
	Bond         string    `json:"bond"`
	City         string    `json:"city"`
	Region       string    `json:"region"`
	Description  string    `json:"description"`
	Activities   string    `json:"activities"`
	Requirements string    `json:"requirements"`
	Benefits     string    `json:"benefits"`
	Salary       string    `json:"salary"`
	Observation  string    `json:"observation"`
	ImageURL     string    `json:"image_url"`
	ShowFooter   bool      `json:"show_footer"`
	Contacts     []Contact `json:"contacts"`
	Status       JobStatus `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidContactType reports whether t is one of the supported contact kinds.
func ValidContactType(t ContactType) bool {
	switch t {
	case ContactWhatsApp, ContactEmail, ContactAddress, ContactLink:
		return true
	}
	return false
}

func (j *Job) IsActive() bool {
	return j.Status == JobActive
}

var (
	ErrJobNotFound = errors.New("job not found")

	// ErrJobPaused is returned when a paused job is selected for broadcast.
	ErrJobPaused = errors.New("job is paused")
)
