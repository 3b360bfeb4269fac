package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sorogrupos/jobcast/jobs/domain"
	"gorm.io/gorm"
)

type jobModel struct {
	ID           string    `gorm:"primaryKey"`
	UserID       string    `gorm:"column:user_id;not null;index:idx_jobs_user"`
	Title        string    `gorm:"not null"`
	Role         string
	JobCode      string    `gorm:"column:job_code"`
	Company      string
	CompanyID    string    `gorm:"column:company_id"`
	HideCompany  bool      `gorm:"column:hide_company"`
	Bond         string
	City         string
	Region       string
	Description  string    `gorm:"type:text"`
	Activities   string    `gorm:"type:text"`
	Requirements string    `gorm:"type:text"`
	Benefits     string    `gorm:"type:text"`
	Salary       string
	Observation  string    `gorm:"type:text"`
	ImageURL     string    `gorm:"column:image_url"`
	ShowFooter   bool      `gorm:"column:show_footer"`
	Contacts     string    `gorm:"type:text"`
	Status       string    `gorm:"default:'active';index"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (jobModel) TableName() string {
	return "jobs"
}

type JobGormRepository struct {
	db *gorm.DB
}

func NewJobGormRepository(db *gorm.DB) *JobGormRepository {
	return &JobGormRepository{db: db}
}

func (r *JobGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&jobModel{})
}

func (r *JobGormRepository) Create(ctx context.Context, job *domain.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = domain.JobActive
	}
	return r.db.WithContext(ctx).Create(toJobModel(job)).Error
}

func (r *JobGormRepository) GetByID(ctx context.Context, userID, jobID string) (*domain.Job, error) {
	var m jobModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", jobID, userID).
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	job := fromJobModel(m)
	return &job, nil
}

func (r *JobGormRepository) ListByUser(ctx context.Context, userID string) ([]domain.Job, error) {
	var models []jobModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	jobs := make([]domain.Job, 0, len(models))
	for _, m := range models {
		jobs = append(jobs, fromJobModel(m))
	}
	return jobs, nil
}

func (r *JobGormRepository) Update(ctx context.Context, job *domain.Job) error {
	job.UpdatedAt = time.Now().UTC()
	// Select("*") so cleared flags (hide_company, show_footer) persist.
	res := r.db.WithContext(ctx).Model(&jobModel{}).
		Where("id = ? AND user_id = ?", job.ID, job.UserID).
		Select("*").Omit("id", "user_id", "created_at").
		Updates(toJobModel(job))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *JobGormRepository) Delete(ctx context.Context, userID, jobID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", jobID, userID).
		Delete(&jobModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func toJobModel(job *domain.Job) *jobModel {
	return &jobModel{
		ID:           job.ID,
		UserID:       job.UserID,
		Title:        job.Title,
		Role:         job.Role,
		JobCode:      job.JobCode,
		Company:      job.Company,
		CompanyID:    job.CompanyID,
		HideCompany:  job.HideCompany,
		Bond:         job.Bond,
		City:         job.City,
		Region:       job.Region,
		Description:  job.Description,
		Activities:   job.Activities,
		Requirements: job.Requirements,
		Benefits:     job.Benefits,
		Salary:       job.Salary,
		Observation:  job.Observation,
		ImageURL:     job.ImageURL,
		ShowFooter:   job.ShowFooter,
		Contacts:     encodeContacts(job.Contacts),
		Status:       string(job.Status),
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}

func fromJobModel(m jobModel) domain.Job {
	return domain.Job{
		ID:           m.ID,
		UserID:       m.UserID,
		Title:        m.Title,
		Role:         m.Role,
		JobCode:      m.JobCode,
		Company:      m.Company,
		CompanyID:    m.CompanyID,
		HideCompany:  m.HideCompany,
		Bond:         m.Bond,
		City:         m.City,
		Region:       m.Region,
		Description:  m.Description,
		Activities:   m.Activities,
		Requirements: m.Requirements,
		Benefits:     m.Benefits,
		Salary:       m.Salary,
		Observation:  m.Observation,
		ImageURL:     m.ImageURL,
		ShowFooter:   m.ShowFooter,
		Contacts:     decodeContacts(m.Contacts),
		Status:       domain.JobStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func encodeContacts(contacts []domain.Contact) string {
	if len(contacts) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(contacts)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeContacts(raw string) []domain.Contact {
	if raw == "" {
		return nil
	}
	var contacts []domain.Contact
	if err := json.Unmarshal([]byte(raw), &contacts); err != nil {
		logrus.Warnf("[JOB] dropping unreadable contacts payload: %v", err)
		return nil
	}
	return contacts
}
