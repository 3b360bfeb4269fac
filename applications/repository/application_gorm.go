package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sorogrupos/jobcast/applications/domain"
	"gorm.io/gorm"
)

type applicationModel struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"column:user_id;not null;index:idx_applications_user"`
	JobID     string    `gorm:"column:job_id;not null;index:idx_applications_job"`
	Name      string    `gorm:"not null"`
	Phone     string
	Email     string
	Message   string    `gorm:"type:text"`
	ResumeURL string    `gorm:"column:resume_url"`
	Status    string    `gorm:"default:'new';index"`
	Note      string    `gorm:"type:text"`
	Blocked   bool      `gorm:"default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (applicationModel) TableName() string {
	return "applications"
}

type ApplicationGormRepository struct {
	db *gorm.DB
}

func NewApplicationGormRepository(db *gorm.DB) *ApplicationGormRepository {
	return &ApplicationGormRepository{db: db}
}

func (r *ApplicationGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&applicationModel{})
}

func (r *ApplicationGormRepository) Create(ctx context.Context, app *domain.Application) error {
	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	if app.Status == "" {
		app.Status = domain.ApplicationNew
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	return r.db.WithContext(ctx).Create(toApplicationModel(app)).Error
}

func (r *ApplicationGormRepository) GetByID(ctx context.Context, userID, id string) (*domain.Application, error) {
	var m applicationModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	app := fromApplicationModel(m)
	return &app, nil
}

func (r *ApplicationGormRepository) ListByJob(ctx context.Context, userID, jobID string) ([]domain.Application, error) {
	var models []applicationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromApplicationModels(models), nil
}

func (r *ApplicationGormRepository) ListByUser(ctx context.Context, userID string) ([]domain.Application, error) {
	var models []applicationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromApplicationModels(models), nil
}

func (r *ApplicationGormRepository) UpdateStatus(ctx context.Context, userID, id string, status domain.ApplicationStatus) error {
	res := r.db.WithContext(ctx).Model(&applicationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationGormRepository) UpdateNote(ctx context.Context, userID, id, note string) error {
	return r.updateFields(ctx, userID, id, map[string]any{"note": note})
}

func (r *ApplicationGormRepository) UpdateBlocked(ctx context.Context, userID, id string, blocked bool) error {
	return r.updateFields(ctx, userID, id, map[string]any{"blocked": blocked})
}

func (r *ApplicationGormRepository) updateFields(ctx context.Context, userID, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&applicationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationGormRepository) CountByJob(ctx context.Context, userID, jobID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&applicationModel{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Count(&count).Error
	return count, err
}

func toApplicationModel(app *domain.Application) *applicationModel {
	return &applicationModel{
		ID:        app.ID,
		UserID:    app.UserID,
		JobID:     app.JobID,
		Name:      app.Name,
		Phone:     app.Phone,
		Email:     app.Email,
		Message:   app.Message,
		ResumeURL: app.ResumeURL,
		Status:    string(app.Status),
		Note:      app.Note,
		Blocked:   app.Blocked,
		CreatedAt: app.CreatedAt,
		UpdatedAt: app.UpdatedAt,
	}
}

func fromApplicationModel(m applicationModel) domain.Application {
	return domain.Application{
		ID:        m.ID,
		UserID:    m.UserID,
		JobID:     m.JobID,
		Name:      m.Name,
		Phone:     m.Phone,
		Email:     m.Email,
		Message:   m.Message,
		ResumeURL: m.ResumeURL,
		Status:    domain.ApplicationStatus(m.Status),
		Note:      m.Note,
		Blocked:   m.Blocked,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromApplicationModels(models []applicationModel) []domain.Application {
	apps := make([]domain.Application, 0, len(models))
	for _, m := range models {
		apps = append(apps, fromApplicationModel(m))
	}
	return apps
}
