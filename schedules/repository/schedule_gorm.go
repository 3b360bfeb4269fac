package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sorogrupos/jobcast/schedules/domain"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type scheduleModel struct {
	ID            string    `gorm:"primaryKey"`
	UserID        string    `gorm:"column:user_id;not null;index:idx_schedules_user"`
	BatchID       string    `gorm:"column:batch_id;not null;index:idx_schedules_batch"`
	JobsIDs       string    `gorm:"column:jobs_ids;type:text;default:'[]'"` // JSON, legacy encodings tolerated on read
	GroupID       string    `gorm:"column:id_group;not null"`
	ScheduledDate string    `gorm:"column:scheduled_date;index:idx_schedules_date"`
	ScheduledTime string    `gorm:"column:scheduled_time"`
	Status        string    `gorm:"column:status"`
	PublishStatus int       `gorm:"column:publish_status;default:0;index"`
	GroupsCount   int       `gorm:"column:groups_count;default:0"`
	Version       int64     `gorm:"column:version;default:1"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (scheduleModel) TableName() string {
	return "marketing_schedules"
}

// --- Repository Implementation ---

type ScheduleGormRepository struct {
	db *gorm.DB
}

func NewScheduleGormRepository(db *gorm.DB) *ScheduleGormRepository {
	return &ScheduleGormRepository{db: db}
}

func (r *ScheduleGormRepository) Init(ctx context.Context) error {
	// GORM AutoMigrate handles creation and schema updates
	if err := r.db.WithContext(ctx).AutoMigrate(&scheduleModel{}); err != nil {
		return err
	}
	return r.backfillBatchIDs(ctx)
}

// backfillBatchIDs assigns batch ids to rows imported from before batches
// were persisted. Rows of one user sharing (date, time, primary job) formed
// a batch implicitly; they get one id so every lifecycle operation can
// address them.
func (r *ScheduleGormRepository) backfillBatchIDs(ctx context.Context) error {
	var models []scheduleModel
	err := r.db.WithContext(ctx).
		Where("batch_id = '' OR batch_id IS NULL").
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return nil
	}

	assigned := make(map[string]string)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range models {
			primary := ""
			if ids, derr := domain.DecodeJobIDs(m.JobsIDs); derr == nil && len(ids) > 0 {
				primary = ids[0]
			}
			key := m.UserID + "|" + m.ScheduledDate + "|" + m.ScheduledTime + "|" + primary
			batchID, ok := assigned[key]
			if !ok {
				batchID = uuid.New().String()
				assigned[key] = batchID
			}
			uerr := tx.Model(&scheduleModel{}).
				Where("id = ?", m.ID).
				Update("batch_id", batchID).Error
			if uerr != nil {
				return uerr
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.Infof("[SCHEDULE] backfilled batch ids on %d legacy rows (%d batches)", len(models), len(assigned))
	return nil
}

func (r *ScheduleGormRepository) CreateRows(ctx context.Context, rows []*domain.ScheduleRow) error {
	if len(rows) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]scheduleModel, 0, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			row.ID = uuid.New().String()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
		if row.Version == 0 {
			row.Version = 1
		}

		m, err := toScheduleModel(row)
		if err != nil {
			return err
		}
		models = append(models, m)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&models).Error
	})
}

func (r *ScheduleGormRepository) GetRow(ctx context.Context, userID, rowID string) (*domain.ScheduleRow, error) {
	var m scheduleModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", rowID, userID).
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}
	row := fromScheduleModel(m)
	return &row, nil
}

func (r *ScheduleGormRepository) ListByUser(ctx context.Context, userID string) ([]domain.ScheduleRow, error) {
	var models []scheduleModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromScheduleModels(models), nil
}

func (r *ScheduleGormRepository) ListBatch(ctx context.Context, userID, batchID string) ([]domain.ScheduleRow, error) {
	var models []scheduleModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND batch_id = ?", userID, batchID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, domain.ErrBatchNotFound
	}
	return fromScheduleModels(models), nil
}

func (r *ScheduleGormRepository) RescheduleBatch(ctx context.Context, userID, batchID, newDate, newTime string) (int, error) {
	var updated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&scheduleModel{}).
			Where("user_id = ? AND batch_id = ?", userID, batchID).
			Updates(map[string]any{
				"scheduled_date": newDate,
				"scheduled_time": newTime,
				"version":        gorm.Expr("version + 1"),
				"updated_at":     time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrBatchNotFound
		}
		updated = res.RowsAffected
		return nil
	})
	return int(updated), err
}

func (r *ScheduleGormRepository) DeleteRow(ctx context.Context, userID, rowID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", rowID, userID).
		Delete(&scheduleModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

func (r *ScheduleGormRepository) UpdateJobIDs(ctx context.Context, rowID string, jobIDs []string) error {
	encoded, err := domain.EncodeJobIDs(jobIDs)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&scheduleModel{}).
		Where("id = ?", rowID).
		Updates(map[string]any{
			"jobs_ids":   encoded,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

func (r *ScheduleGormRepository) ListFutureByJob(ctx context.Context, jobID, fromDate string) ([]domain.ScheduleRow, error) {
	var models []scheduleModel
	err := r.db.WithContext(ctx).
		Where("scheduled_date >= ?", fromDate).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	// jobs_ids is an encoded column, so membership is filtered here rather
	// than in SQL.
	rows := make([]domain.ScheduleRow, 0)
	for _, m := range models {
		row := fromScheduleModel(m)
		for _, id := range row.JobIDs {
			if id == jobID {
				rows = append(rows, row)
				break
			}
		}
	}
	return rows, nil
}

func (r *ScheduleGormRepository) CountByPublishStatus(ctx context.Context, userID string, status domain.PublishStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&scheduleModel{}).
		Where("user_id = ? AND publish_status = ?", userID, int(status)).
		Count(&count).Error
	return count, err
}

func (r *ScheduleGormRepository) ListByPublishStatus(ctx context.Context, userID string, status domain.PublishStatus) ([]domain.ScheduleRow, error) {
	var models []scheduleModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND publish_status = ?", userID, int(status)).
		Order("scheduled_date DESC, scheduled_time DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromScheduleModels(models), nil
}

func (r *ScheduleGormRepository) ListQuarantined(ctx context.Context, userID string) ([]domain.ScheduleRow, error) {
	rows, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	quarantined := make([]domain.ScheduleRow, 0)
	for _, row := range rows {
		if row.Quarantined {
			quarantined = append(quarantined, row)
		}
	}
	return quarantined, nil
}

// --- Mapping ---

func toScheduleModel(row *domain.ScheduleRow) (scheduleModel, error) {
	encoded, err := domain.EncodeJobIDs(row.JobIDs)
	if err != nil {
		return scheduleModel{}, err
	}
	return scheduleModel{
		ID:            row.ID,
		UserID:        row.UserID,
		BatchID:       row.BatchID,
		JobsIDs:       encoded,
		GroupID:       row.GroupID,
		ScheduledDate: row.ScheduledDate,
		ScheduledTime: row.ScheduledTime,
		Status:        row.Status,
		PublishStatus: int(row.PublishStatus),
		GroupsCount:   row.GroupsCount,
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func fromScheduleModel(m scheduleModel) domain.ScheduleRow {
	row := domain.ScheduleRow{
		ID:            m.ID,
		UserID:        m.UserID,
		BatchID:       m.BatchID,
		GroupID:       m.GroupID,
		ScheduledDate: m.ScheduledDate,
		ScheduledTime: m.ScheduledTime,
		Status:        m.Status,
		PublishStatus: domain.PublishStatus(m.PublishStatus),
		GroupsCount:   m.GroupsCount,
		Version:       m.Version,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}

	ids, err := domain.DecodeJobIDs(m.JobsIDs)
	if err != nil {
		// Legacy rows with undecodable jobs_ids are quarantined, not keyed
		// under a synthetic job id.
		row.Quarantined = true
		row.JobIDs = nil
		return row
	}
	row.JobIDs = ids
	return row
}

func fromScheduleModels(models []scheduleModel) []domain.ScheduleRow {
	rows := make([]domain.ScheduleRow, 0, len(models))
	for _, m := range models {
		rows = append(rows, fromScheduleModel(m))
	}
	return rows
}
