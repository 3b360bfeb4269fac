package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	groupdomain "github.com/sorogrupos/jobcast/groups/domain"
	"github.com/sorogrupos/jobcast/pkg/timeutils"
	"github.com/sorogrupos/jobcast/schedules/domain"
)

// ChangeNotifier receives a signal whenever a user's schedule rows change,
// so connected clients can refresh their view.
type ChangeNotifier interface {
	NotifyScheduleChange(userID string)
}

type ScheduleUsecase struct {
	repo     domain.ScheduleRepository
	groups   groupdomain.GroupRepository
	notifier ChangeNotifier
	clock    func() time.Time
}

func NewScheduleUsecase(repo domain.ScheduleRepository, groups groupdomain.GroupRepository, notifier ChangeNotifier) *ScheduleUsecase {
	return &ScheduleUsecase{
		repo:     repo,
		groups:   groups,
		notifier: notifier,
		clock:    time.Now,
	}
}

func (u *ScheduleUsecase) notify(userID string) {
	if u.notifier != nil {
		u.notifier.NotifyScheduleChange(userID)
	}
}

// ListCalendar returns the user's batches keyed by date. Undated and
// quarantined rows are left out; ListQuarantined surfaces the latter.
func (u *ScheduleUsecase) ListCalendar(ctx context.Context, userID string) (map[string][]domain.Batch, error) {
	rows, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return CalendarByDate(rows), nil
}

func (u *ScheduleUsecase) ListRows(ctx context.Context, userID string) ([]domain.ScheduleRow, error) {
	return u.repo.ListByUser(ctx, userID)
}

func (u *ScheduleUsecase) ListQuarantined(ctx context.Context, userID string) ([]domain.ScheduleRow, error) {
	return u.repo.ListQuarantined(ctx, userID)
}

func (u *ScheduleUsecase) GetBatch(ctx context.Context, userID, batchID string) (*domain.Batch, error) {
	rows, err := u.repo.ListBatch(ctx, userID, batchID)
	if err != nil {
		return nil, err
	}
	batches := GroupBatches(rows)
	if len(batches) == 0 {
		return nil, domain.ErrBatchNotFound
	}
	return &batches[0], nil
}

// CanReschedule reports whether the batch is still editable: nothing sent
// and the send moment still in the future.
func (u *ScheduleUsecase) CanReschedule(ctx context.Context, userID, batchID string) (bool, error) {
	batch, err := u.GetBatch(ctx, userID, batchID)
	if err != nil {
		return false, err
	}
	return batch.CanReschedule(u.clock()), nil
}

// ValidateReschedule checks that the target moment parses and sits at least
// the minimum lead ahead of now. Exactly at the lead boundary is accepted.
func (u *ScheduleUsecase) ValidateReschedule(newDate, newTime string) error {
	if _, err := timeutils.ParseDateTime(newDate, newTime); err != nil {
		return fmt.Errorf("invalid schedule target: %w", err)
	}
	if !timeutils.MeetsMinimumLead(newDate, newTime, u.clock()) {
		return domain.ErrScheduleTooSoon
	}
	return nil
}

// Reschedule moves every row of the batch to the new date and time. The
// whole batch moves or nothing does.
func (u *ScheduleUsecase) Reschedule(ctx context.Context, userID, batchID, newDate, newTime string) (int, error) {
	batch, err := u.GetBatch(ctx, userID, batchID)
	if err != nil {
		return 0, err
	}
	if !batch.CanReschedule(u.clock()) {
		return 0, domain.ErrBatchLocked
	}
	if err := u.ValidateReschedule(newDate, newTime); err != nil {
		return 0, err
	}

	n, err := u.repo.RescheduleBatch(ctx, userID, batchID, newDate, newTime)
	if err != nil {
		return 0, fmt.Errorf("failed to reschedule batch: %w", err)
	}

	logrus.Infof("[SCHEDULE] batch %s moved to %s %s (%d rows)", batchID, newDate, newTime, n)
	u.notify(userID)
	return n, nil
}

// AddGroups clones the batch's representative row for each group not yet
// targeted. Callers pass registry group ids; rows store the WhatsApp-side
// id, so deduplication runs on the resolved ids and a registered group can
// never end up targeted by two rows of one batch. Clones start pending
// regardless of the source row's state.
func (u *ScheduleUsecase) AddGroups(ctx context.Context, userID, batchID string, groupIDs []string) ([]domain.ScheduleRow, error) {
	batch, err := u.GetBatch(ctx, userID, batchID)
	if err != nil {
		return nil, err
	}
	if !batch.CanReschedule(u.clock()) {
		return nil, domain.ErrBatchLocked
	}

	rep := batch.Representative()
	fresh := make([]*domain.ScheduleRow, 0, len(groupIDs))
	seen := make(map[string]bool)
	for _, groupID := range groupIDs {
		if groupID == "" {
			continue
		}
		group, err := u.groups.GetByID(ctx, userID, groupID)
		if err != nil {
			return nil, err
		}
		if seen[group.GroupID] || batch.HasGroup(group.GroupID) {
			continue
		}
		seen[group.GroupID] = true
		fresh = append(fresh, &domain.ScheduleRow{
			ID:            uuid.NewString(),
			UserID:        userID,
			BatchID:       rep.BatchID,
			JobIDs:        append([]string(nil), rep.JobIDs...),
			GroupID:       group.GroupID,
			ScheduledDate: rep.ScheduledDate,
			ScheduledTime: rep.ScheduledTime,
			Status:        rep.Status,
			PublishStatus: domain.PublishPending,
		})
	}
	if len(fresh) == 0 {
		return nil, domain.ErrNoNewGroups
	}
	total := len(batch.Rows) + len(fresh)
	for _, row := range fresh {
		row.GroupsCount = total
	}

	if err := u.repo.CreateRows(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to add groups to batch: %w", err)
	}

	logrus.Infof("[SCHEDULE] batch %s gained %d groups", batchID, len(fresh))
	u.notify(userID)

	rows := make([]domain.ScheduleRow, 0, len(fresh))
	for _, row := range fresh {
		rows = append(rows, *row)
	}
	return rows, nil
}

// DeleteRow removes a single row of a batch. Rows whose send moment already
// passed are kept as history; undated rows can always go.
func (u *ScheduleUsecase) DeleteRow(ctx context.Context, userID, rowID string) error {
	row, err := u.repo.GetRow(ctx, userID, rowID)
	if err != nil {
		return err
	}
	if row.ScheduledDate != "" && row.ScheduledTime != "" && row.IsPast(u.clock()) {
		return domain.ErrRowInPast
	}
	if err := u.repo.DeleteRow(ctx, userID, rowID); err != nil {
		return err
	}
	u.notify(userID)
	return nil
}

// DeleteBatch removes every row of the batch, row by row. Callers that need
// failure recovery wrap this through the store's snapshot mechanism.
func (u *ScheduleUsecase) DeleteBatch(ctx context.Context, userID, batchID string) (int, error) {
	rows, err := u.repo.ListBatch(ctx, userID, batchID)
	if err != nil {
		return 0, err
	}
	for i := range rows {
		row := &rows[i]
		if row.ScheduledDate != "" && row.ScheduledTime != "" && row.IsPast(u.clock()) {
			return 0, domain.ErrRowInPast
		}
	}

	deleted := 0
	for _, row := range rows {
		if err := u.repo.DeleteRow(ctx, userID, row.ID); err != nil {
			return deleted, fmt.Errorf("failed to delete row %s: %w", row.ID, err)
		}
		deleted++
	}

	logrus.Infof("[SCHEDULE] batch %s deleted (%d rows)", batchID, deleted)
	u.notify(userID)
	return deleted, nil
}

// PublishStats aggregates delivery counters for dashboard views.
type PublishStats struct {
	Pending int64 `json:"pending"`
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
}

func (u *ScheduleUsecase) Stats(ctx context.Context, userID string) (PublishStats, error) {
	var stats PublishStats
	var err error
	if stats.Pending, err = u.repo.CountByPublishStatus(ctx, userID, domain.PublishPending); err != nil {
		return stats, err
	}
	if stats.Sent, err = u.repo.CountByPublishStatus(ctx, userID, domain.PublishSent); err != nil {
		return stats, err
	}
	if stats.Failed, err = u.repo.CountByPublishStatus(ctx, userID, domain.PublishFailed); err != nil {
		return stats, err
	}
	return stats, nil
}
