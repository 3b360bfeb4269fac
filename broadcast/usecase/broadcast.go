package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	groupdomain "github.com/sorogrupos/jobcast/groups/domain"
	jobdomain "github.com/sorogrupos/jobcast/jobs/domain"
	"github.com/sorogrupos/jobcast/pkg/fanout"
	"github.com/sorogrupos/jobcast/pkg/timeutils"
	scheduledomain "github.com/sorogrupos/jobcast/schedules/domain"
	scheduleusecase "github.com/sorogrupos/jobcast/schedules/usecase"
)

// MaxJobsPerBroadcast caps how many vacancies fit in one message.
const MaxJobsPerBroadcast = 10

var (
	ErrNoJobs        = errors.New("select at least one job")
	ErrTooManyJobs   = fmt.Errorf("a broadcast carries at most %d jobs", MaxJobsPerBroadcast)
	ErrNoGroups      = errors.New("select at least one group")
	ErrNoDates       = errors.New("select at least one date")
	ErrOutsideWindow = fmt.Errorf("dates must fall within the next %d days", timeutils.ScheduleWindowDays)
	ErrNotHourlySlot = errors.New("broadcasts start on the hour")
	ErrBroadcastBusy = errors.New("another broadcast is being created, try again")
	ErrPoolSaturated = errors.New("send queue is full, try again shortly")
)

// Locker takes a short-lived distributed lock. Valkey backs it in
// production; a nil Locker disables the guard.
type Locker interface {
	AcquireLock(ctx context.Context, key string, expiration time.Duration) bool
}

// Sender delivers one schedule row to the WhatsApp gateway. Delivery
// results land back on the row's publish_status by the sender process.
type Sender interface {
	Send(ctx context.Context, row scheduledomain.ScheduleRow) error
}

// ComposeRequest is one composer submission: the selected jobs are
// broadcast to every selected group on every selected date at one time.
type ComposeRequest struct {
	UserID   string   `json:"user_id"`
	JobIDs   []string `json:"jobs_ids"`
	GroupIDs []string `json:"group_ids"`
	Dates    []string `json:"dates"`
	Time     string   `json:"time"`
}

type BroadcastUsecase struct {
	jobs      jobdomain.JobRepository
	groups    groupdomain.GroupRepository
	schedules scheduledomain.ScheduleRepository
	pool      *fanout.Pool
	sender    Sender
	locker    Locker
	notifier  scheduleusecase.ChangeNotifier
	clock     func() time.Time
}

func NewBroadcastUsecase(
	jobs jobdomain.JobRepository,
	groups groupdomain.GroupRepository,
	schedules scheduledomain.ScheduleRepository,
	pool *fanout.Pool,
	sender Sender,
	locker Locker,
	notifier scheduleusecase.ChangeNotifier,
) *BroadcastUsecase {
	return &BroadcastUsecase{
		jobs:      jobs,
		groups:    groups,
		schedules: schedules,
		pool:      pool,
		sender:    sender,
		locker:    locker,
		notifier:  notifier,
		clock:     time.Now,
	}
}

func (u *BroadcastUsecase) validate(req *ComposeRequest) error {
	if len(req.JobIDs) == 0 {
		return ErrNoJobs
	}
	if len(req.JobIDs) > MaxJobsPerBroadcast {
		return ErrTooManyJobs
	}
	if len(req.GroupIDs) == 0 {
		return ErrNoGroups
	}
	if len(req.Dates) == 0 {
		return ErrNoDates
	}
	if !strings.HasSuffix(req.Time, ":00") {
		return ErrNotHourlySlot
	}

	now := u.clock()
	for _, date := range req.Dates {
		if _, err := timeutils.ParseDateTime(date, req.Time); err != nil {
			return fmt.Errorf("invalid slot: %w", err)
		}
		if !timeutils.WithinWindow(date, now) {
			return ErrOutsideWindow
		}
		if !timeutils.MeetsMinimumLead(date, req.Time, now) {
			return scheduledomain.ErrScheduleTooSoon
		}
	}
	return nil
}

// CreateSchedules expands the composer selection into schedule rows: one
// batch per date, one row per group inside it. Every row starts pending.
func (u *BroadcastUsecase) CreateSchedules(ctx context.Context, req *ComposeRequest) ([]scheduledomain.ScheduleRow, error) {
	if err := u.validate(req); err != nil {
		return nil, err
	}

	if u.locker != nil && !u.locker.AcquireLock(ctx, "broadcast:"+req.UserID, 10*time.Second) {
		return nil, ErrBroadcastBusy
	}

	for _, jobID := range req.JobIDs {
		job, err := u.jobs.GetByID(ctx, req.UserID, jobID)
		if err != nil {
			return nil, err
		}
		if !job.IsActive() {
			return nil, jobdomain.ErrJobPaused
		}
	}

	// registry ids resolve to the WhatsApp-side group ids stored on rows
	waGroupIDs := make([]string, 0, len(req.GroupIDs))
	for _, groupID := range req.GroupIDs {
		group, err := u.groups.GetByID(ctx, req.UserID, groupID)
		if err != nil {
			return nil, err
		}
		waGroupIDs = append(waGroupIDs, group.GroupID)
	}

	created := make([]scheduledomain.ScheduleRow, 0, len(req.Dates)*len(waGroupIDs))
	for _, date := range req.Dates {
		batchID := uuid.NewString()
		rows := make([]*scheduledomain.ScheduleRow, 0, len(waGroupIDs))
		for _, waID := range waGroupIDs {
			rows = append(rows, &scheduledomain.ScheduleRow{
				UserID:        req.UserID,
				BatchID:       batchID,
				JobIDs:        append([]string(nil), req.JobIDs...),
				GroupID:       waID,
				ScheduledDate: date,
				ScheduledTime: req.Time,
				Status:        "scheduled",
				PublishStatus: scheduledomain.PublishPending,
				GroupsCount:   len(waGroupIDs),
			})
		}
		if err := u.schedules.CreateRows(ctx, rows); err != nil {
			return created, fmt.Errorf("failed to create batch for %s: %w", date, err)
		}
		for _, row := range rows {
			created = append(created, *row)
		}
	}

	logrus.Infof("[BROADCAST] user %s booked %d rows across %d dates", req.UserID, len(created), len(req.Dates))
	if u.notifier != nil {
		u.notifier.NotifyScheduleChange(req.UserID)
	}
	return created, nil
}

// SendNow pushes every pending row of the batch onto the fan-out pool.
// Rows sharing the batch land on one worker, so sends keep group order.
func (u *BroadcastUsecase) SendNow(ctx context.Context, userID, batchID string) (int, error) {
	rows, err := u.schedules.ListBatch(ctx, userID, batchID)
	if err != nil {
		return 0, err
	}

	dispatched, err := u.dispatchRows(userID, batchID, rows)
	if err != nil {
		return dispatched, err
	}

	logrus.Infof("[BROADCAST] batch %s dispatched %d sends", batchID, dispatched)
	return dispatched, nil
}

// SendNowRequest is an immediate broadcast: the composer selection without
// dates or a slot, delivered as soon as the pool picks it up.
type SendNowRequest struct {
	UserID   string   `json:"user_id"`
	JobIDs   []string `json:"jobs_ids"`
	GroupIDs []string `json:"group_ids"`
}

// ComposeAndSend creates one batch stamped with the current moment and
// feeds it straight to the fan-out pool. The lead-time and window gates do
// not apply; there is nothing to wait for.
func (u *BroadcastUsecase) ComposeAndSend(ctx context.Context, req *SendNowRequest) ([]scheduledomain.ScheduleRow, error) {
	if len(req.JobIDs) == 0 {
		return nil, ErrNoJobs
	}
	if len(req.JobIDs) > MaxJobsPerBroadcast {
		return nil, ErrTooManyJobs
	}
	if len(req.GroupIDs) == 0 {
		return nil, ErrNoGroups
	}

	if u.locker != nil && !u.locker.AcquireLock(ctx, "broadcast:"+req.UserID, 10*time.Second) {
		return nil, ErrBroadcastBusy
	}

	for _, jobID := range req.JobIDs {
		job, err := u.jobs.GetByID(ctx, req.UserID, jobID)
		if err != nil {
			return nil, err
		}
		if !job.IsActive() {
			return nil, jobdomain.ErrJobPaused
		}
	}

	waGroupIDs := make([]string, 0, len(req.GroupIDs))
	for _, groupID := range req.GroupIDs {
		group, err := u.groups.GetByID(ctx, req.UserID, groupID)
		if err != nil {
			return nil, err
		}
		waGroupIDs = append(waGroupIDs, group.GroupID)
	}

	now := u.clock().UTC()
	batchID := uuid.NewString()
	rows := make([]*scheduledomain.ScheduleRow, 0, len(waGroupIDs))
	for _, waID := range waGroupIDs {
		rows = append(rows, &scheduledomain.ScheduleRow{
			UserID:        req.UserID,
			BatchID:       batchID,
			JobIDs:        append([]string(nil), req.JobIDs...),
			GroupID:       waID,
			ScheduledDate: now.Format(timeutils.DateLayout),
			ScheduledTime: now.Format(timeutils.TimeLayout),
			Status:        "sending",
			PublishStatus: scheduledomain.PublishPending,
			GroupsCount:   len(waGroupIDs),
		})
	}
	if err := u.schedules.CreateRows(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to create immediate batch: %w", err)
	}

	created := make([]scheduledomain.ScheduleRow, 0, len(rows))
	for _, row := range rows {
		created = append(created, *row)
	}

	dispatched, err := u.dispatchRows(req.UserID, batchID, created)
	if err != nil {
		return created, err
	}

	logrus.Infof("[BROADCAST] user %s sent batch %s immediately (%d rows)", req.UserID, batchID, dispatched)
	if u.notifier != nil {
		u.notifier.NotifyScheduleChange(req.UserID)
	}
	return created, nil
}

func (u *BroadcastUsecase) dispatchRows(userID, batchID string, rows []scheduledomain.ScheduleRow) (int, error) {
	dispatched := 0
	for _, row := range rows {
		if row.PublishStatus != scheduledomain.PublishPending {
			continue
		}
		row := row
		ok := u.pool.TryDispatch(fanout.Job{
			UserID:  userID,
			BatchID: batchID,
			Handler: func(ctx context.Context) error {
				return u.sender.Send(ctx, row)
			},
		})
		if !ok {
			return dispatched, ErrPoolSaturated
		}
		dispatched++
	}
	return dispatched, nil
}

// History lists the user's rows in one delivery state, newest first.
func (u *BroadcastUsecase) History(ctx context.Context, userID string, status scheduledomain.PublishStatus) ([]scheduledomain.ScheduleRow, error) {
	return u.schedules.ListByPublishStatus(ctx, userID, status)
}

// HistoryAll returns every row regardless of delivery outcome.
func (u *BroadcastUsecase) HistoryAll(ctx context.Context, userID string) ([]scheduledomain.ScheduleRow, error) {
	return u.schedules.ListByUser(ctx, userID)
}
