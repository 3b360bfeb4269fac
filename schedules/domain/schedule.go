package domain

import (
	"time"

	"github.com/sorogrupos/jobcast/pkg/timeutils"
)

// PublishStatus is the tri-state delivery flag written by the external
// sender process, never by this service.
type PublishStatus int

const (
	PublishFailed  PublishStatus = -1
	PublishPending PublishStatus = 0
	PublishSent    PublishStatus = 1
)

// ScheduleRow pairs one job broadcast with one target group at one send
// moment. Rows sharing a BatchID form one logical broadcast fanned out
// across several groups.
type ScheduleRow struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	BatchID       string        `json:"batch_id"`
	JobIDs        []string      `json:"jobs_ids"`
	GroupID       string        `json:"id_group"`
	ScheduledDate string        `json:"scheduled_date"` // "2006-01-02"; empty keeps the row off calendar views
	ScheduledTime string        `json:"scheduled_time"` // "HH:MM"
	Status        string        `json:"status"`         // free text owned by the external sender
	PublishStatus PublishStatus `json:"publish_status"`
	GroupsCount   int           `json:"groups_count"`
	Quarantined   bool          `json:"quarantined"` // jobs_ids could not be decoded
	Version       int64         `json:"version"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// PrimaryJobID returns the job that keys this row's batch, or "" when the
// row carries no jobs.
func (r *ScheduleRow) PrimaryJobID() string {
	if len(r.JobIDs) == 0 {
		return ""
	}
	return r.JobIDs[0]
}

// IsPast reports whether the row's send moment is at or before now.
func (r *ScheduleRow) IsPast(now time.Time) bool {
	return timeutils.IsPast(r.ScheduledDate, r.ScheduledTime, now)
}

// Batch is the set of rows sharing (date, time, primary job): one broadcast
// instance targeting N groups. Derived at read time; the BatchID column
// makes the membership explicit in storage.
type Batch struct {
	ID    string        `json:"id"`
	Date  string        `json:"date"`
	Time  string        `json:"time"`
	JobID string        `json:"job_id"`
	Rows  []ScheduleRow `json:"rows"`
}

// GroupIDs returns the target group ids already present in the batch, in
// row order.
func (b *Batch) GroupIDs() []string {
	ids := make([]string, 0, len(b.Rows))
	for _, r := range b.Rows {
		ids = append(ids, r.GroupID)
	}
	return ids
}

// HasGroup reports whether the batch already targets the given group.
func (b *Batch) HasGroup(groupID string) bool {
	for _, r := range b.Rows {
		if r.GroupID == groupID {
			return true
		}
	}
	return false
}

// HasSentRow reports whether any row was already delivered.
func (b *Batch) HasSentRow() bool {
	for _, r := range b.Rows {
		if r.PublishStatus == PublishSent {
			return true
		}
	}
	return false
}

// CanReschedule reports whether the batch may still be edited: no row was
// sent and the stored send moment is strictly in the future. The same gate
// covers rescheduling and adding groups.
func (b *Batch) CanReschedule(now time.Time) bool {
	if len(b.Rows) == 0 {
		return false
	}
	if b.HasSentRow() {
		return false
	}
	return !timeutils.IsPast(b.Date, b.Time, now)
}

// Representative returns the row whose date/time/jobs/status new rows clone
// when groups are added to the batch.
func (b *Batch) Representative() *ScheduleRow {
	if len(b.Rows) == 0 {
		return nil
	}
	return &b.Rows[0]
}
