package usecase

import (
	"context"
	"testing"
	"time"

	groupdomain "github.com/sorogrupos/jobcast/groups/domain"
	grouprepo "github.com/sorogrupos/jobcast/groups/repository"
	"github.com/sorogrupos/jobcast/schedules/domain"
	"github.com/sorogrupos/jobcast/schedules/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func setupUsecase(t *testing.T) (*ScheduleUsecase, domain.ScheduleRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	repo := repository.NewScheduleGormRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	groups := grouprepo.NewGroupGormRepository(db)
	if err := groups.Init(context.Background()); err != nil {
		t.Fatalf("failed to migrate groups: %v", err)
	}
	u := NewScheduleUsecase(repo, groups, nil)
	u.clock = func() time.Time { return testNow }
	return u, repo
}

// registerGroup puts a group into the registry and returns its registry id.
// The waID is what schedule rows store.
func registerGroup(t *testing.T, u *ScheduleUsecase, waID string) string {
	t.Helper()
	g := &groupdomain.Group{UserID: "user-1", Name: "Grupo " + waID, GroupID: waID}
	if err := u.groups.Create(context.Background(), g); err != nil {
		t.Fatalf("register group %s: %v", waID, err)
	}
	return g.ID
}

func seedBatch(t *testing.T, repo domain.ScheduleRepository, batchID, date, timeStr string, groups ...string) []*domain.ScheduleRow {
	t.Helper()
	rows := make([]*domain.ScheduleRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, &domain.ScheduleRow{
			UserID:        "user-1",
			BatchID:       batchID,
			JobIDs:        []string{"job-1"},
			GroupID:       g,
			ScheduledDate: date,
			ScheduledTime: timeStr,
			Status:        "scheduled",
			PublishStatus: domain.PublishPending,
			GroupsCount:   len(groups),
		})
	}
	if err := repo.CreateRows(context.Background(), rows); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return rows
}

func TestValidateRescheduleLeadBoundary(t *testing.T) {
	u, _ := setupUsecase(t)

	// exactly thirty minutes ahead is accepted
	if err := u.ValidateReschedule("2026-09-01", "12:30"); err != nil {
		t.Errorf("30-minute lead must pass, got %v", err)
	}
	if err := u.ValidateReschedule("2026-09-01", "12:29"); err != domain.ErrScheduleTooSoon {
		t.Errorf("29-minute lead must fail with ErrScheduleTooSoon, got %v", err)
	}
	if err := u.ValidateReschedule("2026-09-01", "11:00"); err != domain.ErrScheduleTooSoon {
		t.Errorf("past target must fail, got %v", err)
	}
	if err := u.ValidateReschedule("not-a-date", "12:30"); err == nil {
		t.Error("unparseable target must fail")
	}
}

func TestRescheduleMovesWholeBatch(t *testing.T) {
	u, repo := setupUsecase(t)
	seedBatch(t, repo, "b1", "2026-09-04", "10:00", "g1", "g2", "g3")

	n, err := u.Reschedule(context.Background(), "user-1", "b1", "2026-09-05", "15:00")
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows moved, got %d", n)
	}

	batch, err := u.GetBatch(context.Background(), "user-1", "b1")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if batch.Date != "2026-09-05" || batch.Time != "15:00" {
		t.Errorf("batch not moved: %s %s", batch.Date, batch.Time)
	}
}

func TestRescheduleRejectsSentBatch(t *testing.T) {
	u, repo := setupUsecase(t)
	rows := seedBatch(t, repo, "b1", "2026-09-04", "10:00", "g1", "g2")
	rows[1].PublishStatus = domain.PublishSent
	// reseed the sent row under a fresh id to flip its status
	sent := *rows[1]
	sent.ID = ""
	if err := repo.DeleteRow(context.Background(), "user-1", rows[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.CreateRows(context.Background(), []*domain.ScheduleRow{&sent}); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	_, err := u.Reschedule(context.Background(), "user-1", "b1", "2026-09-05", "15:00")
	if err != domain.ErrBatchLocked {
		t.Errorf("expected ErrBatchLocked for batch with a sent row, got %v", err)
	}
}

func TestRescheduleRejectsPastBatch(t *testing.T) {
	u, repo := setupUsecase(t)
	seedBatch(t, repo, "b1", "2026-08-30", "10:00", "g1")

	_, err := u.Reschedule(context.Background(), "user-1", "b1", "2026-09-05", "15:00")
	if err != domain.ErrBatchLocked {
		t.Errorf("expected ErrBatchLocked for past batch, got %v", err)
	}
}

func TestRescheduleRejectsShortLead(t *testing.T) {
	u, repo := setupUsecase(t)
	seedBatch(t, repo, "b1", "2026-09-04", "10:00", "g1")

	_, err := u.Reschedule(context.Background(), "user-1", "b1", "2026-09-01", "12:15")
	if err != domain.ErrScheduleTooSoon {
		t.Errorf("expected ErrScheduleTooSoon, got %v", err)
	}

	// batch untouched after the rejection
	batch, err := u.GetBatch(context.Background(), "user-1", "b1")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if batch.Date != "2026-09-04" {
		t.Errorf("rejected reschedule must not move the batch, got %s", batch.Date)
	}
}

func TestAddGroupsClonesRepresentative(t *testing.T) {
	u, repo := setupUsecase(t)
	seedBatch(t, repo, "b1", "2026-09-04", "10:00", "g1@g.us", "g2@g.us")

	reg2 := registerGroup(t, u, "g2@g.us")
	reg3 := registerGroup(t, u, "g3@g.us")
	reg4 := registerGroup(t, u, "g4@g.us")

	added, err := u.AddGroups(context.Background(), "user-1", "b1", []string{reg2, reg3, reg4, reg3, ""})
	if err != nil {
		t.Fatalf("AddGroups: %v", err)
	}
	// g2 already targeted, g3 deduplicated, empty skipped
	if len(added) != 2 {
		t.Fatalf("expected 2 new rows, got %d", len(added))
	}
	for _, row := range added {
		if row.ScheduledDate != "2026-09-04" || row.ScheduledTime != "10:00" {
			t.Errorf("clone must keep the batch moment, got %s %s", row.ScheduledDate, row.ScheduledTime)
		}
		if row.PublishStatus != domain.PublishPending {
			t.Errorf("clone must start pending, got %d", row.PublishStatus)
		}
		if row.GroupsCount != 4 {
			t.Errorf("clone must carry the new total, got %d", row.GroupsCount)
		}
	}
	if added[0].GroupID != "g3@g.us" || added[1].GroupID != "g4@g.us" {
		t.Errorf("rows must store WhatsApp ids, got %s and %s", added[0].GroupID, added[1].GroupID)
	}

	batch, err := u.GetBatch(context.Background(), "user-1", "b1")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(batch.Rows) != 4 {
		t.Errorf("expected 4 rows in batch, got %d", len(batch.Rows))
	}
}

// A registry id whose WhatsApp group already sits in the batch must not
// sneak past deduplication just because the two id spaces differ.
func TestAddGroupsResolvesRegistryIDs(t *testing.T) {
	u, repo := setupUsecase(t)
	seedBatch(t, repo, "b1", "2026-09-04", "10:00", "g1@g.us")
	reg1 := registerGroup(t, u, "g1@g.us")

	_, err := u.AddGroups(context.Background(), "user-1", "b1", []string{reg1})
	if err != domain.ErrNoNewGroups {
		t.Errorf("expected ErrNoNewGroups for already targeted group, got %v", err)
	}

	batch, err := u.GetBatch(context.Background(), "user-1", "b1")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(batch.Rows) != 1 {
		t.Errorf("registered group must stay targeted by exactly one row, got %d", len(batch.Rows))
	}
}

func TestAddGroupsRejectsUnknownGroup(t *testing.T) {
	u, repo := setupUsecase(t)
	seedBatch(t, repo, "b1", "2026-09-04", "10:00", "g1@g.us")

	_, err := u.AddGroups(context.Background(), "user-1", "b1", []string{"not-registered"})
	if err != groupdomain.ErrGroupNotFound {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestDeleteBatchRemovesAllRows(t *testing.T) {
	u, repo := setupUsecase(t)
	seedBatch(t, repo, "b1", "2026-09-04", "10:00", "g1", "g2")
	seedBatch(t, repo, "b2", "2026-09-04", "11:00", "g1")

	n, err := u.DeleteBatch(context.Background(), "user-1", "b1")
	if err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows deleted, got %d", n)
	}

	if _, err := u.GetBatch(context.Background(), "user-1", "b1"); err != domain.ErrBatchNotFound {
		t.Errorf("expected ErrBatchNotFound after delete, got %v", err)
	}
	if _, err := u.GetBatch(context.Background(), "user-1", "b2"); err != nil {
		t.Errorf("sibling batch must survive, got %v", err)
	}
}

func TestDeleteKeepsPastRows(t *testing.T) {
	u, repo := setupUsecase(t)
	rows := seedBatch(t, repo, "b1", "2026-08-30", "10:00", "g1", "g2")

	if err := u.DeleteRow(context.Background(), "user-1", rows[0].ID); err != domain.ErrRowInPast {
		t.Errorf("expected ErrRowInPast, got %v", err)
	}
	if _, err := u.DeleteBatch(context.Background(), "user-1", "b1"); err != domain.ErrRowInPast {
		t.Errorf("expected ErrRowInPast for past batch, got %v", err)
	}
	if _, err := u.GetBatch(context.Background(), "user-1", "b1"); err != nil {
		t.Errorf("past batch must remain, got %v", err)
	}
}

func TestStatsCountsPerPublishStatus(t *testing.T) {
	u, repo := setupUsecase(t)
	seedBatch(t, repo, "b1", "2026-09-04", "10:00", "g1", "g2")
	sent := &domain.ScheduleRow{
		UserID: "user-1", BatchID: "b2", JobIDs: []string{"job-2"},
		GroupID: "g3", ScheduledDate: "2026-08-20", ScheduledTime: "09:00",
		PublishStatus: domain.PublishSent,
	}
	if err := repo.CreateRows(context.Background(), []*domain.ScheduleRow{sent}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stats, err := u.Stats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Pending != 2 || stats.Sent != 1 || stats.Failed != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
