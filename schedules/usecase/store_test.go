package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sorogrupos/jobcast/schedules/domain"
	"github.com/sorogrupos/jobcast/schedules/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errStorageDown = errors.New("storage down")

// flakyRepo delegates to a real repository but fails DeleteRow after a set
// number of successes, to exercise the store's rollback path.
type flakyRepo struct {
	domain.ScheduleRepository
	deletesBeforeFail int
}

func (f *flakyRepo) DeleteRow(ctx context.Context, userID, rowID string) error {
	if f.deletesBeforeFail <= 0 {
		return errStorageDown
	}
	f.deletesBeforeFail--
	return f.ScheduleRepository.DeleteRow(ctx, userID, rowID)
}

func setupStore(t *testing.T, deletesBeforeFail int) (*ScheduleStore, *flakyRepo) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	base := repository.NewScheduleGormRepository(db)
	if err := base.Init(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	flaky := &flakyRepo{ScheduleRepository: base, deletesBeforeFail: deletesBeforeFail}
	u := NewScheduleUsecase(flaky, nil, nil)
	u.clock = func() time.Time { return testNow }
	return NewScheduleStore(u), flaky
}

func storeSeed(t *testing.T, s *ScheduleStore, batchID string, groups ...string) {
	t.Helper()
	rows := make([]*domain.ScheduleRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, &domain.ScheduleRow{
			UserID:        "user-1",
			BatchID:       batchID,
			JobIDs:        []string{"job-1"},
			GroupID:       g,
			ScheduledDate: "2026-09-04",
			ScheduledTime: "10:00",
			PublishStatus: domain.PublishPending,
		})
	}
	if err := s.uc.repo.CreateRows(context.Background(), rows); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestStoreRefreshAdvancesGeneration(t *testing.T) {
	s, _ := setupStore(t, 100)
	storeSeed(t, s, "b1", "g1", "g2")

	if _, gen := s.Rows("user-1"); gen != 0 {
		t.Fatalf("empty cache must sit at generation 0, got %d", gen)
	}

	if _, err := s.Refresh(context.Background(), "user-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	rows, gen := s.Rows("user-1")
	if len(rows) != 2 || gen != 1 {
		t.Errorf("expected 2 rows at generation 1, got %d at %d", len(rows), gen)
	}

	if _, err := s.Refresh(context.Background(), "user-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, gen := s.Rows("user-1"); gen != 2 {
		t.Errorf("expected generation 2, got %d", gen)
	}
}

func TestStoreAppendSkipsRefetch(t *testing.T) {
	s, _ := setupStore(t, 100)
	storeSeed(t, s, "b1", "g1")
	if _, err := s.Refresh(context.Background(), "user-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	_, genBefore := s.Rows("user-1")

	s.Append("user-1", []domain.ScheduleRow{{
		ID:            "row-new",
		UserID:        "user-1",
		BatchID:       "b1",
		JobIDs:        []string{"job-1"},
		GroupID:       "g2",
		ScheduledDate: "2026-09-04",
		ScheduledTime: "10:00",
		PublishStatus: domain.PublishPending,
	}})

	rows, gen := s.Rows("user-1")
	if len(rows) != 2 {
		t.Fatalf("expected appended row in view, got %d rows", len(rows))
	}
	if gen != genBefore+1 {
		t.Errorf("append must advance the generation: %d -> %d", genBefore, gen)
	}

	// an empty append is a no-op
	s.Append("user-1", nil)
	if _, g := s.Rows("user-1"); g != gen {
		t.Errorf("empty append must not advance the generation, got %d", g)
	}
}

func TestStoreDeleteBatchOptimistic(t *testing.T) {
	s, _ := setupStore(t, 100)
	storeSeed(t, s, "b1", "g1", "g2")
	storeSeed(t, s, "b2", "g1")
	if _, err := s.Refresh(context.Background(), "user-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	n, err := s.DeleteBatch(context.Background(), "user-1", "b1")
	if err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows deleted, got %d", n)
	}

	rows, _ := s.Rows("user-1")
	if len(rows) != 1 || rows[0].BatchID != "b2" {
		t.Errorf("expected only batch b2 to remain, got %+v", rows)
	}
}

func TestStoreDeleteBatchRollbackRestoresSnapshot(t *testing.T) {
	// first delete succeeds in storage, second fails mid-batch
	s, _ := setupStore(t, 1)
	storeSeed(t, s, "b1", "g1", "g2")
	if _, err := s.Refresh(context.Background(), "user-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	before, beforeGen := s.Rows("user-1")
	s.OpenBatch("user-1", "b1")

	_, err := s.DeleteBatch(context.Background(), "user-1", "b1")
	if !errors.Is(err, errStorageDown) {
		t.Fatalf("expected storage error, got %v", err)
	}

	after, afterGen := s.Rows("user-1")
	if afterGen != beforeGen {
		t.Errorf("rollback must not advance the generation: %d -> %d", beforeGen, afterGen)
	}
	if len(after) != len(before) {
		t.Fatalf("expected %d rows restored, got %d", len(before), len(after))
	}
	for i := range before {
		if !reflect.DeepEqual(after[i], before[i]) {
			t.Errorf("row %d not restored field for field:\n got %+v\nwant %+v", i, after[i], before[i])
		}
	}
	if s.OpenedBatch("user-1") != "b1" {
		t.Error("rollback must restore the expanded batch")
	}
}

func TestStoreRollbackSkippedAfterConcurrentRefresh(t *testing.T) {
	s, _ := setupStore(t, 0)
	storeSeed(t, s, "b1", "g1")
	if _, err := s.Refresh(context.Background(), "user-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// a refresh lands between the optimistic removal and the failure
	u := s.uc
	s.uc = &ScheduleUsecase{
		repo:  refreshingRepo{inner: u.repo, store: s},
		clock: u.clock,
	}

	err := s.DeleteRow(context.Background(), "user-1", mustFirstRowID(t, s))
	if !errors.Is(err, errStorageDown) {
		t.Fatalf("expected storage error, got %v", err)
	}

	// the stale snapshot must not beat the refreshed view
	rows, _ := s.Rows("user-1")
	if len(rows) != 1 {
		t.Errorf("expected the refreshed view (1 row), got %d rows", len(rows))
	}
}

// refreshingRepo triggers a store refresh before failing the delete,
// simulating a realtime update racing the optimistic mutation.
type refreshingRepo struct {
	inner domain.ScheduleRepository
	store *ScheduleStore
}

func (r refreshingRepo) DeleteRow(ctx context.Context, userID, rowID string) error {
	if _, err := r.store.Refresh(ctx, userID); err != nil {
		return err
	}
	return errStorageDown
}

func (r refreshingRepo) CreateRows(ctx context.Context, rows []*domain.ScheduleRow) error {
	return r.inner.CreateRows(ctx, rows)
}
func (r refreshingRepo) GetRow(ctx context.Context, userID, rowID string) (*domain.ScheduleRow, error) {
	return r.inner.GetRow(ctx, userID, rowID)
}
func (r refreshingRepo) ListByUser(ctx context.Context, userID string) ([]domain.ScheduleRow, error) {
	return r.inner.ListByUser(ctx, userID)
}
func (r refreshingRepo) ListBatch(ctx context.Context, userID, batchID string) ([]domain.ScheduleRow, error) {
	return r.inner.ListBatch(ctx, userID, batchID)
}
func (r refreshingRepo) RescheduleBatch(ctx context.Context, userID, batchID, newDate, newTime string) (int, error) {
	return r.inner.RescheduleBatch(ctx, userID, batchID, newDate, newTime)
}
func (r refreshingRepo) UpdateJobIDs(ctx context.Context, rowID string, jobIDs []string) error {
	return r.inner.UpdateJobIDs(ctx, rowID, jobIDs)
}
func (r refreshingRepo) ListFutureByJob(ctx context.Context, jobID, fromDate string) ([]domain.ScheduleRow, error) {
	return r.inner.ListFutureByJob(ctx, jobID, fromDate)
}
func (r refreshingRepo) CountByPublishStatus(ctx context.Context, userID string, status domain.PublishStatus) (int64, error) {
	return r.inner.CountByPublishStatus(ctx, userID, status)
}
func (r refreshingRepo) ListByPublishStatus(ctx context.Context, userID string, status domain.PublishStatus) ([]domain.ScheduleRow, error) {
	return r.inner.ListByPublishStatus(ctx, userID, status)
}
func (r refreshingRepo) ListQuarantined(ctx context.Context, userID string) ([]domain.ScheduleRow, error) {
	return r.inner.ListQuarantined(ctx, userID)
}

func mustFirstRowID(t *testing.T, s *ScheduleStore) string {
	t.Helper()
	rows, _ := s.Rows("user-1")
	if len(rows) == 0 {
		t.Fatal("no rows in view")
	}
	return rows[0].ID
}

func TestStoreMutateRefreshesOnSuccess(t *testing.T) {
	s, _ := setupStore(t, 100)
	storeSeed(t, s, "b1", "g1")
	if _, err := s.Refresh(context.Background(), "user-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	_, genBefore := s.Rows("user-1")

	err := s.Mutate(context.Background(), "user-1", func(ctx context.Context) error {
		_, err := s.uc.Reschedule(ctx, "user-1", "b1", "2026-09-06", "14:00")
		return err
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	rows, genAfter := s.Rows("user-1")
	if genAfter != genBefore+1 {
		t.Errorf("mutate must refresh once: %d -> %d", genBefore, genAfter)
	}
	if rows[0].ScheduledDate != "2026-09-06" {
		t.Errorf("view must reflect the mutation, got %s", rows[0].ScheduledDate)
	}
}

func TestStoreMutateSkipsRefreshOnFailure(t *testing.T) {
	s, _ := setupStore(t, 100)
	storeSeed(t, s, "b1", "g1")
	if _, err := s.Refresh(context.Background(), "user-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	_, genBefore := s.Rows("user-1")

	wantErr := errors.New("mutation failed")
	err := s.Mutate(context.Background(), "user-1", func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected mutation error, got %v", err)
	}
	if _, gen := s.Rows("user-1"); gen != genBefore {
		t.Errorf("failed mutate must not refresh: %d -> %d", genBefore, gen)
	}
}
