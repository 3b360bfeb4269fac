package usecase

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sorogrupos/jobcast/schedules/domain"
)

// ScheduleStore keeps a per-user in-memory view of schedule rows so REST
// and websocket consumers read without hitting the database, and so deletes
// can be applied optimistically with a rollback path.
//
// Contract: Refresh replaces the view from storage and advances the view's
// generation. Optimistic mutations remember the generation they started
// from; a rollback only restores the snapshot if no refresh landed in
// between, otherwise it re-reads storage instead of resurrecting stale rows.
type ScheduleStore struct {
	uc *ScheduleUsecase

	mu    sync.RWMutex
	views map[string]*userView
}

type userView struct {
	rows       []domain.ScheduleRow
	generation uint64
	openBatch  string // batch currently expanded in the client view
}

func NewScheduleStore(uc *ScheduleUsecase) *ScheduleStore {
	return &ScheduleStore{
		uc:    uc,
		views: make(map[string]*userView),
	}
}

func (s *ScheduleStore) view(userID string) *userView {
	v, ok := s.views[userID]
	if !ok {
		v = &userView{}
		s.views[userID] = v
	}
	return v
}

// Refresh reloads the user's rows from storage.
func (s *ScheduleStore) Refresh(ctx context.Context, userID string) ([]domain.ScheduleRow, error) {
	rows, err := s.uc.ListRows(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	v := s.view(userID)
	v.rows = rows
	v.generation++
	s.mu.Unlock()

	return rows, nil
}

// Rows returns the cached view and its generation. An empty cache returns
// generation zero; callers should Refresh first.
func (s *ScheduleStore) Rows(userID string) ([]domain.ScheduleRow, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[userID]
	if !ok {
		return nil, 0
	}
	rows := make([]domain.ScheduleRow, len(v.rows))
	copy(rows, v.rows)
	return rows, v.generation
}

// Calendar derives the date-keyed batch view from the cache.
func (s *ScheduleStore) Calendar(userID string) map[string][]domain.Batch {
	rows, _ := s.Rows(userID)
	return CalendarByDate(rows)
}

// OpenBatch records which batch the user has expanded, so a rollback can
// restore the full view state.
func (s *ScheduleStore) OpenBatch(userID, batchID string) {
	s.mu.Lock()
	s.view(userID).openBatch = batchID
	s.mu.Unlock()
}

func (s *ScheduleStore) OpenedBatch(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.views[userID]; ok {
		return v.openBatch
	}
	return ""
}

// Mutate runs a storage mutation and, when it succeeds, refreshes the view.
// Lifecycle operations that are transactional server-side (reschedule, add
// groups) go through here; they need no optimistic path.
func (s *ScheduleStore) Mutate(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	_, err := s.Refresh(ctx, userID)
	return err
}

// Append adds freshly created rows to the cached view without re-reading
// storage. The generation advances so an in-flight rollback cannot drop the
// new rows by restoring an older snapshot.
func (s *ScheduleStore) Append(userID string, rows []domain.ScheduleRow) {
	if len(rows) == 0 {
		return
	}
	s.mu.Lock()
	v := s.view(userID)
	v.rows = append(v.rows, rows...)
	v.generation++
	s.mu.Unlock()
}

// DeleteBatch removes the batch from the cached view immediately, then
// deletes row by row. On failure the snapshot is restored field for field,
// including which batch was expanded, unless a refresh advanced the view in
// the meantime.
func (s *ScheduleStore) DeleteBatch(ctx context.Context, userID, batchID string) (int, error) {
	s.mu.Lock()
	v := s.view(userID)
	snapshot := make([]domain.ScheduleRow, len(v.rows))
	copy(snapshot, v.rows)
	snapshotOpen := v.openBatch
	startGen := v.generation

	kept := v.rows[:0:0]
	for _, row := range v.rows {
		if row.BatchID != batchID {
			kept = append(kept, row)
		}
	}
	v.rows = kept
	if v.openBatch == batchID {
		v.openBatch = ""
	}
	s.mu.Unlock()

	n, err := s.uc.DeleteBatch(ctx, userID, batchID)
	if err != nil {
		s.rollback(ctx, userID, startGen, snapshot, snapshotOpen)
		return n, err
	}

	if _, rerr := s.Refresh(ctx, userID); rerr != nil {
		logrus.Warnf("[STORE] refresh after delete failed for user %s: %v", userID, rerr)
	}
	return n, nil
}

// DeleteRow removes one row optimistically with the same rollback rules.
func (s *ScheduleStore) DeleteRow(ctx context.Context, userID, rowID string) error {
	s.mu.Lock()
	v := s.view(userID)
	snapshot := make([]domain.ScheduleRow, len(v.rows))
	copy(snapshot, v.rows)
	snapshotOpen := v.openBatch
	startGen := v.generation

	var removedBatch string
	kept := v.rows[:0:0]
	for _, row := range v.rows {
		if row.ID != rowID {
			kept = append(kept, row)
			continue
		}
		removedBatch = row.BatchID
	}
	v.rows = kept

	// Last row gone means the expanded batch view has nothing to show.
	if removedBatch != "" && v.openBatch == removedBatch {
		remaining := false
		for _, row := range kept {
			if row.BatchID == removedBatch {
				remaining = true
				break
			}
		}
		if !remaining {
			v.openBatch = ""
		}
	}
	s.mu.Unlock()

	if err := s.uc.DeleteRow(ctx, userID, rowID); err != nil {
		s.rollback(ctx, userID, startGen, snapshot, snapshotOpen)
		return err
	}

	if _, rerr := s.Refresh(ctx, userID); rerr != nil {
		logrus.Warnf("[STORE] refresh after delete failed for user %s: %v", userID, rerr)
	}
	return nil
}

func (s *ScheduleStore) rollback(ctx context.Context, userID string, startGen uint64, snapshot []domain.ScheduleRow, openBatch string) {
	s.mu.Lock()
	v := s.view(userID)
	if v.generation == startGen {
		v.rows = snapshot
		v.openBatch = openBatch
		s.mu.Unlock()
		logrus.Warnf("[STORE] optimistic delete rolled back for user %s", userID)
		return
	}
	s.mu.Unlock()

	// The view moved on while the delete was in flight; storage is the only
	// truth left.
	if _, err := s.Refresh(ctx, userID); err != nil {
		logrus.Errorf("[STORE] rollback refresh failed for user %s: %v", userID, err)
	}
}
