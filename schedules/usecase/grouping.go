package usecase

import (
	"github.com/sorogrupos/jobcast/schedules/domain"
)

// batchKey returns the identity under which a row's batch is collected.
// Rows written by this service carry an explicit batch id; legacy rows
// fall back to the composite (date, time, primary job) identity.
func batchKey(row *domain.ScheduleRow) string {
	if row.BatchID != "" {
		return row.BatchID
	}
	return row.ScheduledDate + "_" + row.ScheduledTime + "_" + row.PrimaryJobID()
}

// GroupBatches collects rows into batches, preserving the order in which
// each batch first appears in the input. Quarantined rows are skipped:
// without a decodable job list they have no batch identity.
func GroupBatches(rows []domain.ScheduleRow) []domain.Batch {
	batches := make([]domain.Batch, 0)
	index := make(map[string]int)

	for _, row := range rows {
		if row.Quarantined {
			continue
		}
		key := batchKey(&row)
		i, ok := index[key]
		if !ok {
			index[key] = len(batches)
			batches = append(batches, domain.Batch{
				ID:    key,
				Date:  row.ScheduledDate,
				Time:  row.ScheduledTime,
				JobID: row.PrimaryJobID(),
				Rows:  []domain.ScheduleRow{row},
			})
			continue
		}
		batches[i].Rows = append(batches[i].Rows, row)
	}
	return batches
}

// CalendarByDate maps scheduled dates to their batches for calendar views.
// Rows without a date never reach the calendar; within a date, batches keep
// input order.
func CalendarByDate(rows []domain.ScheduleRow) map[string][]domain.Batch {
	calendar := make(map[string][]domain.Batch)
	for _, batch := range GroupBatches(rows) {
		if batch.Date == "" {
			continue
		}
		calendar[batch.Date] = append(calendar[batch.Date], batch)
	}
	return calendar
}
