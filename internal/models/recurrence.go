package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fleetdeck/backend/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// recurringWindow is the number of records created synchronously for a
// recurring submission. The rest of the series is materialized lazily by
// ExtendRecurringSeries.
const recurringWindow = 3

// minMonthsAhead is the number of future months a recurring series keeps
// materialized. A series whose last record is closer than this to the
// current month is extended by one record per pass.
const minMonthsAhead = 2

// CreateFinancialRecords expands a submitted obligation into its dated
// records and persists them in one transaction.
//
// The template carries all fields shared by the series. Its DueDate is the
// anchor date: record i is due i months after it, with the day of the month
// clamped by types.AddMonths.
//
//   - unique: one record, no series.
//   - installment: count records (count >= 2), all created now.
//   - recurring: a window of min(count, 3) records, or exactly 3 when the
//     count is InfiniteSeries or omitted. Later records are appended by the
//     continuation check.
//
// Any failure rolls back the whole batch, a series is never persisted
// partially.
func CreateFinancialRecords(db *gorm.DB, template FinancialRecord, count int) ([]FinancialRecord, error) {
	template.Status = StatusPending
	template.SeriesID = nil
	template.OccurrenceIndex = 0
	template.SeriesLength = 0

	var records []FinancialRecord

	switch template.RecurrenceMode {
	case RecurrenceUnique:
		records = []FinancialRecord{template}

	case RecurrenceInstallment:
		if count < 2 {
			return nil, ErrInstallmentCountTooSmall
		}
		records = seriesRecords(template, count, count)

	case RecurrenceRecurring:
		// An omitted count means an open-ended series.
		if count == 0 {
			count = InfiniteSeries
		}
		if count != InfiniteSeries && count < 1 {
			return nil, ErrRecurringCountInvalid
		}

		window := recurringWindow
		if count != InfiniteSeries && count < window {
			window = count
		}
		records = seriesRecords(template, window, count)

	default:
		return nil, ErrRecurrenceModeInvalid
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// seriesRecords builds the first window records of a series of length
// total from the template.
func seriesRecords(template FinancialRecord, window, total int) []FinancialRecord {
	seriesID := uuid.New()

	records := make([]FinancialRecord, 0, window)
	for i := range window {
		record := template
		record.SeriesID = &seriesID
		record.OccurrenceIndex = i + 1
		record.SeriesLength = total
		record.DueDate = types.AddMonths(template.DueDate, i)
		record.Description = fmt.Sprintf("%s %s", template.Description, seriesSuffix(record))

		records = append(records, record)
	}

	return records
}

// seriesSuffix returns the occurrence marker for a series member, derived
// from the occurrence index instead of the description text.
//
// Installments are numbered "1/12", bounded recurring series "(1/12)" and
// open-ended recurring series "(Month 1)".
func seriesSuffix(r FinancialRecord) string {
	switch {
	case r.RecurrenceMode == RecurrenceInstallment:
		return fmt.Sprintf("%d/%d", r.OccurrenceIndex, r.SeriesLength)
	case r.SeriesLength == InfiniteSeries:
		return fmt.Sprintf("(Month %d)", r.OccurrenceIndex)
	default:
		return fmt.Sprintf("(%d/%d)", r.OccurrenceIndex, r.SeriesLength)
	}
}

// ExtendRecurringSeries appends the next record to every recurring series
// of the organization that is running low on future records.
//
// A series is running low when its latest record is due less than two
// whole months after today. One record per series is appended per pass, so
// a pass never materializes the open-ended future in bulk.
//
// A failure for one series is logged and does not block the remaining
// series. A concurrent pass appending the same month loses against the
// unique index on (series_id, due_date) and is treated as a no-op, so the
// check is idempotent.
func ExtendRecurringSeries(db *gorm.DB, organizationID uuid.UUID, today time.Time) []FinancialRecord {
	var rows []FinancialRecord

	err := db.
		Where(&FinancialRecord{OrganizationID: organizationID, RecurrenceMode: RecurrenceRecurring}).
		Where("series_id IS NOT NULL").
		Order("date(due_date) ASC").
		Find(&rows).Error
	if err != nil {
		log.Error().Err(err).Msg("could not load recurring records")
		return nil
	}

	// The rows are ordered by due date, so the last row seen per series is
	// its latest record.
	latest := make(map[uuid.UUID]FinancialRecord)
	for _, row := range rows {
		latest[*row.SeriesID] = row
	}

	var created []FinancialRecord
	for _, last := range latest {
		next, err := extendSeries(db, last, today)
		if err != nil {
			log.Error().Err(err).Str("series", last.SeriesID.String()).Msg("could not extend recurring series")
			continue
		}

		if next != nil {
			created = append(created, *next)
		}
	}

	return created
}

// extendSeries appends the next record to one series if it is running low.
// It returns nil without an error when the series needs no extension.
func extendSeries(db *gorm.DB, last FinancialRecord, today time.Time) (*FinancialRecord, error) {
	monthsAhead := types.MonthOf(today).MonthsUntil(types.MonthOf(last.DueDate))
	if monthsAhead >= minMonthsAhead {
		return nil, nil
	}

	// A bounded series is never extended past its requested length.
	if last.SeriesLength != InfiniteSeries && last.OccurrenceIndex >= last.SeriesLength {
		return nil, nil
	}

	nextDue := types.AddMonths(last.DueDate, 1)

	// Idempotency guard against double invocation in the same load.
	// Races between concurrent loads are caught by the unique index.
	var count int64
	err := db.Model(&FinancialRecord{}).
		Where("series_id = ?", last.SeriesID).
		Where("date(due_date) = date(?)", nextDue).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	next := last
	next.DefaultModel = DefaultModel{}
	next.Status = StatusPending
	next.OccurrenceIndex = last.OccurrenceIndex + 1
	next.DueDate = nextDue
	next.Description = fmt.Sprintf("%s %s", baseDescription(last), seriesSuffix(next))

	err = db.Create(&next).Error
	if errors.Is(err, ErrSeriesMemberExists) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &next, nil
}

// baseDescription strips the occurrence marker from a series member's
// description. The marker is recomputed from the occurrence index, so no
// pattern matching on the text is needed.
func baseDescription(r FinancialRecord) string {
	return strings.TrimSpace(strings.TrimSuffix(r.Description, seriesSuffix(r)))
}
