package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordKind distinguishes accounts payable from accounts receivable.
type RecordKind string

const (
	KindPayable    RecordKind = "payable"
	KindReceivable RecordKind = "receivable"
)

// RecordStatus is the payment state of a financial record.
//
// Overdue is not a stored status. It is derived from the due date at read
// time, see FinancialRecord.Overdue.
type RecordStatus string

const (
	StatusPending RecordStatus = "pending"
	StatusPaid    RecordStatus = "paid"
)

// RecurrenceMode describes how a submitted obligation is expanded into
// records.
type RecurrenceMode string

const (
	RecurrenceUnique      RecurrenceMode = "unique"
	RecurrenceInstallment RecurrenceMode = "installment"
	RecurrenceRecurring   RecurrenceMode = "recurring"
)

// InfiniteSeries is the series length of an open-ended recurring series.
const InfiniteSeries = -1

// FinancialRecord is a single dated financial obligation, payable or
// receivable.
//
// Records generated from one installment or recurring submission share a
// SeriesID. The unique index on (series_id, due_date) guarantees that a
// series never holds two records for the same due date, even when two
// concurrent continuation passes race.
type FinancialRecord struct {
	DefaultModel
	Organization   Organization `json:"-"`
	OrganizationID uuid.UUID
	Kind           RecordKind
	Description    string
	Amount         decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	DueDate        time.Time       `gorm:"uniqueIndex:financial_record_series_due,priority:2"`
	Status         RecordStatus
	Category       Category `json:"-"`
	CategoryID     uuid.UUID
	SubcategoryID  *uuid.UUID
	RecurrenceMode RecurrenceMode
	SeriesID       *uuid.UUID `gorm:"uniqueIndex:financial_record_series_due,priority:1"`

	// OccurrenceIndex is the 1-based position of the record in its series,
	// 0 for unique records. The continuation check derives the next
	// description suffix from it instead of parsing the description text.
	OccurrenceIndex int

	// SeriesLength is the requested number of records for the series:
	// N for bounded series, InfiniteSeries for open-ended recurring series
	// and 0 for unique records.
	SeriesLength int

	TripID *uuid.UUID
}

// BeforeSave validates the record and normalizes its fields.
//
// All validations run before any persistence call, a violation never
// reaches the database.
func (r *FinancialRecord) BeforeSave(_ *gorm.DB) error {
	r.Description = strings.TrimSpace(r.Description)

	switch r.Kind {
	case KindPayable, KindReceivable:
	default:
		return ErrRecordKindInvalid
	}

	if r.Description == "" {
		return ErrRecordDescriptionEmpty
	}

	if !r.Amount.IsPositive() {
		return ErrRecordAmountNotPositive
	}

	if r.CategoryID == uuid.Nil {
		return ErrRecordCategoryMissing
	}

	if r.Status == "" {
		r.Status = StatusPending
	}

	switch r.Status {
	case StatusPending, StatusPaid:
	default:
		return ErrRecordStatusInvalid
	}

	switch r.RecurrenceMode {
	case RecurrenceUnique, RecurrenceInstallment, RecurrenceRecurring:
	default:
		return ErrRecurrenceModeInvalid
	}

	if r.DueDate.IsZero() {
		r.DueDate = time.Now().In(time.UTC)
	}
	r.DueDate = r.DueDate.In(time.UTC).Truncate(24 * time.Hour)

	return nil
}

func (r *FinancialRecord) BeforeCreate(tx *gorm.DB) error {
	_ = r.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*FinancialRecord)
	return r.checkIntegrity(tx, *toSave)
}

// checkIntegrity verifies references to other resources.
func (r *FinancialRecord) checkIntegrity(tx *gorm.DB, toSave FinancialRecord) error {
	var category Category
	err := tx.First(&category, toSave.CategoryID).Error
	if err != nil {
		return err
	}

	if category.OrganizationID != toSave.OrganizationID {
		return ErrCategoryWrongOrganization
	}

	if !category.Allows(toSave.Kind) {
		return fmt.Errorf("%w: %s is %s", ErrCategoryKindMismatch, category.Name, category.Kind)
	}

	if toSave.SubcategoryID != nil {
		var subcategory Subcategory
		err = tx.First(&subcategory, toSave.SubcategoryID).Error
		if err != nil {
			return err
		}

		if subcategory.CategoryID != toSave.CategoryID {
			return ErrSubcategoryWrongCategory
		}
	}

	if toSave.TripID != nil {
		var trip Trip
		err = tx.First(&trip, toSave.TripID).Error
		if err != nil {
			return err
		}

		if trip.OrganizationID != toSave.OrganizationID {
			return ErrTripWrongOrganization
		}
	}

	return nil
}

// AfterFind enforces dates to be in UTC.
func (r *FinancialRecord) AfterFind(tx *gorm.DB) (err error) {
	err = r.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	r.DueDate = r.DueDate.In(time.UTC)
	return nil
}

// Overdue reports whether the record is pending with a due date before
// today. Overdue is display-only and never written to the database.
func (r FinancialRecord) Overdue(today time.Time) bool {
	year, month, day := today.In(time.UTC).Date()
	startOfDay := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	return r.Status == StatusPending && r.DueDate.Before(startOfDay)
}

// ToggleStatus flips the record between paid and pending.
//
// Only the status column is written, sibling series members are never
// touched.
func (r *FinancialRecord) ToggleStatus(db *gorm.DB) error {
	status := StatusPaid
	if r.Status == StatusPaid {
		status = StatusPending
	}

	err := db.Model(r).Select("Status").Updates(FinancialRecord{Status: status}).Error
	if err != nil {
		return err
	}

	r.Status = status
	return nil
}
