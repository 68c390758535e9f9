package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripScheduled  TripStatus = "scheduled"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

// Trip represents a scheduled or executed trip of a vehicle with a driver.
type Trip struct {
	DefaultModel
	Organization   Organization `json:"-"`
	OrganizationID uuid.UUID
	Origin         string
	Destination    string
	ScheduledDate  time.Time
	Vehicle        Vehicle `json:"-"`
	VehicleID      uuid.UUID
	Driver         Driver `json:"-"`
	DriverID       uuid.UUID
	FreightValue   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Status         TripStatus
	Note           string
}

var ErrTripStatusInvalid = errors.New("the trip status is invalid")

func (t *Trip) BeforeSave(_ *gorm.DB) error {
	t.Origin = strings.TrimSpace(t.Origin)
	t.Destination = strings.TrimSpace(t.Destination)
	t.Note = strings.TrimSpace(t.Note)

	if t.Status == "" {
		t.Status = TripScheduled
	}

	switch t.Status {
	case TripScheduled, TripInProgress, TripCompleted, TripCancelled:
	default:
		return fmt.Errorf("%w: %s", ErrTripStatusInvalid, t.Status)
	}

	if t.ScheduledDate.IsZero() {
		t.ScheduledDate = time.Now().In(time.UTC)
	} else {
		t.ScheduledDate = t.ScheduledDate.In(time.UTC)
	}

	return nil
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	_ = t.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Trip)
	return t.checkIntegrity(tx, *toSave)
}

// BeforeUpdate verifies the state of the trip before
// committing an update to the database.
func (t *Trip) BeforeUpdate(tx *gorm.DB) error {
	toSave := tx.Statement.Dest.(Trip)
	if tx.Statement.Changed("VehicleID") || tx.Statement.Changed("DriverID") {
		if toSave.VehicleID == uuid.Nil {
			toSave.VehicleID = t.VehicleID
		}
		if toSave.DriverID == uuid.Nil {
			toSave.DriverID = t.DriverID
		}
		toSave.OrganizationID = t.OrganizationID

		return t.checkIntegrity(tx, toSave)
	}

	return nil
}

// checkIntegrity verifies that the vehicle and the driver exist and belong
// to the same organization as the trip.
func (t *Trip) checkIntegrity(tx *gorm.DB, toSave Trip) error {
	var vehicle Vehicle
	err := tx.First(&vehicle, toSave.VehicleID).Error
	if err != nil {
		return err
	}

	if vehicle.OrganizationID != toSave.OrganizationID {
		return ErrVehicleWrongOrganization
	}

	var driver Driver
	err = tx.First(&driver, toSave.DriverID).Error
	if err != nil {
		return err
	}

	if driver.OrganizationID != toSave.OrganizationID {
		return ErrDriverWrongOrganization
	}

	return nil
}

// AfterFind enforces dates to be in UTC.
func (t *Trip) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	t.ScheduledDate = t.ScheduledDate.In(time.UTC)
	return nil
}
