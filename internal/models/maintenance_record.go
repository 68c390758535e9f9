package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaintenanceRecord represents a maintenance performed on a vehicle.
type MaintenanceRecord struct {
	DefaultModel
	Organization   Organization `json:"-"`
	OrganizationID uuid.UUID
	Vehicle        Vehicle `json:"-"`
	VehicleID      uuid.UUID
	Description    string
	Cost           decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Date           time.Time
	Odometer       int
	Note           string
}

func (m *MaintenanceRecord) BeforeSave(_ *gorm.DB) error {
	m.Description = strings.TrimSpace(m.Description)
	m.Note = strings.TrimSpace(m.Note)

	if m.Date.IsZero() {
		m.Date = time.Now().In(time.UTC)
	} else {
		m.Date = m.Date.In(time.UTC)
	}

	return nil
}

func (m *MaintenanceRecord) BeforeCreate(tx *gorm.DB) error {
	_ = m.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*MaintenanceRecord)

	var vehicle Vehicle
	err := tx.First(&vehicle, toSave.VehicleID).Error
	if err != nil {
		return err
	}

	if vehicle.OrganizationID != toSave.OrganizationID {
		return ErrVehicleWrongOrganization
	}

	return nil
}

// AfterFind enforces dates to be in UTC.
func (m *MaintenanceRecord) AfterFind(tx *gorm.DB) (err error) {
	err = m.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	m.Date = m.Date.In(time.UTC)
	return nil
}
