package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle represents a vehicle of the fleet.
type Vehicle struct {
	DefaultModel
	Organization   Organization `json:"-"`
	OrganizationID uuid.UUID    `gorm:"uniqueIndex:vehicle_org_plate"`
	Plate          string       `gorm:"uniqueIndex:vehicle_org_plate"`
	Model          string
	Year           int
	CapacityKg     int
	Odometer       int
	Note           string
	Archived       bool
}

func (v *Vehicle) BeforeSave(_ *gorm.DB) error {
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	v.Model = strings.TrimSpace(v.Model)
	v.Note = strings.TrimSpace(v.Note)

	return nil
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	_ = v.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Vehicle)
	return tx.First(&Organization{}, toSave.OrganizationID).Error
}
