package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Driver represents a driver employed by the organization.
type Driver struct {
	DefaultModel
	Organization   Organization `json:"-"`
	OrganizationID uuid.UUID    `gorm:"uniqueIndex:driver_org_license"`
	Name           string
	LicenseNumber  string `gorm:"uniqueIndex:driver_org_license"`
	LicenseExpiry  *time.Time
	Phone          string
	Note           string
	Archived       bool
}

func (d *Driver) BeforeSave(_ *gorm.DB) error {
	d.Name = strings.TrimSpace(d.Name)
	d.LicenseNumber = strings.TrimSpace(d.LicenseNumber)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Note = strings.TrimSpace(d.Note)

	return nil
}

func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	_ = d.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Driver)
	return tx.First(&Organization{}, toSave.OrganizationID).Error
}
