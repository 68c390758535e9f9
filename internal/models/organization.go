package models

import (
	"strings"

	"gorm.io/gorm"
)

// Organization is a tenant.
//
// Every other resource belongs to exactly one organization and all queries
// and writes are scoped to it.
type Organization struct {
	DefaultModel
	Name string `gorm:"uniqueIndex:organization_name"`
	Note string
}

func (o *Organization) BeforeSave(_ *gorm.DB) error {
	o.Name = strings.TrimSpace(o.Name)
	o.Note = strings.TrimSpace(o.Note)

	return nil
}
