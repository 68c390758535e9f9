package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subcategory refines a category.
type Subcategory struct {
	DefaultModel
	Category   Category  `json:"-"`
	CategoryID uuid.UUID `gorm:"uniqueIndex:subcategory_category_name"`
	Name       string    `gorm:"uniqueIndex:subcategory_category_name"`
	Note       string
}

func (s *Subcategory) BeforeSave(_ *gorm.DB) error {
	s.Name = strings.TrimSpace(s.Name)
	s.Note = strings.TrimSpace(s.Note)

	return nil
}

func (s *Subcategory) BeforeCreate(tx *gorm.DB) error {
	_ = s.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Subcategory)
	return tx.First(&Category{}, toSave.CategoryID).Error
}
