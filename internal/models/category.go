package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryKind restricts which record kinds a category can classify.
type CategoryKind string

const (
	CategoryPayable    CategoryKind = "payable"
	CategoryReceivable CategoryKind = "receivable"
	CategoryBoth       CategoryKind = "both"
)

// Category classifies financial records.
type Category struct {
	DefaultModel
	Organization   Organization `json:"-"`
	OrganizationID uuid.UUID    `gorm:"uniqueIndex:category_org_name"`
	Name           string       `gorm:"uniqueIndex:category_org_name"`
	Kind           CategoryKind
	Note           string
}

var ErrCategoryKindInvalid = errors.New("the category kind must be payable, receivable or both")

func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Note = strings.TrimSpace(c.Note)

	if c.Kind == "" {
		c.Kind = CategoryBoth
	}

	switch c.Kind {
	case CategoryPayable, CategoryReceivable, CategoryBoth:
	default:
		return ErrCategoryKindInvalid
	}

	return nil
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	_ = c.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Category)
	return tx.First(&Organization{}, toSave.OrganizationID).Error
}

// Allows reports whether the category can classify a record of this kind.
func (c Category) Allows(kind RecordKind) bool {
	return c.Kind == CategoryBoth || string(c.Kind) == string(kind)
}
