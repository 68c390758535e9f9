package models

import (
	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
)

// CategoryRule assigns a category to financial records whose description
// matches a glob pattern. Rules are evaluated in ascending priority order,
// the first match wins.
type CategoryRule struct {
	DefaultModel
	Organization   Organization `json:"-"`
	OrganizationID uuid.UUID
	Priority       uint
	Match          string
	Category       Category `json:"-"`
	CategoryID     uuid.UUID
	SubcategoryID  *uuid.UUID
}

func (r *CategoryRule) BeforeCreate(tx *gorm.DB) error {
	_ = r.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*CategoryRule)

	var category Category
	err := tx.First(&category, toSave.CategoryID).Error
	if err != nil {
		return err
	}

	if category.OrganizationID != toSave.OrganizationID {
		return ErrCategoryWrongOrganization
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

	return nil
}

// MatchCategoryRule returns the first category rule of the organization
// whose glob pattern matches the description, or nil when no rule matches.
func MatchCategoryRule(db *gorm.DB, organizationID uuid.UUID, description string) (*CategoryRule, error) {
	var rules []CategoryRule

	err := db.
		Where(&CategoryRule{OrganizationID: organizationID}).
		Order("priority ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		if glob.Glob(rule.Match, description) {
			return &rule, nil
		}
	}

	return nil, nil
}
