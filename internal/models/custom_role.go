package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomRole is a tenant defined role with an explicit permission list.
//
// Users reference it by its UUID in their role claim, in contrast to the
// built-in roles which are referenced by name.
type CustomRole struct {
	DefaultModel
	Organization   Organization `json:"-"`
	OrganizationID uuid.UUID    `gorm:"uniqueIndex:custom_role_org_name"`
	Name           string       `gorm:"uniqueIndex:custom_role_org_name"`
	Permissions    StringList
}

func (r *CustomRole) BeforeSave(_ *gorm.DB) error {
	r.Name = strings.TrimSpace(r.Name)
	return nil
}

func (r *CustomRole) BeforeCreate(tx *gorm.DB) error {
	_ = r.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*CustomRole)
	return tx.First(&Organization{}, toSave.OrganizationID).Error
}

// StringList is a string slice stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	j, err := json.Marshal(l)
	return string(j), err
}

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	case nil:
		*l = nil
		return nil
	}

	return errors.New("unsupported type for StringList")
}

// GormDataType defines the data type used by gorm for the type.
func (StringList) GormDataType() string {
	return "text"
}
