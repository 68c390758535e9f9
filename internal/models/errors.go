package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

// Validation errors for financial records. These are checked before any
// persistence call, so a violation never reaches the database.
var (
	ErrRecordAmountNotPositive   = errors.New("financial record amounts must be larger than zero")
	ErrRecordDescriptionEmpty    = errors.New("the description must not be empty")
	ErrRecordCategoryMissing     = errors.New("a category must be set")
	ErrRecordKindInvalid         = errors.New("the kind must be payable or receivable")
	ErrRecordStatusInvalid       = errors.New("the status must be pending or paid")
	ErrRecurrenceModeInvalid     = errors.New("the recurrence mode must be unique, installment or recurring")
	ErrInstallmentCountTooSmall  = errors.New("installments need a count of at least 2")
	ErrRecurringCountInvalid     = errors.New("recurring records need a positive count or -1 for an open-ended series")
	ErrSeriesMemberExists        = errors.New("this series already has a record with this due date")
	ErrCategoryKindMismatch      = errors.New("the category cannot be used for this record kind")
	ErrSubcategoryWrongCategory  = errors.New("the subcategory does not belong to the selected category")
	ErrCategoryWrongOrganization = errors.New("the category does not belong to your organization")
	ErrTripWrongOrganization     = errors.New("the trip does not belong to your organization")
	ErrVehicleWrongOrganization  = errors.New("the vehicle does not belong to your organization")
	ErrDriverWrongOrganization   = errors.New("the driver does not belong to your organization")
)

// Uniqueness errors, translated from database constraint violations.
var (
	ErrOrganizationNameNotUnique = errors.New("the organization name is already in use")
	ErrVehiclePlateNotUnique     = errors.New("the vehicle plate must be unique for the organization")
	ErrDriverLicenseNotUnique    = errors.New("the driver license number must be unique for the organization")
	ErrCategoryNameNotUnique     = errors.New("the category name must be unique for the organization")
	ErrSubcategoryNameNotUnique  = errors.New("the subcategory name must be unique for the category")
	ErrCustomRoleNameNotUnique   = errors.New("the role name must be unique for the organization")
)
