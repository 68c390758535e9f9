package models_test

import (
	"time"

	"github.com/fleetdeck/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestFinancialRecordValidation() {
	_, _, template := suite.recordFixture()

	tests := []struct {
		name   string
		modify func(r *models.FinancialRecord)
		err    error
	}{
		{"invalid kind", func(r *models.FinancialRecord) { r.Kind = "loan" }, models.ErrRecordKindInvalid},
		{"empty description", func(r *models.FinancialRecord) { r.Description = "  " }, models.ErrRecordDescriptionEmpty},
		{"zero amount", func(r *models.FinancialRecord) { r.Amount = decimal.Zero }, models.ErrRecordAmountNotPositive},
		{"negative amount", func(r *models.FinancialRecord) { r.Amount = decimal.NewFromFloat(-3.50) }, models.ErrRecordAmountNotPositive},
		{"missing category", func(r *models.FinancialRecord) { r.CategoryID = uuid.Nil }, models.ErrRecordCategoryMissing},
		{"invalid status", func(r *models.FinancialRecord) { r.Status = "maybe" }, models.ErrRecordStatusInvalid},
		{"invalid recurrence mode", func(r *models.FinancialRecord) { r.RecurrenceMode = "daily" }, models.ErrRecurrenceModeInvalid},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			record := template
			tt.modify(&record)

			err := models.DB.Create(&record).Error
			suite.Assert().ErrorIs(err, tt.err)
		})
	}
}

func (suite *TestSuiteStandard) TestFinancialRecordDueDateNormalized() {
	_, _, template := suite.recordFixture()
	template.DueDate = time.Date(2024, 1, 10, 17, 32, 9, 0, time.FixedZone("CET", 3600))

	record := suite.createTestFinancialRecord(template)
	suite.Assert().Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), record.DueDate)
}

func (suite *TestSuiteStandard) TestFinancialRecordStatusDefaultsToPending() {
	_, _, template := suite.recordFixture()
	template.Status = ""

	record := suite.createTestFinancialRecord(template)
	suite.Assert().Equal(models.StatusPending, record.Status)
}

func (suite *TestSuiteStandard) TestFinancialRecordCategoryOrganization() {
	_, _, template := suite.recordFixture()

	other := suite.createTestOrganization(models.Organization{})
	foreign := suite.createTestCategory(models.Category{OrganizationID: other.ID})
	template.CategoryID = foreign.ID

	err := models.DB.Create(&template).Error
	suite.Assert().ErrorIs(err, models.ErrCategoryWrongOrganization)
}

func (suite *TestSuiteStandard) TestFinancialRecordCategoryKindMismatch() {
	organization, _, template := suite.recordFixture()

	receivableOnly := suite.createTestCategory(models.Category{
		OrganizationID: organization.ID,
		Kind:           models.CategoryReceivable,
	})

	template.Kind = models.KindPayable
	template.CategoryID = receivableOnly.ID

	err := models.DB.Create(&template).Error
	suite.Assert().ErrorIs(err, models.ErrCategoryKindMismatch)
}

func (suite *TestSuiteStandard) TestFinancialRecordSubcategoryWrongCategory() {
	organization, _, template := suite.recordFixture()

	other := suite.createTestCategory(models.Category{OrganizationID: organization.ID})
	subcategory := suite.createTestSubcategory(models.Subcategory{CategoryID: other.ID})
	template.SubcategoryID = &subcategory.ID

	err := models.DB.Create(&template).Error
	suite.Assert().ErrorIs(err, models.ErrSubcategoryWrongCategory)
}

func (suite *TestSuiteStandard) TestFinancialRecordTripOrganization() {
	_, _, template := suite.recordFixture()

	other := suite.createTestOrganization(models.Organization{})
	trip := suite.createTestTrip(models.Trip{
		OrganizationID: other.ID,
		VehicleID:      suite.createTestVehicle(models.Vehicle{OrganizationID: other.ID}).ID,
		DriverID:       suite.createTestDriver(models.Driver{OrganizationID: other.ID}).ID,
	})
	template.TripID = &trip.ID

	err := models.DB.Create(&template).Error
	suite.Assert().ErrorIs(err, models.ErrTripWrongOrganization)
}

func (suite *TestSuiteStandard) TestFinancialRecordOverdue() {
	record := models.FinancialRecord{
		Status:  models.StatusPending,
		DueDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}

	suite.Assert().True(record.Overdue(time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC)))
	suite.Assert().False(record.Overdue(time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)), "a record is not overdue on its due date")

	record.Status = models.StatusPaid
	suite.Assert().False(record.Overdue(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), "paid records are never overdue")
}

func (suite *TestSuiteStandard) TestFinancialRecordToggleStatus() {
	_, _, template := suite.recordFixture()
	record := suite.createTestFinancialRecord(template)

	suite.Require().Nil(record.ToggleStatus(models.DB))
	suite.Assert().Equal(models.StatusPaid, record.Status)

	var reloaded models.FinancialRecord
	suite.Require().Nil(models.DB.First(&reloaded, record.ID).Error)
	suite.Assert().Equal(models.StatusPaid, reloaded.Status)

	suite.Require().Nil(record.ToggleStatus(models.DB))
	suite.Assert().Equal(models.StatusPending, record.Status)
}

func (suite *TestSuiteStandard) TestFinancialRecordToggleStatusLeavesSiblings() {
	_, _, template := suite.recordFixture()
	template.RecurrenceMode = models.RecurrenceInstallment

	records, err := models.CreateFinancialRecords(models.DB, template, 3)
	suite.Require().Nil(err)

	suite.Require().Nil(records[1].ToggleStatus(models.DB))

	for _, id := range []uuid.UUID{records[0].ID, records[2].ID} {
		var sibling models.FinancialRecord
		suite.Require().Nil(models.DB.First(&sibling, id).Error)
		suite.Assert().Equal(models.StatusPending, sibling.Status, "paying one installment must not touch its siblings")
	}
}
