package models_test

import (
	"time"

	"github.com/fleetdeck/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestCreateUniqueRecord() {
	_, _, template := suite.recordFixture()

	records, err := models.CreateFinancialRecords(models.DB, template, 0)
	suite.Require().Nil(err)
	suite.Require().Len(records, 1)

	record := records[0]
	suite.Assert().Equal("Insurance", record.Description)
	suite.Assert().Equal(models.StatusPending, record.Status)
	suite.Assert().Nil(record.SeriesID)
	suite.Assert().Equal(0, record.OccurrenceIndex)
	suite.Assert().Equal(0, record.SeriesLength)
}

func (suite *TestSuiteStandard) TestCreateInstallmentRecords() {
	_, _, template := suite.recordFixture()
	template.RecurrenceMode = models.RecurrenceInstallment

	records, err := models.CreateFinancialRecords(models.DB, template, 3)
	suite.Require().Nil(err)
	suite.Require().Len(records, 3)

	suite.Assert().Equal("Insurance 1/3", records[0].Description)
	suite.Assert().Equal("Insurance 2/3", records[1].Description)
	suite.Assert().Equal("Insurance 3/3", records[2].Description)

	suite.Assert().Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), records[0].DueDate)
	suite.Assert().Equal(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), records[1].DueDate)
	suite.Assert().Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), records[2].DueDate)

	suite.Require().NotNil(records[0].SeriesID)
	for _, record := range records {
		suite.Assert().Equal(records[0].SeriesID, record.SeriesID)
		suite.Assert().Equal(models.StatusPending, record.Status)
		suite.Assert().Equal(3, record.SeriesLength)
	}
}

func (suite *TestSuiteStandard) TestCreateInstallmentCountTooSmall() {
	_, _, template := suite.recordFixture()
	template.RecurrenceMode = models.RecurrenceInstallment

	_, err := models.CreateFinancialRecords(models.DB, template, 1)
	suite.Assert().ErrorIs(err, models.ErrInstallmentCountTooSmall)
}

func (suite *TestSuiteStandard) TestCreateInstallmentClampsMonthEnd() {
	_, _, template := suite.recordFixture()
	template.RecurrenceMode = models.RecurrenceInstallment
	template.DueDate = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	records, err := models.CreateFinancialRecords(models.DB, template, 3)
	suite.Require().Nil(err)
	suite.Require().Len(records, 3)

	// 2024 is a leap year, the day is clamped to the last day of February
	suite.Assert().Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), records[0].DueDate)
	suite.Assert().Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), records[1].DueDate)
	suite.Assert().Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), records[2].DueDate)
}

func (suite *TestSuiteStandard) TestCreateRecurringOpenEnded() {
	_, _, template := suite.recordFixture()
	template.Description = "Rent"
	template.RecurrenceMode = models.RecurrenceRecurring
	template.DueDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	records, err := models.CreateFinancialRecords(models.DB, template, models.InfiniteSeries)
	suite.Require().Nil(err)
	suite.Require().Len(records, 3)

	suite.Assert().Equal("Rent (Month 1)", records[0].Description)
	suite.Assert().Equal("Rent (Month 2)", records[1].Description)
	suite.Assert().Equal("Rent (Month 3)", records[2].Description)

	for _, record := range records {
		suite.Assert().Equal(models.InfiniteSeries, record.SeriesLength)
	}
}

func (suite *TestSuiteStandard) TestCreateRecurringBounded() {
	_, _, template := suite.recordFixture()
	template.Description = "Lease"
	template.RecurrenceMode = models.RecurrenceRecurring

	records, err := models.CreateFinancialRecords(models.DB, template, 2)
	suite.Require().Nil(err)
	suite.Require().Len(records, 2)

	suite.Assert().Equal("Lease (1/2)", records[0].Description)
	suite.Assert().Equal("Lease (2/2)", records[1].Description)
}

func (suite *TestSuiteStandard) TestCreateRecurringOmittedCount() {
	_, _, template := suite.recordFixture()
	template.Description = "Rent"
	template.RecurrenceMode = models.RecurrenceRecurring

	// No count submitted: the series is open-ended.
	records, err := models.CreateFinancialRecords(models.DB, template, 0)
	suite.Require().Nil(err)
	suite.Require().Len(records, 3)

	suite.Assert().Equal("Rent (Month 1)", records[0].Description)
	suite.Assert().Equal(models.InfiniteSeries, records[0].SeriesLength)
}

func (suite *TestSuiteStandard) TestCreateRecurringInvalidCount() {
	_, _, template := suite.recordFixture()
	template.RecurrenceMode = models.RecurrenceRecurring

	_, err := models.CreateFinancialRecords(models.DB, template, -5)
	suite.Assert().ErrorIs(err, models.ErrRecurringCountInvalid)
}

func (suite *TestSuiteStandard) TestCreateInvalidRecurrenceMode() {
	_, _, template := suite.recordFixture()
	template.RecurrenceMode = "biweekly"

	_, err := models.CreateFinancialRecords(models.DB, template, 0)
	suite.Assert().ErrorIs(err, models.ErrRecurrenceModeInvalid)
}

func (suite *TestSuiteStandard) TestExtendRecurringSeries() {
	organization, _, template := suite.recordFixture()
	template.Description = "Rent"
	template.RecurrenceMode = models.RecurrenceRecurring
	template.DueDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := models.CreateFinancialRecords(models.DB, template, models.InfiniteSeries)
	suite.Require().Nil(err)

	// The latest record is due 2024-03-01, one month after the current
	// month. The series is running low and is extended by one record.
	today := time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)
	created := models.ExtendRecurringSeries(models.DB, organization.ID, today)

	suite.Require().Len(created, 1)
	suite.Assert().Equal("Rent (Month 4)", created[0].Description)
	suite.Assert().Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), created[0].DueDate)
	suite.Assert().Equal(4, created[0].OccurrenceIndex)
	suite.Assert().Equal(models.StatusPending, created[0].Status)

	// With the new record the series is two months ahead again, a second
	// pass with the same date is a no-op.
	created = models.ExtendRecurringSeries(models.DB, organization.ID, today)
	suite.Assert().Len(created, 0)
}

func (suite *TestSuiteStandard) TestExtendRecurringSeriesFarAhead() {
	organization, _, template := suite.recordFixture()
	template.RecurrenceMode = models.RecurrenceRecurring
	template.DueDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := models.CreateFinancialRecords(models.DB, template, models.InfiniteSeries)
	suite.Require().Nil(err)

	// The latest record is due 2024-03-01, two whole months ahead of
	// January. Nothing to do.
	today := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	created := models.ExtendRecurringSeries(models.DB, organization.ID, today)
	suite.Assert().Len(created, 0)
}

func (suite *TestSuiteStandard) TestExtendRecurringSeriesBoundedExhausted() {
	organization, _, template := suite.recordFixture()
	template.RecurrenceMode = models.RecurrenceRecurring
	template.DueDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := models.CreateFinancialRecords(models.DB, template, 3)
	suite.Require().Nil(err)

	// All three requested records exist, the series is complete and is
	// never extended past its length.
	today := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	created := models.ExtendRecurringSeries(models.DB, organization.ID, today)
	suite.Assert().Len(created, 0)
}

func (suite *TestSuiteStandard) TestExtendRecurringSeriesScopedToOrganization() {
	organization, _, template := suite.recordFixture()
	template.RecurrenceMode = models.RecurrenceRecurring
	template.DueDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := models.CreateFinancialRecords(models.DB, template, models.InfiniteSeries)
	suite.Require().Nil(err)

	// A pass for another organization never touches this series.
	other := suite.createTestOrganization(models.Organization{})
	today := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	created := models.ExtendRecurringSeries(models.DB, other.ID, today)
	suite.Assert().Len(created, 0)

	created = models.ExtendRecurringSeries(models.DB, organization.ID, today)
	suite.Assert().Len(created, 1)
}

func (suite *TestSuiteStandard) TestSeriesMemberUniqueness() {
	_, _, template := suite.recordFixture()
	template.RecurrenceMode = models.RecurrenceRecurring
	template.DueDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	records, err := models.CreateFinancialRecords(models.DB, template, models.InfiniteSeries)
	suite.Require().Nil(err)

	// A second record for the same series and due date runs into the
	// unique index, which is what makes the continuation check safe
	// against concurrent passes.
	duplicate := records[0]
	duplicate.DefaultModel = models.DefaultModel{}
	duplicate.Amount = decimal.NewFromFloat(99)

	err = models.DB.Create(&duplicate).Error
	suite.Assert().ErrorIs(err, models.ErrSeriesMemberExists)
}
