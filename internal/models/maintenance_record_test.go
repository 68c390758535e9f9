package models_test

import (
	"time"

	"github.com/fleetdeck/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestMaintenanceRecordDefaults() {
	organization := suite.createTestOrganization(models.Organization{})
	vehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID})

	record := suite.createTestMaintenanceRecord(models.MaintenanceRecord{
		OrganizationID: organization.ID,
		VehicleID:      vehicle.ID,
		Description:    " Oil change ",
		Cost:           decimal.NewFromFloat(89.90),
	})

	suite.Assert().Equal("Oil change", record.Description)
	suite.Assert().False(record.Date.IsZero(), "the date defaults to today")
	suite.Assert().Equal(time.UTC, record.Date.Location())
}

func (suite *TestSuiteStandard) TestMaintenanceRecordVehicleOrganization() {
	organization := suite.createTestOrganization(models.Organization{})

	other := suite.createTestOrganization(models.Organization{})
	foreignVehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: other.ID})

	err := models.DB.Create(&models.MaintenanceRecord{
		OrganizationID: organization.ID,
		VehicleID:      foreignVehicle.ID,
		Description:    "Oil change",
	}).Error
	suite.Assert().ErrorIs(err, models.ErrVehicleWrongOrganization)
}
