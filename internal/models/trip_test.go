package models_test

import (
	"time"

	"github.com/fleetdeck/backend/internal/models"
)

// tripFixture returns an organization with a vehicle and a driver.
func (suite *TestSuiteStandard) tripFixture() (models.Organization, models.Vehicle, models.Driver) {
	organization := suite.createTestOrganization(models.Organization{})
	vehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID})
	driver := suite.createTestDriver(models.Driver{OrganizationID: organization.ID})

	return organization, vehicle, driver
}

func (suite *TestSuiteStandard) TestTripDefaults() {
	organization, vehicle, driver := suite.tripFixture()

	trip := suite.createTestTrip(models.Trip{
		OrganizationID: organization.ID,
		VehicleID:      vehicle.ID,
		DriverID:       driver.ID,
		Origin:         " Hamburg ",
		Destination:    "Munich",
	})

	suite.Assert().Equal(models.TripScheduled, trip.Status)
	suite.Assert().Equal("Hamburg", trip.Origin)
	suite.Assert().False(trip.ScheduledDate.IsZero())
}

func (suite *TestSuiteStandard) TestTripInvalidStatus() {
	organization, vehicle, driver := suite.tripFixture()

	err := models.DB.Create(&models.Trip{
		OrganizationID: organization.ID,
		VehicleID:      vehicle.ID,
		DriverID:       driver.ID,
		Status:         "parked",
	}).Error
	suite.Assert().ErrorIs(err, models.ErrTripStatusInvalid)
}

func (suite *TestSuiteStandard) TestTripVehicleOrganization() {
	organization, _, driver := suite.tripFixture()

	other := suite.createTestOrganization(models.Organization{})
	foreignVehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: other.ID})

	err := models.DB.Create(&models.Trip{
		OrganizationID: organization.ID,
		VehicleID:      foreignVehicle.ID,
		DriverID:       driver.ID,
	}).Error
	suite.Assert().ErrorIs(err, models.ErrVehicleWrongOrganization)
}

func (suite *TestSuiteStandard) TestTripDriverOrganization() {
	organization, vehicle, _ := suite.tripFixture()

	other := suite.createTestOrganization(models.Organization{})
	foreignDriver := suite.createTestDriver(models.Driver{OrganizationID: other.ID})

	err := models.DB.Create(&models.Trip{
		OrganizationID: organization.ID,
		VehicleID:      vehicle.ID,
		DriverID:       foreignDriver.ID,
	}).Error
	suite.Assert().ErrorIs(err, models.ErrDriverWrongOrganization)
}

func (suite *TestSuiteStandard) TestTripUpdateChecksReferences() {
	organization, vehicle, driver := suite.tripFixture()

	trip := suite.createTestTrip(models.Trip{
		OrganizationID: organization.ID,
		VehicleID:      vehicle.ID,
		DriverID:       driver.ID,
		ScheduledDate:  time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	})

	other := suite.createTestOrganization(models.Organization{})
	foreignVehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: other.ID})

	err := models.DB.Model(&trip).Select("VehicleID").Updates(models.Trip{VehicleID: foreignVehicle.ID}).Error
	suite.Assert().ErrorIs(err, models.ErrVehicleWrongOrganization)
}
