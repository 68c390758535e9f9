package v1_test

import (
	"fmt"
	"net/http"
	"time"

	v1 "github.com/fleetdeck/backend/internal/controllers/v1"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTripsCreate() {
	organization, token := suite.organizationFixture("operator")
	vehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID})
	driver := suite.createTestDriver(models.Driver{OrganizationID: organization.ID})

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/trips", []v1.TripEditable{
		{
			Origin:        "São Paulo",
			Destination:   "Curitiba",
			ScheduledDate: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
			VehicleID:     vehicle.ID,
			DriverID:      driver.ID,
			FreightValue:  decimal.NewFromFloat(1500),
		},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.TripCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data, 1)
	suite.Require().NotNil(response.Data[0].Data)
	suite.Assert().Equal(models.TripScheduled, response.Data[0].Data.Status)
}

func (suite *TestSuiteStandard) TestTripsCreateForeignVehicle() {
	organization, token := suite.organizationFixture("operator")
	driver := suite.createTestDriver(models.Driver{OrganizationID: organization.ID})

	other := models.Organization{Name: uuid.New().String()}
	suite.Require().Nil(models.DB.Create(&other).Error)
	foreignVehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: other.ID})

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/trips", []v1.TripEditable{
		{VehicleID: foreignVehicle.ID, DriverID: driver.ID},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	var response v1.TripCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data, 1)
	suite.Require().NotNil(response.Data[0].Error)
	suite.Assert().Equal(models.ErrVehicleWrongOrganization.Error(), *response.Data[0].Error)
}

func (suite *TestSuiteStandard) TestTripsGetFilter() {
	organization, token := suite.organizationFixture("operator")
	vehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID})
	driver := suite.createTestDriver(models.Driver{OrganizationID: organization.ID})

	_ = suite.createTestTrip(models.Trip{
		OrganizationID: organization.ID,
		VehicleID:      vehicle.ID,
		DriverID:       driver.ID,
		Origin:         "São Paulo",
		Destination:    "Curitiba",
		ScheduledDate:  time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
	})
	_ = suite.createTestTrip(models.Trip{
		OrganizationID: organization.ID,
		VehicleID:      vehicle.ID,
		DriverID:       driver.ID,
		Origin:         "Curitiba",
		Destination:    "Florianópolis",
		ScheduledDate:  time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		Status:         models.TripCompleted,
	})

	tests := []struct {
		query string
		count int
	}{
		{"origin=Paulo", 1},
		{"destination=Curitiba", 1},
		{"status=completed", 1},
		{"status=scheduled", 1},
		{fmt.Sprintf("vehicle=%s", vehicle.ID), 2},
		{fmt.Sprintf("driver=%s", driver.ID), 2},
		{"fromDate=2024-03-01T00:00:00Z", 1},
		{"untilDate=2024-03-01T00:00:00Z", 1},
		{"search=florian", 1},
	}

	for _, tt := range tests {
		suite.Run(tt.query, func() {
			recorder := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/trips?%s", tt.query), nil, token)
			test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

			var response v1.TripListResponse
			test.DecodeResponse(suite.T(), &recorder, &response)
			suite.Assert().Len(response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestTripUpdateStatus() {
	organization, token := suite.organizationFixture("operator")
	vehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID})
	driver := suite.createTestDriver(models.Driver{OrganizationID: organization.ID})
	trip := suite.createTestTrip(models.Trip{OrganizationID: organization.ID, VehicleID: vehicle.ID, DriverID: driver.ID})

	recorder := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/trips/%s", trip.ID), map[string]any{
		"status": "in_progress",
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.TripResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().Equal(models.TripInProgress, response.Data.Status)
}

func (suite *TestSuiteStandard) TestTripsReadForbiddenForFinance() {
	_, token := suite.organizationFixture("finance")

	// finance may read trips to link records, but not write them
	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/trips", nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	recorder = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/trips", []v1.TripEditable{{}}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusForbidden)
}
