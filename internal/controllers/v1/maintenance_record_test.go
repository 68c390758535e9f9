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

func (suite *TestSuiteStandard) TestMaintenanceRecordsCreate() {
	organization, token := suite.organizationFixture("manager")
	vehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID})

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/maintenance", []v1.MaintenanceRecordEditable{
		{
			VehicleID:   vehicle.ID,
			Description: "Brake pad replacement",
			Cost:        decimal.NewFromFloat(850),
			Date:        time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			Odometer:    108000,
		},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.MaintenanceRecordCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data, 1)
	suite.Require().NotNil(response.Data[0].Data)
	suite.Assert().Equal("Brake pad replacement", response.Data[0].Data.Description)
}

func (suite *TestSuiteStandard) TestMaintenanceRecordsCreateForeignVehicle() {
	_, token := suite.organizationFixture("manager")

	other := models.Organization{Name: uuid.New().String()}
	suite.Require().Nil(models.DB.Create(&other).Error)
	foreignVehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: other.ID})

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/maintenance", []v1.MaintenanceRecordEditable{
		{VehicleID: foreignVehicle.ID, Description: "Oil change"},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	var response v1.MaintenanceRecordCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().Len(response.Data, 1)
	suite.Require().NotNil(response.Data[0].Error)
	suite.Assert().Equal(models.ErrVehicleWrongOrganization.Error(), *response.Data[0].Error)
}

func (suite *TestSuiteStandard) TestMaintenanceRecordsGetFilter() {
	organization, token := suite.organizationFixture("manager")
	vehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID})
	otherVehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID})

	_ = suite.createTestMaintenanceRecord(models.MaintenanceRecord{
		OrganizationID: organization.ID,
		VehicleID:      vehicle.ID,
		Description:    "Brake pad replacement",
		Cost:           decimal.NewFromFloat(850),
		Date:           time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
	})
	_ = suite.createTestMaintenanceRecord(models.MaintenanceRecord{
		OrganizationID: organization.ID,
		VehicleID:      otherVehicle.ID,
		Description:    "Oil change",
		Cost:           decimal.NewFromFloat(89.90),
		Date:           time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	})

	tests := []struct {
		query string
		count int
	}{
		{fmt.Sprintf("vehicle=%s", vehicle.ID), 1},
		{"description=Brake", 1},
		{"search=oil", 1},
		{"fromDate=2024-02-01T00:00:00Z", 1},
		{"untilDate=2024-02-01T00:00:00Z", 1},
		{"costMoreOrEqual=100", 1},
		{"costLessOrEqual=100", 1},
		{"cost=850", 1},
	}

	for _, tt := range tests {
		suite.Run(tt.query, func() {
			recorder := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/maintenance?%s", tt.query), nil, token)
			test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

			var response v1.MaintenanceRecordListResponse
			test.DecodeResponse(suite.T(), &recorder, &response)
			suite.Assert().Len(response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestMaintenanceWriteForbiddenForViewer() {
	_, token := suite.organizationFixture("viewer")

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/maintenance", []v1.MaintenanceRecordEditable{{}}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusForbidden)
}
