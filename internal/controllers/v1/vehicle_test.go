package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/fleetdeck/backend/internal/controllers/v1"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/test"
	"github.com/google/uuid"
)

func (suite *TestSuiteStandard) TestVehiclesCreate() {
	_, token := suite.organizationFixture("admin")

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/vehicles", []v1.VehicleEditable{
		{Plate: "abc-1234", Model: "Volvo FH 540", Year: 2021},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.VehicleCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data, 1)
	suite.Require().NotNil(response.Data[0].Data)
	suite.Assert().Equal("ABC-1234", response.Data[0].Data.Plate)
}

func (suite *TestSuiteStandard) TestVehiclesCreateDuplicatePlate() {
	organization, token := suite.organizationFixture("admin")
	_ = suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID, Plate: "ABC-1234"})

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/vehicles", []v1.VehicleEditable{
		{Plate: "DEF-5678"},
		{Plate: "ABC-1234"},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	var response v1.VehicleCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data, 2)
	suite.Assert().NotNil(response.Data[0].Data)
	suite.Require().NotNil(response.Data[1].Error)
	suite.Assert().Equal(models.ErrVehiclePlateNotUnique.Error(), *response.Data[1].Error)
}

func (suite *TestSuiteStandard) TestVehiclesGetScopedToOrganization() {
	organization, token := suite.organizationFixture("viewer")
	_ = suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID})

	other := models.Organization{Name: uuid.New().String()}
	suite.Require().Nil(models.DB.Create(&other).Error)
	_ = suite.createTestVehicle(models.Vehicle{OrganizationID: other.ID})

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/vehicles", nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.VehicleListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Assert().Len(response.Data, 1)
	suite.Require().NotNil(response.Pagination)
	suite.Assert().Equal(int64(1), response.Pagination.Total)
}

func (suite *TestSuiteStandard) TestVehiclesGetFilter() {
	organization, token := suite.organizationFixture("viewer")
	_ = suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID, Plate: "ABC-1234", Model: "Volvo FH 540"})
	_ = suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID, Plate: "DEF-5678", Model: "Scania R450", Archived: true})

	tests := []struct {
		query string
		count int
	}{
		{"plate=ABC", 1},
		{"model=Volvo", 1},
		{"search=450", 1},
		{"archived=true", 1},
		{"archived=false", 1},
		{"plate=XYZ", 0},
		{"", 2},
	}

	for _, tt := range tests {
		suite.Run(tt.query, func() {
			recorder := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/vehicles?%s", tt.query), nil, token)
			test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

			var response v1.VehicleListResponse
			test.DecodeResponse(suite.T(), &recorder, &response)
			suite.Assert().Len(response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestVehicleGetOtherOrganization() {
	_, token := suite.organizationFixture("viewer")

	other := models.Organization{Name: uuid.New().String()}
	suite.Require().Nil(models.DB.Create(&other).Error)
	vehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: other.ID})

	recorder := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/vehicles/%s", vehicle.ID), nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestVehicleUpdate() {
	organization, token := suite.organizationFixture("admin")
	vehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID, Odometer: 105000})

	recorder := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/vehicles/%s", vehicle.ID), map[string]any{
		"odometer": 110000,
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.VehicleResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().Equal(110000, response.Data.Odometer)
}

func (suite *TestSuiteStandard) TestVehicleDelete() {
	organization, token := suite.organizationFixture("admin")
	vehicle := suite.createTestVehicle(models.Vehicle{OrganizationID: organization.ID})

	recorder := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/vehicles/%s", vehicle.ID), nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/vehicles/%s", vehicle.ID), nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestVehiclesWriteForbiddenForViewer() {
	_, token := suite.organizationFixture("viewer")

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/vehicles", []v1.VehicleEditable{
		{Plate: "ABC-1234"},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusForbidden)
}

func (suite *TestSuiteStandard) TestVehiclesUnauthorized() {
	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/vehicles", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusUnauthorized)
}

func (suite *TestSuiteStandard) TestVehicleInvalidID() {
	_, token := suite.organizationFixture("viewer")

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/vehicles/not-a-uuid", nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}
