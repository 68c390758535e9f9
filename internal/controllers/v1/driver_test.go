package v1_test

import (
	"fmt"
	"net/http"
	"time"

	v1 "github.com/fleetdeck/backend/internal/controllers/v1"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/test"
)

func (suite *TestSuiteStandard) TestDriversCreate() {
	_, token := suite.organizationFixture("manager")

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/drivers", []v1.DriverEditable{
		{Name: "Maria Souza", LicenseNumber: "98765432100"},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.DriverCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data, 1)
	suite.Require().NotNil(response.Data[0].Data)
	suite.Assert().Equal("Maria Souza", response.Data[0].Data.Name)
}

func (suite *TestSuiteStandard) TestDriversGetLicenseExpiresBefore() {
	organization, token := suite.organizationFixture("manager")

	expiring := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	valid := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	_ = suite.createTestDriver(models.Driver{OrganizationID: organization.ID, Name: "Maria", LicenseExpiry: &expiring})
	_ = suite.createTestDriver(models.Driver{OrganizationID: organization.ID, Name: "João", LicenseExpiry: &valid})

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/drivers?licenseExpiresBefore=2025-01-01T00:00:00Z", nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.DriverListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data, 1)
	suite.Assert().Equal("Maria", response.Data[0].Name)
}

func (suite *TestSuiteStandard) TestDriverUpdate() {
	organization, token := suite.organizationFixture("manager")
	driver := suite.createTestDriver(models.Driver{OrganizationID: organization.ID, Name: "Maria Souza"})

	recorder := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/drivers/%s", driver.ID), map[string]any{
		"archived": true,
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.DriverResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().True(response.Data.Archived)
	suite.Assert().Equal("Maria Souza", response.Data.Name, "fields not in the request body must not change")
}

func (suite *TestSuiteStandard) TestDriversWriteForbiddenForOperator() {
	_, token := suite.organizationFixture("operator")

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/drivers", []v1.DriverEditable{
		{Name: "Maria Souza"},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusForbidden)
}
