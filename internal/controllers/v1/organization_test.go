package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/fleetdeck/backend/internal/controllers/v1"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/test"
	"github.com/google/uuid"
)

// superAdminToken returns an authorization header for an instance operator.
func (suite *TestSuiteStandard) superAdminToken() map[string]string {
	return test.Token(suite.T(), uuid.Nil, "superadmin")
}

func (suite *TestSuiteStandard) TestOrganizationsCreate() {
	token := suite.superAdminToken()

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/organizations", []v1.OrganizationEditable{
		{Name: "Acme Logistics"},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.OrganizationCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data, 1)
	suite.Require().NotNil(response.Data[0].Data)
	suite.Assert().Equal("Acme Logistics", response.Data[0].Data.Name)
}

func (suite *TestSuiteStandard) TestOrganizationsCreateDuplicateName() {
	token := suite.superAdminToken()

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/organizations", []v1.OrganizationEditable{
		{Name: "Acme Logistics"},
		{Name: "Acme Logistics"},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	var response v1.OrganizationCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data, 2)
	suite.Require().NotNil(response.Data[1].Error)
	suite.Assert().Equal(models.ErrOrganizationNameNotUnique.Error(), *response.Data[1].Error)
}

func (suite *TestSuiteStandard) TestOrganizationsForbiddenForAdmin() {
	// admin manages one organization, not the instance
	_, token := suite.organizationFixture("admin")

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/organizations", nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusForbidden)
}

func (suite *TestSuiteStandard) TestOrganizationUpdate() {
	token := suite.superAdminToken()

	organization := models.Organization{Name: uuid.New().String()}
	suite.Require().Nil(models.DB.Create(&organization).Error)

	recorder := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/organizations/%s", organization.ID), map[string]any{
		"note": "Pilot customer",
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.OrganizationResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().Equal("Pilot customer", response.Data.Note)
}

func (suite *TestSuiteStandard) TestOrganizationDelete() {
	token := suite.superAdminToken()

	organization := models.Organization{Name: uuid.New().String()}
	suite.Require().Nil(models.DB.Create(&organization).Error)

	recorder := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/organizations/%s", organization.ID), nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)
}
