package v1_test

import (
	"net/http"

	v1 "github.com/fleetdeck/backend/internal/controllers/v1"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/internal/permissions"
	"github.com/fleetdeck/backend/test"
)

func (suite *TestSuiteStandard) TestIdentityGet() {
	organization, token := suite.organizationFixture("viewer")

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/identity", nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.IdentityResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Assert().Equal(organization.ID, response.Data.OrganizationID)
	suite.Assert().Equal("viewer", response.Data.Role)
	suite.Assert().Contains(response.Data.Permissions, permissions.VehiclesRead)
	suite.Assert().NotContains(response.Data.Permissions, permissions.VehiclesWrite)
}

func (suite *TestSuiteStandard) TestIdentityCustomRole() {
	organization, _ := suite.organizationFixture("admin")
	role := suite.createTestCustomRole(models.CustomRole{
		OrganizationID: organization.ID,
		Permissions:    models.StringList{"trips:read"},
	})

	token := test.Token(suite.T(), organization.ID, role.ID.String())

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/identity", nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.IdentityResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Assert().Equal([]permissions.Permission{permissions.TripsRead}, response.Data.Permissions)
}

func (suite *TestSuiteStandard) TestIdentityUnauthorized() {
	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/identity", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusUnauthorized)
}
