package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/fleetdeck/backend/internal/controllers/v1"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/test"
)

func (suite *TestSuiteStandard) TestCustomRolesCreate() {
	_, token := suite.organizationFixture("admin")

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/roles", []v1.CustomRoleEditable{
		{Name: "dispatcher", Permissions: []string{"trips:read", "trips:write", "vehicles:read"}},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.CustomRoleCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data, 1)
	suite.Require().NotNil(response.Data[0].Data)
	suite.Assert().Equal("dispatcher", response.Data[0].Data.Name)
}

func (suite *TestSuiteStandard) TestCustomRolesCreateUnknownPermission() {
	_, token := suite.organizationFixture("admin")

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/roles", []v1.CustomRoleEditable{
		{Name: "dispatcher", Permissions: []string{"trips:read", "everything:do"}},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestCustomRoleGrantsAccess() {
	organization, _ := suite.organizationFixture("admin")
	role := suite.createTestCustomRole(models.CustomRole{
		OrganizationID: organization.ID,
		Permissions:    models.StringList{"vehicles:read"},
	})

	// A token referencing the custom role by UUID gets its permissions
	customToken := test.Token(suite.T(), organization.ID, role.ID.String())

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/vehicles", nil, customToken)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	recorder = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/trips", nil, customToken)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusForbidden)
}

func (suite *TestSuiteStandard) TestCustomRolesManageForbiddenForManager() {
	_, token := suite.organizationFixture("manager")

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/roles", nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusForbidden)
}

func (suite *TestSuiteStandard) TestCustomRoleUpdate() {
	organization, token := suite.organizationFixture("admin")
	role := suite.createTestCustomRole(models.CustomRole{
		OrganizationID: organization.ID,
		Name:           "dispatcher",
		Permissions:    models.StringList{"trips:read"},
	})

	recorder := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/roles/%s", role.ID), map[string]any{
		"permissions": []string{"trips:read", "trips:write"},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.CustomRoleResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().Equal([]string{"trips:read", "trips:write"}, response.Data.Permissions)
}
