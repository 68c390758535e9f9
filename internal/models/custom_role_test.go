package models_test

import (
	"github.com/fleetdeck/backend/internal/models"
)

func (suite *TestSuiteStandard) TestCustomRolePermissionsRoundtrip() {
	organization := suite.createTestOrganization(models.Organization{})

	role := suite.createTestCustomRole(models.CustomRole{
		OrganizationID: organization.ID,
		Name:           "dispatcher",
		Permissions:    models.StringList{"trips:read", "trips:write", "vehicles:read"},
	})

	var reloaded models.CustomRole
	suite.Require().Nil(models.DB.First(&reloaded, role.ID).Error)
	suite.Assert().Equal(models.StringList{"trips:read", "trips:write", "vehicles:read"}, reloaded.Permissions)
}

func (suite *TestSuiteStandard) TestCustomRoleNameUniquePerOrganization() {
	organization := suite.createTestOrganization(models.Organization{})
	_ = suite.createTestCustomRole(models.CustomRole{OrganizationID: organization.ID, Name: "dispatcher"})

	err := models.DB.Create(&models.CustomRole{OrganizationID: organization.ID, Name: "dispatcher"}).Error
	suite.Assert().ErrorIs(err, models.ErrCustomRoleNameNotUnique)

	other := suite.createTestOrganization(models.Organization{})
	_ = suite.createTestCustomRole(models.CustomRole{OrganizationID: other.ID, Name: "dispatcher"})
}

func (suite *TestSuiteStandard) TestCustomRoleRequiresOrganization() {
	err := models.DB.Create(&models.CustomRole{Name: "dispatcher"}).Error
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}
