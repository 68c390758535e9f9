package models_test

import (
	"github.com/fleetdeck/backend/internal/models"
)

func (suite *TestSuiteStandard) TestMatchCategoryRulePriorityOrder() {
	organization := suite.createTestOrganization(models.Organization{})
	fuel := suite.createTestCategory(models.Category{OrganizationID: organization.ID, Name: "Fuel"})
	general := suite.createTestCategory(models.Category{OrganizationID: organization.ID, Name: "General"})

	// The catch-all has a higher priority number and only applies when no
	// earlier rule matched.
	_ = suite.createTestCategoryRule(models.CategoryRule{
		OrganizationID: organization.ID,
		Priority:       100,
		Match:          "*",
		CategoryID:     general.ID,
	})
	_ = suite.createTestCategoryRule(models.CategoryRule{
		OrganizationID: organization.ID,
		Priority:       10,
		Match:          "Fuel*",
		CategoryID:     fuel.ID,
	})

	rule, err := models.MatchCategoryRule(models.DB, organization.ID, "Fuel station A1")
	suite.Require().Nil(err)
	suite.Require().NotNil(rule)
	suite.Assert().Equal(fuel.ID, rule.CategoryID)

	rule, err = models.MatchCategoryRule(models.DB, organization.ID, "Toll booth")
	suite.Require().Nil(err)
	suite.Require().NotNil(rule)
	suite.Assert().Equal(general.ID, rule.CategoryID)
}

func (suite *TestSuiteStandard) TestMatchCategoryRuleNoMatch() {
	organization := suite.createTestOrganization(models.Organization{})
	fuel := suite.createTestCategory(models.Category{OrganizationID: organization.ID, Name: "Fuel"})

	_ = suite.createTestCategoryRule(models.CategoryRule{
		OrganizationID: organization.ID,
		Priority:       10,
		Match:          "Fuel*",
		CategoryID:     fuel.ID,
	})

	rule, err := models.MatchCategoryRule(models.DB, organization.ID, "Toll booth")
	suite.Require().Nil(err)
	suite.Assert().Nil(rule)
}

func (suite *TestSuiteStandard) TestMatchCategoryRuleScopedToOrganization() {
	organization := suite.createTestOrganization(models.Organization{})
	fuel := suite.createTestCategory(models.Category{OrganizationID: organization.ID, Name: "Fuel"})

	_ = suite.createTestCategoryRule(models.CategoryRule{
		OrganizationID: organization.ID,
		Priority:       10,
		Match:          "*",
		CategoryID:     fuel.ID,
	})

	other := suite.createTestOrganization(models.Organization{})
	rule, err := models.MatchCategoryRule(models.DB, other.ID, "Fuel station A1")
	suite.Require().Nil(err)
	suite.Assert().Nil(rule)
}

func (suite *TestSuiteStandard) TestCategoryRuleCategoryOrganization() {
	organization := suite.createTestOrganization(models.Organization{})

	other := suite.createTestOrganization(models.Organization{})
	foreign := suite.createTestCategory(models.Category{OrganizationID: other.ID})

	err := models.DB.Create(&models.CategoryRule{
		OrganizationID: organization.ID,
		Priority:       10,
		Match:          "*",
		CategoryID:     foreign.ID,
	}).Error
	suite.Assert().ErrorIs(err, models.ErrCategoryWrongOrganization)
}

func (suite *TestSuiteStandard) TestCategoryRuleSubcategoryCategory() {
	organization := suite.createTestOrganization(models.Organization{})
	fuel := suite.createTestCategory(models.Category{OrganizationID: organization.ID, Name: "Fuel"})
	tolls := suite.createTestCategory(models.Category{OrganizationID: organization.ID, Name: "Tolls"})
	subcategory := suite.createTestSubcategory(models.Subcategory{CategoryID: tolls.ID})

	err := models.DB.Create(&models.CategoryRule{
		OrganizationID: organization.ID,
		Priority:       10,
		Match:          "*",
		CategoryID:     fuel.ID,
		SubcategoryID:  &subcategory.ID,
	}).Error
	suite.Assert().ErrorIs(err, models.ErrSubcategoryWrongCategory)
}
