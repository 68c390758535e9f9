package models_test

import (
	"github.com/fleetdeck/backend/internal/models"
)

func (suite *TestSuiteStandard) TestSubcategoryNameUniquePerCategory() {
	organization := suite.createTestOrganization(models.Organization{})
	category := suite.createTestCategory(models.Category{OrganizationID: organization.ID})

	_ = suite.createTestSubcategory(models.Subcategory{CategoryID: category.ID, Name: "Highway tolls"})

	err := models.DB.Create(&models.Subcategory{CategoryID: category.ID, Name: "Highway tolls"}).Error
	suite.Assert().ErrorIs(err, models.ErrSubcategoryNameNotUnique)

	other := suite.createTestCategory(models.Category{OrganizationID: organization.ID})
	_ = suite.createTestSubcategory(models.Subcategory{CategoryID: other.ID, Name: "Highway tolls"})
}

func (suite *TestSuiteStandard) TestSubcategoryRequiresCategory() {
	err := models.DB.Create(&models.Subcategory{Name: "Highway tolls"}).Error
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}
