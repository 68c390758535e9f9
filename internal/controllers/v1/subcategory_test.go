package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/fleetdeck/backend/internal/controllers/v1"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/test"
	"github.com/google/uuid"
)

func (suite *TestSuiteStandard) TestSubcategoriesCreate() {
	organization, token := suite.organizationFixture("finance")
	category := suite.createTestCategory(models.Category{OrganizationID: organization.ID})

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/subcategories", []v1.SubcategoryEditable{
		{CategoryID: category.ID, Name: "Tolls"},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.SubcategoryCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data, 1)
	suite.Require().NotNil(response.Data[0].Data)
	suite.Assert().Equal("Tolls", response.Data[0].Data.Name)
}

func (suite *TestSuiteStandard) TestSubcategoriesCreateForeignCategory() {
	_, token := suite.organizationFixture("finance")

	other := models.Organization{Name: uuid.New().String()}
	suite.Require().Nil(models.DB.Create(&other).Error)
	foreignCategory := suite.createTestCategory(models.Category{OrganizationID: other.ID})

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/subcategories", []v1.SubcategoryEditable{
		{CategoryID: foreignCategory.ID, Name: "Tolls"},
	}, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestSubcategoriesScopedToOrganization() {
	organization, token := suite.organizationFixture("finance")
	category := suite.createTestCategory(models.Category{OrganizationID: organization.ID})
	_ = suite.createTestSubcategory(models.Subcategory{CategoryID: category.ID})

	other := models.Organization{Name: uuid.New().String()}
	suite.Require().Nil(models.DB.Create(&other).Error)
	foreignCategory := suite.createTestCategory(models.Category{OrganizationID: other.ID})
	_ = suite.createTestSubcategory(models.Subcategory{CategoryID: foreignCategory.ID})

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/subcategories", nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.SubcategoryListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Len(response.Data, 1)
}

func (suite *TestSuiteStandard) TestSubcategoriesGetByCategory() {
	organization, token := suite.organizationFixture("finance")
	category := suite.createTestCategory(models.Category{OrganizationID: organization.ID})
	other := suite.createTestCategory(models.Category{OrganizationID: organization.ID})
	_ = suite.createTestSubcategory(models.Subcategory{CategoryID: category.ID})
	_ = suite.createTestSubcategory(models.Subcategory{CategoryID: other.ID})

	recorder := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/subcategories?category=%s", category.ID), nil, token)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.SubcategoryListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Len(response.Data, 1)
}
