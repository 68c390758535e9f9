package v1

import (
	"fmt"
	"net/http"

	"github.com/fleetdeck/backend/internal/auth"
	"github.com/fleetdeck/backend/internal/httputil"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/internal/permissions"
	fd_uuid "github.com/fleetdeck/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

func RegisterCategoryRuleRoutes(r *gin.RouterGroup) {
	read := auth.Require(permissions.CategoriesRead)
	write := auth.Require(permissions.CategoriesWrite)

	{
		r.OPTIONS("", OptionsCategoryRules)
		r.GET("", read, GetCategoryRules)
		r.POST("", write, CreateCategoryRules)
	}
	{
		r.OPTIONS("/:id", read, OptionsCategoryRuleDetail)
		r.GET("/:id", read, GetCategoryRule)
		r.PATCH("/:id", write, UpdateCategoryRule)
		r.DELETE("/:id", write, DeleteCategoryRule)
	}
}

type CategoryRuleEditable struct {
	Priority      uint       `json:"priority" example:"10" default:"0"`                         // Rules are evaluated in ascending priority order, the first match wins
	Match         string     `json:"match" example:"Fuel*"`                                     // Glob pattern matched against the record description
	CategoryID    uuid.UUID  `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91f71defe"` // The category assigned on a match
	SubcategoryID *uuid.UUID `json:"subcategoryId"`                                             // Optional subcategory assigned on a match
}

// model returns the database resource for the API representation of the editable fields
func (editable CategoryRuleEditable) model() models.CategoryRule {
	return models.CategoryRule{
		Priority:      editable.Priority,
		Match:         editable.Match,
		CategoryID:    editable.CategoryID,
		SubcategoryID: editable.SubcategoryID,
	}
}

type CategoryRuleLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/category-rules/90e8f1b0-55a2-4fd1-bb9e-b686d16bd16b"` // The rule itself
	Category string `json:"category" example:"https://example.com/api/v1/categories/3b1ea324-d438-4419-882a-2fc91f71defe"` // The category assigned on a match
}

type CategoryRule struct {
	models.DefaultModel
	CategoryRuleEditable
	Links CategoryRuleLinks `json:"links"`
}

// newCategoryRule returns the API v1 representation of the resource
func newCategoryRule(c *gin.Context, model models.CategoryRule) CategoryRule {
	url := c.GetString(string(models.DBContextURL))

	return CategoryRule{
		DefaultModel: model.DefaultModel,
		CategoryRuleEditable: CategoryRuleEditable{
			Priority:      model.Priority,
			Match:         model.Match,
			CategoryID:    model.CategoryID,
			SubcategoryID: model.SubcategoryID,
		},
		Links: CategoryRuleLinks{
			Self:     fmt.Sprintf("%s/v1/category-rules/%s", url, model.ID),
			Category: fmt.Sprintf("%s/v1/categories/%s", url, model.CategoryID),
		},
	}
}

type CategoryRuleListResponse struct {
	Data       []CategoryRule `json:"data"`                                                          // List of resources
	Error      *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination    `json:"pagination"`                                                    // Pagination information
}

type CategoryRuleCreateResponse struct {
	Error *string                `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []CategoryRuleResponse `json:"data"`                                                          // List of created resources
}

func (t *CategoryRuleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, CategoryRuleResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type CategoryRuleResponse struct {
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *CategoryRule `json:"data"`                                                          // The resource
}

type CategoryRuleQueryFilter struct {
	CategoryID fd_uuid.UUID `form:"category"`                   // By category ID
	Match      string       `form:"match" filterField:"false"`  // By glob pattern
	Offset     uint         `form:"offset" filterField:"false"` // The offset of the first rule returned. Defaults to 0.
	Limit      int          `form:"limit" filterField:"false"`  // Maximum number of rules to return. Defaults to 50.
}

func (f CategoryRuleQueryFilter) model() models.CategoryRule {
	return models.CategoryRule{
		CategoryID: f.CategoryID.UUID,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			CategoryRules
// @Success		204
// @Router			/v1/category-rules [options]
func OptionsCategoryRules(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			CategoryRules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/category-rules/{id} [options]
func OptionsCategoryRuleDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = getCategoryRule(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create category rules
// @Description	Creates new category rules for the automatic classification of financial records
// @Tags			CategoryRules
// @Produce		json
// @Success		201		{object}	CategoryRuleCreateResponse
// @Failure		400		{object}	CategoryRuleCreateResponse
// @Failure		404		{object}	CategoryRuleCreateResponse
// @Failure		500		{object}	CategoryRuleCreateResponse
// @Param			rules	body		[]CategoryRuleEditable	true	"CategoryRules"
// @Router			/v1/category-rules [post]
func CreateCategoryRules(c *gin.Context) {
	var editables []CategoryRuleEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryRuleCreateResponse{
			Error: &e,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := CategoryRuleCreateResponse{}

	for _, editable := range editables {
		rule := editable.model()
		rule.OrganizationID = identity.OrganizationID

		err := models.DB.Create(&rule).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newCategoryRule(c, rule)
		r.Data = append(r.Data, CategoryRuleResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get category rules
// @Description	Returns a list of category rules
// @Tags			CategoryRules
// @Produce		json
// @Success		200	{object}	CategoryRuleListResponse
// @Failure		500	{object}	CategoryRuleListResponse
// @Router			/v1/category-rules [get]
// @Param			category	query	string	false	"Filter by category ID"
// @Param			match		query	string	false	"Filter by glob pattern"
// @Param			offset		query	uint	false	"The offset of the first rule returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of rules to return. Defaults to 50."
func GetCategoryRules(c *gin.Context) {
	var filter CategoryRuleQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, CategoryRuleListResponse{
			Error: &s,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Where(&models.CategoryRule{OrganizationID: identity.OrganizationID}).
		Order("priority ASC").
		Where(&where, queryFields...)

	if filter.Match != "" {
		q = q.Where("match LIKE ?", fmt.Sprintf("%%%s%%", filter.Match))
	} else if slices.Contains(setFields, "Match") {
		q = q.Where("match = ''")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 rules and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var rules []models.CategoryRule
	err := q.Find(&rules).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryRuleListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryRuleListResponse{
			Error: &e,
		})
		return
	}

	data := make([]CategoryRule, 0, len(rules))
	for _, rule := range rules {
		data = append(data, newCategoryRule(c, rule))
	}

	c.JSON(http.StatusOK, CategoryRuleListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get category rule
// @Description	Returns a specific category rule
// @Tags			CategoryRules
// @Produce		json
// @Success		200	{object}	CategoryRuleResponse
// @Failure		400	{object}	CategoryRuleResponse
// @Failure		404	{object}	CategoryRuleResponse
// @Failure		500	{object}	CategoryRuleResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/category-rules/{id} [get]
func GetCategoryRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryRuleResponse{
			Error: &e,
		})
		return
	}

	rule, err := getCategoryRule(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryRuleResponse{
			Error: &e,
		})
		return
	}

	apiResource := newCategoryRule(c, rule)
	c.JSON(http.StatusOK, CategoryRuleResponse{Data: &apiResource})
}

// @Summary		Update category rule
// @Description	Updates an existing category rule. Only values to be updated need to be specified.
// @Tags			CategoryRules
// @Accept			json
// @Produce		json
// @Success		200		{object}	CategoryRuleResponse
// @Failure		400		{object}	CategoryRuleResponse
// @Failure		404		{object}	CategoryRuleResponse
// @Failure		500		{object}	CategoryRuleResponse
// @Param			id		path		URIID					true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			rule	body		CategoryRuleEditable	true	"CategoryRule"
// @Router			/v1/category-rules/{id} [patch]
func UpdateCategoryRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryRuleResponse{
			Error: &e,
		})
		return
	}

	rule, err := getCategoryRule(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryRuleResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, CategoryRuleEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryRuleResponse{
			Error: &e,
		})
		return
	}

	var data CategoryRuleEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryRuleResponse{
			Error: &e,
		})
		return
	}

	// When the rule targets another category, the new category has to belong
	// to the caller's organization as well
	if slices.Contains(updateFields, "CategoryID") {
		_, err = getCategory(c, data.CategoryID)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), CategoryRuleResponse{
				Error: &e,
			})
			return
		}
	}

	err = models.DB.Model(&rule).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryRuleResponse{
			Error: &e,
		})
		return
	}

	apiResource := newCategoryRule(c, rule)
	c.JSON(http.StatusOK, CategoryRuleResponse{Data: &apiResource})
}

// @Summary		Delete category rule
// @Description	Deletes a category rule
// @Tags			CategoryRules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/category-rules/{id} [delete]
func DeleteCategoryRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	rule, err := getCategoryRule(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&rule).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// getCategoryRule returns the category rule with this ID if it belongs to
// the caller's organization.
func getCategoryRule(c *gin.Context, id uuid.UUID) (models.CategoryRule, error) {
	identity := auth.IdentityFromContext(c)

	var rule models.CategoryRule
	err := models.DB.
		Where(&models.CategoryRule{OrganizationID: identity.OrganizationID}).
		First(&rule, id).Error
	if err != nil {
		return models.CategoryRule{}, err
	}

	return rule, nil
}
