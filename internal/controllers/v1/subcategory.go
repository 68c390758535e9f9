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

func RegisterSubcategoryRoutes(r *gin.RouterGroup) {
	read := auth.Require(permissions.CategoriesRead)
	write := auth.Require(permissions.CategoriesWrite)

	{
		r.OPTIONS("", OptionsSubcategories)
		r.GET("", read, GetSubcategories)
		r.POST("", write, CreateSubcategories)
	}
	{
		r.OPTIONS("/:id", read, OptionsSubcategoryDetail)
		r.GET("/:id", read, GetSubcategory)
		r.PATCH("/:id", write, UpdateSubcategory)
		r.DELETE("/:id", write, DeleteSubcategory)
	}
}

type SubcategoryEditable struct {
	CategoryID uuid.UUID `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91f71defe"` // The category the subcategory refines
	Name       string    `json:"name" example:"Tolls"`                                      // Name of the subcategory, unique within the category
	Note       string    `json:"note" example:"Motorway tolls" default:""`                  // Note about the subcategory
}

// model returns the database resource for the API representation of the editable fields
func (editable SubcategoryEditable) model() models.Subcategory {
	return models.Subcategory{
		CategoryID: editable.CategoryID,
		Name:       editable.Name,
		Note:       editable.Note,
	}
}

type SubcategoryLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/subcategories/2f275dd9-cd63-4e15-b9a7-02e32f4f6c15"`                    // The subcategory itself
	Category string `json:"category" example:"https://example.com/api/v1/categories/3b1ea324-d438-4419-882a-2fc91f71defe"`                   // The category the subcategory refines
	Records  string `json:"records" example:"https://example.com/api/v1/financial-records?subcategory=2f275dd9-cd63-4e15-b9a7-02e32f4f6c15"` // Financial records classified by this subcategory
}

type Subcategory struct {
	models.DefaultModel
	SubcategoryEditable
	Links SubcategoryLinks `json:"links"`
}

// newSubcategory returns the API v1 representation of the resource
func newSubcategory(c *gin.Context, model models.Subcategory) Subcategory {
	url := c.GetString(string(models.DBContextURL))

	return Subcategory{
		DefaultModel: model.DefaultModel,
		SubcategoryEditable: SubcategoryEditable{
			CategoryID: model.CategoryID,
			Name:       model.Name,
			Note:       model.Note,
		},
		Links: SubcategoryLinks{
			Self:     fmt.Sprintf("%s/v1/subcategories/%s", url, model.ID),
			Category: fmt.Sprintf("%s/v1/categories/%s", url, model.CategoryID),
			Records:  fmt.Sprintf("%s/v1/financial-records?subcategory=%s", url, model.ID),
		},
	}
}

type SubcategoryListResponse struct {
	Data       []Subcategory `json:"data"`                                                          // List of resources
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type SubcategoryCreateResponse struct {
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []SubcategoryResponse `json:"data"`                                                          // List of created resources
}

func (t *SubcategoryCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, SubcategoryResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type SubcategoryResponse struct {
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Subcategory `json:"data"`                                                          // The resource
}

type SubcategoryQueryFilter struct {
	CategoryID fd_uuid.UUID `form:"category"`                   // By category ID
	Name       string       `form:"name" filterField:"false"`   // By name
	Note       string       `form:"note" filterField:"false"`   // By note
	Search     string       `form:"search" filterField:"false"` // By string in name or note
	Offset     uint         `form:"offset" filterField:"false"` // The offset of the first subcategory returned. Defaults to 0.
	Limit      int          `form:"limit" filterField:"false"`  // Maximum number of subcategories to return. Defaults to 50.
}

func (f SubcategoryQueryFilter) model() models.Subcategory {
	return models.Subcategory{
		CategoryID: f.CategoryID.UUID,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Subcategories
// @Success		204
// @Router			/v1/subcategories [options]
func OptionsSubcategories(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Subcategories
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/subcategories/{id} [options]
func OptionsSubcategoryDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = getSubcategory(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create subcategories
// @Description	Creates new subcategories
// @Tags			Subcategories
// @Produce		json
// @Success		201				{object}	SubcategoryCreateResponse
// @Failure		400				{object}	SubcategoryCreateResponse
// @Failure		404				{object}	SubcategoryCreateResponse
// @Failure		500				{object}	SubcategoryCreateResponse
// @Param			subcategories	body		[]SubcategoryEditable	true	"Subcategories"
// @Router			/v1/subcategories [post]
func CreateSubcategories(c *gin.Context) {
	var editables []SubcategoryEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubcategoryCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := SubcategoryCreateResponse{}

	for _, editable := range editables {
		// The category has to belong to the caller's organization
		_, err := getCategory(c, editable.CategoryID)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		subcategory := editable.model()

		err = models.DB.Create(&subcategory).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newSubcategory(c, subcategory)
		r.Data = append(r.Data, SubcategoryResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get subcategories
// @Description	Returns a list of subcategories
// @Tags			Subcategories
// @Produce		json
// @Success		200	{object}	SubcategoryListResponse
// @Failure		500	{object}	SubcategoryListResponse
// @Router			/v1/subcategories [get]
// @Param			category	query	string	false	"Filter by category ID"
// @Param			name		query	string	false	"Filter by name"
// @Param			note		query	string	false	"Filter by note"
// @Param			search		query	string	false	"Search for this text in name and note"
// @Param			offset		query	uint	false	"The offset of the first subcategory returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of subcategories to return. Defaults to 50."
func GetSubcategories(c *gin.Context) {
	var filter SubcategoryQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, SubcategoryListResponse{
			Error: &s,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Joins("JOIN categories ON categories.id = subcategories.category_id").
		Where("categories.organization_id = ?", identity.OrganizationID).
		Order("subcategories.name ASC").
		Where(&where, queryFields...)

	// The column names have to be qualified because the query joins the
	// categories table, which has name and note columns as well
	if filter.Name != "" {
		q = q.Where("subcategories.name LIKE ?", fmt.Sprintf("%%%s%%", filter.Name))
	} else if slices.Contains(setFields, "Name") {
		q = q.Where("subcategories.name = ''")
	}

	if filter.Note != "" {
		q = q.Where("subcategories.note LIKE ?", fmt.Sprintf("%%%s%%", filter.Note))
	} else if slices.Contains(setFields, "Note") {
		q = q.Where("subcategories.note = ''")
	}

	if filter.Search != "" {
		search := fmt.Sprintf("%%%s%%", filter.Search)
		q = q.Where("subcategories.name LIKE ? OR subcategories.note LIKE ?", search, search)
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 subcategories and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var subcategories []models.Subcategory
	err := q.Find(&subcategories).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SubcategoryListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubcategoryListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Subcategory, 0, len(subcategories))
	for _, subcategory := range subcategories {
		data = append(data, newSubcategory(c, subcategory))
	}

	c.JSON(http.StatusOK, SubcategoryListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get subcategory
// @Description	Returns a specific subcategory
// @Tags			Subcategories
// @Produce		json
// @Success		200	{object}	SubcategoryResponse
// @Failure		400	{object}	SubcategoryResponse
// @Failure		404	{object}	SubcategoryResponse
// @Failure		500	{object}	SubcategoryResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/subcategories/{id} [get]
func GetSubcategory(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubcategoryResponse{
			Error: &e,
		})
		return
	}

	subcategory, err := getSubcategory(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubcategoryResponse{
			Error: &e,
		})
		return
	}

	apiResource := newSubcategory(c, subcategory)
	c.JSON(http.StatusOK, SubcategoryResponse{Data: &apiResource})
}

// @Summary		Update subcategory
// @Description	Updates an existing subcategory. Only values to be updated need to be specified.
// @Tags			Subcategories
// @Accept			json
// @Produce		json
// @Success		200			{object}	SubcategoryResponse
// @Failure		400			{object}	SubcategoryResponse
// @Failure		404			{object}	SubcategoryResponse
// @Failure		500			{object}	SubcategoryResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			subcategory	body		SubcategoryEditable	true	"Subcategory"
// @Router			/v1/subcategories/{id} [patch]
func UpdateSubcategory(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubcategoryResponse{
			Error: &e,
		})
		return
	}

	subcategory, err := getSubcategory(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubcategoryResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, SubcategoryEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubcategoryResponse{
			Error: &e,
		})
		return
	}

	var data SubcategoryEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubcategoryResponse{
			Error: &e,
		})
		return
	}

	// When the subcategory is moved, the target category has to belong to
	// the caller's organization as well
	if slices.Contains(updateFields, "CategoryID") {
		_, err = getCategory(c, data.CategoryID)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), SubcategoryResponse{
				Error: &e,
			})
			return
		}
	}

	err = models.DB.Model(&subcategory).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubcategoryResponse{
			Error: &e,
		})
		return
	}

	apiResource := newSubcategory(c, subcategory)
	c.JSON(http.StatusOK, SubcategoryResponse{Data: &apiResource})
}

// @Summary		Delete subcategory
// @Description	Deletes a subcategory
// @Tags			Subcategories
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/subcategories/{id} [delete]
func DeleteSubcategory(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	subcategory, err := getSubcategory(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&subcategory).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// getSubcategory returns the subcategory with this ID if its category
// belongs to the caller's organization.
func getSubcategory(c *gin.Context, id uuid.UUID) (models.Subcategory, error) {
	identity := auth.IdentityFromContext(c)

	var subcategory models.Subcategory
	err := models.DB.
		Joins("JOIN categories ON categories.id = subcategories.category_id").
		Where("categories.organization_id = ?", identity.OrganizationID).
		First(&subcategory, "subcategories.id = ?", id).Error
	if err != nil {
		return models.Subcategory{}, err
	}

	return subcategory, nil
}
