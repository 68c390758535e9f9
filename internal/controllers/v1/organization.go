package v1

import (
	"fmt"
	"net/http"

	"github.com/fleetdeck/backend/internal/auth"
	"github.com/fleetdeck/backend/internal/httputil"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/internal/permissions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// Organization routes are gated behind the organizations:manage permission,
// which only the super-admin role grants.
func RegisterOrganizationRoutes(r *gin.RouterGroup) {
	manage := auth.Require(permissions.OrganizationsManage)

	{
		r.OPTIONS("", OptionsOrganizations)
		r.GET("", manage, GetOrganizations)
		r.POST("", manage, CreateOrganizations)
	}
	{
		r.OPTIONS("/:id", manage, OptionsOrganizationDetail)
		r.GET("/:id", manage, GetOrganization)
		r.PATCH("/:id", manage, UpdateOrganization)
		r.DELETE("/:id", manage, DeleteOrganization)
	}
}

type OrganizationEditable struct {
	Name string `json:"name" example:"Acme Logistics"`            // Name of the organization, unique across the instance
	Note string `json:"note" example:"Pilot customer" default:""` // Note about the organization
}

// model returns the database resource for the API representation of the editable fields
func (editable OrganizationEditable) model() models.Organization {
	return models.Organization{
		Name: editable.Name,
		Note: editable.Note,
	}
}

type OrganizationLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/organizations/c4f8b25c-087a-4a22-a217-3b2f0371ff14"` // The organization itself
}

type Organization struct {
	models.DefaultModel
	OrganizationEditable
	Links OrganizationLinks `json:"links"`
}

// newOrganization returns the API v1 representation of the resource
func newOrganization(c *gin.Context, model models.Organization) Organization {
	url := c.GetString(string(models.DBContextURL))

	return Organization{
		DefaultModel: model.DefaultModel,
		OrganizationEditable: OrganizationEditable{
			Name: model.Name,
			Note: model.Note,
		},
		Links: OrganizationLinks{
			Self: fmt.Sprintf("%s/v1/organizations/%s", url, model.ID),
		},
	}
}

type OrganizationListResponse struct {
	Data       []Organization `json:"data"`                                                          // List of resources
	Error      *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination    `json:"pagination"`                                                    // Pagination information
}

type OrganizationCreateResponse struct {
	Error *string                `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []OrganizationResponse `json:"data"`                                                          // List of created resources
}

func (t *OrganizationCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, OrganizationResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type OrganizationResponse struct {
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Organization `json:"data"`                                                          // The resource
}

type OrganizationQueryFilter struct {
	Name   string `form:"name" filterField:"false"`   // By name
	Note   string `form:"note" filterField:"false"`   // By note
	Search string `form:"search" filterField:"false"` // By string in name or note
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first organization returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of organizations to return. Defaults to 50.
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Organizations
// @Success		204
// @Router			/v1/organizations [options]
func OptionsOrganizations(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Organizations
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/organizations/{id} [options]
func OptionsOrganizationDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = getOrganization(uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create organizations
// @Description	Creates new organizations
// @Tags			Organizations
// @Produce		json
// @Success		201				{object}	OrganizationCreateResponse
// @Failure		400				{object}	OrganizationCreateResponse
// @Failure		500				{object}	OrganizationCreateResponse
// @Param			organizations	body		[]OrganizationEditable	true	"Organizations"
// @Router			/v1/organizations [post]
func CreateOrganizations(c *gin.Context) {
	var editables []OrganizationEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), OrganizationCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := OrganizationCreateResponse{}

	for _, editable := range editables {
		organization := editable.model()

		err := models.DB.Create(&organization).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newOrganization(c, organization)
		r.Data = append(r.Data, OrganizationResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get organizations
// @Description	Returns a list of organizations
// @Tags			Organizations
// @Produce		json
// @Success		200	{object}	OrganizationListResponse
// @Failure		500	{object}	OrganizationListResponse
// @Router			/v1/organizations [get]
// @Param			name	query	string	false	"Filter by name"
// @Param			note	query	string	false	"Filter by note"
// @Param			search	query	string	false	"Search for this text in name and note"
// @Param			offset	query	uint	false	"The offset of the first organization returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of organizations to return. Defaults to 50."
func GetOrganizations(c *gin.Context) {
	var filter OrganizationQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, OrganizationListResponse{
			Error: &s,
		})
		return
	}

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.Model(&models.Organization{}).Order("name ASC")
	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Note, filter.Search)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 organizations and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var organizations []models.Organization
	err := q.Find(&organizations).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), OrganizationListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), OrganizationListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Organization, 0, len(organizations))
	for _, organization := range organizations {
		data = append(data, newOrganization(c, organization))
	}

	c.JSON(http.StatusOK, OrganizationListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get organization
// @Description	Returns a specific organization
// @Tags			Organizations
// @Produce		json
// @Success		200	{object}	OrganizationResponse
// @Failure		400	{object}	OrganizationResponse
// @Failure		404	{object}	OrganizationResponse
// @Failure		500	{object}	OrganizationResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/organizations/{id} [get]
func GetOrganization(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), OrganizationResponse{
			Error: &e,
		})
		return
	}

	organization, err := getOrganization(uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), OrganizationResponse{
			Error: &e,
		})
		return
	}

	apiResource := newOrganization(c, organization)
	c.JSON(http.StatusOK, OrganizationResponse{Data: &apiResource})
}

// @Summary		Update organization
// @Description	Updates an existing organization. Only values to be updated need to be specified.
// @Tags			Organizations
// @Accept			json
// @Produce		json
// @Success		200				{object}	OrganizationResponse
// @Failure		400				{object}	OrganizationResponse
// @Failure		404				{object}	OrganizationResponse
// @Failure		500				{object}	OrganizationResponse
// @Param			id				path		URIID					true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			organization	body		OrganizationEditable	true	"Organization"
// @Router			/v1/organizations/{id} [patch]
func UpdateOrganization(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), OrganizationResponse{
			Error: &e,
		})
		return
	}

	organization, err := getOrganization(uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), OrganizationResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, OrganizationEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), OrganizationResponse{
			Error: &e,
		})
		return
	}

	var data OrganizationEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), OrganizationResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&organization).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), OrganizationResponse{
			Error: &e,
		})
		return
	}

	apiResource := newOrganization(c, organization)
	c.JSON(http.StatusOK, OrganizationResponse{Data: &apiResource})
}

// @Summary		Delete organization
// @Description	Deletes an organization
// @Tags			Organizations
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/organizations/{id} [delete]
func DeleteOrganization(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	organization, err := getOrganization(uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&organization).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func getOrganization(id uuid.UUID) (models.Organization, error) {
	var organization models.Organization
	err := models.DB.First(&organization, id).Error
	if err != nil {
		return models.Organization{}, err
	}

	return organization, nil
}
