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

func RegisterCustomRoleRoutes(r *gin.RouterGroup) {
	manage := auth.Require(permissions.RolesManage)

	{
		r.OPTIONS("", OptionsCustomRoles)
		r.GET("", manage, GetCustomRoles)
		r.POST("", manage, CreateCustomRoles)
	}
	{
		r.OPTIONS("/:id", manage, OptionsCustomRoleDetail)
		r.GET("/:id", manage, GetCustomRole)
		r.PATCH("/:id", manage, UpdateCustomRole)
		r.DELETE("/:id", manage, DeleteCustomRole)
	}
}

type CustomRoleEditable struct {
	Name        string   `json:"name" example:"dispatcher"`                                  // Name of the role, unique within the organization
	Permissions []string `json:"permissions" example:"trips:read,trips:write,vehicles:read"` // Permissions granted by the role
}

// model returns the database resource for the API representation of the editable fields
func (editable CustomRoleEditable) model() models.CustomRole {
	return models.CustomRole{
		Name:        editable.Name,
		Permissions: models.StringList(editable.Permissions),
	}
}

type CustomRoleLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/roles/95018a69-758b-46c6-8bab-db70d9614f9d"` // The role itself
}

type CustomRole struct {
	models.DefaultModel
	CustomRoleEditable
	Links CustomRoleLinks `json:"links"`
}

// newCustomRole returns the API v1 representation of the resource
func newCustomRole(c *gin.Context, model models.CustomRole) CustomRole {
	url := c.GetString(string(models.DBContextURL))

	return CustomRole{
		DefaultModel: model.DefaultModel,
		CustomRoleEditable: CustomRoleEditable{
			Name:        model.Name,
			Permissions: model.Permissions,
		},
		Links: CustomRoleLinks{
			Self: fmt.Sprintf("%s/v1/roles/%s", url, model.ID),
		},
	}
}

type CustomRoleListResponse struct {
	Data       []CustomRole `json:"data"`                                                          // List of resources
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination  `json:"pagination"`                                                    // Pagination information
}

type CustomRoleCreateResponse struct {
	Error *string              `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []CustomRoleResponse `json:"data"`                                                          // List of created resources
}

func (t *CustomRoleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, CustomRoleResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type CustomRoleResponse struct {
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *CustomRole `json:"data"`                                                          // The resource
}

type CustomRoleQueryFilter struct {
	Name   string `form:"name" filterField:"false"`   // By name
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first role returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of roles to return. Defaults to 50.
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Roles
// @Success		204
// @Router			/v1/roles [options]
func OptionsCustomRoles(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Roles
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/roles/{id} [options]
func OptionsCustomRoleDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = getCustomRole(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create roles
// @Description	Creates new custom roles. Unknown permission names are rejected.
// @Tags			Roles
// @Produce		json
// @Success		201		{object}	CustomRoleCreateResponse
// @Failure		400		{object}	CustomRoleCreateResponse
// @Failure		404		{object}	CustomRoleCreateResponse
// @Failure		500		{object}	CustomRoleCreateResponse
// @Param			roles	body		[]CustomRoleEditable	true	"Roles"
// @Router			/v1/roles [post]
func CreateCustomRoles(c *gin.Context) {
	var editables []CustomRoleEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CustomRoleCreateResponse{
			Error: &e,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := CustomRoleCreateResponse{}

	for _, editable := range editables {
		if err := validatePermissions(editable.Permissions); err != nil {
			status = r.appendError(err, status)
			continue
		}

		role := editable.model()
		role.OrganizationID = identity.OrganizationID

		err := models.DB.Create(&role).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newCustomRole(c, role)
		r.Data = append(r.Data, CustomRoleResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get roles
// @Description	Returns a list of custom roles
// @Tags			Roles
// @Produce		json
// @Success		200	{object}	CustomRoleListResponse
// @Failure		500	{object}	CustomRoleListResponse
// @Router			/v1/roles [get]
// @Param			name	query	string	false	"Filter by name"
// @Param			offset	query	uint	false	"The offset of the first role returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of roles to return. Defaults to 50."
func GetCustomRoles(c *gin.Context) {
	var filter CustomRoleQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, CustomRoleListResponse{
			Error: &s,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Where(&models.CustomRole{OrganizationID: identity.OrganizationID}).
		Order("name ASC")

	if filter.Name != "" {
		q = q.Where("name LIKE ?", fmt.Sprintf("%%%s%%", filter.Name))
	} else if slices.Contains(setFields, "Name") {
		q = q.Where("name = ''")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 roles and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var roles []models.CustomRole
	err := q.Find(&roles).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CustomRoleListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CustomRoleListResponse{
			Error: &e,
		})
		return
	}

	data := make([]CustomRole, 0, len(roles))
	for _, role := range roles {
		data = append(data, newCustomRole(c, role))
	}

	c.JSON(http.StatusOK, CustomRoleListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get role
// @Description	Returns a specific custom role
// @Tags			Roles
// @Produce		json
// @Success		200	{object}	CustomRoleResponse
// @Failure		400	{object}	CustomRoleResponse
// @Failure		404	{object}	CustomRoleResponse
// @Failure		500	{object}	CustomRoleResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/roles/{id} [get]
func GetCustomRole(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CustomRoleResponse{
			Error: &e,
		})
		return
	}

	role, err := getCustomRole(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CustomRoleResponse{
			Error: &e,
		})
		return
	}

	apiResource := newCustomRole(c, role)
	c.JSON(http.StatusOK, CustomRoleResponse{Data: &apiResource})
}

// @Summary		Update role
// @Description	Updates an existing custom role. Only values to be updated need to be specified.
// @Tags			Roles
// @Accept			json
// @Produce		json
// @Success		200		{object}	CustomRoleResponse
// @Failure		400		{object}	CustomRoleResponse
// @Failure		404		{object}	CustomRoleResponse
// @Failure		500		{object}	CustomRoleResponse
// @Param			id		path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			role	body		CustomRoleEditable	true	"Role"
// @Router			/v1/roles/{id} [patch]
func UpdateCustomRole(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CustomRoleResponse{
			Error: &e,
		})
		return
	}

	role, err := getCustomRole(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CustomRoleResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, CustomRoleEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CustomRoleResponse{
			Error: &e,
		})
		return
	}

	var data CustomRoleEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CustomRoleResponse{
			Error: &e,
		})
		return
	}

	if slices.Contains(updateFields, "Permissions") {
		if err := validatePermissions(data.Permissions); err != nil {
			e := err.Error()
			c.JSON(status(err), CustomRoleResponse{
				Error: &e,
			})
			return
		}
	}

	err = models.DB.Model(&role).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CustomRoleResponse{
			Error: &e,
		})
		return
	}

	apiResource := newCustomRole(c, role)
	c.JSON(http.StatusOK, CustomRoleResponse{Data: &apiResource})
}

// @Summary		Delete role
// @Description	Deletes a custom role
// @Tags			Roles
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/roles/{id} [delete]
func DeleteCustomRole(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	role, err := getCustomRole(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&role).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// validatePermissions rejects permission names that are not defined.
func validatePermissions(perms []string) error {
	for _, p := range perms {
		if !slices.Contains(permissions.All(), permissions.Permission(p)) {
			return fmt.Errorf("no permission named %s exists", p)
		}
	}

	return nil
}

// getCustomRole returns the custom role with this ID if it belongs to the
// caller's organization.
func getCustomRole(c *gin.Context, id uuid.UUID) (models.CustomRole, error) {
	identity := auth.IdentityFromContext(c)

	var role models.CustomRole
	err := models.DB.
		Where(&models.CustomRole{OrganizationID: identity.OrganizationID}).
		First(&role, id).Error
	if err != nil {
		return models.CustomRole{}, err
	}

	return role, nil
}
