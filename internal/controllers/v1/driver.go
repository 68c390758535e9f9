package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fleetdeck/backend/internal/auth"
	"github.com/fleetdeck/backend/internal/httputil"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/internal/permissions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

func RegisterDriverRoutes(r *gin.RouterGroup) {
	read := auth.Require(permissions.DriversRead)
	write := auth.Require(permissions.DriversWrite)

	{
		r.OPTIONS("", OptionsDrivers)
		r.GET("", read, GetDrivers)
		r.POST("", write, CreateDrivers)
	}
	{
		r.OPTIONS("/:id", read, OptionsDriverDetail)
		r.GET("/:id", read, GetDriver)
		r.PATCH("/:id", write, UpdateDriver)
		r.DELETE("/:id", write, DeleteDriver)
	}
}

type DriverEditable struct {
	Name          string     `json:"name" example:"Maria Souza"`                     // Name of the driver
	LicenseNumber string     `json:"licenseNumber" example:"98765432100"`            // License number, unique within the organization
	LicenseExpiry *time.Time `json:"licenseExpiry" example:"2027-03-01T00:00:00Z"`   // Expiry date of the license
	Phone         string     `json:"phone" example:"+55 11 98888-7777" default:""`   // Contact phone number
	Note          string     `json:"note" example:"Hazardous cargo cert" default:""` // Note about the driver
	Archived      bool       `json:"archived" example:"true" default:"false"`        // Is the driver archived?
}

// model returns the database resource for the API representation of the editable fields
func (editable DriverEditable) model() models.Driver {
	return models.Driver{
		Name:          editable.Name,
		LicenseNumber: editable.LicenseNumber,
		LicenseExpiry: editable.LicenseExpiry,
		Phone:         editable.Phone,
		Note:          editable.Note,
		Archived:      editable.Archived,
	}
}

type DriverLinks struct {
	Self  string `json:"self" example:"https://example.com/api/v1/drivers/d1b77316-e3a0-49ea-a6b8-3a2f9e0e90e8"`       // The driver itself
	Trips string `json:"trips" example:"https://example.com/api/v1/trips?driver=d1b77316-e3a0-49ea-a6b8-3a2f9e0e90e8"` // Trips of this driver
}

type Driver struct {
	models.DefaultModel
	DriverEditable
	Links DriverLinks `json:"links"`
}

// newDriver returns the API v1 representation of the resource
func newDriver(c *gin.Context, model models.Driver) Driver {
	url := c.GetString(string(models.DBContextURL))

	return Driver{
		DefaultModel: model.DefaultModel,
		DriverEditable: DriverEditable{
			Name:          model.Name,
			LicenseNumber: model.LicenseNumber,
			LicenseExpiry: model.LicenseExpiry,
			Phone:         model.Phone,
			Note:          model.Note,
			Archived:      model.Archived,
		},
		Links: DriverLinks{
			Self:  fmt.Sprintf("%s/v1/drivers/%s", url, model.ID),
			Trips: fmt.Sprintf("%s/v1/trips?driver=%s", url, model.ID),
		},
	}
}

type DriverListResponse struct {
	Data       []Driver    `json:"data"`                                                          // List of resources
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type DriverCreateResponse struct {
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []DriverResponse `json:"data"`                                                          // List of created resources
}

func (t *DriverCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, DriverResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type DriverResponse struct {
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Driver `json:"data"`                                                          // The resource
}

type DriverQueryFilter struct {
	Name                 string `form:"name" filterField:"false"`                 // By name
	LicenseNumber        string `form:"licenseNumber"`                            // By license number
	LicenseExpiresBefore string `form:"licenseExpiresBefore" filterField:"false"` // Drivers whose license expires before this date (RFC 3339)
	Note                 string `form:"note" filterField:"false"`                 // By note
	Search               string `form:"search" filterField:"false"`               // By string in name or note
	Archived             bool   `form:"archived"`                                 // Is the driver archived?
	Offset               uint   `form:"offset" filterField:"false"`               // The offset of the first driver returned. Defaults to 0.
	Limit                int    `form:"limit" filterField:"false"`                // Maximum number of drivers to return. Defaults to 50.
}

func (f DriverQueryFilter) model() models.Driver {
	return models.Driver{
		LicenseNumber: f.LicenseNumber,
		Archived:      f.Archived,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Drivers
// @Success		204
// @Router			/v1/drivers [options]
func OptionsDrivers(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Drivers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/drivers/{id} [options]
func OptionsDriverDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = getDriver(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create drivers
// @Description	Creates new drivers
// @Tags			Drivers
// @Produce		json
// @Success		201		{object}	DriverCreateResponse
// @Failure		400		{object}	DriverCreateResponse
// @Failure		404		{object}	DriverCreateResponse
// @Failure		500		{object}	DriverCreateResponse
// @Param			drivers	body		[]DriverEditable	true	"Drivers"
// @Router			/v1/drivers [post]
func CreateDrivers(c *gin.Context) {
	var editables []DriverEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DriverCreateResponse{
			Error: &e,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := DriverCreateResponse{}

	for _, editable := range editables {
		driver := editable.model()
		driver.OrganizationID = identity.OrganizationID

		err := models.DB.Create(&driver).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newDriver(c, driver)
		r.Data = append(r.Data, DriverResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get drivers
// @Description	Returns a list of drivers
// @Tags			Drivers
// @Produce		json
// @Success		200	{object}	DriverListResponse
// @Failure		400	{object}	DriverListResponse
// @Failure		500	{object}	DriverListResponse
// @Router			/v1/drivers [get]
// @Param			name					query	string	false	"Filter by name"
// @Param			licenseNumber			query	string	false	"Filter by license number"
// @Param			licenseExpiresBefore	query	string	false	"Drivers whose license expires before this date (RFC 3339)"
// @Param			note					query	string	false	"Filter by note"
// @Param			search					query	string	false	"Search for this text in name and note"
// @Param			archived				query	bool	false	"Is the driver archived?"
// @Param			offset					query	uint	false	"The offset of the first driver returned. Defaults to 0."
// @Param			limit					query	int		false	"Maximum number of drivers to return. Defaults to 50."
func GetDrivers(c *gin.Context) {
	var filter DriverQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, DriverListResponse{
			Error: &s,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Where(&models.Driver{OrganizationID: identity.OrganizationID}).
		Order("name ASC").
		Where(&where, queryFields...)

	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Note, filter.Search)

	if filter.LicenseExpiresBefore != "" {
		expiresBefore, e := time.Parse(time.RFC3339, filter.LicenseExpiresBefore)
		if e != nil {
			s := e.Error()
			c.JSON(http.StatusBadRequest, DriverListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("license_expiry < ?", expiresBefore)
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 drivers and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var drivers []models.Driver
	err := q.Find(&drivers).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DriverListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DriverListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Driver, 0, len(drivers))
	for _, driver := range drivers {
		data = append(data, newDriver(c, driver))
	}

	c.JSON(http.StatusOK, DriverListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get driver
// @Description	Returns a specific driver
// @Tags			Drivers
// @Produce		json
// @Success		200	{object}	DriverResponse
// @Failure		400	{object}	DriverResponse
// @Failure		404	{object}	DriverResponse
// @Failure		500	{object}	DriverResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/drivers/{id} [get]
func GetDriver(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DriverResponse{
			Error: &e,
		})
		return
	}

	driver, err := getDriver(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DriverResponse{
			Error: &e,
		})
		return
	}

	apiResource := newDriver(c, driver)
	c.JSON(http.StatusOK, DriverResponse{Data: &apiResource})
}

// @Summary		Update driver
// @Description	Updates an existing driver. Only values to be updated need to be specified.
// @Tags			Drivers
// @Accept			json
// @Produce		json
// @Success		200		{object}	DriverResponse
// @Failure		400		{object}	DriverResponse
// @Failure		404		{object}	DriverResponse
// @Failure		500		{object}	DriverResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			driver	body		DriverEditable	true	"Driver"
// @Router			/v1/drivers/{id} [patch]
func UpdateDriver(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DriverResponse{
			Error: &e,
		})
		return
	}

	driver, err := getDriver(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DriverResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, DriverEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DriverResponse{
			Error: &e,
		})
		return
	}

	var data DriverEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DriverResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&driver).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DriverResponse{
			Error: &e,
		})
		return
	}

	apiResource := newDriver(c, driver)
	c.JSON(http.StatusOK, DriverResponse{Data: &apiResource})
}

// @Summary		Delete driver
// @Description	Deletes a driver
// @Tags			Drivers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/drivers/{id} [delete]
func DeleteDriver(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	driver, err := getDriver(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&driver).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// getDriver returns the driver with this ID if it belongs to the caller's
// organization.
func getDriver(c *gin.Context, id uuid.UUID) (models.Driver, error) {
	identity := auth.IdentityFromContext(c)

	var driver models.Driver
	err := models.DB.
		Where(&models.Driver{OrganizationID: identity.OrganizationID}).
		First(&driver, id).Error
	if err != nil {
		return models.Driver{}, err
	}

	return driver, nil
}
