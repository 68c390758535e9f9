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

func RegisterVehicleRoutes(r *gin.RouterGroup) {
	read := auth.Require(permissions.VehiclesRead)
	write := auth.Require(permissions.VehiclesWrite)

	{
		r.OPTIONS("", OptionsVehicles)
		r.GET("", read, GetVehicles)
		r.POST("", write, CreateVehicles)
	}
	{
		r.OPTIONS("/:id", read, OptionsVehicleDetail)
		r.GET("/:id", read, GetVehicle)
		r.PATCH("/:id", write, UpdateVehicle)
		r.DELETE("/:id", write, DeleteVehicle)
	}
}

type VehicleEditable struct {
	Plate      string `json:"plate" example:"ABC1D23"`                    // License plate, unique within the organization
	Model      string `json:"model" example:"Volvo FH 540" default:""`    // Manufacturer and model
	Year       int    `json:"year" example:"2021" default:"0"`            // Model year
	CapacityKg int    `json:"capacityKg" example:"25000" default:"0"`     // Load capacity in kilograms
	Odometer   int    `json:"odometer" example:"105000" default:"0"`      // Current odometer reading in kilometers
	Note       string `json:"note" example:"Refrigerated box" default:""` // Note about the vehicle
	Archived   bool   `json:"archived" example:"true" default:"false"`    // Is the vehicle archived?
}

// model returns the database resource for the API representation of the editable fields
func (editable VehicleEditable) model() models.Vehicle {
	return models.Vehicle{
		Plate:      editable.Plate,
		Model:      editable.Model,
		Year:       editable.Year,
		CapacityKg: editable.CapacityKg,
		Odometer:   editable.Odometer,
		Note:       editable.Note,
		Archived:   editable.Archived,
	}
}

type VehicleLinks struct {
	Self        string `json:"self" example:"https://example.com/api/v1/vehicles/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`                   // The vehicle itself
	Trips       string `json:"trips" example:"https://example.com/api/v1/trips?vehicle=af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`             // Trips of this vehicle
	Maintenance string `json:"maintenance" example:"https://example.com/api/v1/maintenance?vehicle=af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"` // Maintenance records of this vehicle
}

type Vehicle struct {
	models.DefaultModel
	VehicleEditable
	Links VehicleLinks `json:"links"`
}

// newVehicle returns the API v1 representation of the resource
func newVehicle(c *gin.Context, model models.Vehicle) Vehicle {
	url := c.GetString(string(models.DBContextURL))

	return Vehicle{
		DefaultModel: model.DefaultModel,
		VehicleEditable: VehicleEditable{
			Plate:      model.Plate,
			Model:      model.Model,
			Year:       model.Year,
			CapacityKg: model.CapacityKg,
			Odometer:   model.Odometer,
			Note:       model.Note,
			Archived:   model.Archived,
		},
		Links: VehicleLinks{
			Self:        fmt.Sprintf("%s/v1/vehicles/%s", url, model.ID),
			Trips:       fmt.Sprintf("%s/v1/trips?vehicle=%s", url, model.ID),
			Maintenance: fmt.Sprintf("%s/v1/maintenance?vehicle=%s", url, model.ID),
		},
	}
}

type VehicleListResponse struct {
	Data       []Vehicle   `json:"data"`                                                          // List of resources
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type VehicleCreateResponse struct {
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []VehicleResponse `json:"data"`                                                          // List of created resources
}

func (t *VehicleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, VehicleResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type VehicleResponse struct {
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Vehicle `json:"data"`                                                          // The resource
}

type VehicleQueryFilter struct {
	Plate    string `form:"plate" filterField:"false"`  // By plate
	Model    string `form:"model" filterField:"false"`  // By model
	Year     int    `form:"year"`                       // By model year
	Note     string `form:"note" filterField:"false"`   // By note
	Search   string `form:"search" filterField:"false"` // By string in plate, model or note
	Archived bool   `form:"archived"`                   // Is the vehicle archived?
	Offset   uint   `form:"offset" filterField:"false"` // The offset of the first vehicle returned. Defaults to 0.
	Limit    int    `form:"limit" filterField:"false"`  // Maximum number of vehicles to return. Defaults to 50.
}

func (f VehicleQueryFilter) model() models.Vehicle {
	return models.Vehicle{
		Year:     f.Year,
		Archived: f.Archived,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Vehicles
// @Success		204
// @Router			/v1/vehicles [options]
func OptionsVehicles(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Vehicles
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/vehicles/{id} [options]
func OptionsVehicleDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = getVehicle(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create vehicles
// @Description	Creates new vehicles
// @Tags			Vehicles
// @Produce		json
// @Success		201			{object}	VehicleCreateResponse
// @Failure		400			{object}	VehicleCreateResponse
// @Failure		404			{object}	VehicleCreateResponse
// @Failure		500			{object}	VehicleCreateResponse
// @Param			vehicles	body		[]VehicleEditable	true	"Vehicles"
// @Router			/v1/vehicles [post]
func CreateVehicles(c *gin.Context) {
	var editables []VehicleEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), VehicleCreateResponse{
			Error: &e,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := VehicleCreateResponse{}

	for _, editable := range editables {
		vehicle := editable.model()
		vehicle.OrganizationID = identity.OrganizationID

		err := models.DB.Create(&vehicle).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newVehicle(c, vehicle)
		r.Data = append(r.Data, VehicleResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get vehicles
// @Description	Returns a list of vehicles
// @Tags			Vehicles
// @Produce		json
// @Success		200	{object}	VehicleListResponse
// @Failure		500	{object}	VehicleListResponse
// @Router			/v1/vehicles [get]
// @Param			plate		query	string	false	"Filter by plate"
// @Param			model		query	string	false	"Filter by model"
// @Param			year		query	int		false	"Filter by model year"
// @Param			note		query	string	false	"Filter by note"
// @Param			search		query	string	false	"Search for this text in plate, model and note"
// @Param			archived	query	bool	false	"Is the vehicle archived?"
// @Param			offset		query	uint	false	"The offset of the first vehicle returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of vehicles to return. Defaults to 50."
func GetVehicles(c *gin.Context) {
	var filter VehicleQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, VehicleListResponse{
			Error: &s,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Where(&models.Vehicle{OrganizationID: identity.OrganizationID}).
		Order("plate ASC").
		Where(&where, queryFields...)

	if filter.Plate != "" {
		q = q.Where("plate LIKE ?", fmt.Sprintf("%%%s%%", filter.Plate))
	} else if slices.Contains(setFields, "Plate") {
		q = q.Where("plate = ''")
	}

	if filter.Model != "" {
		q = q.Where("model LIKE ?", fmt.Sprintf("%%%s%%", filter.Model))
	} else if slices.Contains(setFields, "Model") {
		q = q.Where("model = ''")
	}

	if filter.Note != "" {
		q = q.Where("note LIKE ?", fmt.Sprintf("%%%s%%", filter.Note))
	} else if slices.Contains(setFields, "Note") {
		q = q.Where("note = ''")
	}

	if filter.Search != "" {
		search := fmt.Sprintf("%%%s%%", filter.Search)
		q = q.Where("plate LIKE ? OR model LIKE ? OR note LIKE ?", search, search, search)
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 vehicles and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var vehicles []models.Vehicle
	err := q.Find(&vehicles).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VehicleListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), VehicleListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Vehicle, 0, len(vehicles))
	for _, vehicle := range vehicles {
		data = append(data, newVehicle(c, vehicle))
	}

	c.JSON(http.StatusOK, VehicleListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get vehicle
// @Description	Returns a specific vehicle
// @Tags			Vehicles
// @Produce		json
// @Success		200	{object}	VehicleResponse
// @Failure		400	{object}	VehicleResponse
// @Failure		404	{object}	VehicleResponse
// @Failure		500	{object}	VehicleResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/vehicles/{id} [get]
func GetVehicle(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &e,
		})
		return
	}

	vehicle, err := getVehicle(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &e,
		})
		return
	}

	apiResource := newVehicle(c, vehicle)
	c.JSON(http.StatusOK, VehicleResponse{Data: &apiResource})
}

// @Summary		Update vehicle
// @Description	Updates an existing vehicle. Only values to be updated need to be specified.
// @Tags			Vehicles
// @Accept			json
// @Produce		json
// @Success		200		{object}	VehicleResponse
// @Failure		400		{object}	VehicleResponse
// @Failure		404		{object}	VehicleResponse
// @Failure		500		{object}	VehicleResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			vehicle	body		VehicleEditable	true	"Vehicle"
// @Router			/v1/vehicles/{id} [patch]
func UpdateVehicle(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &e,
		})
		return
	}

	vehicle, err := getVehicle(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, VehicleEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &e,
		})
		return
	}

	var data VehicleEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&vehicle).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), VehicleResponse{
			Error: &e,
		})
		return
	}

	apiResource := newVehicle(c, vehicle)
	c.JSON(http.StatusOK, VehicleResponse{Data: &apiResource})
}

// @Summary		Delete vehicle
// @Description	Deletes a vehicle
// @Tags			Vehicles
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/vehicles/{id} [delete]
func DeleteVehicle(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	vehicle, err := getVehicle(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&vehicle).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// getVehicle returns the vehicle with this ID if it belongs to the caller's
// organization.
func getVehicle(c *gin.Context, id uuid.UUID) (models.Vehicle, error) {
	identity := auth.IdentityFromContext(c)

	var vehicle models.Vehicle
	err := models.DB.
		Where(&models.Vehicle{OrganizationID: identity.OrganizationID}).
		First(&vehicle, id).Error
	if err != nil {
		return models.Vehicle{}, err
	}

	return vehicle, nil
}
