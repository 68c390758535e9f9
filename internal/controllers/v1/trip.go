package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fleetdeck/backend/internal/auth"
	"github.com/fleetdeck/backend/internal/httputil"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/internal/permissions"
	fd_uuid "github.com/fleetdeck/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

func RegisterTripRoutes(r *gin.RouterGroup) {
	read := auth.Require(permissions.TripsRead)
	write := auth.Require(permissions.TripsWrite)

	{
		r.OPTIONS("", OptionsTrips)
		r.GET("", read, GetTrips)
		r.POST("", write, CreateTrips)
	}
	{
		r.OPTIONS("/:id", read, OptionsTripDetail)
		r.GET("/:id", read, GetTrip)
		r.PATCH("/:id", write, UpdateTrip)
		r.DELETE("/:id", write, DeleteTrip)
	}
}

type TripEditable struct {
	Origin        string            `json:"origin" example:"São Paulo" default:""`                                                                                // Where the trip starts
	Destination   string            `json:"destination" example:"Curitiba" default:""`                                                                            // Where the trip ends
	ScheduledDate time.Time         `json:"scheduledDate" example:"2024-02-01T08:00:00Z"`                                                                         // When the trip is scheduled to start
	VehicleID     uuid.UUID         `json:"vehicleId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`                                                             // The vehicle performing the trip
	DriverID      uuid.UUID         `json:"driverId" example:"d1b77316-e3a0-49ea-a6b8-3a2f9e0e90e8"`                                                              // The driver performing the trip
	FreightValue  decimal.Decimal   `json:"freightValue" example:"1500" minimum:"0.00000001" maximum:"999999999999.99999999" multipleOf:"0.00000001" default:"0"` // Value of the freight
	Status        models.TripStatus `json:"status" example:"scheduled" default:"scheduled"`                                                                       // Lifecycle state of the trip
	Note          string            `json:"note" example:"Two delivery stops" default:""`                                                                         // Note about the trip
}

// model returns the database resource for the API representation of the editable fields
func (editable TripEditable) model() models.Trip {
	return models.Trip{
		Origin:        editable.Origin,
		Destination:   editable.Destination,
		ScheduledDate: editable.ScheduledDate,
		VehicleID:     editable.VehicleID,
		DriverID:      editable.DriverID,
		FreightValue:  editable.FreightValue,
		Status:        editable.Status,
		Note:          editable.Note,
	}
}

type TripLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/trips/7e3f0ea0-f6a7-4e8e-bd83-1a7c9dc4e2a5"`                     // The trip itself
	Vehicle string `json:"vehicle" example:"https://example.com/api/v1/vehicles/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`               // The vehicle performing the trip
	Driver  string `json:"driver" example:"https://example.com/api/v1/drivers/d1b77316-e3a0-49ea-a6b8-3a2f9e0e90e8"`                 // The driver performing the trip
	Records string `json:"records" example:"https://example.com/api/v1/financial-records?trip=7e3f0ea0-f6a7-4e8e-bd83-1a7c9dc4e2a5"` // Financial records linked to the trip
}

type Trip struct {
	models.DefaultModel
	TripEditable
	Links TripLinks `json:"links"`
}

// newTrip returns the API v1 representation of the resource
func newTrip(c *gin.Context, model models.Trip) Trip {
	url := c.GetString(string(models.DBContextURL))

	return Trip{
		DefaultModel: model.DefaultModel,
		TripEditable: TripEditable{
			Origin:        model.Origin,
			Destination:   model.Destination,
			ScheduledDate: model.ScheduledDate,
			VehicleID:     model.VehicleID,
			DriverID:      model.DriverID,
			FreightValue:  model.FreightValue,
			Status:        model.Status,
			Note:          model.Note,
		},
		Links: TripLinks{
			Self:    fmt.Sprintf("%s/v1/trips/%s", url, model.ID),
			Vehicle: fmt.Sprintf("%s/v1/vehicles/%s", url, model.VehicleID),
			Driver:  fmt.Sprintf("%s/v1/drivers/%s", url, model.DriverID),
			Records: fmt.Sprintf("%s/v1/financial-records?trip=%s", url, model.ID),
		},
	}
}

type TripListResponse struct {
	Data       []Trip      `json:"data"`                                                          // List of resources
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type TripCreateResponse struct {
	Error *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []TripResponse `json:"data"`                                                          // List of created resources
}

func (t *TripCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, TripResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type TripResponse struct {
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Trip   `json:"data"`                                                          // The resource
}

type TripQueryFilter struct {
	Origin      string       `form:"origin" filterField:"false"`      // By origin
	Destination string       `form:"destination" filterField:"false"` // By destination
	Status      string       `form:"status"`                          // By status
	VehicleID   fd_uuid.UUID `form:"vehicle"`                         // By vehicle ID
	DriverID    fd_uuid.UUID `form:"driver"`                          // By driver ID
	FromDate    string       `form:"fromDate" filterField:"false"`    // Trips scheduled at or after this date (RFC 3339)
	UntilDate   string       `form:"untilDate" filterField:"false"`   // Trips scheduled at or before this date (RFC 3339)
	Note        string       `form:"note" filterField:"false"`        // By note
	Search      string       `form:"search" filterField:"false"`      // By string in origin, destination or note
	Offset      uint         `form:"offset" filterField:"false"`      // The offset of the first trip returned. Defaults to 0.
	Limit       int          `form:"limit" filterField:"false"`       // Maximum number of trips to return. Defaults to 50.
}

func (f TripQueryFilter) model() models.Trip {
	return models.Trip{
		Status:    models.TripStatus(f.Status),
		VehicleID: f.VehicleID.UUID,
		DriverID:  f.DriverID.UUID,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Trips
// @Success		204
// @Router			/v1/trips [options]
func OptionsTrips(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Trips
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/trips/{id} [options]
func OptionsTripDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = getTrip(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create trips
// @Description	Creates new trips
// @Tags			Trips
// @Produce		json
// @Success		201		{object}	TripCreateResponse
// @Failure		400		{object}	TripCreateResponse
// @Failure		404		{object}	TripCreateResponse
// @Failure		500		{object}	TripCreateResponse
// @Param			trips	body		[]TripEditable	true	"Trips"
// @Router			/v1/trips [post]
func CreateTrips(c *gin.Context) {
	var editables []TripEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TripCreateResponse{
			Error: &e,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := TripCreateResponse{}

	for _, editable := range editables {
		trip := editable.model()
		trip.OrganizationID = identity.OrganizationID

		err := models.DB.Create(&trip).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newTrip(c, trip)
		r.Data = append(r.Data, TripResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get trips
// @Description	Returns a list of trips
// @Tags			Trips
// @Produce		json
// @Success		200	{object}	TripListResponse
// @Failure		400	{object}	TripListResponse
// @Failure		500	{object}	TripListResponse
// @Router			/v1/trips [get]
// @Param			origin		query	string	false	"Filter by origin"
// @Param			destination	query	string	false	"Filter by destination"
// @Param			status		query	string	false	"Filter by status"
// @Param			vehicle		query	string	false	"Filter by vehicle ID"
// @Param			driver		query	string	false	"Filter by driver ID"
// @Param			fromDate	query	string	false	"Trips scheduled at or after this date (RFC 3339)"
// @Param			untilDate	query	string	false	"Trips scheduled at or before this date (RFC 3339)"
// @Param			note		query	string	false	"Filter by note"
// @Param			search		query	string	false	"Search for this text in origin, destination and note"
// @Param			offset		query	uint	false	"The offset of the first trip returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of trips to return. Defaults to 50."
func GetTrips(c *gin.Context) {
	var filter TripQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, TripListResponse{
			Error: &s,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Where(&models.Trip{OrganizationID: identity.OrganizationID}).
		Order("scheduled_date DESC").
		Where(&where, queryFields...)

	if filter.Origin != "" {
		q = q.Where("origin LIKE ?", fmt.Sprintf("%%%s%%", filter.Origin))
	} else if slices.Contains(setFields, "Origin") {
		q = q.Where("origin = ''")
	}

	if filter.Destination != "" {
		q = q.Where("destination LIKE ?", fmt.Sprintf("%%%s%%", filter.Destination))
	} else if slices.Contains(setFields, "Destination") {
		q = q.Where("destination = ''")
	}

	if filter.Note != "" {
		q = q.Where("note LIKE ?", fmt.Sprintf("%%%s%%", filter.Note))
	} else if slices.Contains(setFields, "Note") {
		q = q.Where("note = ''")
	}

	if filter.Search != "" {
		search := fmt.Sprintf("%%%s%%", filter.Search)
		q = q.Where("origin LIKE ? OR destination LIKE ? OR note LIKE ?", search, search, search)
	}

	if filter.FromDate != "" {
		fromDate, e := time.Parse(time.RFC3339, filter.FromDate)
		if e != nil {
			s := e.Error()
			c.JSON(http.StatusBadRequest, TripListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("scheduled_date >= ?", fromDate)
	}

	if filter.UntilDate != "" {
		untilDate, e := time.Parse(time.RFC3339, filter.UntilDate)
		if e != nil {
			s := e.Error()
			c.JSON(http.StatusBadRequest, TripListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("scheduled_date <= ?", untilDate)
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 trips and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var trips []models.Trip
	err := q.Find(&trips).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TripListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TripListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Trip, 0, len(trips))
	for _, trip := range trips {
		data = append(data, newTrip(c, trip))
	}

	c.JSON(http.StatusOK, TripListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get trip
// @Description	Returns a specific trip
// @Tags			Trips
// @Produce		json
// @Success		200	{object}	TripResponse
// @Failure		400	{object}	TripResponse
// @Failure		404	{object}	TripResponse
// @Failure		500	{object}	TripResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/trips/{id} [get]
func GetTrip(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TripResponse{
			Error: &e,
		})
		return
	}

	trip, err := getTrip(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TripResponse{
			Error: &e,
		})
		return
	}

	apiResource := newTrip(c, trip)
	c.JSON(http.StatusOK, TripResponse{Data: &apiResource})
}

// @Summary		Update trip
// @Description	Updates an existing trip. Only values to be updated need to be specified.
// @Tags			Trips
// @Accept			json
// @Produce		json
// @Success		200		{object}	TripResponse
// @Failure		400		{object}	TripResponse
// @Failure		404		{object}	TripResponse
// @Failure		500		{object}	TripResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			trip	body		TripEditable	true	"Trip"
// @Router			/v1/trips/{id} [patch]
func UpdateTrip(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TripResponse{
			Error: &e,
		})
		return
	}

	trip, err := getTrip(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TripResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, TripEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TripResponse{
			Error: &e,
		})
		return
	}

	var data TripEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TripResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&trip).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TripResponse{
			Error: &e,
		})
		return
	}

	apiResource := newTrip(c, trip)
	c.JSON(http.StatusOK, TripResponse{Data: &apiResource})
}

// @Summary		Delete trip
// @Description	Deletes a trip
// @Tags			Trips
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/trips/{id} [delete]
func DeleteTrip(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	trip, err := getTrip(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&trip).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// getTrip returns the trip with this ID if it belongs to the caller's
// organization.
func getTrip(c *gin.Context, id uuid.UUID) (models.Trip, error) {
	identity := auth.IdentityFromContext(c)

	var trip models.Trip
	err := models.DB.
		Where(&models.Trip{OrganizationID: identity.OrganizationID}).
		First(&trip, id).Error
	if err != nil {
		return models.Trip{}, err
	}

	return trip, nil
}
