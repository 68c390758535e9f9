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

func RegisterMaintenanceRecordRoutes(r *gin.RouterGroup) {
	read := auth.Require(permissions.MaintenanceRead)
	write := auth.Require(permissions.MaintenanceWrite)

	{
		r.OPTIONS("", OptionsMaintenanceRecords)
		r.GET("", read, GetMaintenanceRecords)
		r.POST("", write, CreateMaintenanceRecords)
	}
	{
		r.OPTIONS("/:id", read, OptionsMaintenanceRecordDetail)
		r.GET("/:id", read, GetMaintenanceRecord)
		r.PATCH("/:id", write, UpdateMaintenanceRecord)
		r.DELETE("/:id", write, DeleteMaintenanceRecord)
	}
}

type MaintenanceRecordEditable struct {
	VehicleID   uuid.UUID       `json:"vehicleId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`                                                    // The vehicle the maintenance was performed on
	Description string          `json:"description" example:"Brake pad replacement"`                                                                 // What was done
	Cost        decimal.Decimal `json:"cost" example:"850" minimum:"0.00000001" maximum:"999999999999.99999999" multipleOf:"0.00000001" default:"0"` // Cost of the maintenance
	Date        time.Time       `json:"date" example:"2024-01-20T00:00:00Z"`                                                                         // When the maintenance was performed
	Odometer    int             `json:"odometer" example:"108000" default:"0"`                                                                       // Odometer reading at the time of the maintenance
	Note        string          `json:"note" example:"Front axle only" default:""`                                                                   // Note about the maintenance
}

// model returns the database resource for the API representation of the editable fields
func (editable MaintenanceRecordEditable) model() models.MaintenanceRecord {
	return models.MaintenanceRecord{
		VehicleID:   editable.VehicleID,
		Description: editable.Description,
		Cost:        editable.Cost,
		Date:        editable.Date,
		Odometer:    editable.Odometer,
		Note:        editable.Note,
	}
}

type MaintenanceRecordLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/maintenance/1521876c-cd0c-4650-a2ca-ceb0b9f80e26"` // The maintenance record itself
	Vehicle string `json:"vehicle" example:"https://example.com/api/v1/vehicles/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"` // The vehicle the maintenance was performed on
}

type MaintenanceRecord struct {
	models.DefaultModel
	MaintenanceRecordEditable
	Links MaintenanceRecordLinks `json:"links"`
}

// newMaintenanceRecord returns the API v1 representation of the resource
func newMaintenanceRecord(c *gin.Context, model models.MaintenanceRecord) MaintenanceRecord {
	url := c.GetString(string(models.DBContextURL))

	return MaintenanceRecord{
		DefaultModel: model.DefaultModel,
		MaintenanceRecordEditable: MaintenanceRecordEditable{
			VehicleID:   model.VehicleID,
			Description: model.Description,
			Cost:        model.Cost,
			Date:        model.Date,
			Odometer:    model.Odometer,
			Note:        model.Note,
		},
		Links: MaintenanceRecordLinks{
			Self:    fmt.Sprintf("%s/v1/maintenance/%s", url, model.ID),
			Vehicle: fmt.Sprintf("%s/v1/vehicles/%s", url, model.VehicleID),
		},
	}
}

type MaintenanceRecordListResponse struct {
	Data       []MaintenanceRecord `json:"data"`                                                          // List of resources
	Error      *string             `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination         `json:"pagination"`                                                    // Pagination information
}

type MaintenanceRecordCreateResponse struct {
	Error *string                     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []MaintenanceRecordResponse `json:"data"`                                                          // List of created resources
}

func (t *MaintenanceRecordCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, MaintenanceRecordResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		currentStatus = newStatus
	}

	return currentStatus
}

type MaintenanceRecordResponse struct {
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *MaintenanceRecord `json:"data"`                                                          // The resource
}

type MaintenanceRecordQueryFilter struct {
	VehicleID       fd_uuid.UUID    `form:"vehicle"`                             // By vehicle ID
	Description     string          `form:"description" filterField:"false"`     // By description
	Note            string          `form:"note" filterField:"false"`            // By note
	Search          string          `form:"search" filterField:"false"`          // By string in description or note
	FromDate        string          `form:"fromDate" filterField:"false"`        // Maintenance performed at or after this date (RFC 3339)
	UntilDate       string          `form:"untilDate" filterField:"false"`       // Maintenance performed at or before this date (RFC 3339)
	Cost            decimal.Decimal `form:"cost"`                                // Exact cost
	CostLessOrEqual decimal.Decimal `form:"costLessOrEqual" filterField:"false"` // Cost less than or equal to this
	CostMoreOrEqual decimal.Decimal `form:"costMoreOrEqual" filterField:"false"` // Cost more than or equal to this
	Offset          uint            `form:"offset" filterField:"false"`          // The offset of the first record returned. Defaults to 0.
	Limit           int             `form:"limit" filterField:"false"`           // Maximum number of records to return. Defaults to 50.
}

func (f MaintenanceRecordQueryFilter) model() models.MaintenanceRecord {
	return models.MaintenanceRecord{
		VehicleID: f.VehicleID.UUID,
		Cost:      f.Cost,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Maintenance
// @Success		204
// @Router			/v1/maintenance [options]
func OptionsMaintenanceRecords(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Maintenance
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/maintenance/{id} [options]
func OptionsMaintenanceRecordDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = getMaintenanceRecord(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create maintenance records
// @Description	Creates new maintenance records
// @Tags			Maintenance
// @Produce		json
// @Success		201		{object}	MaintenanceRecordCreateResponse
// @Failure		400		{object}	MaintenanceRecordCreateResponse
// @Failure		404		{object}	MaintenanceRecordCreateResponse
// @Failure		500		{object}	MaintenanceRecordCreateResponse
// @Param			records	body		[]MaintenanceRecordEditable	true	"MaintenanceRecords"
// @Router			/v1/maintenance [post]
func CreateMaintenanceRecords(c *gin.Context) {
	var editables []MaintenanceRecordEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MaintenanceRecordCreateResponse{
			Error: &e,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := MaintenanceRecordCreateResponse{}

	for _, editable := range editables {
		record := editable.model()
		record.OrganizationID = identity.OrganizationID

		err := models.DB.Create(&record).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newMaintenanceRecord(c, record)
		r.Data = append(r.Data, MaintenanceRecordResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Get maintenance records
// @Description	Returns a list of maintenance records
// @Tags			Maintenance
// @Produce		json
// @Success		200	{object}	MaintenanceRecordListResponse
// @Failure		400	{object}	MaintenanceRecordListResponse
// @Failure		500	{object}	MaintenanceRecordListResponse
// @Router			/v1/maintenance [get]
// @Param			vehicle			query	string	false	"Filter by vehicle ID"
// @Param			description		query	string	false	"Filter by description"
// @Param			note			query	string	false	"Filter by note"
// @Param			search			query	string	false	"Search for this text in description and note"
// @Param			fromDate		query	string	false	"Maintenance performed at or after this date (RFC 3339)"
// @Param			untilDate		query	string	false	"Maintenance performed at or before this date (RFC 3339)"
// @Param			cost			query	string	false	"Filter by cost"
// @Param			costLessOrEqual	query	string	false	"Cost less than or equal to this"
// @Param			costMoreOrEqual	query	string	false	"Cost more than or equal to this"
// @Param			offset			query	uint	false	"The offset of the first record returned. Defaults to 0."
// @Param			limit			query	int		false	"Maximum number of records to return. Defaults to 50."
func GetMaintenanceRecords(c *gin.Context) {
	var filter MaintenanceRecordQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, MaintenanceRecordListResponse{
			Error: &s,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Where(&models.MaintenanceRecord{OrganizationID: identity.OrganizationID}).
		Order("date DESC").
		Where(&where, queryFields...)

	if filter.Description != "" {
		q = q.Where("description LIKE ?", fmt.Sprintf("%%%s%%", filter.Description))
	} else if slices.Contains(setFields, "Description") {
		q = q.Where("description = ''")
	}

	if filter.Note != "" {
		q = q.Where("note LIKE ?", fmt.Sprintf("%%%s%%", filter.Note))
	} else if slices.Contains(setFields, "Note") {
		q = q.Where("note = ''")
	}

	if filter.Search != "" {
		search := fmt.Sprintf("%%%s%%", filter.Search)
		q = q.Where("description LIKE ? OR note LIKE ?", search, search)
	}

	if filter.FromDate != "" {
		fromDate, e := time.Parse(time.RFC3339, filter.FromDate)
		if e != nil {
			s := e.Error()
			c.JSON(http.StatusBadRequest, MaintenanceRecordListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("date >= ?", fromDate)
	}

	if filter.UntilDate != "" {
		untilDate, e := time.Parse(time.RFC3339, filter.UntilDate)
		if e != nil {
			s := e.Error()
			c.JSON(http.StatusBadRequest, MaintenanceRecordListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("date <= ?", untilDate)
	}

	if !filter.CostLessOrEqual.IsZero() {
		q = q.Where("cost <= ?", filter.CostLessOrEqual)
	}

	if !filter.CostMoreOrEqual.IsZero() {
		q = q.Where("cost >= ?", filter.CostMoreOrEqual)
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 records and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var records []models.MaintenanceRecord
	err := q.Find(&records).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MaintenanceRecordListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MaintenanceRecordListResponse{
			Error: &e,
		})
		return
	}

	data := make([]MaintenanceRecord, 0, len(records))
	for _, record := range records {
		data = append(data, newMaintenanceRecord(c, record))
	}

	c.JSON(http.StatusOK, MaintenanceRecordListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get maintenance record
// @Description	Returns a specific maintenance record
// @Tags			Maintenance
// @Produce		json
// @Success		200	{object}	MaintenanceRecordResponse
// @Failure		400	{object}	MaintenanceRecordResponse
// @Failure		404	{object}	MaintenanceRecordResponse
// @Failure		500	{object}	MaintenanceRecordResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/maintenance/{id} [get]
func GetMaintenanceRecord(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MaintenanceRecordResponse{
			Error: &e,
		})
		return
	}

	record, err := getMaintenanceRecord(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MaintenanceRecordResponse{
			Error: &e,
		})
		return
	}

	apiResource := newMaintenanceRecord(c, record)
	c.JSON(http.StatusOK, MaintenanceRecordResponse{Data: &apiResource})
}

// @Summary		Update maintenance record
// @Description	Updates an existing maintenance record. Only values to be updated need to be specified.
// @Tags			Maintenance
// @Accept			json
// @Produce		json
// @Success		200		{object}	MaintenanceRecordResponse
// @Failure		400		{object}	MaintenanceRecordResponse
// @Failure		404		{object}	MaintenanceRecordResponse
// @Failure		500		{object}	MaintenanceRecordResponse
// @Param			id		path		URIID						true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			record	body		MaintenanceRecordEditable	true	"MaintenanceRecord"
// @Router			/v1/maintenance/{id} [patch]
func UpdateMaintenanceRecord(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MaintenanceRecordResponse{
			Error: &e,
		})
		return
	}

	record, err := getMaintenanceRecord(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MaintenanceRecordResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, MaintenanceRecordEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MaintenanceRecordResponse{
			Error: &e,
		})
		return
	}

	var data MaintenanceRecordEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MaintenanceRecordResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&record).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MaintenanceRecordResponse{
			Error: &e,
		})
		return
	}

	apiResource := newMaintenanceRecord(c, record)
	c.JSON(http.StatusOK, MaintenanceRecordResponse{Data: &apiResource})
}

// @Summary		Delete maintenance record
// @Description	Deletes a maintenance record
// @Tags			Maintenance
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/maintenance/{id} [delete]
func DeleteMaintenanceRecord(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	record, err := getMaintenanceRecord(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&record).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// getMaintenanceRecord returns the maintenance record with this ID if it
// belongs to the caller's organization.
func getMaintenanceRecord(c *gin.Context, id uuid.UUID) (models.MaintenanceRecord, error) {
	identity := auth.IdentityFromContext(c)

	var record models.MaintenanceRecord
	err := models.DB.
		Where(&models.MaintenanceRecord{OrganizationID: identity.OrganizationID}).
		First(&record, id).Error
	if err != nil {
		return models.MaintenanceRecord{}, err
	}

	return record, nil
}
