package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fleetdeck/backend/internal/auth"
	"github.com/fleetdeck/backend/internal/httputil"
	"github.com/fleetdeck/backend/internal/models"
	"github.com/fleetdeck/backend/internal/permissions"
	"github.com/fleetdeck/backend/internal/types"
	fd_uuid "github.com/fleetdeck/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

func RegisterFinancialRecordRoutes(r *gin.RouterGroup) {
	read := auth.Require(permissions.FinanceRead)
	write := auth.Require(permissions.FinanceWrite)

	{
		r.OPTIONS("", OptionsFinancialRecords)
		r.GET("", read, GetFinancialRecords)
		r.POST("", write, CreateFinancialRecord)
	}
	{
		r.OPTIONS("/:id", read, OptionsFinancialRecordDetail)
		r.GET("/:id", read, GetFinancialRecord)
		r.PATCH("/:id", write, UpdateFinancialRecord)
		r.DELETE("/:id", write, DeleteFinancialRecord)
	}
	{
		r.OPTIONS("/:id/status", OptionsFinancialRecordStatus)
		r.PATCH("/:id/status", write, ToggleFinancialRecordStatus)
	}
}

type FinancialRecordEditable struct {
	Kind           models.RecordKind     `json:"kind" example:"payable"`                                                                                        // Is the record payable or receivable?
	Description    string                `json:"description" example:"Fleet insurance" default:""`                                                              // Description of the obligation
	Amount         decimal.Decimal       `json:"amount" example:"500" minimum:"0.00000001" maximum:"999999999999.99999999" multipleOf:"0.00000001" default:"0"` // Amount of every record of the series
	DueDate        time.Time             `json:"dueDate" example:"2024-01-10T00:00:00Z"`                                                                        // Due date, for a series the due date of the first record
	Status         models.RecordStatus   `json:"status" example:"pending" default:"pending"`                                                                    // Payment status
	CategoryID     uuid.UUID             `json:"categoryId" example:"f81566d9-af4d-4f13-9830-c62c4b5e4c7e"`                                                     // The category classifying the record
	SubcategoryID  *uuid.UUID            `json:"subcategoryId"`                                                                                                 // Optional subcategory
	RecurrenceMode models.RecurrenceMode `json:"recurrenceMode" example:"unique" default:"unique"`                                                              // How the submission expands into records
	TripID         *uuid.UUID            `json:"tripId"`                                                                                                        // Optional trip the record belongs to
}

// FinancialRecordCreate is the request body for creating records. The count
// only matters at creation time, it is not part of the editable fields.
type FinancialRecordCreate struct {
	FinancialRecordEditable
	Count int `json:"count" example:"12" default:"0"` // Number of records for installment and recurring submissions, -1 or omitted for an open-ended recurring series
}

// model returns the database resource for the API representation of the editable fields
func (editable FinancialRecordEditable) model() models.FinancialRecord {
	return models.FinancialRecord{
		Kind:           editable.Kind,
		Description:    editable.Description,
		Amount:         editable.Amount,
		DueDate:        editable.DueDate,
		Status:         editable.Status,
		CategoryID:     editable.CategoryID,
		SubcategoryID:  editable.SubcategoryID,
		RecurrenceMode: editable.RecurrenceMode,
		TripID:         editable.TripID,
	}
}

type FinancialRecordLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/financial-records/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`          // The record itself
	Category string `json:"category" example:"https://example.com/api/v1/categories/c1a96ae4-80e3-4827-8ed0-c7656f224fee"`             // The category of the record
	Series   string `json:"series" example:"https://example.com/api/v1/financial-records?series=372b9b23-d11b-442b-8csb-d41ca42342de"` // All records of the same series
}

type FinancialRecord struct {
	models.DefaultModel
	FinancialRecordEditable
	SeriesID        *uuid.UUID           `json:"seriesId"`        // Shared by all records generated from one submission, null for unique records
	OccurrenceIndex int                  `json:"occurrenceIndex"` // 1-based position in the series, 0 for unique records
	SeriesLength    int                  `json:"seriesLength"`    // Requested length of the series, -1 for open-ended series
	Overdue         bool                 `json:"overdue"`         // Derived: the record is pending and its due date has passed
	Links           FinancialRecordLinks `json:"links"`
}

// newFinancialRecord returns the API v1 representation of the resource
func newFinancialRecord(c *gin.Context, model models.FinancialRecord) FinancialRecord {
	url := c.GetString(string(models.DBContextURL))

	record := FinancialRecord{
		DefaultModel: model.DefaultModel,
		FinancialRecordEditable: FinancialRecordEditable{
			Kind:           model.Kind,
			Description:    model.Description,
			Amount:         model.Amount,
			DueDate:        model.DueDate,
			Status:         model.Status,
			CategoryID:     model.CategoryID,
			SubcategoryID:  model.SubcategoryID,
			RecurrenceMode: model.RecurrenceMode,
			TripID:         model.TripID,
		},
		SeriesID:        model.SeriesID,
		OccurrenceIndex: model.OccurrenceIndex,
		SeriesLength:    model.SeriesLength,
		Overdue:         model.Overdue(time.Now()),
		Links: FinancialRecordLinks{
			Self:     fmt.Sprintf("%s/v1/financial-records/%s", url, model.ID),
			Category: fmt.Sprintf("%s/v1/categories/%s", url, model.CategoryID),
		},
	}

	if model.SeriesID != nil {
		record.Links.Series = fmt.Sprintf("%s/v1/financial-records?series=%s", url, model.SeriesID)
	}

	return record
}

type FinancialRecordListResponse struct {
	Data       []FinancialRecord `json:"data"`                                                          // List of resources
	Error      *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination       `json:"pagination"`                                                    // Pagination information
}

type FinancialRecordCreateResponse struct {
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []FinancialRecord `json:"data"`                                                          // The created records, the whole series window for a series submission
}

type FinancialRecordResponse struct {
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *FinancialRecord `json:"data"`                                                          // The resource
}

type FinancialRecordQueryFilter struct {
	Kind              string          `form:"kind"`                                  // By kind
	Status            string          `form:"status"`                                // By status
	Overdue           bool            `form:"overdue" filterField:"false"`           // Only overdue records
	Description       string          `form:"description" filterField:"false"`       // By description
	Search            string          `form:"search" filterField:"false"`            // Search in the description
	CategoryID        fd_uuid.UUID    `form:"category"`                              // By category ID
	SubcategoryID     fd_uuid.UUID    `form:"subcategory" filterField:"false"`       // By subcategory ID
	SeriesID          fd_uuid.UUID    `form:"series" filterField:"false"`            // By series ID
	TripID            fd_uuid.UUID    `form:"trip" filterField:"false"`              // By trip ID
	RecurrenceMode    string          `form:"recurrenceMode"`                        // By recurrence mode
	FromMonth         string          `form:"fromMonth" filterField:"false"`         // Records due in this and later months
	UntilMonth        string          `form:"untilMonth" filterField:"false"`        // Records due in this and earlier months
	Amount            decimal.Decimal `form:"amount"`                                // Exact amount
	AmountLessOrEqual decimal.Decimal `form:"amountLessOrEqual" filterField:"false"` // Amount less than or equal to this
	AmountMoreOrEqual decimal.Decimal `form:"amountMoreOrEqual" filterField:"false"` // Amount more than or equal to this
	Offset            uint            `form:"offset" filterField:"false"`            // The offset of the first record returned. Defaults to 0.
	Limit             int             `form:"limit" filterField:"false"`             // Maximum number of records to return. Defaults to 50.
}

func (f FinancialRecordQueryFilter) model() models.FinancialRecord {
	// The string fields are handled in the controller function
	return models.FinancialRecord{
		Kind:           models.RecordKind(f.Kind),
		Status:         models.RecordStatus(f.Status),
		CategoryID:     f.CategoryID.UUID,
		RecurrenceMode: models.RecurrenceMode(f.RecurrenceMode),
		Amount:         f.Amount,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			FinancialRecords
// @Success		204
// @Router			/v1/financial-records [options]
func OptionsFinancialRecords(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			FinancialRecords
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/financial-records/{id} [options]
func OptionsFinancialRecordDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = getFinancialRecord(c, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			FinancialRecords
// @Success		204
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/financial-records/{id}/status [options]
func OptionsFinancialRecordStatus(c *gin.Context) {
	httputil.OptionsPatch(c)
}

// @Summary		Create financial records
// @Description	Creates the financial records for a submitted obligation. A unique submission creates one record, an installment submission all its records and a recurring submission the first window of its series.
// @Tags			FinancialRecords
// @Produce		json
// @Success		201		{object}	FinancialRecordCreateResponse
// @Failure		400		{object}	FinancialRecordCreateResponse
// @Failure		404		{object}	FinancialRecordCreateResponse
// @Failure		500		{object}	FinancialRecordCreateResponse
// @Param			record	body		FinancialRecordCreate	true	"FinancialRecord"
// @Router			/v1/financial-records [post]
func CreateFinancialRecord(c *gin.Context) {
	var create FinancialRecordCreate

	err := httputil.BindData(c, &create)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordCreateResponse{
			Error: &e,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	record := create.model()
	record.OrganizationID = identity.OrganizationID
	if record.RecurrenceMode == "" {
		record.RecurrenceMode = models.RecurrenceUnique
	}

	// When no category is set, try to derive one from the description via
	// the organization's category rules.
	if record.CategoryID == uuid.Nil {
		rule, err := models.MatchCategoryRule(models.DB, identity.OrganizationID, record.Description)
		if err == nil && rule != nil {
			record.CategoryID = rule.CategoryID
			if record.SubcategoryID == nil {
				record.SubcategoryID = rule.SubcategoryID
			}
		}
	}

	records, err := models.CreateFinancialRecords(models.DB, record, create.Count)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordCreateResponse{
			Error: &e,
		})
		return
	}

	data := make([]FinancialRecord, 0, len(records))
	for _, r := range records {
		data = append(data, newFinancialRecord(c, r))
	}

	c.JSON(http.StatusCreated, FinancialRecordCreateResponse{Data: data})
}

// @Summary		Get financial records
// @Description	Returns a list of financial records. Before the list is computed, recurring series that are running low on future records are extended.
// @Tags			FinancialRecords
// @Produce		json
// @Success		200	{object}	FinancialRecordListResponse
// @Failure		400	{object}	FinancialRecordListResponse
// @Failure		500	{object}	FinancialRecordListResponse
// @Router			/v1/financial-records [get]
// @Param			kind				query	string	false	"Filter by kind"
// @Param			status				query	string	false	"Filter by status"
// @Param			overdue				query	bool	false	"Only pending records with a due date in the past"
// @Param			description			query	string	false	"Filter by description"
// @Param			search				query	string	false	"Search for this text in the description"
// @Param			category			query	string	false	"Filter by category ID"
// @Param			subcategory			query	string	false	"Filter by subcategory ID"
// @Param			series				query	string	false	"Filter by series ID"
// @Param			trip				query	string	false	"Filter by trip ID"
// @Param			recurrenceMode		query	string	false	"Filter by recurrence mode"
// @Param			fromMonth			query	string	false	"Records due in this and later months"
// @Param			untilMonth			query	string	false	"Records due in this and earlier months"
// @Param			amount				query	string	false	"Filter by amount"
// @Param			amountLessOrEqual	query	string	false	"Amount less than or equal to this"
// @Param			amountMoreOrEqual	query	string	false	"Amount more than or equal to this"
// @Param			offset				query	uint	false	"The offset of the first record returned. Defaults to 0."
// @Param			limit				query	int		false	"Maximum number of records to return. Defaults to 50."
func GetFinancialRecords(c *gin.Context) {
	var filter FinancialRecordQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, FinancialRecordListResponse{
			Error: &s,
		})
		return
	}

	identity := auth.IdentityFromContext(c)

	// Extend recurring series that are running low before reading. This is
	// what keeps open-ended series materialized without a background job.
	models.ExtendRecurringSeries(models.DB, identity.OrganizationID, time.Now())

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Where(&models.FinancialRecord{OrganizationID: identity.OrganizationID}).
		Order("date(financial_records.due_date) ASC, financial_records.description ASC").
		Where(&where, queryFields...)

	if filter.Description != "" {
		q = q.Where("description LIKE ?", fmt.Sprintf("%%%s%%", filter.Description))
	} else if slices.Contains(setFields, "Description") {
		q = q.Where("description = ''")
	}

	if filter.Search != "" {
		q = q.Where("description LIKE ?", fmt.Sprintf("%%%s%%", filter.Search))
	}

	if filter.SubcategoryID != fd_uuid.Nil {
		q = q.Where("subcategory_id = ?", filter.SubcategoryID.UUID)
	}

	if filter.SeriesID != fd_uuid.Nil {
		q = q.Where("series_id = ?", filter.SeriesID.UUID)
	}

	if filter.TripID != fd_uuid.Nil {
		q = q.Where("trip_id = ?", filter.TripID.UUID)
	}

	if filter.Overdue {
		q = q.Where("status = ?", models.StatusPending).Where("date(due_date) < date(?)", time.Now().In(time.UTC))
	}

	if filter.FromMonth != "" {
		fromMonth, e := types.ParseMonth(filter.FromMonth)
		if e != nil {
			s := e.Error()
			c.JSON(http.StatusBadRequest, FinancialRecordListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("date(due_date) >= date(?)", fromMonth)
	}

	if filter.UntilMonth != "" {
		untilMonth, e := types.ParseMonth(filter.UntilMonth)
		if e != nil {
			s := e.Error()
			c.JSON(http.StatusBadRequest, FinancialRecordListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("date(due_date) < date(?)", untilMonth.AddDate(0, 1))
	}

	if !filter.AmountLessOrEqual.IsZero() {
		q = q.Where("amount <= ?", filter.AmountLessOrEqual)
	}

	if !filter.AmountMoreOrEqual.IsZero() {
		q = q.Where("amount >= ?", filter.AmountMoreOrEqual)
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 records and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var records []models.FinancialRecord
	err := q.Find(&records).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FinancialRecordListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordListResponse{
			Error: &e,
		})
		return
	}

	data := make([]FinancialRecord, 0, len(records))
	for _, record := range records {
		data = append(data, newFinancialRecord(c, record))
	}

	c.JSON(http.StatusOK, FinancialRecordListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get financial record
// @Description	Returns a specific financial record
// @Tags			FinancialRecords
// @Produce		json
// @Success		200	{object}	FinancialRecordResponse
// @Failure		400	{object}	FinancialRecordResponse
// @Failure		404	{object}	FinancialRecordResponse
// @Failure		500	{object}	FinancialRecordResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/financial-records/{id} [get]
func GetFinancialRecord(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordResponse{
			Error: &e,
		})
		return
	}

	record, err := getFinancialRecord(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordResponse{
			Error: &e,
		})
		return
	}

	apiResource := newFinancialRecord(c, record)
	c.JSON(http.StatusOK, FinancialRecordResponse{Data: &apiResource})
}

// @Summary		Update financial record
// @Description	Updates an existing financial record. Only values to be updated need to be specified. Changing a record never affects its series siblings.
// @Tags			FinancialRecords
// @Accept			json
// @Produce		json
// @Success		200		{object}	FinancialRecordResponse
// @Failure		400		{object}	FinancialRecordResponse
// @Failure		404		{object}	FinancialRecordResponse
// @Failure		500		{object}	FinancialRecordResponse
// @Param			id		path		URIID					true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			record	body		FinancialRecordEditable	true	"FinancialRecord"
// @Router			/v1/financial-records/{id} [patch]
func UpdateFinancialRecord(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordResponse{
			Error: &e,
		})
		return
	}

	record, err := getFinancialRecord(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, FinancialRecordEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordResponse{
			Error: &e,
		})
		return
	}

	var data FinancialRecordEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&record).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordResponse{
			Error: &e,
		})
		return
	}

	apiResource := newFinancialRecord(c, record)
	c.JSON(http.StatusOK, FinancialRecordResponse{Data: &apiResource})
}

// @Summary		Toggle payment status
// @Description	Flips the record between paid and pending. Series siblings are never affected.
// @Tags			FinancialRecords
// @Produce		json
// @Success		200	{object}	FinancialRecordResponse
// @Failure		400	{object}	FinancialRecordResponse
// @Failure		404	{object}	FinancialRecordResponse
// @Failure		500	{object}	FinancialRecordResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/financial-records/{id}/status [patch]
func ToggleFinancialRecordStatus(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordResponse{
			Error: &e,
		})
		return
	}

	record, err := getFinancialRecord(c, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordResponse{
			Error: &e,
		})
		return
	}

	err = record.ToggleStatus(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), FinancialRecordResponse{
			Error: &e,
		})
		return
	}

	apiResource := newFinancialRecord(c, record)
	c.JSON(http.StatusOK, FinancialRecordResponse{Data: &apiResource})
}

// @Summary		Delete financial record
// @Description	Deletes a financial record
// @Tags			FinancialRecords
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/financial-records/{id} [delete]
func DeleteFinancialRecord(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	record, err := getFinancialRecord(c, uri.ID.UUID)
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

// getFinancialRecord returns the record with this ID if it belongs to the
// caller's organization.
func getFinancialRecord(c *gin.Context, id uuid.UUID) (models.FinancialRecord, error) {
	identity := auth.IdentityFromContext(c)

	var record models.FinancialRecord
	err := models.DB.
		Where(&models.FinancialRecord{OrganizationID: identity.OrganizationID}).
		First(&record, id).Error
	if err != nil {
		return models.FinancialRecord{}, err
	}

	return record, nil
}
