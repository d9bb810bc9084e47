package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/application/saleshistory"
	"github.com/sangkips/salesdesk-api/internal/application/service"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/events"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salesdesk-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SalesHistoryHandler handles sales history HTTP requests
type SalesHistoryHandler struct {
	salesHistoryService *service.SalesHistoryService
}

// NewSalesHistoryHandler creates a new sales history handler
func NewSalesHistoryHandler(salesHistoryService *service.SalesHistoryService) *SalesHistoryHandler {
	return &SalesHistoryHandler{salesHistoryService: salesHistoryService}
}

// OpenSession opens a sales history view and returns its first snapshot
func (h *SalesHistoryHandler) OpenSession(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.SalesFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	filter, err := toFilterRequest(req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	_, snap, err := h.salesHistoryService.Open(c.Request.Context(), service.OpenSessionInput{
		UserID:  *userID,
		Cashier: GetCashier(c),
		Filter:  filter,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sales history session opened", snap)
}

// GetSession returns the current snapshot of a session
func (h *SalesHistoryHandler) GetSession(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	h.respondSnapshot(c, view, "Sales history retrieved")
}

// SetFilter changes the range or payment method and reloads
func (h *SalesHistoryHandler) SetFilter(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	var req request.SalesFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	filter, err := toFilterRequest(req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := view.SetFilter(c.Request.Context(), filter); err != nil {
		response.Error(c, service.MapSalesHistoryError(err))
		return
	}
	h.respondSnapshot(c, view, "Filter applied")
}

// Search sets the free-text query. It applies after the debounce period.
func (h *SalesHistoryHandler) Search(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	var req request.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := view.Search(req.Query); err != nil {
		response.Error(c, service.MapSalesHistoryError(err))
		return
	}
	response.Accepted(c, "Search scheduled", gin.H{"query": req.Query})
}

// Sort selects a sort column, flipping direction when it is already active
func (h *SalesHistoryHandler) Sort(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	var req request.SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	key, err := saleshistory.ParseSortKey(req.Key)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := view.Sort(key); err != nil {
		response.Error(c, service.MapSalesHistoryError(err))
		return
	}
	h.respondSnapshot(c, view, "Sort applied")
}

// SetPage moves to a page of the list
func (h *SalesHistoryHandler) SetPage(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	var req request.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if _, err := view.GoToPage(req.Page); err != nil {
		response.Error(c, service.MapSalesHistoryError(err))
		return
	}
	h.respondSnapshot(c, view, "Page changed")
}

// Refresh reloads list and stats with the current filter
func (h *SalesHistoryHandler) Refresh(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	if err := view.Refresh(c.Request.Context()); err != nil {
		response.Error(c, service.MapSalesHistoryError(err))
		return
	}
	h.respondSnapshot(c, view, "Sales history refreshed")
}

// SetAutoRefresh toggles interval reloads of the session
func (h *SalesHistoryHandler) SetAutoRefresh(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	var req request.AutoRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := view.SetAutoRefresh(*req.Enabled); err != nil {
		response.Error(c, service.MapSalesHistoryError(err))
		return
	}
	h.respondSnapshot(c, view, "Auto refresh updated")
}

// GetTransaction opens a transaction's detail. When a later request
// replaced this one, superseded is true and the later detail is returned.
func (h *SalesHistoryHandler) GetTransaction(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	detail, superseded, err := view.OpenDetail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, service.MapSalesHistoryError(err))
		return
	}

	response.OK(c, "Transaction retrieved", gin.H{
		"transaction": detail,
		"superseded":  superseded,
	})
}

// CloseTransaction closes the open detail
func (h *SalesHistoryHandler) CloseTransaction(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	view.CloseDetail()
	response.NoContent(c)
}

// PrintReceipt prints the open transaction's receipt. When no printer can
// take it the receipt is returned as a PDF download.
func (h *SalesHistoryHandler) PrintReceipt(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	outcome, err := view.PrintReceipt(c.Request.Context())
	if err != nil {
		response.Error(c, service.MapSalesHistoryError(err))
		return
	}

	if outcome.Tier == saleshistory.TierDownload {
		if outcome.Notice != nil {
			c.Header("X-Receipt-Notice", outcome.Notice.Message)
		}
		response.Attachment(c, outcome.Filename, outcome.ContentType, outcome.Document)
		return
	}
	response.OK(c, "Receipt sent to printer", outcome)
}

// PreviewReceipt returns the open transaction's receipt as plain text
func (h *SalesHistoryHandler) PreviewReceipt(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	rendered, _, err := view.RenderReceipt(c.Request.Context())
	if err != nil {
		response.Error(c, service.MapSalesHistoryError(err))
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(rendered.Text()))
}

// Export downloads the filtered and sorted list as a spreadsheet
func (h *SalesHistoryHandler) Export(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	data, err := view.Export()
	if err != nil {
		response.Error(c, service.MapSalesHistoryError(err))
		return
	}

	filename := fmt.Sprintf("sales-history-%s.xlsx", time.Now().Format("20060102-150405"))
	response.Attachment(c, filename, xlsxContentType, data)
}

// CloseSession tears a session down
func (h *SalesHistoryHandler) CloseSession(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	sid, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		response.BadRequest(c, "Invalid session ID")
		return
	}

	if err := h.salesHistoryService.Close(sid, *userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// TransactionRecorded announces a committed sale so open sessions refresh
func (h *SalesHistoryHandler) TransactionRecorded(c *gin.Context) {
	var req request.TransactionRecordedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	id, err := uuid.Parse(req.TransactionID)
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}
	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		response.BadRequest(c, "Invalid total")
		return
	}

	evt := events.TransactionRecorded{
		TransactionID: id,
		Reference:     req.Reference,
		Total:         total,
		RecordedAt:    time.Now(),
	}
	if err := h.salesHistoryService.RecordTransaction(c.Request.Context(), evt); err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, "Event published", evt)
}

func (h *SalesHistoryHandler) view(c *gin.Context) (*saleshistory.View, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return nil, false
	}

	sid, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		response.BadRequest(c, "Invalid session ID")
		return nil, false
	}

	view, err := h.salesHistoryService.View(sid, *userID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return view, true
}

func (h *SalesHistoryHandler) respondSnapshot(c *gin.Context, view *saleshistory.View, message string) {
	snap, err := view.Snapshot()
	if err != nil {
		response.Error(c, service.MapSalesHistoryError(err))
		return
	}
	response.OK(c, message, snap)
}

func toFilterRequest(req request.SalesFilterRequest) (saleshistory.FilterRequest, error) {
	token, err := saleshistory.ParseRangeToken(req.Range)
	if err != nil {
		return saleshistory.FilterRequest{}, err
	}

	out := saleshistory.FilterRequest{Token: token}
	if token == saleshistory.RangeCustom {
		out.Start, out.End = req.StartDate, req.EndDate
	}
	if req.PaymentMethod != "" {
		pm, err := enum.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			return saleshistory.FilterRequest{}, apperror.NewBadRequestError(err.Error())
		}
		out.PaymentMethod = &pm
	}
	return out, nil
}
