// Inventory HTTP handlers.
//
// This file exposes REST endpoints for a store's own inventory ledger:
//   - POST   /inventory            (stock one unit in)
//   - POST   /inventory/checkout   (take one unit out)
//   - GET    /inventory            (list own rows, paginated)
//
// All routes require a valid store token; the acting store is taken from the
// authenticated context, never from the request body.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
	"github.com/pharmafind/go-pharmacy-backend/internal/http/middleware"
	"github.com/pharmafind/go-pharmacy-backend/internal/services"
	"github.com/pharmafind/go-pharmacy-backend/internal/utils"
)

//
// DTOs
//

// StockInRequest is the JSON payload for recording one incoming unit.
type StockInRequest struct {
	MedicineName string  `json:"medicineName" binding:"required,min=1,max=255" example:"Lisinopril"`
	BatchNumber  string  `json:"batchNumber" binding:"required,min=1,max=64" example:"B-2411"`
	Manufacturer string  `json:"manufacturer" binding:"required,min=1,max=255" example:"Acme Labs"`
	ExpiryDate   string  `json:"expiryDate" binding:"required" example:"2027-01-01"`
	Price        float64 `json:"price" binding:"min=0" example:"3.20"`
}

// CheckoutRequest is the JSON payload for taking one unit out.
type CheckoutRequest struct {
	MedicineName string `json:"medicineName" binding:"required,min=1,max=255" example:"Lisinopril"`
	BatchNumber  string `json:"batchNumber" binding:"required,min=1,max=64" example:"B-2411"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListInventoryResponse wraps a page of inventory rows and pagination
// information.
type ListInventoryResponse struct {
	Items      []domain.MedicineBatch `json:"items"`
	Pagination Pagination             `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// StockIn handles POST /inventory.
//
// Records one incoming unit for the authenticated store. The first unit of a
// (medicine, batch) pair creates the ledger row; later units increment it.
// Duplicate ledger rows under the same key are corruption and fail the
// request rather than being silently merged.
func (h *Handlers) StockIn(c *gin.Context) {
	var req StockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	row, err := h.invSvc.StockIn(c.Request.Context(), middleware.StoreIDFrom(c),
		strings.TrimSpace(req.MedicineName), strings.TrimSpace(req.BatchNumber),
		strings.TrimSpace(req.Manufacturer), strings.TrimSpace(req.ExpiryDate), req.Price)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateKey) {
			fail(c, http.StatusInternalServerError, ErrCodeDuplicateKey, err.Error())
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	ok(c, http.StatusCreated, row)
}

// Checkout handles POST /inventory/checkout.
//
// Removes one unit from the authenticated store's ledger. A medicine that
// was never stocked is a 404; a stocked-but-exhausted one is a 409 and the
// ledger is left unchanged.
func (h *Handlers) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	row, err := h.invSvc.Checkout(c.Request.Context(), middleware.StoreIDFrom(c),
		strings.TrimSpace(req.MedicineName), strings.TrimSpace(req.BatchNumber))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMedicineNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrInsufficientStock):
			fail(c, http.StatusConflict, ErrCodeInsufficientStock, err.Error())
		case errors.Is(err, services.ErrDuplicateKey):
			fail(c, http.StatusInternalServerError, ErrCodeDuplicateKey, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, row)
}

// ListInventory handles GET /inventory.
//
// Returns a page of the authenticated store's own ledger rows, ordered by
// medicine name then batch number.
func (h *Handlers) ListInventory(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.invSvc.ListPage(c.Request.Context(), middleware.StoreIDFrom(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListInventoryResponse{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
