// Store registry HTTP handlers.
//
// This file exposes REST endpoints for store resources:
//   - POST   /stores              (register, returns the store and its token)
//   - POST   /auth/login          (credential check, reissues the token)
//   - GET    /stores/{name}       (public lookup by display name)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
	"github.com/pharmafind/go-pharmacy-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// StoreService defines store registry operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type StoreService interface {
	// Register creates a store and issues its first token.
	Register(ctx context.Context, in services.RegisterInput) (*domain.Store, string, error)
	// Login verifies a credential by email and reissues the token.
	Login(ctx context.Context, email, password string) (*domain.Store, string, error)
	// Get resolves a store by display name.
	Get(ctx context.Context, storeName string) (*domain.Store, error)
}

// InventoryService defines stock mutations and inventory queries.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type InventoryService interface {
	// StockIn records one incoming unit of a medicine batch.
	StockIn(ctx context.Context, storeID, medicineName, batchNumber, manufacturer, expiryDate string, price float64) (*domain.MedicineBatch, error)
	// Checkout removes one unit of a medicine batch.
	Checkout(ctx context.Context, storeID, medicineName, batchNumber string) (*domain.MedicineBatch, error)
	// ListPage returns a page of a store's inventory rows and the total count.
	ListPage(ctx context.Context, storeID string, page, pageSize int) ([]domain.MedicineBatch, int64, error)
}

// ExtractionService turns a named prescription document into the set of
// canonical medication names it mentions.
type ExtractionService interface {
	MedicationNames(ctx context.Context, documentName string, document []byte) (map[string]struct{}, error)
}

// CoverageService resolves medicine requirements to store sets.
type CoverageService interface {
	Locate(ctx context.Context, required map[string]struct{}) (*services.CoverageResult, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for stores, inventory, and prescriptions.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	storeSvc   StoreService
	invSvc     InventoryService
	extractSvc ExtractionService
	coverSvc   CoverageService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(storeSvc StoreService, invSvc InventoryService, extractSvc ExtractionService, coverSvc CoverageService) *Handlers {
	return &Handlers{storeSvc: storeSvc, invSvc: invSvc, extractSvc: extractSvc, coverSvc: coverSvc}
}

//
// DTOs
//

// RegisterStoreRequest is the JSON payload for registering a store.
type RegisterStoreRequest struct {
	StoreName     string `json:"storeName" binding:"required,min=1,max=255" example:"Central Pharmacy"`
	Email         string `json:"email" binding:"required" example:"central@example.com"`
	Password      string `json:"password" binding:"required,min=8" example:"s3cret-pass"`
	ContactNumber string `json:"contactNumber" binding:"required" example:"555-0100"`
	Latitude      string `json:"latitude" binding:"required" example:"37.9838"`
	Longitude     string `json:"longitude" binding:"required" example:"23.7275"`
}

// LoginRequest is the JSON payload for a store login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"central@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// AuthResponse wraps a store resource with its freshly issued token.
type AuthResponse struct {
	Store *domain.Store `json:"store"`
	Token string        `json:"token"`
}

//
// Handlers
//

// RegisterStore handles POST /stores.
//
// Creates a pharmacy store account and returns the store resource together
// with its first signed token. Name collisions (case- and space-insensitive)
// and email collisions are reported as conflicts.
func (h *Handlers) RegisterStore(c *gin.Context) {
	var req RegisterStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	store, token, err := h.storeSvc.Register(c.Request.Context(), services.RegisterInput{
		StoreName:     strings.TrimSpace(req.StoreName),
		Email:         req.Email,
		Password:      req.Password,
		ContactNumber: req.ContactNumber,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail):
			fail(c, http.StatusBadRequest, ErrCodeInvalidEmail, err.Error())
		case errors.Is(err, services.ErrStoreExists), errors.Is(err, services.ErrEmailExists):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, AuthResponse{Store: store, Token: token})
}

// Login handles POST /auth/login.
//
// Verifies the store credential and reissues the token; the previous token
// row is replaced. An unknown email and a wrong password produce the same
// response.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	store, token, err := h.storeSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, AuthResponse{Store: store, Token: token})
}

// GetStore handles GET /stores/{name}.
//
// Public lookup by display name; resolution goes through the derived
// case-insensitive identifier, so "Central Pharmacy" and "central PHARMACY"
// find the same store.
func (h *Handlers) GetStore(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "store name required")
		return
	}

	store, err := h.storeSvc.Get(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrStoreNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "store not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, store)
}
