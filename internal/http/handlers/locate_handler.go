// Prescription HTTP handlers.
//
// This file exposes REST endpoints for prescription analysis:
//   - POST /prescriptions/locate     (photo -> minimal covering store set)
//   - POST /prescriptions/medicines  (photo -> extracted medication names)
//
// Both endpoints take the prescription image inline as base64; the declared
// image name keys the analysis result caches, so resubmitting the same named
// image does not re-run the external analyzers.
package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pharmafind/go-pharmacy-backend/internal/analysis"
	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
)

//
// DTOs
//

// PrescriptionRequest is the JSON payload carrying a prescription image.
type PrescriptionRequest struct {
	// ImageName is the client-declared document name; identical names must
	// denote identical images for analysis caching to be sound.
	ImageName string `json:"imageName" binding:"required,min=1,max=255" example:"rx-2024-0117.jpg"`
	// ImageData is the base64-encoded image bytes.
	ImageData string `json:"imageData" binding:"required" example:"iVBORw0KGgo..."`
}

// LocateResponse is the coverage answer for a prescription.
type LocateResponse struct {
	// Medicines lists the extracted medication names, sorted.
	Medicines []string `json:"medicines"`
	// Stores is the selected store set, in selection order.
	Stores []domain.Store `json:"stores"`
	// NotFound lists required medicines no store currently stocks.
	NotFound []string `json:"notFound"`
	// Partial indicates the stores cover only part of the prescription.
	Partial bool `json:"partial"`
}

// MedicinesResponse lists the medication names extracted from an image.
type MedicinesResponse struct {
	Medicines []string `json:"medicines"`
}

//
// Helpers
//

// decodePrescription binds and base64-decodes the request, failing the Gin
// context itself on error. A nil byte slice signals the caller to return.
func decodePrescription(c *gin.Context) (string, []byte, bool) {
	var req PrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return "", nil, false
	}
	data, err := base64.StdEncoding.DecodeString(req.ImageData)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "imageData must be base64")
		return "", nil, false
	}
	if len(data) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "imageData must not be empty")
		return "", nil, false
	}
	return strings.TrimSpace(req.ImageName), data, true
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

//
// Handlers
//

// LocateStores handles POST /prescriptions/locate.
//
// Runs the full pipeline: extract medication names from the image, then
// resolve a small store set covering them. A fully covered prescription
// returns 200; a partially covered one (unstocked medicines or stale store
// references) returns 206 with the uncovered names listed.
func (h *Handlers) LocateStores(c *gin.Context) {
	name, data, okReq := decodePrescription(c)
	if !okReq {
		return
	}
	ctx := c.Request.Context()

	meds, err := h.extractSvc.MedicationNames(ctx, name, data)
	if err != nil {
		if errors.Is(err, analysis.ErrAnalysis) {
			fail(c, http.StatusBadGateway, ErrCodeAnalysisFailed, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	res, err := h.coverSvc.Locate(ctx, meds)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	status := http.StatusOK
	if res.Partial {
		status = http.StatusPartialContent
	}
	ok(c, status, LocateResponse{
		Medicines: sortedNames(meds),
		Stores:    res.Stores,
		NotFound:  res.NotFound,
		Partial:   res.Partial,
	})
}

// ExtractMedicines handles POST /prescriptions/medicines.
//
// Runs only the extraction half of the pipeline, returning the medication
// names recognized in the image without touching the inventory ledger.
// Useful for clients that want the patient to confirm the reading before
// locating stores.
func (h *Handlers) ExtractMedicines(c *gin.Context) {
	name, data, okReq := decodePrescription(c)
	if !okReq {
		return
	}

	meds, err := h.extractSvc.MedicationNames(c.Request.Context(), name, data)
	if err != nil {
		if errors.Is(err, analysis.ErrAnalysis) {
			fail(c, http.StatusBadGateway, ErrCodeAnalysisFailed, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, MedicinesResponse{Medicines: sortedNames(meds)})
}
