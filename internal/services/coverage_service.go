// Package services – CoverageService
//
// Given a set of required medicine names, the coverage resolver answers
// "which stores should the patient visit". It queries the ledger's medicine
// index, then runs a greedy set-cover pass over the per-store availability
// sets. Greedy set cover is a heuristic: it is deterministic here but not
// guaranteed minimal for adversarial inputs.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
	"github.com/pharmafind/go-pharmacy-backend/internal/repo"
)

// CoverageResult is the outcome of a locate query.
type CoverageResult struct {
	// Stores is the selected store set, in selection order.
	Stores []domain.Store

	// NotFound lists required medicines no store currently stocks.
	NotFound []string

	// Partial is true when the result covers only part of the request,
	// either because a medicine is unstocked or because a ledger row
	// references a store that no longer exists in the registry.
	Partial bool
}

// CoverageService resolves medicine requirements to store sets.
type CoverageService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Locate finds a small set of registered stores that together stock every
// required medicine. Medicines nobody stocks are reported in NotFound and
// the result is marked partial rather than failing the whole query.
func (s *CoverageService) Locate(ctx context.Context, required map[string]struct{}) (*CoverageResult, error) {
	tr := otel.Tracer("services/CoverageService")
	ctx, span := tr.Start(ctx, "Locate",
		trace.WithAttributes(attribute.Int("medicines.count", len(required))),
	)
	defer span.End()

	res := &CoverageResult{Stores: []domain.Store{}, NotFound: []string{}}
	if len(required) == 0 {
		return res, nil
	}

	// Availability sets: store id -> set of required medicines it stocks.
	uncovered := make(map[string]struct{}, len(required))
	byStore := make(map[string]map[string]struct{})
	for raw := range required {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		uncovered[name] = struct{}{}

		rows, err := repo.FindBatchesByMedicineName(ctx, s.DB, name)
		if err != nil {
			return nil, err
		}
		stocked := false
		for _, row := range rows {
			if row.Quantity <= 0 {
				continue
			}
			stocked = true
			set, ok := byStore[row.StoreID]
			if !ok {
				set = make(map[string]struct{})
				byStore[row.StoreID] = set
			}
			set[name] = struct{}{}
		}
		if !stocked {
			res.NotFound = append(res.NotFound, name)
			res.Partial = true
			delete(uncovered, name)
		}
	}
	sort.Strings(res.NotFound)

	// Greedy pass: repeatedly pick the store covering the most uncovered
	// medicines. Ties break on the lexicographically smallest store id so
	// the result is reproducible run to run.
	storeIDs := make([]string, 0, len(byStore))
	for id := range byStore {
		storeIDs = append(storeIDs, id)
	}
	sort.Strings(storeIDs)

	var selected []string
	for len(uncovered) > 0 {
		best := ""
		bestGain := 0
		for _, id := range storeIDs {
			gain := 0
			for name := range byStore[id] {
				if _, ok := uncovered[name]; ok {
					gain++
				}
			}
			if gain > bestGain {
				best, bestGain = id, gain
			}
		}
		if bestGain == 0 {
			break
		}
		selected = append(selected, best)
		for name := range byStore[best] {
			delete(uncovered, name)
		}
	}

	for _, id := range selected {
		store, err := repo.GetStore(ctx, s.DB, id)
		if err != nil {
			// A ledger row can outlive its store registration. Skip the
			// stale reference and degrade to a partial answer.
			if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrDuplicateRow) {
				res.Partial = true
				continue
			}
			return nil, err
		}
		res.Stores = append(res.Stores, *store)
	}
	span.SetAttributes(
		attribute.Int("stores.selected", len(res.Stores)),
		attribute.Bool("partial", res.Partial),
	)
	return res, nil
}
