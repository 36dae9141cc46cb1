// Package services – ExtractionService
//
// This file implements the medication extraction pipeline: a raw
// prescription document goes through two cache-checked analysis stages
// (structured text, then healthcare entities) and is canonicalized into a
// set of medication names. The two cache tiers are independent: a document
// whose text is cached but whose entities are not re-runs only the entity
// stage.
//
// Both caches are keyed by the document's declared name. Correctness rests
// on the caller's guarantee that the same name always denotes the same
// bytes; under that assumption repeated requests perform each external
// analysis at most once.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pharmafind/go-pharmacy-backend/internal/analysis"
	"github.com/pharmafind/go-pharmacy-backend/internal/blobcache"
)

// alphaRE matches words consisting solely of ASCII letters; anything with
// digits, punctuation, or whitespace is not a medicine-name candidate.
var alphaRE = regexp.MustCompile(`^[a-zA-Z]+$`)

// ExtractionService composes the analysis gateway with the two cache tiers.
type ExtractionService struct {
	Text     analysis.TextExtractor
	Entities analysis.EntityExtractor

	// TextCache holds structured text keyed by document name; EntityCache
	// holds entity bags under the same key. They must be distinct tiers.
	TextCache   *blobcache.Cache
	EntityCache *blobcache.Cache

	// MinConfidence is the recognition confidence cutoff; words at or below
	// it are dropped from the candidate blob.
	MinConfidence float64
}

// MedicationNames runs the full pipeline for a named document and returns
// the set of canonical medication names it mentions.
func (s *ExtractionService) MedicationNames(ctx context.Context, documentName string, document []byte) (map[string]struct{}, error) {
	tr := otel.Tracer("services/ExtractionService")
	ctx, span := tr.Start(ctx, "MedicationNames",
		trace.WithAttributes(attribute.String("document.name", documentName)),
	)
	defer span.End()

	text, err := s.structuredText(ctx, documentName, document)
	if err != nil {
		return nil, err
	}

	bag, err := s.entityBag(ctx, documentName, candidateBlob(text, s.MinConfidence))
	if err != nil {
		return nil, err
	}

	return canonicalMedicationNames(bag), nil
}

// structuredText returns the text-tier result for the document, calling the
// external extractor only on a cache miss.
func (s *ExtractionService) structuredText(ctx context.Context, documentName string, document []byte) (*analysis.StructuredText, error) {
	if data, ok, err := s.TextCache.Get(ctx, documentName); err != nil {
		return nil, err
	} else if ok {
		var cached analysis.StructuredText
		if err := json.Unmarshal(data, &cached); err != nil {
			return nil, fmt.Errorf("decode cached text for %q: %w", documentName, err)
		}
		return &cached, nil
	}

	text, err := s.Text.ExtractText(ctx, document)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(text)
	if err != nil {
		return nil, fmt.Errorf("encode text for %q: %w", documentName, err)
	}
	if err := s.TextCache.Put(ctx, documentName, data); err != nil {
		return nil, err
	}
	return text, nil
}

// entityBag returns the entity-tier result for the document, calling the
// external extractor only on a cache miss. An empty candidate blob is a
// legal input and yields whatever the extractor returns for it.
func (s *ExtractionService) entityBag(ctx context.Context, documentName, blob string) (*analysis.EntityBag, error) {
	if data, ok, err := s.EntityCache.Get(ctx, documentName); err != nil {
		return nil, err
	} else if ok {
		var cached analysis.EntityBag
		if err := json.Unmarshal(data, &cached); err != nil {
			return nil, fmt.Errorf("decode cached entities for %q: %w", documentName, err)
		}
		return &cached, nil
	}

	bag, err := s.Entities.ExtractEntities(ctx, blob)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(bag)
	if err != nil {
		return nil, fmt.Errorf("encode entities for %q: %w", documentName, err)
	}
	if err := s.EntityCache.Put(ctx, documentName, data); err != nil {
		return nil, err
	}
	return bag, nil
}

// candidateBlob collects every distinct lower-cased word whose confidence
// exceeds minConfidence and that is purely alphabetic, joined newline-
// separated in sorted order. Ordering is immaterial to correctness but kept
// deterministic for cache-key stability.
func candidateBlob(text *analysis.StructuredText, minConfidence float64) string {
	seen := make(map[string]struct{})
	for _, page := range text.Pages {
		for _, line := range page.Lines {
			for _, word := range line.Words {
				if word.Confidence > minConfidence && alphaRE.MatchString(word.Text) {
					seen[strings.ToLower(word.Text)] = struct{}{}
				}
			}
		}
	}
	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)
	return strings.Join(words, "\n")
}

// canonicalMedicationNames keeps only medication entities and reduces each
// to its canonical form: lower-cased first whitespace-delimited token
// (multi-word brand names collapse to their first word).
func canonicalMedicationNames(bag *analysis.EntityBag) map[string]struct{} {
	names := make(map[string]struct{})
	for _, e := range bag.Entities {
		if e.Category != analysis.MedicationCategory {
			continue
		}
		fields := strings.Fields(strings.ToLower(e.Text))
		if len(fields) == 0 {
			continue
		}
		names[fields[0]] = struct{}{}
	}
	return names
}
