// Package analysis is the gateway to the two external document-analysis
// capabilities: structured text extraction (OCR) and healthcare entity
// recognition. The gateway normalizes external results into application
// types and enforces the result-shape policy; it performs no caching and no
// retries (both belong to other layers).
package analysis

import (
	"context"
	"errors"
)

// ErrAnalysis is the sentinel wrapped by every analysis failure: zero result
// documents, more than one, or a single result flagged as an error. Callers
// classify with errors.Is and must not retry automatically.
var ErrAnalysis = errors.New("analysis failed")

// Word is a single recognized token with its recognition confidence in [0,1].
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Line is an ordered sequence of recognized words.
type Line struct {
	Words []Word `json:"words"`
}

// Page is an ordered sequence of recognized lines.
type Page struct {
	Lines []Line `json:"lines"`
}

// StructuredText is the per-page, per-line, per-word breakdown produced by
// the document text extractor.
type StructuredText struct {
	Pages []Page `json:"pages"`
}

// Entity is one categorized span recognized by the entity extractor.
// Entities whose category is not MedicationCategory are irrelevant here.
type Entity struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// EntityBag is the set of entities recognized in one analyzed document.
type EntityBag struct {
	Entities []Entity `json:"entities"`
}

// MedicationCategory is the entity category the extraction pipeline keeps.
const MedicationCategory = "MedicationName"

// TextExtractor turns raw document bytes into structured text.
type TextExtractor interface {
	ExtractText(ctx context.Context, document []byte) (*StructuredText, error)
}

// EntityExtractor turns free text into a bag of categorized entities. An
// empty input text is legal and yields an empty bag.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) (*EntityBag, error)
}
