// HTTP clients for the external analyzers. Both are thin REST wrappers: one
// request, one decoded response, every failure wrapped with ErrAnalysis.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiKeyHeader = "Api-Key"

// DocClient calls the document text-extraction service over HTTP.
type DocClient struct {
	endpoint string
	apiKey   string
	httpc    *http.Client
}

// NewDocClient builds a text-extraction client for the given endpoint.
func NewDocClient(endpoint, apiKey string, timeout time.Duration) *DocClient {
	return &DocClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// ExtractText posts the raw document bytes and decodes the page/line/word
// breakdown.
func (c *DocClient) ExtractText(ctx context.Context, document []byte) (*StructuredText, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("%w: build text request: %v", ErrAnalysis, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: text extraction call: %v", ErrAnalysis, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: text extraction status %d: %s", ErrAnalysis, resp.StatusCode, body)
	}

	var out StructuredText
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode text result: %v", ErrAnalysis, err)
	}
	return &out, nil
}

// EntityClient calls the healthcare entity-recognition service over HTTP.
type EntityClient struct {
	endpoint string
	apiKey   string
	httpc    *http.Client
}

// NewEntityClient builds an entity-recognition client for the given endpoint.
func NewEntityClient(endpoint, apiKey string, timeout time.Duration) *EntityClient {
	return &EntityClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// entityRequest is the wire shape of an entity-recognition call: a batch of
// input documents. This gateway always submits exactly one.
type entityRequest struct {
	Documents []entityRequestDoc `json:"documents"`
}

type entityRequestDoc struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// entityResponse mirrors the service's batched result.
type entityResponse struct {
	Documents []entityResultDoc `json:"documents"`
}

type entityResultDoc struct {
	ID       string   `json:"id"`
	IsError  bool     `json:"isError"`
	Error    string   `json:"error,omitempty"`
	Entities []Entity `json:"entities"`
}

// ExtractEntities submits the free text and returns the entity bag of the
// single result document. Zero result documents, more than one, or an
// errored document fail with ErrAnalysis.
func (c *EntityClient) ExtractEntities(ctx context.Context, text string) (*EntityBag, error) {
	payload, err := json.Marshal(entityRequest{
		Documents: []entityRequestDoc{{ID: "1", Text: text}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode entity request: %v", ErrAnalysis, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build entity request: %v", ErrAnalysis, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: entity extraction call: %v", ErrAnalysis, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: entity extraction status %d: %s", ErrAnalysis, resp.StatusCode, body)
	}

	var out entityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode entity result: %v", ErrAnalysis, err)
	}
	return singleDocument(out.Documents)
}

// singleDocument enforces the exactly-one-non-error-document policy.
func singleDocument(docs []entityResultDoc) (*EntityBag, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no result documents", ErrAnalysis)
	}
	if len(docs) > 1 {
		return nil, fmt.Errorf("%w: %d result documents, want exactly one", ErrAnalysis, len(docs))
	}
	if docs[0].IsError {
		return nil, fmt.Errorf("%w: result document errored: %s", ErrAnalysis, docs[0].Error)
	}
	return &EntityBag{Entities: docs[0].Entities}, nil
}
