package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDocClient_ExtractText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(apiKeyHeader) != "secret" {
			t.Errorf("missing api key header")
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "raw-bytes" {
			t.Errorf("unexpected body %q", body)
		}
		_ = json.NewEncoder(w).Encode(StructuredText{
			Pages: []Page{{Lines: []Line{{Words: []Word{{Text: "Ibuprofen", Confidence: 0.97}}}}}},
		})
	}))
	defer srv.Close()

	c := NewDocClient(srv.URL, "secret", 5*time.Second)
	got, err := c.ExtractText(context.Background(), []byte("raw-bytes"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if len(got.Pages) != 1 || got.Pages[0].Lines[0].Words[0].Text != "Ibuprofen" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDocClient_ExtractText_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewDocClient(srv.URL, "secret", 5*time.Second)
	if _, err := c.ExtractText(context.Background(), []byte("x")); !errors.Is(err, ErrAnalysis) {
		t.Fatalf("expected ErrAnalysis, got %v", err)
	}
}

func entityServer(t *testing.T, docs []entityResultDoc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req entityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Documents) != 1 {
			t.Errorf("got %d request documents, want 1", len(req.Documents))
		}
		_ = json.NewEncoder(w).Encode(entityResponse{Documents: docs})
	}))
}

func TestEntityClient_ExtractEntities(t *testing.T) {
	srv := entityServer(t, []entityResultDoc{{
		ID: "1",
		Entities: []Entity{
			{Category: MedicationCategory, Text: "Amoxicillin 500mg"},
			{Category: "Dosage", Text: "500mg"},
		},
	}})
	defer srv.Close()

	c := NewEntityClient(srv.URL, "secret", 5*time.Second)
	got, err := c.ExtractEntities(context.Background(), "amoxicillin lisinopril")
	if err != nil {
		t.Fatalf("ExtractEntities: %v", err)
	}
	if len(got.Entities) != 2 {
		t.Fatalf("got %d entities, want 2", len(got.Entities))
	}
}

func TestEntityClient_ResultShapePolicy(t *testing.T) {
	tests := []struct {
		name string
		docs []entityResultDoc
	}{
		{"zero documents", nil},
		{"multiple documents", []entityResultDoc{{ID: "1"}, {ID: "2"}}},
		{"errored document", []entityResultDoc{{ID: "1", IsError: true, Error: "bad input"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := entityServer(t, tt.docs)
			defer srv.Close()

			c := NewEntityClient(srv.URL, "secret", 5*time.Second)
			if _, err := c.ExtractEntities(context.Background(), "text"); !errors.Is(err, ErrAnalysis) {
				t.Fatalf("expected ErrAnalysis, got %v", err)
			}
		})
	}
}
