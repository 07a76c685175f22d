package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rosterline/internal/core"
)

func TestFieldMapping(t *testing.T) {
	var gotAuth, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/members/field-mapping" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(map[string]any{
			"mapping": map[string]string{"Name": "name", "Email": "email"},
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "tok-123", 5*time.Second)
	mapping, err := c.FieldMapping(context.Background())
	if err != nil {
		t.Fatalf("FieldMapping: %v", err)
	}
	if mapping["Name"] != "name" || mapping["Email"] != "email" {
		t.Errorf("mapping = %v", mapping)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestFieldMapping_Empty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"mapping": map[string]string{}})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "", 5*time.Second)
	if _, err := c.FieldMapping(context.Background()); err == nil {
		t.Error("empty mapping should be an error")
	}
}

func TestBulkInsert(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/members/bulk" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Members []core.Member `json:"members"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body.Members) != 2 {
			t.Errorf("got %d members", len(body.Members))
		}
		json.NewEncoder(w).Encode(core.BulkOutcome{Accepted: 2})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "", 5*time.Second)
	outcome, err := c.BulkInsert(context.Background(), []core.Member{
		{FirstName: "John", LastName: "Doe", Email: "j@e.com"},
		{FirstName: "Jane", LastName: "Smith", Email: "s@e.com"},
	})
	if err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	if outcome.Accepted != 2 {
		t.Errorf("Accepted = %d, want 2", outcome.Accepted)
	}
}

func TestBulkInsert_ValidationFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{
				{"location": "body.members[3].email", "message": "email already registered"},
				{"location": "body.members[3].callSign", "message": "call sign taken"},
				{"location": "body.members[7].lastName", "message": "last name too long"},
			},
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "", 5*time.Second)
	outcome, err := c.BulkInsert(context.Background(), nil)
	if err != nil {
		t.Fatalf("a 422 must decode, not error: %v", err)
	}
	if outcome.Rejected != 2 {
		t.Errorf("Rejected = %d, want 2 distinct members", outcome.Rejected)
	}
	if len(outcome.Rejections) != 3 {
		t.Fatalf("got %d rejections, want 3", len(outcome.Rejections))
	}
	first := outcome.Rejections[0]
	if first.Index != 3 || first.Field != "email" || first.Reason != "email already registered" {
		t.Errorf("first rejection = %+v", first)
	}
}

func TestBulkInsert_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "", 5*time.Second)
	_, err := c.BulkInsert(context.Background(), nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Errorf("error = %v, want StatusError 500", err)
	}
	if !core.IsRetryable(err) {
		t.Error("5xx should be retryable")
	}
}

func TestBulkInsert_ClientErrorNotRetryable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "", 5*time.Second)
	_, err := c.BulkInsert(context.Background(), nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if core.IsRetryable(err) {
		t.Error("4xx should not be retryable")
	}
}

func TestBulkInsert_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	c := NewClient(ts.URL, "", time.Second)
	_, err := c.BulkInsert(context.Background(), nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("error = %v, want TransportError", err)
	}
	if !core.IsRetryable(err) {
		t.Error("network errors should be retryable")
	}
}

func TestSplitLocation(t *testing.T) {
	tests := []struct {
		loc   string
		index int
		field string
	}{
		{"body.members[3].email", 3, "email"},
		{"body.members[0].lastName", 0, "lastName"},
		{"body.members[12]", 12, "members[12]"},
		{"body.members", -1, "members"},
		{"", -1, ""},
	}
	for _, tt := range tests {
		idx, field := splitLocation(tt.loc)
		if idx != tt.index || field != tt.field {
			t.Errorf("splitLocation(%q) = (%d, %q), want (%d, %q)",
				tt.loc, idx, field, tt.index, tt.field)
		}
	}
}
