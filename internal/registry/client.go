// Package registry is the HTTP client for the member registry service.
// The pipeline consumes exactly two operations: the field-mapping fetch and
// the bulk insert. The bearer credential is supplied by the caller and
// treated as an opaque string.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rosterline/internal/core"
)

// Paths on the registry service.
const (
	fieldMappingPath = "/api/v1/members/field-mapping"
	bulkInsertPath   = "/api/v1/members/bulk"
)

// Client talks to one member registry. Safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

var _ core.Registry = (*Client)(nil)

// NewClient creates a registry client. token may be empty when the registry
// does not require authorization (e.g. the test registry).
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// FieldMapping fetches the external-header to internal-field mapping.
// Called once per import session.
func (c *Client) FieldMapping(ctx context.Context) (core.FieldMapping, error) {
	var body struct {
		Mapping core.FieldMapping `json:"mapping"`
	}
	if err := c.do(ctx, http.MethodGet, fieldMappingPath, nil, &body); err != nil {
		return nil, err
	}
	if len(body.Mapping) == 0 {
		return nil, fmt.Errorf("registry returned an empty field mapping")
	}
	return body.Mapping, nil
}

// BulkInsert submits the whole batch in one request. A 422 response is not
// an error from the pipeline's point of view: its structured entries are
// decoded into per-record rejections so the session can key them by row.
func (c *Client) BulkInsert(ctx context.Context, members []core.Member) (*core.BulkOutcome, error) {
	req := struct {
		Members []core.Member `json:"members"`
	}{Members: members}

	var outcome core.BulkOutcome
	err := c.do(ctx, http.MethodPost, bulkInsertPath, &req, &outcome)
	if err == nil {
		return &outcome, nil
	}

	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnprocessableEntity {
		return decodeValidationFailure(se.Body)
	}
	return nil, err
}

// do performs one JSON round trip. Network and timeout failures surface as
// *TransportError (retryable); unexpected statuses as *StatusError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: body}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

// validationFailure is the registry's 422 body: a flat list of
// {location, message} entries, location being a JSON path like
// "body.members[3].email".
type validationFailure struct {
	Errors []struct {
		Location string `json:"location"`
		Message  string `json:"message"`
	} `json:"errors"`
}

func decodeValidationFailure(body []byte) (*core.BulkOutcome, error) {
	var vf validationFailure
	if err := json.Unmarshal(body, &vf); err != nil {
		return nil, fmt.Errorf("decode validation failure: %w", err)
	}

	outcome := &core.BulkOutcome{}
	seen := make(map[int]bool)
	for _, e := range vf.Errors {
		idx, field := splitLocation(e.Location)
		outcome.Rejections = append(outcome.Rejections, core.BulkRejection{
			Index:  idx,
			Field:  field,
			Reason: e.Message,
		})
		if idx >= 0 && !seen[idx] {
			seen[idx] = true
			outcome.Rejected++
		}
	}
	return outcome, nil
}

// splitLocation extracts the member index and the field name from a 422
// location path. The field is the last path segment; the index is the last
// bracketed number, or -1 when the path carries none.
func splitLocation(loc string) (index int, field string) {
	index = -1
	if open := strings.LastIndexByte(loc, '['); open >= 0 {
		if close := strings.IndexByte(loc[open:], ']'); close > 1 {
			if n, err := strconv.Atoi(loc[open+1 : open+close]); err == nil {
				index = n
			}
		}
	}
	if dot := strings.LastIndexByte(loc, '.'); dot >= 0 && dot+1 < len(loc) {
		field = loc[dot+1:]
	}
	return index, field
}
