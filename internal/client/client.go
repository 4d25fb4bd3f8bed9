// Package client is the Go consumer side of the transaction API: a thin
// REST client and a stateful Store that mirrors server state for UIs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fintrack/internal/core"
)

// Draft is a new transaction to create. Amount accepts any numeric
// value; Date is optional and ISO-8601 when set.
type Draft struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Date        string `json:"date,omitempty"`
}

// Patch updates a subset of fields; nil means "leave unchanged".
type Patch struct {
	Type        *string  `json:"type,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Date        *string  `json:"date,omitempty"`
}

// ListOptions mirror the list endpoint's filter and pagination
// parameters. Zero values are omitted from the query.
type ListOptions struct {
	Type      string
	Category  string
	StartDate string
	EndDate   string
	Page      int64
	Limit     int64
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Type != "" {
		q.Set("type", o.Type)
	}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	if o.StartDate != "" {
		q.Set("startDate", o.StartDate)
	}
	if o.EndDate != "" {
		q.Set("endDate", o.EndDate)
	}
	if o.Page > 0 {
		q.Set("page", strconv.FormatInt(o.Page, 10))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.FormatInt(o.Limit, 10))
	}
	return q
}

// Page is one page of list results plus the unpaginated match count.
type Page struct {
	Data  []core.Transaction `json:"data"`
	Total int64              `json:"total"`
}

// APIError is a non-2xx response decoded into the server's error shape.
type APIError struct {
	Status  int
	Message string
	Fields  []core.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("api error %d: %d invalid fields", e.Status, len(e.Fields))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// NotFound reports whether the error is a 404 from the API.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

type Client struct {
	base string
	hc   *http.Client
}

// New creates a Client for the API at base, e.g. "http://localhost:8000".
func New(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: base, hc: hc}
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Message string            `json:"message"`
		Error   string            `json:"error"`
		Errors  []core.FieldError `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Fields = body.Errors
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" && len(apiErr.Fields) == 0 {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func (c *Client) List(ctx context.Context, opts ListOptions) (Page, error) {
	var page Page
	err := c.do(ctx, http.MethodGet, "/api/transactions", opts.query(), nil, &page)
	return page, err
}

func (c *Client) Create(ctx context.Context, d Draft) (core.Transaction, error) {
	var tx core.Transaction
	err := c.do(ctx, http.MethodPost, "/api/transactions", nil, d, &tx)
	return tx, err
}

func (c *Client) Get(ctx context.Context, id string) (core.Transaction, error) {
	var tx core.Transaction
	err := c.do(ctx, http.MethodGet, "/api/transactions/"+url.PathEscape(id), nil, nil, &tx)
	return tx, err
}

func (c *Client) Update(ctx context.Context, id string, p Patch) (core.Transaction, error) {
	var tx core.Transaction
	err := c.do(ctx, http.MethodPut, "/api/transactions/"+url.PathEscape(id), nil, p, &tx)
	return tx, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Summary(ctx context.Context, opts ListOptions) (core.Summary, error) {
	var s core.Summary
	err := c.do(ctx, http.MethodGet, "/api/transactions/summary", opts.query(), nil, &s)
	return s, err
}
