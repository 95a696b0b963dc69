package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	apiURL      = "https://api.airtable.com/v0"
	contentType = "application/json"
)

// Record is a single Airtable row: an opaque identifier plus a field mapping.
type Record struct {
	ID          string         `json:"id,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
	CreatedTime string         `json:"createdTime,omitempty"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type recordPayload struct {
	Fields map[string]any `json:"fields"`
}

// ListOptions narrows a List call. Formula is an Airtable filterByFormula
// expression; Fields limits the returned columns.
type ListOptions struct {
	Formula string
	Fields  []string
}

// Client is a minimal Airtable API wrapper covering the CRUD surface the
// shortlisting pipeline needs.
type Client struct {
	baseID string
	token  string
	logger *zap.Logger

	HTTPClient *http.Client
	APIURL     string
}

func New(baseID, token string, logger *zap.Logger) *Client {
	return &Client{
		baseID: baseID,
		token:  token,
		logger: logger,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// List fetches all records from a table, following the offset continuation
// token until the listing is exhausted. Callers always see a complete list.
func (c *Client) List(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	var records []Record

	q := url.Values{}
	if opts.Formula != "" {
		q.Set("filterByFormula", opts.Formula)
	}
	for _, field := range opts.Fields {
		q.Add("fields[]", field)
	}

	for {
		body, err := c.do(ctx, http.MethodGet, c.url(table, ""), q, nil)
		if err != nil {
			return nil, err
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, eris.Wrap(err, "airtable: parse list response")
		}

		records = append(records, page.Records...)

		if page.Offset == "" {
			break
		}

		c.logger.Debug("fetching next page",
			zap.String("table", table),
			zap.Int("records_so_far", len(records)),
		)
		q.Set("offset", page.Offset)
	}

	return records, nil
}

// Create inserts a new record into the table.
func (c *Client) Create(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	return c.writeRecord(ctx, http.MethodPost, c.url(table, ""), fields)
}

// Update patches the fields of an existing record.
func (c *Client) Update(ctx context.Context, table, recordID string, fields map[string]any) (*Record, error) {
	return c.writeRecord(ctx, http.MethodPatch, c.url(table, recordID), fields)
}

// Delete removes a record from the table.
func (c *Client) Delete(ctx context.Context, table, recordID string) error {
	_, err := c.do(ctx, http.MethodDelete, c.url(table, recordID), nil, nil)
	return err
}

// Upsert updates the record when recordID is set and creates it otherwise.
func (c *Client) Upsert(ctx context.Context, table, recordID string, fields map[string]any) (*Record, error) {
	if recordID != "" {
		return c.Update(ctx, table, recordID, fields)
	}
	return c.Create(ctx, table, fields)
}

func (c *Client) writeRecord(ctx context.Context, method, u string, fields map[string]any) (*Record, error) {
	payload, err := json.Marshal(recordPayload{Fields: fields})
	if err != nil {
		return nil, eris.Wrap(err, "airtable: marshal record payload")
	}

	body, err := c.do(ctx, method, u, nil, payload)
	if err != nil {
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, eris.Wrap(err, "airtable: parse record response")
	}

	return &record, nil
}

func (c *Client) do(ctx context.Context, method, u string, q url.Values, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "airtable: build request")
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	c.logger.Debug("airtable request", zap.String("method", method), zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "airtable: request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "airtable: read response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{
			Method:     method,
			Table:      req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
		c.logger.Error("airtable API error",
			zap.String("method", method),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response_body", string(body)),
		)
		return nil, apiErr
	}

	return body, nil
}

func (c *Client) url(table, recordID string) string {
	u := c.APIURL + "/" + c.baseID + "/" + url.PathEscape(table)
	if recordID != "" {
		u += "/" + recordID
	}
	return u
}
