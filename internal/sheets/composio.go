package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultComposioBaseURL is the Composio v3 API root.
const DefaultComposioBaseURL = "https://backend.composio.dev/api/v3"

const (
	actionBatchUpdate = "GOOGLESHEETS_BATCH_UPDATE"
	actionBatchGet    = "GOOGLESHEETS_BATCH_GET"
)

// ComposioClient writes cells and reads single cells through Composio's
// Google Sheets tools.
type ComposioClient struct {
	BaseURL       string
	APIKey        string
	EntityID      string
	SpreadsheetID string
	SheetName     string
	Timeout       time.Duration
	Client        *http.Client
}

// NewComposioClient builds a client.  An empty apiKey yields a client whose
// calls fail with ErrNotConfigured; use Configured to check up front.
func NewComposioClient(baseURL, apiKey, entityID, spreadsheetID, sheetName string, timeout time.Duration) *ComposioClient {
	if baseURL == "" {
		baseURL = DefaultComposioBaseURL
	}
	if entityID == "" {
		entityID = "default"
	}
	return &ComposioClient{
		BaseURL:       baseURL,
		APIKey:        apiKey,
		EntityID:      entityID,
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
		Timeout:       timeout,
		Client:        &http.Client{},
	}
}

// Configured reports whether an API key is present.
func (c *ComposioClient) Configured() bool { return c != nil && c.APIKey != "" }

type executeRequest struct {
	UserID    string         `json:"user_id"`
	Arguments map[string]any `json:"arguments"`
}

type executeResponse struct {
	Successful *bool           `json:"successful"`
	Error      any             `json:"error"`
	Data       json.RawMessage `json:"data"`
}

func (c *ComposioClient) execute(ctx context.Context, action string, args map[string]any) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	payload, err := json.Marshal(executeRequest{UserID: c.EntityID, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", action, err)
	}
	endpoint := c.BaseURL + "/tools/execute/" + url.PathEscape(action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("X-API-Key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: composio %d: %s", ErrSourceUnavailable, resp.StatusCode, truncate(body, 200))
	}
	var out executeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: composio response: %v", ErrSourceFormat, err)
	}
	if out.Successful != nil && !*out.Successful {
		return nil, fmt.Errorf("%w: %s failed: %v", ErrSourceUnavailable, action, out.Error)
	}
	return out.Data, nil
}

// WriteCell overwrites one cell (A1 reference without sheet name).
func (c *ComposioClient) WriteCell(ctx context.Context, cell, value string) error {
	_, err := c.execute(ctx, actionBatchUpdate, map[string]any{
		"spreadsheet_id":      c.SpreadsheetID,
		"sheet_name":          c.SheetName,
		"first_cell_location": cell,
		"values":              [][]string{{value}},
		"valueInputOption":    "USER_ENTERED",
	})
	return err
}

// batchGetData covers both shapes Composio returns for batch reads.
type batchGetData struct {
	ValueRanges  []valueRange `json:"valueRanges"`
	ResponseData *struct {
		ValueRanges []valueRange `json:"valueRanges"`
	} `json:"response_data"`
}

type valueRange struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

// ReadCell returns the current value of one cell.  An empty cell yields "".
func (c *ComposioClient) ReadCell(ctx context.Context, cell string) (string, error) {
	raw, err := c.execute(ctx, actionBatchGet, map[string]any{
		"spreadsheet_id": c.SpreadsheetID,
		"ranges":         []string{qualify(c.SheetName, cell)},
	})
	if err != nil {
		return "", err
	}
	var data batchGetData
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return "", fmt.Errorf("%w: batch get: %v", ErrSourceFormat, err)
		}
	}
	ranges := data.ValueRanges
	if len(ranges) == 0 && data.ResponseData != nil {
		ranges = data.ResponseData.ValueRanges
	}
	if len(ranges) == 0 || len(ranges[0].Values) == 0 || len(ranges[0].Values[0]) == 0 {
		return "", nil
	}
	return cellString(ranges[0].Values[0][0]), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
