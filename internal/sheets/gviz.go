package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/iliyamo/wedding-seating/internal/model"
)

// DefaultGvizBaseURL is the Google Sheets host serving gviz queries.
const DefaultGvizBaseURL = "https://docs.google.com/spreadsheets/d"

// GvizReader reads the full guest sheet through the gviz JSON endpoint.
type GvizReader struct {
	BaseURL       string
	SpreadsheetID string
	SheetName     string
	Timeout       time.Duration
	Client        *http.Client
	Classifier    Classifier
}

// NewGvizReader returns a reader for one sheet using the heuristic column
// classifier.
func NewGvizReader(baseURL, spreadsheetID, sheetName string, timeout time.Duration) *GvizReader {
	if baseURL == "" {
		baseURL = DefaultGvizBaseURL
	}
	return &GvizReader{
		BaseURL:       baseURL,
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
		Timeout:       timeout,
		Client:        &http.Client{},
		Classifier:    HeuristicClassifier{},
	}
}

// gvizResponse mirrors the subset of the gviz payload we use.
type gvizResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"errors"`
	Table struct {
		Cols []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"cols"`
		Rows []struct {
			C []*struct {
				V any    `json:"v"`
				F string `json:"f"`
			} `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

var setResponseRe = regexp.MustCompile(`(?s)setResponse\((.*)\);?\s*$`)

// Source describes where snapshots come from.
func (r *GvizReader) Source() model.SourceTag {
	return model.SourceTag{SpreadsheetID: r.SpreadsheetID, SheetName: r.SheetName}
}

func (r *GvizReader) queryURL() string {
	q := url.Values{}
	q.Set("sheet", r.SheetName)
	q.Set("tqx", "out:json")
	q.Set("headers", "1")
	return fmt.Sprintf("%s/%s/gviz/tq?%s", r.BaseURL, url.PathEscape(r.SpreadsheetID), q.Encode())
}

// ReadSnapshot fetches and classifies the whole sheet.
func (r *GvizReader) ReadSnapshot(ctx context.Context) (model.Snapshot, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.queryURL(), nil)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: build request: %v", ErrSourceUnavailable, err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Snapshot{}, fmt.Errorf("%w: HTTP %d", ErrSourceUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}
	snap, err := ParseGviz(body, r.Classifier)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap.Source = r.Source()
	return snap, nil
}

// ParseGviz decodes a gviz "setResponse(...)" payload into a classified
// snapshot.
func ParseGviz(body []byte, classifier Classifier) (model.Snapshot, error) {
	m := setResponseRe.FindSubmatch(body)
	if m == nil {
		return model.Snapshot{}, fmt.Errorf("%w: missing setResponse wrapper", ErrSourceFormat)
	}
	var payload gvizResponse
	if err := json.Unmarshal(m[1], &payload); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrSourceFormat, err)
	}
	if payload.Status == "error" {
		msg := "query failed"
		if len(payload.Errors) > 0 {
			msg = payload.Errors[0].Reason + ": " + payload.Errors[0].Message
		}
		return model.Snapshot{}, fmt.Errorf("%w: %s", ErrSourceFormat, msg)
	}

	headers := make([]string, len(payload.Table.Cols))
	for i, c := range payload.Table.Cols {
		headers[i] = c.Label
		if headers[i] == "" {
			headers[i] = c.ID
		}
	}
	rows := make([][]string, len(payload.Table.Rows))
	for i, row := range payload.Table.Rows {
		out := make([]string, len(row.C))
		for j, cell := range row.C {
			if cell != nil {
				out[j] = cellString(cell.V)
			}
		}
		rows[i] = out
	}

	if classifier == nil {
		classifier = HeuristicClassifier{}
	}
	cols := classifier.Classify(headers, rows)
	if !cols.Complete() {
		return model.Snapshot{}, fmt.Errorf("%w: could not detect name/plus-one/table columns", ErrSourceFormat)
	}
	return model.Snapshot{Headers: headers, Rows: rows, Columns: cols}, nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// IsSourceError reports whether err came from the spreadsheet side.
func IsSourceError(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrSourceFormat)
}
