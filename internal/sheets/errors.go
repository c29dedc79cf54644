// Package sheets talks to the guest spreadsheet.  Reads go through the
// public gviz query endpoint and return a classified model.Snapshot; writes
// and targeted cell reads go through the Composio tool-execution API.  The
// spreadsheet offers no version stamp per row, so callers cannot do a real
// compare-and-swap against it.
package sheets

import "errors"

// ErrSourceUnavailable is returned for network failures, timeouts and
// non-2xx responses from the spreadsheet backends.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrSourceFormat is returned when a payload cannot be parsed or the
// mandatory columns cannot be identified.
var ErrSourceFormat = errors.New("source format error")

// ErrNotConfigured is returned by the write client when no API key is set.
var ErrNotConfigured = errors.New("sheet write access not configured")
