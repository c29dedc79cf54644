package config

import (
	"os"
	"time"
)

// SheetsConfig covers the guest spreadsheet: where to read it, how to write
// it, and the timings of the read cache, the pending overlay and write
// verification.
type SheetsConfig struct {
	SpreadsheetID string
	SheetName     string
	GvizBaseURL   string
	FetchTimeout  time.Duration
	CacheTTL      time.Duration

	ComposioAPIKey   string // empty means read-only
	ComposioEntityID string
	ComposioBaseURL  string

	PendingTTL     time.Duration
	VerifyAttempts int
	VerifyDelay    time.Duration // attempt n waits n*VerifyDelay
	QueueDepth     int
}

// LoadSheetsConfig reads the sheet settings for spreadsheetID.
func LoadSheetsConfig(spreadsheetID string) SheetsConfig {
	return SheetsConfig{
		SpreadsheetID:    spreadsheetID,
		SheetName:        getenv("SHEET_NAME", "Invitados"),
		GvizBaseURL:      os.Getenv("GVIZ_BASE_URL"),
		FetchTimeout:     positiveDur("FETCH_TIMEOUT", 10*time.Second),
		CacheTTL:         positiveDur("CACHE_TTL", 15*time.Second),
		ComposioAPIKey:   os.Getenv("COMPOSIO_API_KEY"),
		ComposioEntityID: getenv("COMPOSIO_ENTITY_ID", "default"),
		ComposioBaseURL:  os.Getenv("COMPOSIO_BASE_URL"),
		PendingTTL:       positiveDur("PENDING_TTL", 2*time.Minute),
		VerifyAttempts:   positiveInt("VERIFY_ATTEMPTS", 4),
		VerifyDelay:      positiveDur("VERIFY_DELAY", 400*time.Millisecond),
		QueueDepth:       positiveInt("WRITE_QUEUE_DEPTH", 64),
	}
}

// Writable reports whether a write API key is configured.
func (c SheetsConfig) Writable() bool { return c.ComposioAPIKey != "" }
