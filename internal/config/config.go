package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Optional integrations (writes, history, events,
// auth) are switched off by leaving their variables empty.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	Sheets SheetsConfig // guest sheet access, cache and write verification

	DBUser string // move-history database user
	DBPass string // database password (optional)
	DBHost string // database host; empty disables move history
	DBPort string // database port
	DBName string // database name

	AMQPURL string // broker URL; empty disables guest.moved events

	JWTSecret          string // secret used to sign editor tokens; empty leaves writes open
	EditorPasswordHash string // bcrypt hash of the shared editor password
	AccessTTLMin       int    // editor token time-to-live in minutes
}

// Load reads the service configuration.  SPREADSHEET_ID is required and
// its absence stops the process; everything else has a default.
func Load() Config {
	return Config{
		Env:                getenv("APP_ENV", "dev"),
		Port:               getenv("APP_PORT", "8080"),
		Sheets:             LoadSheetsConfig(must("SPREADSHEET_ID")),
		DBUser:             os.Getenv("DB_USER"),
		DBPass:             os.Getenv("DB_PASS"),
		DBHost:             os.Getenv("DB_HOST"),
		DBPort:             getenv("DB_PORT", "3306"),
		DBName:             getenv("DB_NAME", "wedding"),
		AMQPURL:            amqpURL(),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		EditorPasswordHash: os.Getenv("EDITOR_PASSWORD_HASH"),
		AccessTTLMin:       positiveInt("ACCESS_TOKEN_TTL_MIN", 720),
	}
}

// HistoryEnabled reports whether a MySQL host was configured.
func (c Config) HistoryEnabled() bool { return c.DBHost != "" }

// AuthEnabled reports whether write routes require an editor token.
func (c Config) AuthEnabled() bool { return c.JWTSecret != "" }

// LoginEnabled reports whether editors can exchange the password for a
// token.
func (c Config) LoginEnabled() bool { return c.JWTSecret != "" && c.EditorPasswordHash != "" }

func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}

// positiveInt is envInt with non-positive values replaced by d.
func positiveInt(k string, d int) int {
	if n := envInt(k, d); n > 0 {
		return n
	}
	return d
}

// positiveDur is envDur with non-positive values replaced by d.
func positiveDur(k string, d time.Duration) time.Duration {
	if v := envDur(k, d); v > 0 {
		return v
	}
	return d
}
