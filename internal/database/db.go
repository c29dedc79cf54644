package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSN builds a MySQL DSN for the move-history database.
func DSN(user, pass, host, port, name string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + port
	cfg.DBName = name
	// DATETIME -> time.Time, kept in UTC
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings; history traffic is light
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const moveHistorySchema = `CREATE TABLE IF NOT EXISTS move_history (
	id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	event_id    CHAR(36)     NOT NULL,
	guest_row   INT          NOT NULL,
	guest_name  VARCHAR(255) NOT NULL,
	from_table  VARCHAR(32)  NOT NULL,
	to_table    VARCHAR(32)  NOT NULL,
	cell        VARCHAR(16)  NOT NULL,
	verified    BOOLEAN      NOT NULL,
	moved_at    DATETIME(3)  NOT NULL,
	UNIQUE KEY uq_move_history_event (event_id),
	KEY idx_move_history_moved_at (moved_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the tables the service writes to.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, moveHistorySchema); err != nil {
		return fmt.Errorf("create move_history: %w", err)
	}
	return nil
}
