package audit

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

const defaultSQLitePath = "hearts_audit.db"

// SQLiteSink stores audit entries in a local sqlite file. Record runs
// the insert synchronously; NewSink hands it out wrapped in Async.
type SQLiteSink struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		dbPath = defaultSQLitePath
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteSink{
		db:     db,
		logger: log.WithPrefix("audit/sqlite"),
	}, nil
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS wire_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    at_ms       INTEGER NOT NULL,
    conn_id     TEXT NOT NULL,
    seat        TEXT NOT NULL,
    direction   TEXT NOT NULL,
    local_addr  TEXT NOT NULL,
    remote_addr TEXT NOT NULL,
    line        TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_wire_log_at ON wire_log (at_ms);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteSink) Record(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO wire_log (at_ms, conn_id, seat, direction, local_addr, remote_addr, line)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Time.UTC().UnixMilli(), e.ConnID, e.Seat, string(e.Direction),
		e.LocalAddr, e.RemoteAddr, e.Line)
	if err != nil {
		s.logger.Error("record failed", "err", err)
	}
}

func (s *SQLiteSink) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT at_ms, conn_id, seat, direction, local_addr, remote_addr, line
FROM wire_log
ORDER BY id DESC
LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *SQLiteSink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const (
	defaultRecentLimit = 200
	maxRecentLimit     = 1000
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var atMs int64
		var dir string
		if err := rows.Scan(&atMs, &e.ConnID, &e.Seat, &dir, &e.LocalAddr, &e.RemoteAddr, &e.Line); err != nil {
			return nil, err
		}
		e.Time = time.UnixMilli(atMs).UTC()
		e.Direction = Direction(dir)
		out = append(out, e)
	}
	return out, rows.Err()
}
