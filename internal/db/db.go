// Package db persists the tool-call journal in PostgreSQL or SQLite.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func (d Dialect) driverName() string {
	return string(d)
}

// ParseURL maps a DATABASE_URL onto a dialect and the DSN its driver
// expects. postgres:// and postgresql:// go to lib/pq unchanged;
// sqlite://path and sqlite:path name a SQLite file.
func ParseURL(databaseURL string) (Dialect, string, error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DialectPostgres, u, nil
	case strings.HasPrefix(u, "sqlite://"):
		path := strings.TrimPrefix(u, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite url has no path")
		}
		return DialectSQLite, path, nil
	case strings.HasPrefix(u, "sqlite:"):
		path := strings.TrimPrefix(u, "sqlite:")
		if path == "" {
			return "", "", fmt.Errorf("sqlite url has no path")
		}
		return DialectSQLite, path, nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme (want postgres:// or sqlite://)")
	}
}

// DB wraps the underlying *sql.DB and provides typed query methods.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// Open connects, verifies connectivity and applies migrations.
func Open(ctx context.Context, databaseURL string) (*DB, error) {
	dialect, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	if dialect == DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	conn, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if dialect == DialectSQLite {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := ApplyMigrations(dialect, dsn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return &DB{conn: conn, dialect: dialect}, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) Dialect() Dialect {
	return d.dialect
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (d *DB) rebind(query string) string {
	if d.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToolCall is one journal entry.
type ToolCall struct {
	ToolCallID   string          `json:"tool_call_id"`
	TraceID      string          `json:"trace_id"`
	ToolName     string          `json:"tool_name"`
	Status       string          `json:"status"`
	ErrorKind    string          `json:"error_kind,omitempty"`
	Message      string          `json:"message"`
	Request      json.RawMessage `json:"request"`
	EvidenceHash string          `json:"evidence_hash"`
	DurationMS   int64           `json:"duration_ms"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (d *DB) InsertToolCall(ctx context.Context, tc *ToolCall) error {
	req := string(tc.Request)
	if req == "" {
		req = "null"
	}
	_, err := d.conn.ExecContext(ctx, d.rebind(
		`INSERT INTO tool_calls (tool_call_id, trace_id, tool_name, status, error_kind, message, request_json, evidence_hash, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		tc.ToolCallID, tc.TraceID, tc.ToolName, tc.Status, tc.ErrorKind, tc.Message, req, tc.EvidenceHash, tc.DurationMS, tc.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert tool_call: %w", err)
	}
	return nil
}

// ToolCallFilter narrows ListToolCalls. Zero fields match everything; the
// time range is [CreatedAfter, CreatedBefore).
type ToolCallFilter struct {
	Status        string
	ToolName      string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ListToolCalls returns matching entries, most recent first.
func (d *DB) ListToolCalls(ctx context.Context, f ToolCallFilter, limit int) ([]*ToolCall, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.ToolName != "" {
		where = append(where, "tool_name = ?")
		args = append(args, f.ToolName)
	}
	if f.CreatedAfter != nil {
		where = append(where, "created_at >= ?")
		args = append(args, f.CreatedAfter.UnixMilli())
	}
	if f.CreatedBefore != nil {
		where = append(where, "created_at < ?")
		args = append(args, f.CreatedBefore.UnixMilli())
	}

	query := `SELECT tool_call_id, trace_id, tool_name, status, error_kind, message, request_json, evidence_hash, duration_ms, created_at FROM tool_calls`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, tool_call_id LIMIT ?"
	args = append(args, limit)

	rows, err := d.conn.QueryContext(ctx, d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list tool_calls: %w", err)
	}
	defer rows.Close()

	var tcs []*ToolCall
	for rows.Next() {
		tc := &ToolCall{}
		var req string
		var createdMS int64
		if err := rows.Scan(&tc.ToolCallID, &tc.TraceID, &tc.ToolName, &tc.Status, &tc.ErrorKind, &tc.Message, &req, &tc.EvidenceHash, &tc.DurationMS, &createdMS); err != nil {
			return nil, fmt.Errorf("scan tool_call: %w", err)
		}
		tc.Request = json.RawMessage(req)
		tc.CreatedAt = time.UnixMilli(createdMS).UTC()
		tcs = append(tcs, tc)
	}
	return tcs, rows.Err()
}
