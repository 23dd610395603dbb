package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	payload     TEXT NOT NULL,
	enqueued_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite is a durable queue backed by a single SQLite table. Jobs are
// JSON-encoded rows pulled in enqueue order.
type SQLite struct {
	conn *sql.DB
}

// Verify *SQLite satisfies Queue at compile time.
var _ Queue = (*SQLite)(nil)

// Open opens (or creates) the queue database and applies the schema. WAL
// and busy-timeout options are appended, preserving any query parameters
// already present in the DSN.
func Open(dsn string) (*SQLite, error) {
	sep := "?"
	if strings.ContainsRune(dsn, '?') {
		sep = "&"
	}
	conn, err := sql.Open("sqlite3", dsn+sep+"_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("queue: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (q *SQLite) Close() error {
	return q.conn.Close()
}

// Push appends jobs to the queue in order.
func (q *SQLite) Push(ctx context.Context, jobs ...Job) error {
	if len(jobs) == 0 {
		return nil
	}
	tx, err := q.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("queue: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.Prepare(`INSERT INTO jobs (payload) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("queue: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, job := range jobs {
		payload, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("queue: encode job: %w", err)
		}
		if _, err := stmt.Exec(string(payload)); err != nil {
			return fmt.Errorf("queue: insert job: %w", err)
		}
	}
	return tx.Commit()
}

// Pull removes and returns up to max pending jobs, oldest first. The rows
// are deleted in the same transaction, so queue ownership transfers to the
// caller atomically.
func (q *SQLite) Pull(ctx context.Context, max int) ([]Job, error) {
	if max <= 0 {
		return nil, nil
	}
	tx, err := q.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("queue: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.Query(`SELECT id, payload FROM jobs ORDER BY id LIMIT ?`, max)
	if err != nil {
		return nil, fmt.Errorf("queue: select jobs: %w", err)
	}

	var ids []any
	var jobs []Job
	for rows.Next() {
		var id int64
		var payload string
		if err := rows.Scan(&id, &payload); err != nil {
			rows.Close()
			return nil, fmt.Errorf("queue: scan job: %w", err)
		}
		var job Job
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			rows.Close()
			return nil, fmt.Errorf("queue: decode job %d: %w", id, err)
		}
		ids = append(ids, id)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("queue: iterate jobs: %w", err)
	}
	rows.Close()

	if len(ids) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
		if _, err := tx.Exec(`DELETE FROM jobs WHERE id IN (`+placeholders+`)`, ids...); err != nil {
			return nil, fmt.Errorf("queue: acknowledge jobs: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("queue: commit pull: %w", err)
	}
	return jobs, nil
}

// Len returns the number of pending jobs.
func (q *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	if err := q.conn.QueryRowContext(ctx, `SELECT count(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("queue: count: %w", err)
	}
	return n, nil
}
