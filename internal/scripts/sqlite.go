package scripts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_scripts (
	id TEXT PRIMARY KEY,
	namespace TEXT NOT NULL UNIQUE,
	script TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteRepository stores user scripts in a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the script database at path.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close releases the database.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var (
		rec     Record
		updated int64
	)
	if err := row.Scan(&rec.ID, &rec.Namespace, &rec.Script, &updated); err != nil {
		return Record{}, err
	}
	rec.Updated = time.UnixMilli(updated).UTC()
	return rec, nil
}

// FetchUserScripts implements Repository.
func (r *SQLiteRepository) FetchUserScripts(ctx context.Context, namespace string) ([]Record, error) {
	query := `SELECT id, namespace, script, updated_at FROM user_scripts`
	var args []any
	if namespace != "" {
		query += ` WHERE namespace = ?`
		args = append(args, namespace)
	}
	query += ` ORDER BY namespace`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scripts: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan script: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Namespaces lists the namespaces that have a script, sorted.
func (r *SQLiteRepository) Namespaces(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT namespace FROM user_scripts ORDER BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("query namespaces: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Save inserts or replaces the script of rec.Namespace. The id of an
// existing record is kept.
func (r *SQLiteRepository) Save(ctx context.Context, rec Record) (Record, error) {
	if err := ValidateNamespace(rec.Namespace); err != nil {
		return Record{}, err
	}
	if rec.ID == "" {
		rec = NewRecord(rec.Namespace, rec.Script)
	}
	if rec.Updated.IsZero() {
		rec.Updated = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO user_scripts (id, namespace, script, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(namespace) DO UPDATE SET
	script = excluded.script,
	updated_at = excluded.updated_at
`, rec.ID, rec.Namespace, rec.Script, rec.Updated.UnixMilli())
	if err != nil {
		return Record{}, fmt.Errorf("save script: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, namespace, script, updated_at FROM user_scripts WHERE namespace = ?`, rec.Namespace)
	saved, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("reload script: %w", err)
	}
	return saved, nil
}

// Delete removes the script of namespace.
func (r *SQLiteRepository) Delete(ctx context.Context, namespace string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_scripts WHERE namespace = ?`, namespace)
	if err != nil {
		return fmt.Errorf("delete script: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the script of namespace.
func (r *SQLiteRepository) Get(ctx context.Context, namespace string) (Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, namespace, script, updated_at FROM user_scripts WHERE namespace = ?`, namespace)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}
