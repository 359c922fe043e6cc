// Package store handles SQLite persistence of the usage log.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/runrank/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for invocation data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS invocations (
			id INTEGER PRIMARY KEY,
			command TEXT NOT NULL,
			args TEXT NOT NULL,
			scope TEXT NOT NULL,
			invoked_at INTEGER NOT NULL,
			exit_code INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_invoked_at ON invocations(invoked_at);`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_command ON invocations(command);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertInvocation appends one launched command to the log.
func (s *Store) InsertInvocation(ctx context.Context, inv model.Invocation) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (command, args, scope, invoked_at, exit_code, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inv.Command,
		inv.Args,
		inv.Scope,
		inv.InvokedAt.UnixMilli(),
		inv.ExitCode,
		inv.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func whereClause(cfg model.StatsConfig) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Command != "" {
		clauses = append(clauses, "command = ?")
		args = append(args, cfg.Command)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "invoked_at >= ?")
		args = append(args, cfg.Since.UnixMilli())
	}
	return strings.Join(clauses, " AND "), args
}

// ListInvocations returns invocations newest first. A limit <= 0 returns all.
func (s *Store) ListInvocations(ctx context.Context, cfg model.StatsConfig, limit int) ([]model.Invocation, error) {
	where, args := whereClause(cfg)
	query := fmt.Sprintf(`SELECT id, command, args, scope, invoked_at, exit_code, duration_ms
		FROM invocations
		WHERE %s
		ORDER BY invoked_at DESC, id DESC`, where)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Invocation
	for rows.Next() {
		var inv model.Invocation
		var invokedAt int64
		if err := rows.Scan(&inv.ID, &inv.Command, &inv.Args, &inv.Scope, &invokedAt, &inv.ExitCode, &inv.DurationMs); err != nil {
			return nil, err
		}
		inv.InvokedAt = time.UnixMilli(invokedAt)
		result = append(result, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CommandStats aggregates invocations per command, most used first. Ties are
// broken by the shorter name, then by name.
func (s *Store) CommandStats(ctx context.Context, cfg model.StatsConfig) ([]model.CommandStat, error) {
	where, args := whereClause(cfg)
	query := fmt.Sprintf(`SELECT command, COUNT(*) AS cnt,
		SUM(CASE WHEN exit_code != 0 THEN 1 ELSE 0 END) AS failures,
		MAX(invoked_at) AS last_at, SUM(duration_ms) AS total_ms
		FROM invocations
		WHERE %s
		GROUP BY command
		ORDER BY cnt DESC, LENGTH(command) ASC, command ASC`, where)
	if cfg.Top > 0 {
		query += " LIMIT ?"
		args = append(args, cfg.Top)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CommandStat
	for rows.Next() {
		var stat model.CommandStat
		var lastAt int64
		if err := rows.Scan(&stat.Command, &stat.Count, &stat.Failures, &lastAt, &stat.TotalMs); err != nil {
			return nil, err
		}
		stat.LastInvoked = time.UnixMilli(lastAt)
		result = append(result, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
