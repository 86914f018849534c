package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/msto63/cdlc/foundation/cdl"
	"github.com/msto63/cdlc/foundation/cdl/diag"
	mdwerror "github.com/msto63/cdlc/foundation/core/error"
	"github.com/msto63/cdlc/pkg/core/cache"
)

// Run is one recorded compilation
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	Hash        string    `json:"hash" yaml:"hash"`
	NodeCount   int       `json:"node_count" yaml:"node_count"`
	ParseOK     bool      `json:"parse_ok" yaml:"parse_ok"`
	Diagnostics []string  `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	DurationMS  float64   `json:"duration_ms" yaml:"duration_ms"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Clean reports whether the run parsed and resolved without diagnostics
func (r *Run) Clean() bool {
	return r.ParseOK && len(r.Diagnostics) == 0
}

// RunFilter defines criteria for listing runs
type RunFilter struct {
	Name       string
	Hash       string
	FailedOnly bool
	Since      time.Time
	Limit      int
	Offset     int
}

// RunStats summarizes the stored history
type RunStats struct {
	Total         int64     `json:"total"`
	Failed        int64     `json:"failed"`
	WithWarnings  int64     `json:"with_diagnostics"`
	AvgDurationMS float64   `json:"avg_duration_ms"`
	AvgNodes      float64   `json:"avg_nodes"`
	LastRun       time.Time `json:"last_run,omitempty"`
}

// RunStore defines the interface for compile history persistence
type RunStore interface {
	Record(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, filter RunFilter) ([]*Run, error)
	Stats(ctx context.Context) (*RunStats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// NewRun builds a Run from a compile outcome. err is the syntax error that
// aborted the compilation, result the successful compilation; exactly one
// of them is expected to be set.
func NewRun(name, src string, result *cdl.Result, err error, elapsed time.Duration) *Run {
	run := &Run{
		ID:         uuid.NewString(),
		Name:       name,
		Source:     src,
		Hash:       cache.SourceHash(src),
		DurationMS: float64(elapsed.Nanoseconds()) / 1e6,
		CreatedAt:  time.Now(),
	}

	if err != nil {
		var d *diag.Diagnostic
		if errors.As(err, &d) {
			run.Diagnostics = []string{d.Error()}
		} else {
			run.Diagnostics = []string{err.Error()}
		}
		return run
	}

	run.ParseOK = true
	if result != nil {
		run.NodeCount = result.Ast.Len()
		for _, d := range result.Diagnostics {
			run.Diagnostics = append(run.Diagnostics, d.Error())
		}
	}
	return run
}

// SQLiteRunStore implements RunStore using SQLite
type SQLiteRunStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/cdlc.db",
	}
}

// NewSQLiteRunStore opens or creates the history database
func NewSQLiteRunStore(cfg SQLiteConfig) (*SQLiteRunStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, dbError(err, "failed to create directory", "store.Open")
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError(err, "failed to open database", "store.Open")
	}

	s := &SQLiteRunStore{db: db}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema", "store.Open")
	}

	return s, nil
}

// initSchema creates the necessary tables
func (s *SQLiteRunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		hash TEXT NOT NULL,
		node_count INTEGER NOT NULL,
		parse_ok INTEGER NOT NULL,
		diagnostics TEXT,
		duration_ms REAL NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_name ON runs(name);
	CREATE INDEX IF NOT EXISTS idx_runs_hash ON runs(hash);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run, assigning an id and timestamp when missing
func (s *SQLiteRunStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.Hash == "" {
		run.Hash = cache.SourceHash(run.Source)
	}

	// NULL marks a run without diagnostics
	var diagnostics interface{}
	if len(run.Diagnostics) > 0 {
		data, _ := json.Marshal(run.Diagnostics)
		diagnostics = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, source, hash, node_count, parse_ok, diagnostics, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Name, run.Source, run.Hash, run.NodeCount, run.ParseOK, diagnostics,
		run.DurationMS, run.CreatedAt.UTC())
	if err != nil {
		return dbError(err, "failed to insert run", "store.Record").WithDetail("id", run.ID)
	}

	return nil
}

// Get returns the run with the given id. A missing run yields an error
// with CodeNotFound.
func (s *SQLiteRunStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, hash, node_count, parse_ok, diagnostics, duration_ms, created_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, dbError(err, "failed to read run", "store.Get").WithDetail("id", id)
	}
	return run, nil
}

// List returns runs matching filter, newest first. Sources are omitted.
func (s *SQLiteRunStore) List(ctx context.Context, filter RunFilter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, '', hash, node_count, parse_ok, diagnostics, duration_ms, created_at FROM runs WHERE 1=1`
	var args []interface{}

	if filter.Name != "" {
		query += " AND name = ?"
		args = append(args, filter.Name)
	}
	if filter.Hash != "" {
		query += " AND hash = ?"
		args = append(args, filter.Hash)
	}
	if filter.FailedOnly {
		query += " AND (parse_ok = 0 OR diagnostics IS NOT NULL)"
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY created_at DESC, id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query runs", "store.List")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan run", "store.List")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to iterate runs", "store.List")
	}

	return runs, nil
}

// Stats summarizes the stored history
func (s *SQLiteRunStore) Stats(ctx context.Context) (*RunStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &RunStats{}
	var avgDuration, avgNodes sql.NullFloat64
	var lastRun sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN parse_ok = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN parse_ok = 1 AND diagnostics IS NOT NULL THEN 1 ELSE 0 END), 0),
		       AVG(duration_ms),
		       AVG(node_count),
		       MAX(created_at)
		FROM runs
	`).Scan(&stats.Total, &stats.Failed, &stats.WithWarnings, &avgDuration, &avgNodes, &lastRun)
	if err != nil {
		return nil, dbError(err, "failed to compute stats", "store.Stats")
	}

	stats.AvgDurationMS = avgDuration.Float64
	stats.AvgNodes = avgNodes.Float64

	// MAX() loses the column type, so the driver returns text
	if lastRun.Valid {
		for _, layout := range []string{"2006-01-02 15:04:05.999999999-07:00", time.RFC3339Nano} {
			if t, err := time.Parse(layout, lastRun.String); err == nil {
				stats.LastRun = t
				break
			}
		}
	}

	return stats, nil
}

// Prune deletes runs older than the given age
func (s *SQLiteRunStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, dbError(err, "failed to prune runs", "store.Prune")
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// Ping verifies the database connection
func (s *SQLiteRunStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLiteRunStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var diagnosticsJSON sql.NullString

	if err := row.Scan(&run.ID, &run.Name, &run.Source, &run.Hash, &run.NodeCount, &run.ParseOK,
		&diagnosticsJSON, &run.DurationMS, &run.CreatedAt); err != nil {
		return nil, err
	}

	if diagnosticsJSON.Valid && diagnosticsJSON.String != "" {
		json.Unmarshal([]byte(diagnosticsJSON.String), &run.Diagnostics)
	}
	return &run, nil
}

func dbError(err error, message, operation string) *mdwerror.Error {
	return mdwerror.Wrap(err, message).
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation(operation)
}

func notFound(id string) *mdwerror.Error {
	return mdwerror.New(fmt.Sprintf("run %s not found", id)).
		WithCode(mdwerror.CodeNotFound).
		WithDetail("id", id)
}

// MemoryRunStore is an in-memory RunStore used when persistence is disabled
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs []*Run
}

// NewMemoryRunStore creates an empty in-memory store
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{}
}

// Record stores a copy of run
func (s *MemoryRunStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.Hash == "" {
		run.Hash = cache.SourceHash(run.Source)
	}

	stored := *run
	stored.Diagnostics = append([]string(nil), run.Diagnostics...)
	s.runs = append(s.runs, &stored)
	return nil
}

// Get returns the run with the given id
func (s *MemoryRunStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, run := range s.runs {
		if run.ID == id {
			found := *run
			return &found, nil
		}
	}
	return nil, notFound(id)
}

// List returns runs matching filter, newest first. Sources are omitted.
func (s *MemoryRunStore) List(ctx context.Context, filter RunFilter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []*Run
	for _, run := range s.runs {
		if filter.Name != "" && run.Name != filter.Name {
			continue
		}
		if filter.Hash != "" && run.Hash != filter.Hash {
			continue
		}
		if filter.FailedOnly && run.Clean() {
			continue
		}
		if !filter.Since.IsZero() && run.CreatedAt.Before(filter.Since) {
			continue
		}
		listed := *run
		listed.Source = ""
		runs = append(runs, &listed)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})

	if filter.Limit > 0 {
		if filter.Offset >= len(runs) {
			return nil, nil
		}
		runs = runs[filter.Offset:]
		if len(runs) > filter.Limit {
			runs = runs[:filter.Limit]
		}
	}
	return runs, nil
}

// Stats summarizes the stored history
func (s *MemoryRunStore) Stats(ctx context.Context) (*RunStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &RunStats{Total: int64(len(s.runs))}
	var duration, nodes float64
	for _, run := range s.runs {
		switch {
		case !run.ParseOK:
			stats.Failed++
		case len(run.Diagnostics) > 0:
			stats.WithWarnings++
		}
		duration += run.DurationMS
		nodes += float64(run.NodeCount)
		if run.CreatedAt.After(stats.LastRun) {
			stats.LastRun = run.CreatedAt
		}
	}
	if stats.Total > 0 {
		stats.AvgDurationMS = duration / float64(stats.Total)
		stats.AvgNodes = nodes / float64(stats.Total)
	}
	return stats, nil
}

// Prune deletes runs older than the given age
func (s *MemoryRunStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	kept := s.runs[:0]
	var deleted int64
	for _, run := range s.runs {
		if run.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, run)
	}
	s.runs = kept
	return deleted, nil
}

// Ping always succeeds
func (s *MemoryRunStore) Ping(ctx context.Context) error {
	return nil
}

// Close releases nothing
func (s *MemoryRunStore) Close() error {
	return nil
}
