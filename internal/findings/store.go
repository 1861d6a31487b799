// Package findings persists analysis batches and their findings in SQLite.
package findings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"blockscan/internal/compare"
	"blockscan/internal/config"
	"blockscan/internal/ingest"
)

// Store manages findings persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// ErrLocked indicates another process holds the findings database lock.
var ErrLocked = errors.New("findings database is locked by another process")

// ErrBatchNotFound indicates no batch matched the requested identifier.
var ErrBatchNotFound = errors.New("batch not found")

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the findings database. The database is
// guarded by an advisory file lock so concurrent analyze runs do not
// interleave writes.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.FindingsDBPath()
	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire findings lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close releases the advisory lock and closes the database connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var closeErr error
	if s.db != nil {
		closeErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

// Path returns the on-disk location of the findings database.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return filepath.Clean(s.path)
}

// SaveBatch records a completed analysis run and its findings in a single
// transaction.
func (s *Store) SaveBatch(ctx context.Context, batch *ingest.Batch, results []compare.Finding) error {
	ctx = ensureContext(ctx)
	if batch == nil {
		return errors.New("batch is nil")
	}

	inputs, err := json.Marshal(batch.Inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	warnings, err := json.Marshal(warningStrings(batch))
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin batch tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO batches (id, created_at, inputs, projects, images, videos, warnings)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			batch.ID,
			batch.CreatedAt.UTC().Format(time.RFC3339Nano),
			string(inputs),
			len(batch.Projects),
			len(batch.Images),
			len(batch.Videos),
			string(warnings),
		); err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}

		for _, finding := range results {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO findings (batch_id, owner_a, owner_b, modality, classification, score, shared_assets, note)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				batch.ID,
				finding.OwnerA,
				finding.OwnerB,
				string(finding.Modality),
				string(finding.Classification),
				finding.Score,
				finding.SharedAssets,
				finding.Note,
			); err != nil {
				return fmt.Errorf("insert finding: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
		return nil
	})
}

func warningStrings(batch *ingest.Batch) []string {
	out := make([]string, 0, len(batch.Warnings))
	for _, warning := range batch.Warnings {
		out = append(out, warning.Path+": "+warning.Message)
	}
	return out
}

// BatchSummary describes a stored analysis run.
type BatchSummary struct {
	ID        string
	CreatedAt time.Time
	Inputs    []string
	Projects  int
	Images    int
	Videos    int
	Warnings  []string
	Findings  int
}

// LatestBatchID returns the identifier of the most recently stored batch.
func (s *Store) LatestBatchID(ctx context.Context) (string, error) {
	ctx = ensureContext(ctx)
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM batches ORDER BY created_at DESC, id DESC LIMIT 1",
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrBatchNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query latest batch: %w", err)
	}
	return id, nil
}

// GetBatch loads the stored summary for the given batch identifier.
func (s *Store) GetBatch(ctx context.Context, batchID string) (*BatchSummary, error) {
	ctx = ensureContext(ctx)
	var (
		summary      BatchSummary
		createdAt    string
		inputsJSON   string
		warningsJSON string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, created_at, inputs, projects, images, videos, warnings FROM batches WHERE id = ?",
		batchID,
	).Scan(&summary.ID, &createdAt, &inputsJSON, &summary.Projects, &summary.Images, &summary.Videos, &warningsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	if err != nil {
		return nil, fmt.Errorf("query batch: %w", err)
	}

	summary.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse batch timestamp: %w", err)
	}
	if err := json.Unmarshal([]byte(inputsJSON), &summary.Inputs); err != nil {
		return nil, fmt.Errorf("decode inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(warningsJSON), &summary.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM findings WHERE batch_id = ?", batchID,
	).Scan(&summary.Findings); err != nil {
		return nil, fmt.Errorf("count findings: %w", err)
	}
	return &summary, nil
}

// ListBatches returns stored batch summaries, newest first.
func (s *Store) ListBatches(ctx context.Context) ([]BatchSummary, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM batches ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan batch id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}

	summaries := make([]BatchSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := s.GetBatch(ctx, id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// ListFindings returns the findings recorded for the given batch in the
// order they were stored.
func (s *Store) ListFindings(ctx context.Context, batchID string) ([]compare.Finding, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner_a, owner_b, modality, classification, score, shared_assets, note
		 FROM findings WHERE batch_id = ? ORDER BY id`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	var results []compare.Finding
	for rows.Next() {
		var (
			finding        compare.Finding
			modality       string
			classification string
		)
		if err := rows.Scan(
			&finding.OwnerA,
			&finding.OwnerB,
			&modality,
			&classification,
			&finding.Score,
			&finding.SharedAssets,
			&finding.Note,
		); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		finding.Modality = ingest.Modality(modality)
		finding.Classification = compare.Classification(classification)
		results = append(results, finding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}
	return results, nil
}
