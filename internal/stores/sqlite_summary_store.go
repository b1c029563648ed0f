package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"traffic-rollup/internal/models"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	manifest   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS window_summaries (
	run_id           TEXT NOT NULL,
	resolution       TEXT NOT NULL,
	resolution_rank  INTEGER NOT NULL,
	window_start     INTEGER NOT NULL,
	bucket_id        TEXT NOT NULL,
	total_requests   INTEGER NOT NULL,
	success_rate     REAL NOT NULL,
	error_rate       REAL NOT NULL,
	qps              REAL NOT NULL,
	duration_p50     REAL NOT NULL,
	duration_p99     REAL NOT NULL,
	unique_clients   INTEGER NOT NULL,
	anomaly_score    REAL NOT NULL,
	anomaly_severity TEXT NOT NULL,
	payload          TEXT NOT NULL,
	PRIMARY KEY (run_id, resolution, window_start)
);
CREATE TABLE IF NOT EXISTS window_samples (
	run_id          TEXT NOT NULL,
	resolution      TEXT NOT NULL,
	resolution_rank INTEGER NOT NULL,
	window_start    INTEGER NOT NULL,
	payload         TEXT NOT NULL,
	PRIMARY KEY (run_id, resolution, window_start)
);
`

// SQLiteSummaryStore keeps runs in a single SQLite database. Summary columns that are
// commonly filtered on are stored flat; the full record is kept as a JSON payload.
type SQLiteSummaryStore struct {
	db *sql.DB
}

func NewSQLiteSummaryStore(ctx context.Context, dsn string) (*SQLiteSummaryStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite allows one writer; a single connection avoids "database is locked" between goroutines.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteSummaryStore{db: db}, nil
}

func (s *SQLiteSummaryStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteSummaryStore) CreateRun(ctx context.Context, manifest *models.RunManifest) error {
	if err := ValidateRunID(manifest.RunID); err != nil {
		return err
	}
	payload, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal run manifest: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, status, created_at, manifest) VALUES (?, ?, ?, ?) ON CONFLICT(run_id) DO NOTHING`,
		manifest.RunID, string(manifest.Status), manifest.CreatedAt.UnixNano(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunAlreadyExists, manifest.RunID)
	}
	return nil
}

func (s *SQLiteSummaryStore) CompleteRun(ctx context.Context, manifest *models.RunManifest) error {
	payload, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal run manifest: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, manifest = ? WHERE run_id = ?`,
		string(manifest.Status), string(payload), manifest.RunID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, manifest.RunID)
	}
	return nil
}

func (s *SQLiteSummaryStore) GetRun(ctx context.Context, runID string) (*models.RunManifest, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT manifest FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	var manifest models.RunManifest
	if err := json.Unmarshal([]byte(payload), &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run manifest: %w", err)
	}
	return &manifest, nil
}

func (s *SQLiteSummaryStore) SaveSummaries(ctx context.Context, runID string, summaries []models.WindowSummary) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO window_summaries (
				run_id, resolution, resolution_rank, window_start, bucket_id, total_requests,
				success_rate, error_rate, qps, duration_p50, duration_p99, unique_clients,
				anomaly_score, anomaly_severity, payload
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare summary insert: %w", err)
		}
		defer stmt.Close()

		for i := range summaries {
			summary := &summaries[i]
			payload, err := json.Marshal(summary)
			if err != nil {
				return fmt.Errorf("failed to marshal summary %s: %w", summary.Key(), err)
			}
			_, err = stmt.ExecContext(ctx,
				runID, string(summary.Resolution), summary.Resolution.Rank(), summary.WindowStart.UnixNano(),
				summary.BucketID, summary.TotalRequests, summary.SuccessRate, summary.ErrorRate, summary.QPS,
				summary.DurationP50, summary.DurationP99, summary.UniqueClients, summary.AnomalyScore,
				summary.AnomalySeverity, string(payload))
			if err != nil {
				return fmt.Errorf("failed to insert summary %s: %w", summary.Key(), err)
			}
		}
		return nil
	})
}

func (s *SQLiteSummaryStore) SaveSamples(ctx context.Context, runID string, samples []models.WindowSample) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO window_samples (run_id, resolution, resolution_rank, window_start, payload)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare sample insert: %w", err)
		}
		defer stmt.Close()

		for i := range samples {
			sample := &samples[i]
			payload, err := json.Marshal(sample)
			if err != nil {
				return fmt.Errorf("failed to marshal sample %s: %w", sample.Key, err)
			}
			_, err = stmt.ExecContext(ctx,
				runID, string(sample.Key.Resolution), sample.Key.Resolution.Rank(), sample.Key.BucketStart.UnixNano(), string(payload))
			if err != nil {
				return fmt.Errorf("failed to insert sample %s: %w", sample.Key, err)
			}
		}
		return nil
	})
}

func (s *SQLiteSummaryStore) ListSummaries(ctx context.Context, runID string, resolution models.Resolution) ([]models.WindowSummary, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	query := `SELECT payload FROM window_summaries WHERE run_id = ? ORDER BY resolution_rank, window_start`
	args := []any{runID}
	if resolution != "" {
		query = `SELECT payload FROM window_summaries WHERE run_id = ? AND resolution = ? ORDER BY window_start`
		args = append(args, string(resolution))
	}

	summaries := []models.WindowSummary{}
	err := s.scanPayloads(ctx, query, args, func(payload []byte) error {
		var summary models.WindowSummary
		if err := json.Unmarshal(payload, &summary); err != nil {
			return err
		}
		summaries = append(summaries, summary)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}

func (s *SQLiteSummaryStore) ListSamples(ctx context.Context, runID string) ([]models.WindowSample, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	samples := []models.WindowSample{}
	err := s.scanPayloads(ctx,
		`SELECT payload FROM window_samples WHERE run_id = ? ORDER BY resolution_rank, window_start`,
		[]any{runID},
		func(payload []byte) error {
			var sample models.WindowSample
			if err := json.Unmarshal(payload, &sample); err != nil {
				return err
			}
			samples = append(samples, sample)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	return samples, nil
}

func (s *SQLiteSummaryStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}

func (s *SQLiteSummaryStore) scanPayloads(ctx context.Context, query string, args []any, fn func(payload []byte) error) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return err
		}
		if err := fn([]byte(payload)); err != nil {
			return err
		}
	}
	return rows.Err()
}

var _ SummaryStore = (*SQLiteSummaryStore)(nil)
