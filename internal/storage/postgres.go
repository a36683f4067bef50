package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"siteguard/internal/domain"
)

// PostgresStore handles interactions with the PostgreSQL database.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// CreateRun registers a new scan run before the crawl starts.
func (s *PostgresStore) CreateRun(ctx context.Context, job domain.ScanJob) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO scan_runs (run_id, target_url, state, filters, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (run_id) DO NOTHING`,
		job.RunID, job.TargetURL, string(domain.StateInitialized), job.Filters.Names())
	return err
}

// UpdateRunState moves a run through its lifecycle states.
func (s *PostgresStore) UpdateRunState(ctx context.Context, runID string, state domain.RunState) error {
	_, err := s.db.Exec(ctx,
		`UPDATE scan_runs SET state = $2, updated_at = NOW() WHERE run_id = $1`,
		runID, string(state))
	return err
}

// SaveRun persists a finished run and all its page records within a single
// transaction. Page payloads go in as JSONB alongside the indexed columns.
func (s *PostgresStore) SaveRun(ctx context.Context, result *domain.RunResult) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var siteHealth, factors []byte
	if result.SiteHealth != nil {
		if siteHealth, err = json.Marshal(result.SiteHealth); err != nil {
			return fmt.Errorf("marshal site health: %w", err)
		}
	}
	if factors, err = json.Marshal(result.ConfidenceFactors); err != nil {
		return fmt.Errorf("marshal confidence factors: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO scan_runs (run_id, target_url, state, filters, total_pages, passed, failed,
		                        site_health, confidence_score, confidence_factors, narrative,
		                        anomaly_count, started_at, finished_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		 ON CONFLICT (run_id) DO UPDATE SET
		   state = EXCLUDED.state, total_pages = EXCLUDED.total_pages,
		   passed = EXCLUDED.passed, failed = EXCLUDED.failed,
		   site_health = EXCLUDED.site_health, confidence_score = EXCLUDED.confidence_score,
		   confidence_factors = EXCLUDED.confidence_factors, narrative = EXCLUDED.narrative,
		   anomaly_count = EXCLUDED.anomaly_count, finished_at = EXCLUDED.finished_at,
		   updated_at = NOW()`,
		result.RunID, result.TargetURL, string(result.State), result.ActiveFilters,
		result.Total, result.Passed, result.Failed,
		siteHealth, result.ConfidenceScore, factors, result.Narrative,
		result.AnomalyCount, result.StartedAt, result.FinishedAt)
	if err != nil {
		return err
	}

	if len(result.Pages) > 0 {
		batch := &pgx.Batch{}
		for i, p := range result.Pages {
			payload, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("marshal page %s: %w", p.URL, err)
			}
			batch.Queue(
				`INSERT INTO page_results (run_id, position, url, status, result, health_score,
				                           risk_category, confidence_score, payload)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				 ON CONFLICT (run_id, position) DO UPDATE SET
				   url = EXCLUDED.url, status = EXCLUDED.status, result = EXCLUDED.result,
				   health_score = EXCLUDED.health_score, risk_category = EXCLUDED.risk_category,
				   confidence_score = EXCLUDED.confidence_score, payload = EXCLUDED.payload`,
				result.RunID, i, p.URL, p.Status, p.Result,
				p.HealthScore, p.RiskCategory, p.ConfidenceScore, payload)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// RunStatus is the stored state of one scan run.
type RunStatus struct {
	RunID           string    `json:"run_id"`
	TargetURL       string    `json:"target_url"`
	State           string    `json:"state"`
	TotalPages      int       `json:"total_pages"`
	Passed          int       `json:"passed"`
	Failed          int       `json:"failed"`
	ConfidenceScore *float64  `json:"confidence_score"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GetRunStatus retrieves the current state of a run.
func (s *PostgresStore) GetRunStatus(ctx context.Context, runID string) (*RunStatus, error) {
	var status RunStatus
	err := s.db.QueryRow(ctx,
		`SELECT run_id, target_url, state, COALESCE(total_pages, 0), COALESCE(passed, 0),
		        COALESCE(failed, 0), confidence_score, COALESCE(updated_at, created_at)
		 FROM scan_runs WHERE run_id = $1`,
		runID,
	).Scan(&status.RunID, &status.TargetURL, &status.State, &status.TotalPages,
		&status.Passed, &status.Failed, &status.ConfidenceScore, &status.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("not_found")
	}
	return &status, err
}
