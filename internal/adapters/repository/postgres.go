package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/metrics"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id          TEXT PRIMARY KEY,
	trust_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	skill_level TEXT NOT NULL DEFAULT '',
	data        JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS profiles_trust_idx ON profiles (trust_score DESC, id ASC);

CREATE TABLE IF NOT EXISTS match_requests (
	id              TEXT PRIMARY KEY,
	requester_id    TEXT NOT NULL,
	matched_user_id TEXT NOT NULL,
	status          TEXT NOT NULL,
	message         TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL,
	responded_at    TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS match_requests_open_pair ON match_requests
	(LEAST(requester_id, matched_user_id), GREATEST(requester_id, matched_user_id))
	WHERE status IN ('pending', 'accepted');
`

// PostgresStore implements ProfileStore and MatchStore on PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool and verifies the connection.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the tables and indexes if they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}

func (s *PostgresStore) Upsert(ctx context.Context, p model.Profile) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if p.ID == "" {
		return false, ErrInvalidID
	}
	data, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("failed to marshal profile: %w", err)
	}

	// xmax is 0 only for freshly inserted rows.
	var created bool
	err = s.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, trust_score, skill_level, data, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET trust_score = $2, skill_level = $3, data = $4, updated_at = $5
		 RETURNING (xmax = 0)`,
		p.ID, p.TrustScore, string(p.SkillLevel), data, p.UpdatedAt,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert profile %s: %w", p.ID, err)
	}
	return created, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (model.Profile, error) {
	defer observeQuery(time.Now())

	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM profiles WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("failed to get profile %s: %w", id, err)
	}
	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Profile{}, fmt.Errorf("failed to decode profile %s: %w", id, err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]model.Profile, error) {
	defer observeQuery(time.Now())

	if f.Limit < 0 {
		return nil, ErrInvalidLimit
	}
	query, args := buildProfileQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	out := make([]model.Profile, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		var p model.Profile
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CreateRequest(ctx context.Context, req model.MatchRequest) error {
	if req.ID == "" {
		return ErrInvalidID
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_requests (id, requester_id, matched_user_id, status, message, created_at, responded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, req.RequesterID, req.MatchedUserID, string(req.Status), req.Message, req.CreatedAt, req.RespondedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create match request: %w", err)
	}
	return nil
}

const requestColumns = `id, requester_id, matched_user_id, status, message, created_at, responded_at`

func scanRequest(row pgx.Row) (model.MatchRequest, error) {
	var (
		req    model.MatchRequest
		status string
	)
	err := row.Scan(&req.ID, &req.RequesterID, &req.MatchedUserID, &status, &req.Message, &req.CreatedAt, &req.RespondedAt)
	req.Status = model.RequestStatus(status)
	return req, err
}

func (s *PostgresStore) GetRequest(ctx context.Context, id string) (model.MatchRequest, error) {
	defer observeQuery(time.Now())

	req, err := scanRequest(s.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM match_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.MatchRequest{}, ErrNotFound
		}
		return model.MatchRequest{}, fmt.Errorf("failed to get match request %s: %w", id, err)
	}
	return req, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, from, to model.RequestStatus, at time.Time) (model.MatchRequest, error) {
	req, err := scanRequest(s.pool.QueryRow(ctx,
		`UPDATE match_requests SET status = $1, responded_at = $2
		 WHERE id = $3 AND status = $4
		 RETURNING `+requestColumns,
		string(to), at, id, string(from)))
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.MatchRequest{}, fmt.Errorf("failed to update match request %s: %w", id, err)
	}
	current, getErr := s.GetRequest(ctx, id)
	if getErr != nil {
		return model.MatchRequest{}, getErr
	}
	return current, ErrStaleStatus
}

func (s *PostgresStore) ListRequests(ctx context.Context, f RequestFilter) ([]model.MatchRequest, error) {
	defer observeQuery(time.Now())

	if f.Limit < 0 {
		return nil, ErrInvalidLimit
	}
	query, args := buildRequestQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list match requests: %w", err)
	}
	defer rows.Close()

	out := make([]model.MatchRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match request: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list match requests: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountRequests(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM match_requests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count match requests: %w", err)
	}
	return n, nil
}
