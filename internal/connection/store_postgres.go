package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	id "fastpass/pkg/domain"
	"fastpass/pkg/platform/sentinel"
)

// Postgres persists connections keyed by (user, app). Credential immutability
// is enforced in SQL so concurrent approvals converge on one secret.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Get(ctx context.Context, userID id.UserID, appID id.AppID) (*Record, error) {
	query := `
		SELECT approved_count, last_used, COALESCE(credential, '')
		FROM connections
		WHERE user_id = $1 AND app_id = $2
	`
	rec := Record{UserID: userID, AppID: appID}
	err := s.pool.QueryRow(ctx, query, userID.String(), appID.String()).
		Scan(&rec.ApprovedCount, &rec.LastUsed, &rec.Credential)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	return &rec, nil
}

func (s *Postgres) RecordApproval(ctx context.Context, userID id.UserID, appID id.AppID, at time.Time) error {
	query := `
		INSERT INTO connections (user_id, app_id, approved_count, last_used)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_id, app_id) DO UPDATE SET
			approved_count = connections.approved_count + 1,
			last_used = EXCLUDED.last_used
	`
	if _, err := s.pool.Exec(ctx, query, userID.String(), appID.String(), at); err != nil {
		return fmt.Errorf("record approval: %w", err)
	}
	return nil
}

func (s *Postgres) SetCredential(ctx context.Context, userID id.UserID, appID id.AppID, credential string) (string, error) {
	// The upsert only writes when no credential exists; the RETURNING clause
	// always yields the surviving value.
	query := `
		INSERT INTO connections (user_id, app_id, approved_count, last_used, credential)
		VALUES ($1, $2, 0, NOW(), $3)
		ON CONFLICT (user_id, app_id) DO UPDATE SET
			credential = COALESCE(NULLIF(connections.credential, ''), EXCLUDED.credential)
		RETURNING credential
	`
	var stored string
	err := s.pool.QueryRow(ctx, query, userID.String(), appID.String(), credential).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("set credential: %w", err)
	}
	return stored, nil
}

func (s *Postgres) ListByUser(ctx context.Context, userID id.UserID) ([]*Record, error) {
	query := `
		SELECT app_id, approved_count, last_used, COALESCE(credential, '')
		FROM connections
		WHERE user_id = $1
		ORDER BY app_id
	`
	rows, err := s.pool.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec := Record{UserID: userID}
		var rawAppID string
		if err := rows.Scan(&rawAppID, &rec.ApprovedCount, &rec.LastUsed, &rec.Credential); err != nil {
			return nil, fmt.Errorf("list connections: %w", err)
		}
		if rec.AppID, err = id.ParseAppID(rawAppID); err != nil {
			return nil, fmt.Errorf("stored app id: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	return out, nil
}
