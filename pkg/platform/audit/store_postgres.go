package audit

import (
	"context"
	"database/sql"
	"fmt"

	id "fastpass/pkg/domain"
)

// PostgresStore persists events through database/sql.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO activity_events (id, ts, user_id, app_id, action, category, device)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.Timestamp, event.UserID.String(), event.AppID.String(),
		string(event.Action), string(event.Category), event.Device,
	)
	if err != nil {
		return fmt.Errorf("append activity event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, ts, app_id, action, category, device
		FROM activity_events
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, userID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e := Event{UserID: userID}
		var rawAppID string
		if err := rows.Scan(&e.ID, &e.Timestamp, &rawAppID, &e.Action, &e.Category, &e.Device); err != nil {
			return nil, fmt.Errorf("list activity events: %w", err)
		}
		e.AppID = id.AppID(rawAppID)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	return out, nil
}
