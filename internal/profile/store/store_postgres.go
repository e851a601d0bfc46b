package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fastpass/internal/profile/models"
	id "fastpass/pkg/domain"
	"fastpass/pkg/platform/sentinel"
)

// Postgres persists profiles with attribute values in a jsonb column. It does
// not implement Watcher; deployments needing push updates keep the in-memory
// store in front or rely on explicit reloads.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Get(ctx context.Context, userID id.UserID) (*models.UserProfile, error) {
	query := `
		SELECT name, email, pfp, age_group, hide_email, pin, pin_security_level, attributes
		FROM profiles
		WHERE uid = $1
	`
	var (
		p         models.UserProfile
		attrsJSON []byte
	)
	p.UID = userID
	err := s.pool.QueryRow(ctx, query, userID.String()).Scan(
		&p.Name, &p.Email, &p.PFP, &p.AgeGroup, &p.HideEmail, &p.PIN, &p.PINSecurityLevel, &attrsJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if len(attrsJSON) > 0 {
		if err := json.Unmarshal(attrsJSON, &p.Attributes); err != nil {
			return nil, fmt.Errorf("decode profile attributes: %w", err)
		}
	}
	return &p, nil
}

func (s *Postgres) Put(ctx context.Context, profile *models.UserProfile) error {
	attrsJSON, err := json.Marshal(profile.Attributes)
	if err != nil {
		return fmt.Errorf("encode profile attributes: %w", err)
	}
	query := `
		INSERT INTO profiles (uid, name, email, pfp, age_group, hide_email, pin, pin_security_level, attributes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (uid) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			pfp = EXCLUDED.pfp,
			age_group = EXCLUDED.age_group,
			hide_email = EXCLUDED.hide_email,
			pin = EXCLUDED.pin,
			pin_security_level = EXCLUDED.pin_security_level,
			attributes = EXCLUDED.attributes,
			updated_at = NOW()
	`
	_, err = s.pool.Exec(ctx, query,
		profile.UID.String(), profile.Name, profile.Email, profile.PFP,
		string(profile.AgeGroup), profile.HideEmail, profile.PIN,
		string(profile.PINSecurityLevel), attrsJSON,
	)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

func (s *Postgres) Patch(ctx context.Context, userID id.UserID, attrs map[string]any) error {
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("encode profile patch: %w", err)
	}
	query := `
		UPDATE profiles
		SET attributes = COALESCE(attributes, '{}'::jsonb) || $2::jsonb, updated_at = NOW()
		WHERE uid = $1
	`
	tag, err := s.pool.Exec(ctx, query, userID.String(), attrsJSON)
	if err != nil {
		return fmt.Errorf("patch profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
