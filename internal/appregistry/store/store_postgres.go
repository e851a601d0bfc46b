package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"fastpass/internal/appregistry/models"
	id "fastpass/pkg/domain"
	"fastpass/pkg/platform/sentinel"
)

// Postgres persists registrations through database/sql. Requested integrations
// and button style are stored as jsonb.
type Postgres struct {
	db *sql.DB
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const appColumns = `id, name, description, button_description, logo, redirect_uri, owner_uid,
	verified, verification_requested, min_age_group, requested_integrations, button_style,
	approvals, created_at, updated_at`

func (s *Postgres) Get(ctx context.Context, appID id.AppID) (*models.ClientApp, error) {
	query := `SELECT ` + appColumns + ` FROM client_apps WHERE id = $1`
	app, err := scanApp(s.db.QueryRowContext(ctx, query, appID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client app: %w", err)
	}
	return app, nil
}

func (s *Postgres) Put(ctx context.Context, app *models.ClientApp) error {
	integrationsJSON, err := json.Marshal(app.RequestedIntegrations)
	if err != nil {
		return fmt.Errorf("encode requested integrations: %w", err)
	}
	styleJSON, err := json.Marshal(app.ButtonStyle)
	if err != nil {
		return fmt.Errorf("encode button style: %w", err)
	}
	query := `
		INSERT INTO client_apps (` + appColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			button_description = EXCLUDED.button_description,
			logo = EXCLUDED.logo,
			redirect_uri = EXCLUDED.redirect_uri,
			verification_requested = EXCLUDED.verification_requested,
			min_age_group = EXCLUDED.min_age_group,
			requested_integrations = EXCLUDED.requested_integrations,
			button_style = EXCLUDED.button_style,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		app.ID.String(), app.Name, app.Description, app.ButtonDescription, app.Logo,
		app.RedirectURI, app.OwnerUID.String(), app.Verified, app.VerificationRequested,
		string(app.EffectiveMinAge()), integrationsJSON, styleJSON,
		app.Approvals, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put client app: %w", err)
	}
	return nil
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerUID id.UserID) ([]*models.ClientApp, error) {
	query := `SELECT ` + appColumns + ` FROM client_apps WHERE owner_uid = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, ownerUID.String())
	if err != nil {
		return nil, fmt.Errorf("list client apps: %w", err)
	}
	defer rows.Close()

	var out []*models.ClientApp
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("list client apps: %w", err)
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list client apps: %w", err)
	}
	return out, nil
}

func (s *Postgres) IncrementApprovals(ctx context.Context, appID id.AppID) error {
	query := `UPDATE client_apps SET approvals = approvals + 1, updated_at = NOW() WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, appID.String())
	if err != nil {
		return fmt.Errorf("increment approvals: %w", err)
	}
	return checkAffected(res)
}

func (s *Postgres) SetVerified(ctx context.Context, appID id.AppID, verified bool) error {
	query := `
		UPDATE client_apps
		SET verified = $2, verification_requested = FALSE, updated_at = NOW()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, appID.String(), verified)
	if err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	return checkAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApp(row rowScanner) (*models.ClientApp, error) {
	var (
		app              models.ClientApp
		rawID, rawOwner  string
		integrationsJSON []byte
		styleJSON        []byte
	)
	err := row.Scan(
		&rawID, &app.Name, &app.Description, &app.ButtonDescription, &app.Logo,
		&app.RedirectURI, &rawOwner, &app.Verified, &app.VerificationRequested,
		&app.MinAgeGroup, &integrationsJSON, &styleJSON,
		&app.Approvals, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if app.ID, err = id.ParseAppID(rawID); err != nil {
		return nil, fmt.Errorf("stored app id: %w", err)
	}
	if app.OwnerUID, err = id.ParseUserID(rawOwner); err != nil {
		return nil, fmt.Errorf("stored owner uid: %w", err)
	}
	if len(integrationsJSON) > 0 {
		if err := json.Unmarshal(integrationsJSON, &app.RequestedIntegrations); err != nil {
			return nil, fmt.Errorf("decode requested integrations: %w", err)
		}
	}
	if len(styleJSON) > 0 {
		if err := json.Unmarshal(styleJSON, &app.ButtonStyle); err != nil {
			return nil, fmt.Errorf("decode button style: %w", err)
		}
	}
	return &app, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
