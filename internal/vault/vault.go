// Package vault mints and returns the managed per-app credential used for
// sign-in requests. The same (user, app) pair always yields the same secret.
package vault

import (
	"context"
	"errors"
	"log/slog"

	"fastpass/internal/connection"
	id "fastpass/pkg/domain"
	dErrors "fastpass/pkg/domain-errors"
	"fastpass/pkg/platform/sentinel"
	"fastpass/pkg/secrets"
)

// CredentialPrefix marks every vault-issued secret so relying apps and support
// tooling can recognize managed credentials.
const CredentialPrefix = "fp_"

// Mode distinguishes a returning user from a first sign-in.
type Mode string

const (
	// ModeLogin means the credential already existed.
	ModeLogin Mode = "Login"
	// ModeSignup means a credential was minted during this call.
	ModeSignup Mode = "Signup"
)

// Vault is the credential get-or-create service.
type Vault struct {
	connections connection.Store
	logger      *slog.Logger
	onCreate    func()
}

// New wires the vault. onCreate is invoked once per minted credential; pass
// nil when no counter is wanted.
func New(connections connection.Store, logger *slog.Logger, onCreate func()) *Vault {
	return &Vault{connections: connections, logger: logger, onCreate: onCreate}
}

// GetOrCreate returns the managed credential for the pair, minting one on
// first use. Two concurrent first calls may both generate a secret; the
// connection store arbitrates and both callers observe the surviving value.
// The credential itself is never logged.
func (v *Vault) GetOrCreate(ctx context.Context, userID id.UserID, appID id.AppID) (string, Mode, error) {
	rec, err := v.connections.Get(ctx, userID, appID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read connection")
	}
	if rec != nil && rec.Credential != "" {
		return rec.Credential, ModeLogin, nil
	}

	generated, err := secrets.Generate()
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate credential")
	}
	stored, err := v.connections.SetCredential(ctx, userID, appID, CredentialPrefix+generated)
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store credential")
	}
	if stored != CredentialPrefix+generated {
		// Lost the race; an existing credential survived.
		return stored, ModeLogin, nil
	}

	if v.onCreate != nil {
		v.onCreate()
	}
	v.logger.InfoContext(ctx, "credential issued", "user_id", userID, "app_id", appID)
	return stored, ModeSignup, nil
}
