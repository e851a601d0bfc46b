package session

import (
	"context"

	"fastpass/internal/platform/middleware"
)

// ToMiddlewareClaims converts token claims for the auth middleware.
func ToMiddlewareClaims(claims *Claims) *middleware.SessionClaims {
	return &middleware.SessionClaims{
		UserID:    claims.UserID,
		SessionID: claims.SessionID,
		Name:      claims.Name,
		Email:     claims.Email,
		PFP:       claims.PFP,
	}
}

// ValidatorAdapter bridges the token service and the optional session store to
// the middleware contract. When a store is configured, revoked sessions fail
// validation even with a structurally valid token.
type ValidatorAdapter struct {
	tokens *TokenService
	store  Store
}

func NewValidatorAdapter(tokens *TokenService, store Store) *ValidatorAdapter {
	return &ValidatorAdapter{tokens: tokens, store: store}
}

func (a *ValidatorAdapter) ValidateToken(tokenString string) (*middleware.SessionClaims, error) {
	claims, err := a.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if a.store != nil {
		if err := a.store.CheckActive(context.Background(), claims.SessionID); err != nil {
			return nil, err
		}
	}
	return ToMiddlewareClaims(claims), nil
}
