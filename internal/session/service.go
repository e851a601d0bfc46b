package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	id "fastpass/pkg/domain"
	dErrors "fastpass/pkg/domain-errors"
	"fastpass/pkg/platform/audit"
)

// CookieName carries the session token to the popup and the probe.
const CookieName = "FASTPASS_SESSION"

// Service issues and revokes sessions. Sign-in itself happens upstream; this
// service turns an authenticated identity into a browser session.
type Service struct {
	tokens   *TokenService
	store    Store
	recorder *audit.Recorder
	ttl      time.Duration
	logger   *slog.Logger
}

func NewService(tokens *TokenService, store Store, recorder *audit.Recorder, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{tokens: tokens, store: store, recorder: recorder, ttl: ttl, logger: logger}
}

// Create mints a session token for an authenticated identity.
func (s *Service) Create(ctx context.Context, userID id.UserID, ident Identity) (string, error) {
	sessionID := uuid.New()
	token, err := s.tokens.GenerateSessionToken(userID, sessionID, ident, s.ttl)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	if s.store != nil {
		rec := Record{UserID: userID.String(), CreatedAt: time.Now().UTC()}
		if err := s.store.Create(ctx, sessionID.String(), rec, s.ttl); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store session")
		}
	}
	if s.recorder != nil {
		s.recorder.Emit(ctx, audit.Event{UserID: userID, Action: audit.ActionSessionCreated})
	}
	s.logger.InfoContext(ctx, "session created", "user_id", userID, "session_id", sessionID)
	return token, nil
}

// Revoke invalidates a session ahead of token expiry.
func (s *Service) Revoke(ctx context.Context, sessionID string) error {
	if s.store == nil {
		return nil
	}
	return s.store.Revoke(ctx, sessionID)
}

// TTL exposes the configured session lifetime for cookie expiry.
func (s *Service) TTL() time.Duration { return s.ttl }

// Probe inspects a raw token and reports the state the session-check page
// posts to its parent window.
func (s *Service) Probe(tokenString string) (status, firstName string) {
	if tokenString == "" {
		return "LOGGED_OUT", ""
	}
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return "LOGGED_OUT", ""
	}
	if s.store != nil {
		if err := s.store.CheckActive(context.Background(), claims.SessionID); err != nil {
			return "LOGGED_OUT", ""
		}
	}
	return "LOGGED_IN", firstWord(claims.Name)
}

func firstWord(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return s[:i]
		}
	}
	return s
}
