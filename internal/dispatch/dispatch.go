// Package dispatch describes how authorization results travel back to the
// opener window. The popup page performs the actual postMessage; this package
// owns the envelope schema and the target-origin decision.
package dispatch

import (
	"context"
	"log/slog"
	"net/url"
	"time"
)

// CloseDelay is how long the popup stays open after a result is dispatched so
// the user can read the confirmation screen.
const CloseDelay = 1500 * time.Millisecond

// Wildcard is the postMessage target that delivers to any opener origin. It is
// the last resort: anyone could be listening.
const Wildcard = "*"

// Status is the terminal authorization outcome carried in the envelope.
type Status string

const (
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
	// StatusCanceled is synthesized by the embed script when the popup
	// disappears without a result; the dispatcher itself never sends it.
	StatusCanceled Status = "canceled"
)

// Envelope is the cross-window message payload.
type Envelope struct {
	Status Status         `json:"status"`
	Data   map[string]any `json:"data"`
}

// Resolver decides target origins, counting wildcard fallbacks.
type Resolver struct {
	logger     *slog.Logger
	onWildcard func()
}

// NewResolver wires the resolver. onWildcard fires once per wildcard fallback;
// pass nil when no counter is wanted.
func NewResolver(logger *slog.Logger, onWildcard func()) *Resolver {
	return &Resolver{logger: logger, onWildcard: onWildcard}
}

// TargetOrigin resolves where the result may be posted:
//
//  1. the opener origin handed over when the popup was opened
//  2. the origin of the app's redirect URI, except in test mode where the
//     developer's page origin is unknowable
//  3. the wildcard, loudly
func (r *Resolver) TargetOrigin(ctx context.Context, openerOrigin string, testMode bool, redirectURI string) string {
	if openerOrigin != "" {
		return openerOrigin
	}
	if !testMode && redirectURI != "" {
		if u, err := url.Parse(redirectURI); err == nil && u.Scheme != "" && u.Host != "" {
			return u.Scheme + "://" + u.Host
		}
		r.logger.WarnContext(ctx, "unparseable redirect uri, falling back to wildcard",
			"redirect_uri", redirectURI,
		)
	}
	if r.onWildcard != nil {
		r.onWildcard()
	}
	r.logger.WarnContext(ctx, "dispatching authorization result to wildcard origin")
	return Wildcard
}
