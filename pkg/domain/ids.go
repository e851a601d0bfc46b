// Package domain holds shared identifier types. Typed IDs prevent cross-type
// assignment at compile time; parsing enforces validity at trust boundaries.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "fastpass/pkg/domain-errors"
)

// UserID identifies a FastPass account holder.
type UserID uuid.UUID

// AppID identifies a registered client application. Unlike user IDs these are
// opaque string keys minted at registration time and embedded in third-party
// pages, so validation is structural rather than format-based.
type AppID string

// appIDForbidden are characters that would corrupt the backing store's key
// scheme if they appeared inside an app identifier.
const appIDForbidden = ".#$[]/"

const maxAppIDLength = 128

// ParseUserID validates and converts a string into a UserID.
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return UserID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "user id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UserID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "user id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return UserID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "user id cannot be the nil UUID")
	}
	return UserID(parsed), nil
}

// NewUserID mints a fresh user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

func (u UserID) String() string { return uuid.UUID(u).String() }

func (u UserID) IsNil() bool { return uuid.UUID(u) == uuid.Nil }

// ParseAppID validates the structural constraints on an app identifier.
func ParseAppID(s string) (AppID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "app id cannot be empty")
	}
	if len(s) > maxAppIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "app id is too long")
	}
	if strings.ContainsAny(s, appIDForbidden) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "app id contains forbidden characters")
	}
	return AppID(s), nil
}

func (a AppID) String() string { return string(a) }
