// Package sentinel defines shared sentinel errors returned by store
// implementations. Services translate them into domain errors at the boundary.
package sentinel

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
)
