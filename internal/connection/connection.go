// Package connection tracks the relationship between a user and an app: how
// often it was approved, when it was last used, and the managed credential
// minted for sign-in requests.
package connection

import (
	"time"

	id "fastpass/pkg/domain"
)

// Record is one user-to-app connection.
//
// Invariants:
//   - ApprovedCount only increases
//   - Credential, once set, never changes (see vault.GetOrCreate)
type Record struct {
	UserID        id.UserID `json:"userId"`
	AppID         id.AppID  `json:"appId"`
	ApprovedCount int64     `json:"approvedCount"`
	LastUsed      time.Time `json:"lastUsed"`
	// Credential is the managed per-app secret. Empty until the first
	// sign-in approval.
	Credential string `json:"-"`
}
