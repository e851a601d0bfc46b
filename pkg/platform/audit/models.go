// Package audit records user-visible activity: approvals, declines,
// credential issuance. Events are emitted from domain logic and drained
// asynchronously so the approval path never waits on activity storage.
package audit

import (
	"time"

	"github.com/oklog/ulid/v2"

	id "fastpass/pkg/domain"
)

// Action identifies what happened.
type Action string

const (
	ActionApprovalGranted  Action = "approval_granted"
	ActionApprovalDeclined Action = "approval_declined"
	ActionCredentialIssued Action = "credential_issued"
	ActionAppVerified      Action = "app_verified"
	ActionProfileCreated   Action = "profile_created"
	ActionSessionCreated   Action = "session_created"
)

// Category groups actions for filtering in the activity feed.
type Category string

const (
	CategoryConsent    Category = "consent"
	CategorySecurity   Category = "security"
	CategoryOperations Category = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	// ID is a ULID: unique, lexicographically ordered by emission time.
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    id.UserID `json:"userId"`
	AppID     id.AppID  `json:"appId,omitempty"`
	Action    Action    `json:"action"`
	Category  Category  `json:"category"`
	// Device is a short human-readable client summary, e.g. "Chrome on Linux".
	Device string `json:"device,omitempty"`
}

// Fill stamps missing identity and time on an event.
func (e *Event) Fill(now time.Time) {
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if e.ID == "" {
		e.ID = ulid.MustNew(ulid.Timestamp(e.Timestamp), ulid.DefaultEntropy()).String()
	}
	if e.Category == "" {
		e.Category = categoryFor(e.Action)
	}
}

func categoryFor(action Action) Category {
	switch action {
	case ActionApprovalGranted, ActionApprovalDeclined:
		return CategoryConsent
	case ActionCredentialIssued, ActionSessionCreated:
		return CategorySecurity
	default:
		return CategoryOperations
	}
}
