// Package broker runs the authorization flow behind the consent popup: load
// the app and profile, preview the disclosure, and settle on approval or
// decline.
package broker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	appmodels "fastpass/internal/appregistry/models"
	appstore "fastpass/internal/appregistry/store"
	"fastpass/internal/catalog"
	"fastpass/internal/connection"
	"fastpass/internal/dispatch"
	"fastpass/internal/notify"
	"fastpass/internal/platform/metrics"
	"fastpass/internal/platform/tracing"
	"fastpass/internal/policy"
	profilemodels "fastpass/internal/profile/models"
	profilestore "fastpass/internal/profile/store"
	"fastpass/internal/vault"
	id "fastpass/pkg/domain"
	dErrors "fastpass/pkg/domain-errors"
	"fastpass/pkg/platform/audit"
	"fastpass/pkg/platform/sentinel"
)

// State is the authorization lifecycle position.
type State string

const (
	StateLoading  State = "loading"
	StateError    State = "error"
	StateReady    State = "ready"
	StateApproved State = "approved"
	StateDeclined State = "declined"
)

// Authorization is one in-flight consent flow. It lives for a single popup
// interaction; terminal states never transition again.
type Authorization struct {
	State   State
	App     *appmodels.ClientApp
	Profile *profilemodels.UserProfile
	Preview policy.Result
	// Ineligible marks a ready flow whose user cannot authorize this app.
	// The preview stays empty and approval must stay unreachable.
	Ineligible          bool
	IneligibilityReason string
	// Err holds the load failure when State is StateError.
	Err error
}

// Service drives authorizations. It is stateless; the Authorization aggregate
// is rebuilt per request from the stores.
type Service struct {
	apps        appstore.Store
	profiles    profilestore.Store
	connections connection.Store
	vault       *vault.Vault
	catalog     *catalog.Catalog
	recorder    *audit.Recorder
	notifier    notify.Notifier
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      *slog.Logger
}

func NewService(
	apps appstore.Store,
	profiles profilestore.Store,
	connections connection.Store,
	v *vault.Vault,
	cat *catalog.Catalog,
	recorder *audit.Recorder,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		apps:        apps,
		profiles:    profiles,
		connections: connections,
		vault:       v,
		catalog:     cat,
		recorder:    recorder,
		notifier:    notifier,
		metrics:     m,
		tracer:      tracing.Tracer("broker"),
		logger:      logger,
	}
}

// LoadParams identifies the flow being opened.
type LoadParams struct {
	RawAppID string
	UserID   id.UserID
	// Identity seeds a first-time profile from the session claims.
	Identity profilestore.Identity
	// Device is a short client summary recorded on activity entries.
	Device string
}

// Load builds the Authorization. Failures land in StateError with Err set so
// the popup can render them; the error is also returned for transport mapping.
func (s *Service) Load(ctx context.Context, params LoadParams) (*Authorization, error) {
	ctx, span := s.tracer.Start(ctx, "broker.Load")
	defer span.End()

	auth := &Authorization{State: StateLoading}

	appID, err := id.ParseAppID(params.RawAppID)
	if err != nil {
		return s.failLoad(ctx, auth, err)
	}

	app, err := s.apps.Get(ctx, appID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return s.failLoad(ctx, auth, dErrors.New(dErrors.CodeNotFound, "app not found"))
	}
	if err != nil {
		return s.failLoad(ctx, auth, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load app"))
	}
	auth.App = app

	profile, err := s.loadProfile(ctx, params)
	if err != nil {
		return s.failLoad(ctx, auth, err)
	}
	s.ApplyProfile(auth, profile)
	auth.State = StateReady
	s.metrics.IncrementLoaded()
	return auth, nil
}

// ApplyProfile points the flow at a profile snapshot and re-runs policy. A
// known minor on an adult-only app gets no preview at all; the flow is marked
// ineligible so approval stays out of reach.
func (s *Service) ApplyProfile(auth *Authorization, profile *profilemodels.UserProfile) {
	auth.Profile = profile
	auth.Ineligible = false
	auth.IneligibilityReason = ""
	auth.Preview = policy.Result{}

	if err := policy.CheckEligibility(auth.App, profile); err != nil {
		auth.Ineligible = true
		auth.IneligibilityReason = dErrors.MessageOf(err)
		return
	}
	auth.Preview = policy.Evaluate(s.catalog, auth.App, profile)
}

func (s *Service) loadProfile(ctx context.Context, params LoadParams) (*profilemodels.UserProfile, error) {
	// First authorization ever seeds a profile from the session identity.
	// Age group stays unset until the user picks one.
	profile, created, err := profilestore.GetOrCreate(ctx, s.profiles, params.UserID, params.Identity)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	if created {
		s.recorder.Emit(ctx, audit.Event{
			UserID: params.UserID,
			Action: audit.ActionProfileCreated,
			Device: params.Device,
		})
	}
	return profile, nil
}

// ProfileWatcher exposes the store's push channel when the backing supports
// it. The popup's live preview is skipped otherwise.
func (s *Service) ProfileWatcher() (profilestore.Watcher, bool) {
	w, ok := s.profiles.(profilestore.Watcher)
	return w, ok
}

func (s *Service) failLoad(ctx context.Context, auth *Authorization, err error) (*Authorization, error) {
	auth.State = StateError
	auth.Err = err
	s.logger.WarnContext(ctx, "authorization load failed", "error", err.Error())
	return auth, err
}

// ReloadProfile refreshes the profile mid-flow and re-runs the preview, e.g.
// after the user filled a missing field in another tab.
func (s *Service) ReloadProfile(ctx context.Context, auth *Authorization) error {
	if auth.State != StateReady {
		return dErrors.New(dErrors.CodeInvariantViolation, "authorization is not ready")
	}
	profile, err := s.profiles.Get(ctx, auth.Profile.UID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reload profile")
	}
	s.ApplyProfile(auth, profile)
	return nil
}

// ApproveParams carries the user's approval input.
type ApproveParams struct {
	PINInput string
	Device   string
}

// Approve settles the flow positively. All gates re-run server side: age
// group chosen, eligibility, PIN when demanded. On success the envelope holds
// the disclosed values, the sign-in fields for SSO requests, and counters and
// activity are updated. A vault failure fails the whole approval.
func (s *Service) Approve(ctx context.Context, auth *Authorization, params ApproveParams) (dispatch.Envelope, error) {
	ctx, span := s.tracer.Start(ctx, "broker.Approve")
	defer span.End()

	if auth.State != StateReady {
		return dispatch.Envelope{}, dErrors.New(dErrors.CodeInvariantViolation, "authorization is not ready")
	}
	app, profile := auth.App, auth.Profile

	if !profile.AgeGroupSet() {
		return dispatch.Envelope{}, dErrors.New(dErrors.CodeInvalidInput, "age group must be set before approving")
	}
	if err := policy.CheckEligibility(app, profile); err != nil {
		return dispatch.Envelope{}, err
	}
	if auth.Preview.PINRequired {
		if err := policy.ValidatePIN(profile, params.PINInput); err != nil {
			return dispatch.Envelope{}, err
		}
	}

	data := make(map[string]any, len(auth.Preview.Disclosed))
	for _, key := range auth.Preview.Disclosed {
		if v := profile.Value(key); v != nil {
			data[key] = v
		}
	}

	if app.IsSSORequest() {
		credential, mode, err := s.vault.GetOrCreate(ctx, profile.UID, app.ID)
		if err != nil {
			return dispatch.Envelope{}, err
		}
		// Sign-in payloads always carry the account email, even when the
		// disclosure set withheld it.
		data["email"] = profile.Email
		data[catalog.KeySSOPassword] = credential
		data["LOS"] = string(mode)
		if mode == vault.ModeSignup {
			s.recorder.Emit(ctx, audit.Event{
				UserID: profile.UID,
				AppID:  app.ID,
				Action: audit.ActionCredentialIssued,
				Device: params.Device,
			})
		}
	}

	s.recorder.Emit(ctx, audit.Event{
		UserID: profile.UID,
		AppID:  app.ID,
		Action: audit.ActionApprovalGranted,
		Device: params.Device,
	})
	now := time.Now().UTC()
	if err := s.connections.RecordApproval(ctx, profile.UID, app.ID, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to record connection approval",
			"error", err.Error(),
			"app_id", app.ID,
		)
	}
	if err := s.apps.IncrementApprovals(ctx, app.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to increment app approvals",
			"error", err.Error(),
			"app_id", app.ID,
		)
	}

	s.notifyApproval(ctx, profile, app, auth.Preview.Disclosed)

	auth.State = StateApproved
	s.metrics.IncrementApproved()
	return dispatch.Envelope{Status: dispatch.StatusApproved, Data: data}, nil
}

// notifyApproval fires the notifier unless the user opted out. The sign-in
// fields never reach the notifier.
func (s *Service) notifyApproval(ctx context.Context, profile *profilemodels.UserProfile, app *appmodels.ClientApp, disclosed []string) {
	if profile.HideEmail || profile.Email == "" || profile.Name == "" {
		return
	}
	if len(disclosed) == 0 {
		return
	}
	s.notifier.NotifyApproval(context.WithoutCancel(ctx), profile, app, disclosed)
}

// Decline settles the flow negatively. It cannot fail from the user's point
// of view; logging problems are swallowed.
func (s *Service) Decline(ctx context.Context, auth *Authorization, device string) dispatch.Envelope {
	if auth.State == StateReady || auth.State == StateError {
		if auth.Profile != nil && auth.App != nil {
			s.recorder.Emit(ctx, audit.Event{
				UserID: auth.Profile.UID,
				AppID:  auth.App.ID,
				Action: audit.ActionApprovalDeclined,
				Device: device,
			})
		}
		auth.State = StateDeclined
		s.metrics.IncrementDeclined()
	}
	return dispatch.Envelope{Status: dispatch.StatusDeclined, Data: nil}
}
