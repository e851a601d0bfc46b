package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fastpass/internal/dispatch"
	"fastpass/internal/platform/metrics"
	"fastpass/internal/platform/middleware"
	id "fastpass/pkg/domain"
	dErrors "fastpass/pkg/domain-errors"
	"fastpass/pkg/platform/audit"
	"fastpass/pkg/platform/httputil"
)

// Handler exposes the popup-facing authorization endpoints.
type Handler struct {
	logger     *slog.Logger
	broker     *Service
	resolver   *dispatch.Resolver
	metrics    *metrics.Metrics
	validator  middleware.SessionValidator
	closeDelay time.Duration
}

func NewHandler(broker *Service, resolver *dispatch.Resolver, logger *slog.Logger, m *metrics.Metrics, validator middleware.SessionValidator, closeDelay time.Duration) *Handler {
	if closeDelay <= 0 {
		closeDelay = dispatch.CloseDelay
	}
	return &Handler{logger: logger, broker: broker, resolver: resolver, metrics: m, validator: validator, closeDelay: closeDelay}
}

// Register registers the popup routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	popupRouter := chi.NewRouter()
	popupRouter.Use(middleware.Recovery(h.logger))
	popupRouter.Use(middleware.RequestID)
	popupRouter.Use(middleware.Logger(h.logger))
	popupRouter.Use(middleware.Timeout(30 * time.Second))
	popupRouter.Use(middleware.LatencyMiddleware(h.metrics))

	popupRouter.Get("/{appID}/page", h.handlePage)

	popupRouter.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireSession(h.validator, h.logger))
		pr.Get("/{appID}", h.handleContext)
		pr.Get("/{appID}/watch", h.handleWatch)
		pr.Post("/{appID}/approve", h.handleApprove)
		pr.Post("/{appID}/decline", h.handleDecline)
	})

	r.Mount("/fastpass", popupRouter)
}

// load rebuilds the authorization for the session user. The error has already
// been written when the returned auth is nil.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Authorization, context.Context) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	claims := middleware.GetClaims(ctx)
	userID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil || claims == nil {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return nil, ctx
	}

	auth, err := h.broker.Load(ctx, LoadParams{
		RawAppID: chi.URLParam(r, "appID"),
		UserID:   userID,
		Identity: identityFromClaims(claims),
		Device:   audit.DeviceSummary(r.UserAgent()),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return nil, ctx
	}
	return auth, ctx
}

// handleContext returns everything the popup needs to render: app, preview,
// and dispatch instructions.
func (h *Handler) handleContext(w http.ResponseWriter, r *http.Request) {
	auth, ctx := h.load(w, r)
	if auth == nil {
		return
	}

	openerOrigin := r.URL.Query().Get("openerOrigin")
	testMode := r.URL.Query().Get("test") == "true"
	targetOrigin := h.resolver.TargetOrigin(ctx, openerOrigin, testMode, auth.App.RedirectURI)

	httputil.WriteJSON(w, http.StatusOK, contextResponse(auth, targetOrigin, h.closeDelay.Milliseconds()))
}

// handleWatch streams context refreshes over server-sent events while the
// popup stays open. Each profile write re-runs the preview, so a field filled
// in another tab shows up without a manual reload.
func (h *Handler) handleWatch(w http.ResponseWriter, r *http.Request) {
	auth, ctx := h.load(w, r)
	if auth == nil {
		return
	}

	watcher, ok := h.broker.ProfileWatcher()
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "live preview is not available"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	updates, cancel, err := watcher.Subscribe(ctx, auth.Profile.UID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to watch profile"))
		return
	}
	defer cancel()

	openerOrigin := r.URL.Query().Get("openerOrigin")
	testMode := r.URL.Query().Get("test") == "true"
	targetOrigin := h.resolver.TargetOrigin(ctx, openerOrigin, testMode, auth.App.RedirectURI)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	writeEvent := func() bool {
		payload, err := json.Marshal(contextResponse(auth, targetOrigin, h.closeDelay.Milliseconds()))
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !writeEvent() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case profile, open := <-updates:
			if !open {
				return
			}
			h.broker.ApplyProfile(auth, profile)
			if !writeEvent() {
				return
			}
		}
	}
}

type decisionRequest struct {
	PIN          string `json:"pin"`
	OpenerOrigin string `json:"openerOrigin"`
	Test         bool   `json:"test"`
}

type decisionResponse struct {
	Envelope     dispatch.Envelope `json:"envelope"`
	TargetOrigin string            `json:"targetOrigin"`
	CloseDelayMs int64             `json:"closeDelayMs"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	auth, ctx := h.load(w, r)
	if auth == nil {
		return
	}
	requestID := middleware.GetRequestID(ctx)

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	envelope, err := h.broker.Approve(ctx, auth, ApproveParams{
		PINInput: req.PIN,
		Device:   audit.DeviceSummary(r.UserAgent()),
	})
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "approval failed",
				"request_id", requestID,
				"app_id", auth.App.ID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	targetOrigin := h.resolver.TargetOrigin(ctx, req.OpenerOrigin, req.Test, auth.App.RedirectURI)
	httputil.WriteJSON(w, http.StatusOK, decisionResponse{
		Envelope:     envelope,
		TargetOrigin: targetOrigin,
		CloseDelayMs: h.closeDelay.Milliseconds(),
	})
}

func (h *Handler) handleDecline(w http.ResponseWriter, r *http.Request) {
	auth, ctx := h.load(w, r)
	if auth == nil {
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	envelope := h.broker.Decline(ctx, auth, audit.DeviceSummary(r.UserAgent()))
	targetOrigin := h.resolver.TargetOrigin(ctx, req.OpenerOrigin, req.Test, auth.App.RedirectURI)
	httputil.WriteJSON(w, http.StatusOK, decisionResponse{
		Envelope:     envelope,
		TargetOrigin: targetOrigin,
		CloseDelayMs: h.closeDelay.Milliseconds(),
	})
}
