// Package handler exposes the registry over HTTP: developer CRUD plus the
// admin verification action.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fastpass/internal/appregistry/models"
	"fastpass/internal/appregistry/service"
	"fastpass/internal/platform/metrics"
	"fastpass/internal/platform/middleware"
	id "fastpass/pkg/domain"
	dErrors "fastpass/pkg/domain-errors"
	"fastpass/pkg/platform/httputil"
)

// Service defines the interface for registry operations.
type Service interface {
	Register(ctx context.Context, ownerUID id.UserID, params service.RegisterParams) (*models.ClientApp, error)
	Get(ctx context.Context, appID id.AppID) (*models.ClientApp, error)
	ListByOwner(ctx context.Context, ownerUID id.UserID) ([]*models.ClientApp, error)
	SetVerified(ctx context.Context, adminKey string, appID id.AppID, verified bool) error
}

// Handler handles registry endpoints.
type Handler struct {
	logger    *slog.Logger
	registry  Service
	metrics   *metrics.Metrics
	validator middleware.SessionValidator
}

// New creates a new registry Handler.
func New(registry Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.SessionValidator) *Handler {
	return &Handler{logger: logger, registry: registry, metrics: m, validator: validator}
}

// Register registers the registry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	appsRouter := chi.NewRouter()
	appsRouter.Use(middleware.Recovery(h.logger))
	appsRouter.Use(middleware.RequestID)
	appsRouter.Use(middleware.Logger(h.logger))
	appsRouter.Use(middleware.Timeout(30 * time.Second))
	appsRouter.Use(middleware.ContentTypeJSON)
	appsRouter.Use(middleware.LatencyMiddleware(h.metrics))
	appsRouter.Use(middleware.RequireSession(h.validator, h.logger))
	appsRouter.Post("/", h.handleRegisterApp)
	appsRouter.Get("/", h.handleListApps)

	adminRouter := chi.NewRouter()
	adminRouter.Use(middleware.Recovery(h.logger))
	adminRouter.Use(middleware.RequestID)
	adminRouter.Use(middleware.Logger(h.logger))
	adminRouter.Use(middleware.Timeout(30 * time.Second))
	adminRouter.Use(middleware.ContentTypeJSON)
	adminRouter.Post("/apps/{appID}/verify", h.handleVerifyApp)

	r.Mount("/api/apps", appsRouter)
	r.Mount("/api/admin", adminRouter)
}

func (h *Handler) handleRegisterApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	ownerUID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var params service.RegisterParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.logger.WarnContext(ctx, "invalid app registration request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.registry.Register(ctx, ownerUID, params)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInvariantViolation) || dErrors.Is(err, dErrors.CodeConflict) {
			h.logger.WarnContext(ctx, "app registration rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to register app",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to register app"))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, app)
}

func (h *Handler) handleListApps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	ownerUID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	apps, err := h.registry.ListByOwner(ctx, ownerUID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list apps",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list apps"))
		return
	}
	if apps == nil {
		apps = []*models.ClientApp{}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"apps": apps})
}

func (h *Handler) handleVerifyApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	appID, err := id.ParseAppID(chi.URLParam(r, "appID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req struct {
		Verified bool `json:"verified"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := h.registry.SetVerified(ctx, adminKey, appID, req.Verified); err != nil {
		if dErrors.Is(err, dErrors.CodeUnauthorized) || dErrors.Is(err, dErrors.CodeForbidden) {
			h.logger.WarnContext(ctx, "admin verification rejected",
				"request_id", requestID,
				"app_id", appID,
			)
			httputil.WriteError(w, err)
			return
		}
		if dErrors.Is(err, dErrors.CodeNotFound) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update verification",
			"request_id", requestID,
			"app_id", appID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to update verification"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
