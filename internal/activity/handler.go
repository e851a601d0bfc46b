// Package activity exposes the user's authorization history.
package activity

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fastpass/internal/platform/metrics"
	"fastpass/internal/platform/middleware"
	id "fastpass/pkg/domain"
	dErrors "fastpass/pkg/domain-errors"
	"fastpass/pkg/platform/audit"
	"fastpass/pkg/platform/httputil"
)

// Handler serves the activity feed.
type Handler struct {
	logger    *slog.Logger
	recorder  *audit.Recorder
	metrics   *metrics.Metrics
	validator middleware.SessionValidator
}

func NewHandler(recorder *audit.Recorder, logger *slog.Logger, m *metrics.Metrics, validator middleware.SessionValidator) *Handler {
	return &Handler{logger: logger, recorder: recorder, metrics: m, validator: validator}
}

// Register registers the activity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	activityRouter := chi.NewRouter()
	activityRouter.Use(middleware.Recovery(h.logger))
	activityRouter.Use(middleware.RequestID)
	activityRouter.Use(middleware.Logger(h.logger))
	activityRouter.Use(middleware.Timeout(15 * time.Second))
	activityRouter.Use(middleware.LatencyMiddleware(h.metrics))
	activityRouter.Use(middleware.RequireSession(h.validator, h.logger))
	activityRouter.Get("/", h.handleList)

	r.Mount("/api/activity", activityRouter)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	events, err := h.recorder.List(ctx, userID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list activity",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list activity"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
