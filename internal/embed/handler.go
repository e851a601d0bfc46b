// Package embed delivers the third-party button script and the public app
// details endpoint. Everything here is unauthenticated and cross-origin;
// responses never contain more than the registration's public face.
package embed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"fastpass/internal/appregistry/models"
	"fastpass/internal/appregistry/service"
	"fastpass/internal/catalog"
	"fastpass/internal/platform/metrics"
	"fastpass/internal/platform/middleware"
	id "fastpass/pkg/domain"
	dErrors "fastpass/pkg/domain-errors"
	"fastpass/pkg/platform/httputil"
)

// Handler serves the embed surface.
type Handler struct {
	logger   *slog.Logger
	registry *service.Service
	catalog  *catalog.Catalog
	metrics  *metrics.Metrics
	hostURL  string
	rps      rate.Limit
	burst    int
}

func NewHandler(registry *service.Service, cat *catalog.Catalog, logger *slog.Logger, m *metrics.Metrics, hostURL string, rps float64, burst int) *Handler {
	return &Handler{
		logger:   logger,
		registry: registry,
		catalog:  cat,
		metrics:  m,
		hostURL:  strings.TrimRight(hostURL, "/"),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Register registers the embed routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	embedRouter := chi.NewRouter()
	embedRouter.Use(middleware.Recovery(h.logger))
	embedRouter.Use(middleware.RequestID)
	embedRouter.Use(middleware.Logger(h.logger))
	embedRouter.Use(middleware.Timeout(15 * time.Second))
	embedRouter.Use(middleware.LatencyMiddleware(h.metrics))
	embedRouter.Use(middleware.RateLimit(h.rps, h.burst))
	embedRouter.Use(cors)

	embedRouter.Get("/sdk/button", h.handleButtonScript)
	embedRouter.Options("/sdk/button", handleOptions)
	embedRouter.Get("/app-details/{clientId}", h.handleAppDetails)
	embedRouter.Options("/app-details/{clientId}", handleOptions)

	r.Mount("/api", embedRouter)
}

// cors opens the embed surface to any origin; the script must load from
// arbitrary third-party pages.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func handleOptions(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

type scriptData struct {
	HostURL           string
	ClientID          string
	AppName           string
	MainText          string
	ButtonDescription string
	ShowBadge         string
	HideAppName       string
}

// jsString JSON-encodes a value for safe embedding in the script.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func jsBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (h *Handler) handleButtonScript(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rawClientID := r.URL.Query().Get("clientId")
	if rawClientID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "clientId is required"))
		return
	}
	appID, err := id.ParseAppID(rawClientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.registry.Get(ctx, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	data := scriptData{
		HostURL:           jsString(h.hostURL),
		ClientID:          jsString(app.ID.String()),
		AppName:           jsString(app.Name),
		MainText:          jsString(app.MainButtonText()),
		ButtonDescription: jsString(app.ButtonDescription),
		ShowBadge:         jsBool(app.Verified && !app.ButtonStyle.HideVerificationBadge),
		HideAppName:       jsBool(app.ButtonStyle.HideAppName),
	}

	w.Header().Set("Content-Type", "application/javascript")
	if err := buttonScript.Execute(w, data); err != nil {
		h.logger.ErrorContext(ctx, "failed to render button script",
			"app_id", app.ID,
			"error", err.Error(),
		)
		return
	}
	h.metrics.IncrementEmbedServed()
}

// appDetails is the public projection of a registration.
type appDetails struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Logo            string   `json:"logo,omitempty"`
	Verified        bool     `json:"verified"`
	RequestedLabels []string `json:"requestedLabels"`
}

func (h *Handler) handleAppDetails(w http.ResponseWriter, r *http.Request) {
	appID, err := id.ParseAppID(chi.URLParam(r, "clientId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.registry.Get(r.Context(), appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, appDetails{
		ID:              app.ID.String(),
		Name:            app.Name,
		Description:     app.Description,
		Logo:            app.Logo,
		Verified:        app.Verified,
		RequestedLabels: h.requestedLabels(app),
	})
}

// requestedLabels maps the requested attribute keys to their catalog labels,
// in catalog order. The sign-in key shows as its label like any other.
func (h *Handler) requestedLabels(app *models.ClientApp) []string {
	labels := make([]string, 0, len(app.RequestedIntegrations))
	for _, attr := range h.catalog.All() {
		if app.Requests(attr.Key) {
			labels = append(labels, attr.Label)
		}
	}
	return labels
}
