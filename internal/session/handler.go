package session

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fastpass/internal/platform/middleware"
	id "fastpass/pkg/domain"
	dErrors "fastpass/pkg/domain-errors"
	"fastpass/pkg/platform/httputil"
)

// probePage posts the session state to whichever page embedded it. The target
// is the wildcard: the embedding page's origin is unknowable from inside the
// iframe, and the payload carries nothing beyond login state and a first name.
var probePage = template.Must(template.New("probe").Parse(`<!DOCTYPE html>
<html>
<head><title>FastPass</title></head>
<body>
<script>
  (function() {
    var msg = { type: "FASTPASS_SESSION", status: {{.Status}}, firstName: {{.FirstName}} };
    if (window.parent && window.parent !== window) {
      window.parent.postMessage(msg, "*");
    }
  })();
</script>
</body>
</html>
`))

// Handler serves the probe page and session lifecycle endpoints.
type Handler struct {
	logger   *slog.Logger
	sessions *Service
}

func NewHandler(sessions *Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, sessions: sessions}
}

// Register registers the session routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/fastpass/session-check", h.handleSessionCheck)
	r.Post("/fastpass/session", h.handleCreateSession)
	r.Post("/fastpass/logout", h.handleLogout)
}

// handleSessionCheck serves the probe page; it always renders, logged in or
// not, so the embed script can settle its button state.
func (h *Handler) handleSessionCheck(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(CookieName); err == nil {
		token = cookie.Value
	}
	status, firstName := h.sessions.Probe(token)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := probePage.Execute(w, map[string]string{"Status": status, "FirstName": firstName}); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render probe page", "error", err.Error())
	}
}

// handleCreateSession exchanges an upstream-authenticated identity for a
// session cookie. In production the identity provider calls this after its
// own verification; the request is expected over an internal channel.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		PFP    string `json:"pfp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	token, err := h.sessions.Create(ctx, userID, Identity{Name: req.Name, Email: req.Email, PFP: req.PFP})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create session",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to create session"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessions.TTL()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode, // the popup and probe run cross-site
	})
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(CookieName); err == nil {
		if claims, err := h.sessions.tokens.ValidateToken(cookie.Value); err == nil {
			if err := h.sessions.Revoke(ctx, claims.SessionID); err != nil {
				h.logger.WarnContext(ctx, "failed to revoke session", "error", err.Error())
			}
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
