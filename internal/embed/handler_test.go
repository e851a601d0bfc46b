package embed

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	appservice "fastpass/internal/appregistry/service"
	appstore "fastpass/internal/appregistry/store"
	"fastpass/internal/catalog"
	"fastpass/internal/platform/metrics"
	id "fastpass/pkg/domain"
)

var testMetrics = metrics.New()

type EmbedSuite struct {
	suite.Suite
	router chi.Router
	apps   *appstore.InMemory
	ctx    context.Context
}

func (s *EmbedSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	cat := catalog.New()
	s.apps = appstore.NewInMemory()
	registry := appservice.New(s.apps, cat, "", logger)
	handler := NewHandler(registry, cat, logger, testMetrics, "https://fastpass.example.com", 100, 200)

	s.router = chi.NewRouter()
	handler.Register(s.router)
	s.ctx = context.Background()
}

func TestEmbedSuite(t *testing.T) {
	suite.Run(t, new(EmbedSuite))
}

func (s *EmbedSuite) seedApp() {
	registry := appservice.New(s.apps, catalog.New(), "", slog.New(slog.DiscardHandler))
	_, err := registry.Register(s.ctx, id.NewUserID(), appservice.RegisterParams{
		AppID:             "shop-demo",
		Name:              "Shop Demo",
		ButtonDescription: "Share your shipping details",
		RedirectURI:       "https://shop.example.com/cb",
		RequestedIntegrations: map[string]bool{
			"name":  true,
			"email": true,
		},
	})
	s.Require().NoError(err)
}

func (s *EmbedSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *EmbedSuite) TestButtonScript() {
	s.seedApp()
	rec := s.get("/api/sdk/button?clientId=shop-demo")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("application/javascript", rec.Header().Get("Content-Type"))
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))

	script := rec.Body.String()

	s.Run("container guard", func() {
		s.Contains(script, "fastpass-button-container")
		s.Contains(script, "console.error")
	})

	s.Run("all five button states present", func() {
		for _, state := range []string{"state-default", "state-waiting", "state-approved", "state-declined", "state-canceled"} {
			s.Contains(script, state)
		}
	})

	s.Run("popup geometry and closed polling", func() {
		s.Contains(script, "width = 600, height = 700")
		s.Contains(script, "}, 500);")
		s.Contains(script, "status: 'canceled'")
	})

	s.Run("origin check against the host", func() {
		s.Contains(script, "event.origin !== hostUrl")
		s.Contains(script, `"https://fastpass.example.com"`)
	})

	s.Run("session probe wiring", func() {
		s.Contains(script, "/fastpass/session-check")
		s.Contains(script, "FASTPASS_SESSION")
		s.Contains(script, "'Continue as ' + event.data.firstName")
	})

	s.Run("late outcomes are ignored once settled", func() {
		// The poller and a postMessage can race; only a waiting button may
		// take an outcome.
		s.Contains(script, "!btn.classList.contains('state-waiting')) return;")
	})

	s.Run("callback and autofill routing", func() {
		s.Contains(script, "window.fastPassCallback")
		s.Contains(script, "el.value = data[key]")
	})

	s.Run("app configuration injected", func() {
		s.Contains(script, `"Shop Demo"`)
		s.Contains(script, `"Share your shipping details"`)
		s.Contains(script, `"Continue with FastPass"`)
	})
}

func (s *EmbedSuite) TestButtonScriptErrors() {
	s.Run("missing clientId", func() {
		rec := s.get("/api/sdk/button")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("structurally invalid clientId", func() {
		rec := s.get("/api/sdk/button?clientId=bad.id")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown app", func() {
		rec := s.get("/api/sdk/button?clientId=missing-app")
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *EmbedSuite) TestOptionsPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/sdk/button", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func (s *EmbedSuite) TestAppDetails() {
	s.seedApp()
	rec := s.get("/api/app-details/shop-demo")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := rec.Body.String()
	s.Contains(body, `"Shop Demo"`)
	s.Contains(body, `"Full Name"`)
	s.Contains(body, `"Email Address"`)
	s.NotContains(body, "redirectUri")
	s.NotContains(body, "ownerUid")
}
