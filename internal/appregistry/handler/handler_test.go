package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"fastpass/internal/appregistry/service"
	"fastpass/internal/appregistry/store"
	"fastpass/internal/catalog"
	"fastpass/internal/platform/metrics"
	"fastpass/internal/platform/middleware"
	id "fastpass/pkg/domain"
	"fastpass/pkg/secrets"
)

// Registered once; promauto metrics cannot be re-registered per test.
var testMetrics = metrics.New()

// stubValidator accepts any token and returns fixed claims.
type stubValidator struct {
	userID string
}

func (v *stubValidator) ValidateToken(string) (*middleware.SessionClaims, error) {
	return &middleware.SessionClaims{UserID: v.userID, SessionID: "session-1", Name: "Jordan Lee"}, nil
}

type HandlerSuite struct {
	suite.Suite
	router   chi.Router
	store    *store.InMemory
	owner    id.UserID
	adminKey string
	ctx      context.Context
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.store = store.NewInMemory()
	s.owner = id.NewUserID()
	s.adminKey = "super-secret-admin-key"
	s.ctx = context.Background()

	hash, err := secrets.Hash(s.adminKey)
	s.Require().NoError(err)

	registry := service.New(s.store, catalog.New(), hash, logger)
	s.router = chi.NewRouter()
	New(registry, logger, testMetrics, &stubValidator{userID: s.owner.String()}).Register(s.router)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer any-token")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) registerApp() {
	rec := s.do(http.MethodPost, "/api/apps/",
		`{"appId":"shop-demo","name":"Shop Demo","redirectUri":"https://shop.example.com/cb","requestedIntegrations":{"name":true}}`,
		true)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *HandlerSuite) TestRegisterApp() {
	s.registerApp()

	appID, err := id.ParseAppID("shop-demo")
	s.Require().NoError(err)
	app, err := s.store.Get(s.ctx, appID)
	s.Require().NoError(err)
	s.Equal(s.owner, app.OwnerUID)

	s.Run("requires a session", func() {
		rec := s.do(http.MethodPost, "/api/apps/", `{}`, false)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("rejects unknown integrations", func() {
		rec := s.do(http.MethodPost, "/api/apps/",
			`{"appId":"bad-app","name":"Bad","redirectUri":"https://bad.example.com","requestedIntegrations":{"notAKey":true}}`,
			true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects malformed body", func() {
		rec := s.do(http.MethodPost, "/api/apps/", `{not json`, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestListApps() {
	rec := s.do(http.MethodGet, "/api/apps/", "", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"apps":[]}`, rec.Body.String())

	s.registerApp()

	rec = s.do(http.MethodGet, "/api/apps/", "", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"shop-demo"`)
}

func (s *HandlerSuite) TestVerifyApp() {
	s.registerApp()

	verify := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/apps/shop-demo/verify", strings.NewReader(`{"verified":true}`))
		req.Header.Set("Content-Type", "application/json")
		if key != "" {
			req.Header.Set("X-Admin-Key", key)
		}
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	s.Run("wrong key", func() {
		s.Equal(http.StatusUnauthorized, verify("not-the-key").Code)
	})

	s.Run("missing key", func() {
		s.Equal(http.StatusUnauthorized, verify("").Code)
	})

	s.Run("correct key", func() {
		s.Equal(http.StatusNoContent, verify(s.adminKey).Code)

		appID, err := id.ParseAppID("shop-demo")
		s.Require().NoError(err)
		app, err := s.store.Get(s.ctx, appID)
		s.Require().NoError(err)
		s.True(app.Verified)
	})

	s.Run("unknown app", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/apps/missing/verify", strings.NewReader(`{"verified":true}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Admin-Key", s.adminKey)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestAdminDisabledWithoutKeyHash() {
	logger := slog.New(slog.DiscardHandler)
	registry := service.New(s.store, catalog.New(), "", logger)
	router := chi.NewRouter()
	New(registry, logger, testMetrics, &stubValidator{userID: s.owner.String()}).Register(router)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/apps/shop-demo/verify", strings.NewReader(`{"verified":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Key", "anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	s.Equal(http.StatusForbidden, rec.Code)
}
