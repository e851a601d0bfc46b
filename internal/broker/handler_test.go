package broker

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	appmodels "fastpass/internal/appregistry/models"
	appstore "fastpass/internal/appregistry/store"
	"fastpass/internal/catalog"
	"fastpass/internal/connection"
	"fastpass/internal/dispatch"
	"fastpass/internal/notify"
	"fastpass/internal/platform/middleware"
	profilemodels "fastpass/internal/profile/models"
	profilestore "fastpass/internal/profile/store"
	"fastpass/internal/vault"
	id "fastpass/pkg/domain"
	"fastpass/pkg/platform/audit"
)

// stubValidator accepts any token and returns fixed claims.
type stubValidator struct {
	userID id.UserID
}

func (v *stubValidator) ValidateToken(string) (*middleware.SessionClaims, error) {
	return &middleware.SessionClaims{
		UserID:    v.userID.String(),
		SessionID: "session-1",
		Name:      "Jamie Doe",
		Email:     "jamie@example.com",
	}, nil
}

type HandlerSuite struct {
	suite.Suite
	router   chi.Router
	apps     *appstore.InMemory
	profiles *profilestore.InMemory
	userID   id.UserID
	ctx      context.Context
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.apps = appstore.NewInMemory()
	s.profiles = profilestore.NewInMemory()
	s.userID = id.NewUserID()
	s.ctx = context.Background()

	connections := connection.NewInMemory()
	recorder := audit.NewRecorder(audit.NewInMemory(), logger, 64)
	svc := NewService(
		s.apps, s.profiles, connections,
		vault.New(connections, logger, nil),
		catalog.New(), recorder, notify.NewLogNotifier(logger), testMetrics, logger,
	)

	s.router = chi.NewRouter()
	NewHandler(svc, dispatch.NewResolver(logger, nil), logger, testMetrics, &stubValidator{userID: s.userID}, 0).Register(s.router)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) seedApp(minAge appmodels.MinAgeGroup, requested ...string) *appmodels.ClientApp {
	integrations := make(map[string]bool, len(requested))
	for _, key := range requested {
		integrations[key] = true
	}
	app := &appmodels.ClientApp{
		ID:                    id.AppID("shop-demo"),
		Name:                  "Shop Demo",
		RedirectURI:           "https://shop.example.com/cb",
		OwnerUID:              id.NewUserID(),
		MinAgeGroup:           minAge,
		RequestedIntegrations: integrations,
		CreatedAt:             time.Now(),
		UpdatedAt:             time.Now(),
	}
	s.Require().NoError(s.apps.Put(s.ctx, app))
	return app
}

func (s *HandlerSuite) seedProfile(age profilemodels.AgeGroup) {
	s.Require().NoError(s.profiles.Put(s.ctx, &profilemodels.UserProfile{
		UID:      s.userID,
		Name:     "Jamie Doe",
		Email:    "jamie@example.com",
		AgeGroup: age,
	}))
}

func (s *HandlerSuite) TestContextMarksIneligible() {
	s.seedApp(appmodels.MinAgeAdult, "name", "email")
	s.seedProfile(profilemodels.AgeGroupMinor)

	req := httptest.NewRequest(http.MethodGet, "/fastpass/shop-demo?openerOrigin=https%3A%2F%2Fshop.example.com", nil)
	req.Header.Set("Authorization", "Bearer any-token")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var payload contextPayload
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &payload))
	s.Equal(StateReady, payload.State)
	s.True(payload.Ineligible)
	s.NotEmpty(payload.IneligibilityReason)
	s.Empty(payload.Preview.Disclosed)
	s.False(payload.Preview.PINRequired)
}

func (s *HandlerSuite) TestPopupPage() {
	req := httptest.NewRequest(http.MethodGet, "/fastpass/shop-demo/page", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()

	s.Run("approve stays disabled for ineligible flows", func() {
		s.Contains(body, "ctx.ineligible || !ctx.profile.ageGroupSet")
		s.Contains(body, "ineligibilityReason")
	})

	s.Run("live preview follows profile updates", func() {
		s.Contains(body, "EventSource")
		s.Contains(body, "/watch")
	})
}

func (s *HandlerSuite) TestWatchStreamsProfileUpdates() {
	s.seedApp(appmodels.MinAgeAll, "name", "bio")
	s.seedProfile(profilemodels.AgeGroupAdult)

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		srv.URL+"/fastpass/shop-demo/watch?openerOrigin=https%3A%2F%2Fshop.example.com", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer any-token")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("text/event-stream", resp.Header.Get("Content-Type"))

	events := bufio.NewReader(resp.Body)

	first := s.readEvent(events)
	s.Contains(first.Preview.Missing, "bio")

	s.Require().NoError(s.profiles.Patch(s.ctx, s.userID, map[string]any{"bio": "Hi there"}))

	second := s.readEvent(events)
	s.Contains(second.Preview.Disclosed, "bio")
	s.NotContains(second.Preview.Missing, "bio")
}

func (s *HandlerSuite) readEvent(r *bufio.Reader) contextPayload {
	for {
		line, err := r.ReadString('\n')
		s.Require().NoError(err)
		if after, ok := strings.CutPrefix(strings.TrimSpace(line), "data: "); ok {
			var payload contextPayload
			s.Require().NoError(json.Unmarshal([]byte(after), &payload))
			return payload
		}
	}
}
