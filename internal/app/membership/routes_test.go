package membership

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slwc/membership/internal/http/middlewarectx"
	"github.com/slwc/membership/internal/models"
)

type stubAuth struct{}

func (stubAuth) Login(context.Context, string, string) (string, models.Principal, error) {
	return "", models.Principal{}, models.NewError(models.ErrUnauthorized, "Credenziali non valide")
}

func (stubAuth) ValidateToken(_ context.Context, token string) (*models.Principal, error) {
	switch token {
	case "admin":
		return &models.Principal{InstructorID: 1, Email: "admin@slwc.it", Role: models.RoleAdmin, SchoolID: 1}, nil
	case "instructor":
		return &models.Principal{InstructorID: 2, Email: "istr@slwc.it", Role: models.RoleInstructor, SchoolID: 2}, nil
	}
	return nil, errors.New("invalid token")
}

type stubChecker struct{ err error }

func (c stubChecker) CheckDatabaseReady(context.Context) error { return c.err }

func newRouter(t *testing.T, checker stubChecker) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, slog.New(slog.NewTextHandler(io.Discard, nil)), Services{
		Auth:     stubAuth{},
		Health:   checker,
		Limiter:  middlewarectx.NewIPRateLimiter(10, 10),
		Registry: prometheus.NewRegistry(),
	})
	return r
}

func do(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRoutes_RoleGates(t *testing.T) {
	h := newRouter(t, stubChecker{})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"schools without token", http.MethodGet, "/api/v1/schools", "", http.StatusUnauthorized},
		{"schools with bad token", http.MethodGet, "/api/v1/schools", "garbage", http.StatusUnauthorized},
		{"schools as instructor", http.MethodGet, "/api/v1/schools", "instructor", http.StatusForbidden},
		{"stats as instructor", http.MethodGet, "/api/v1/stats", "instructor", http.StatusForbidden},
		{"export as instructor", http.MethodGet, "/api/v1/export-subscribers", "instructor", http.StatusForbidden},
		{"download as instructor", http.MethodGet, "/api/v1/download-medical-cert?key=x", "instructor", http.StatusForbidden},
		{"delete member as instructor", http.MethodDelete, "/api/v1/members/5", "instructor", http.StatusForbidden},
		{"promotable as instructor", http.MethodGet, "/api/v1/members/promote", "instructor", http.StatusForbidden},
		{"instructors as instructor", http.MethodGet, "/api/v1/instructors", "instructor", http.StatusForbidden},
		{"own school as admin", http.MethodGet, "/api/v1/instructor/school", "admin", http.StatusForbidden},
		{"members without token", http.MethodGet, "/api/v1/members", "", http.StatusUnauthorized},
		{"me as admin", http.MethodGet, "/api/v1/auth/me", "admin", http.StatusOK},
		{"me as instructor", http.MethodGet, "/api/v1/auth/me", "instructor", http.StatusOK},
		{"login with wrong credentials", http.MethodPost, "/api/v1/auth/login", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(h, tt.method, tt.path, tt.token)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRoutes_Health(t *testing.T) {
	rr := do(newRouter(t, stubChecker{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(newRouter(t, stubChecker{err: errors.New("down")}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRoutes_Metrics(t *testing.T) {
	h := newRouter(t, stubChecker{})
	do(h, http.MethodGet, "/api/v1/auth/me", "admin")

	rr := do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "membership_http_requests_total")
	assert.Contains(t, rr.Body.String(), `route="/api/v1/auth/me"`)
}
