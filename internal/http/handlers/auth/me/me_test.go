package me

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slwc/membership/internal/http/middlewarectx"
	"github.com/slwc/membership/internal/models"
)

func TestMeHandler(t *testing.T) {
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	p := models.Principal{InstructorID: 3, Email: "luca@slwc.it", Role: models.RoleInstructor, SchoolID: 2, SchoolName: "Scuola Roma"}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), p))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"luca@slwc.it"`)
	assert.Contains(t, rec.Body.String(), `"schoolName":"Scuola Roma"`)
}
