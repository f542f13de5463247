package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slwc/membership/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.NewError(models.ErrValidation, "x"), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", models.ErrUnauthorized), http.StatusUnauthorized},
		{models.ErrForbidden, http.StatusForbidden},
		{models.NewError(models.ErrNotFound, "Scuola non trovata"), http.StatusNotFound},
		{models.ErrConflict, http.StatusConflict},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StatusFor(c.err), c.err.Error())
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"domain message", models.NewError(models.ErrNotFound, "Scuola non trovata"), http.StatusNotFound, "Scuola non trovata"},
		{"bare sentinel", fmt.Errorf("op: %w", models.ErrForbidden), http.StatusForbidden, "Forbidden"},
		{"internal hides detail", errors.New("pq: password=secret"), http.StatusInternalServerError, InternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			WriteError(rec, req, newNoopLogger(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, StatusError, body.Status)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestValidationError(t *testing.T) {
	type input struct {
		Email  string `validate:"required,email"`
		Fiscal string `validate:"len=16"`
		Role   string `validate:"oneof=ADMIN INSTRUCTOR"`
	}
	err := validator.New().Struct(input{Email: "nope", Fiscal: "ABC", Role: "ROOT"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Fiscal must be 16 characters long")
	assert.Contains(t, resp.Error, "field Role must be one of: ADMIN INSTRUCTOR")
}

func TestInvalidAndDecodeError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	DecodeError(rec, req, newNoopLogger(), errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"Error","error":"invalid request body"}`, rec.Body.String())

	type input struct {
		Name string `validate:"required"`
	}
	rec = httptest.NewRecorder()
	Invalid(rec, req, newNoopLogger(), validator.New().Struct(input{}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "field Name is a required field")
}
