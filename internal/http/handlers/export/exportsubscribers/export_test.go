package exportsubscribers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Export(ctx context.Context) ([]byte, string, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

func TestExportHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := new(MockService)
	svc.On("Export", mock.Anything).Return([]byte("PK\x03\x04"), "iscritti-slwc-2025-03-14.xlsx", nil).Once()
	rec := httptest.NewRecorder()
	New(logger, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export-subscribers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="iscritti-slwc-2025-03-14.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))

	svc.On("Export", mock.Anything).Return(nil, "", errors.New("db down")).Once()
	rec = httptest.NewRecorder()
	New(logger, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export-subscribers", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
