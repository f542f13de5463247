package certdownload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/slwc/membership/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Download(ctx context.Context, key, fileName string) (*models.Certificate, error) {
	args := m.Called(ctx, key, fileName)
	if res := args.Get(0); res != nil {
		return res.(*models.Certificate), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestDownloadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("streams attachment", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Download", mock.Anything, "medical-certificates/1-a-cert.pdf", "rossi.pdf").Return(&models.Certificate{
			Body:        io.NopCloser(strings.NewReader("%PDF-1.4")),
			ContentType: "application/pdf",
			FileName:    "rossi.pdf",
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/download-medical-cert?key=medical-certificates/1-a-cert.pdf&filename=rossi.pdf", nil)
		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="rossi.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.4", rec.Body.String())
	})

	t.Run("non-ascii file name", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Download", mock.Anything, "medical-certificates/1-a-cert.pdf", "").Return(&models.Certificate{
			Body:        io.NopCloser(strings.NewReader("%PDF-1.4")),
			ContentType: "application/pdf",
			FileName:    "certificato-è.pdf",
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/download-medical-cert?key=medical-certificates/1-a-cert.pdf", nil)
		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="certificato-_.pdf"; filename*=utf-8''certificato-%C3%A8.pdf`,
			rec.Header().Get("Content-Disposition"))
	})

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing key", models.NewError(models.ErrValidation, "Chiave file richiesta"), http.StatusBadRequest},
		{"missing object", models.NewError(models.ErrNotFound, "File non trovato"), http.StatusNotFound},
		{"store failure", errors.New("timeout"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Download", mock.Anything, mock.Anything, "").Return(nil, c.err).Once()

			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/download-medical-cert?key=x", nil))
			assert.Equal(t, c.status, rec.Code)
		})
	}
}

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "rossi.pdf", want: `attachment; filename="rossi.pdf"`},
		{name: "quotes stripped", in: `ro"ssi.pdf`, want: `attachment; filename="rossi.pdf"`},
		{name: "header injection", in: "a\r\nSet-Cookie: x.pdf", want: `attachment; filename="a__Set-Cookie: x.pdf"`},
		{name: "accented", in: "perché.jpg", want: `attachment; filename="perch_.jpg"; filename*=utf-8''perch%C3%A9.jpg`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentDisposition(tt.in))
		})
	}
}
