package certupload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/slwc/membership/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) IssueUploadURL(ctx context.Context, in models.UploadRequest) (*models.UploadURL, error) {
	args := m.Called(ctx, in)
	if res := args.Get(0); res != nil {
		return res.(*models.UploadURL), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestUploadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	in := models.UploadRequest{FileName: "cert.pdf", FileType: "application/pdf"}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "issued",
			body: `{"fileName":"cert.pdf","fileType":"application/pdf"}`,
			setupMock: func(m *MockService) {
				m.On("IssueUploadURL", mock.Anything, in).Return(&models.UploadURL{
					SignedURL: "https://s3/signed", Key: "medical-certificates/1-abc-cert.pdf", Bucket: "slwc",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"signedUrl":"https://s3/signed"`,
		},
		{
			name:           "missing type",
			body:           `{"fileName":"cert.pdf"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `Nome file e tipo richiesti`,
		},
		{
			name: "s3 failure",
			body: `{"fileName":"cert.pdf","fileType":"application/pdf"}`,
			setupMock: func(m *MockService) {
				m.On("IssueUploadURL", mock.Anything, in).Return(nil, errors.New("no credentials"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `internal server error`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/public/upload-medical-cert", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
