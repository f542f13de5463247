package schoolcreate

import (
	"bytes"
	"context"
	"encoding/json"
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

func (m *MockService) Create(ctx context.Context, in models.SchoolInput) (*models.School, error) {
	args := m.Called(ctx, in)
	if res := args.Get(0); res != nil {
		return res.(*models.School), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	valid := models.SchoolInput{Name: "Scuola Roma", Slug: "roma"}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "created",
			body: `{"name":"Scuola Roma","slug":"roma"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, valid).Return(&models.School{ID: 1, Name: "Scuola Roma", Slug: "roma"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"slug":"roma"`,
		},
		{
			name:           "broken json",
			body:           `{"name":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name:           "missing slug",
			body:           `{"name":"Scuola Roma"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Slug is a required field`,
		},
		{
			name: "slug taken",
			body: `{"name":"Scuola Roma","slug":"roma"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, valid).
					Return(nil, models.NewError(models.ErrConflict, "Uno slug con questo nome esiste già"))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `Uno slug con questo nome esiste già`,
		},
		{
			name: "storage failure",
			body: `{"name":"Scuola Roma","slug":"roma"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, valid).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `internal server error`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/schools", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			if tt.expectedStatus == http.StatusCreated {
				var resp map[string]any
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "OK", resp["status"])
			}
			svc.AssertExpectations(t)
		})
	}
}
