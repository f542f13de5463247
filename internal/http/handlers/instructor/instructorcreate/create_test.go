package instructorcreate

import (
	"bytes"
	"context"
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

func (m *MockService) Create(ctx context.Context, in models.InstructorInput) (*models.InstructorView, error) {
	args := m.Called(ctx, in)
	if res := args.Get(0); res != nil {
		return res.(*models.InstructorView), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	in := models.InstructorInput{Name: "Luca Bianchi", Email: "luca@slwc.it", Password: "password123", Role: "INSTRUCTOR", SchoolID: 2}
	valid := `{"name":"Luca Bianchi","email":"luca@slwc.it","password":"password123","role":"INSTRUCTOR","schoolId":2}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "created",
			body: valid,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, in).Return(&models.InstructorView{
					Instructor: models.Instructor{ID: 3, Email: "luca@slwc.it", Role: "INSTRUCTOR", SchoolID: 2},
				}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":3`,
		},
		{
			name:           "bad role",
			body:           `{"name":"Luca","email":"luca@slwc.it","password":"password123","role":"ROOT","schoolId":2}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Role must be one of`,
		},
		{
			name:           "short password",
			body:           `{"name":"Luca","email":"luca@slwc.it","password":"short","role":"ADMIN","schoolId":2}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Password is too small`,
		},
		{
			name: "email taken",
			body: valid,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, in).Return(nil, models.NewError(models.ErrConflict, "Un istruttore con questa email esiste già"))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `Un istruttore con questa email esiste già`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/instructors", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
