package membercreate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slwc/membership/internal/http/middlewarectx"
	"github.com/slwc/membership/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, p models.Principal, in models.SubscriberInput) (*models.SubscriberView, error) {
	args := m.Called(ctx, p, in)
	if res := args.Get(0); res != nil {
		return res.(*models.SubscriberView), args.Error(1)
	}
	return nil, args.Error(1)
}

func validInput() models.SubscriberInput {
	return models.SubscriberInput{
		FirstName:     "Mario",
		LastName:      "Rossi",
		BirthDate:     "1990-05-17",
		BirthPlace:    "Roma",
		BirthCap:      "00100",
		FiscalCode:    "RSSMRA90E17H501X",
		Residence:     "Via Roma 1",
		ResidenceCity: "Roma",
		ResidenceCap:  "00100",
		Email:         "mario@example.com",
		Phone:         "3331234567",
		Duan:          2,
		SchoolID:      1,
	}
}

func newRequest(t *testing.T, body any, p *models.Principal) *http.Request {
	var raw []byte
	switch v := body.(type) {
	case string:
		raw = []byte(v)
	default:
		var err error
		raw, err = json.Marshal(v)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/members", bytes.NewReader(raw))
	if p != nil {
		req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), *p))
	}
	return req
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	instructor := &models.Principal{InstructorID: 3, Role: models.RoleInstructor, SchoolID: 2}

	tests := []struct {
		name           string
		body           any
		principal      *models.Principal
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "created",
			body:      validInput(),
			principal: instructor,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, *instructor, validInput()).Return(&models.SubscriberView{
					Subscriber: models.Subscriber{ID: 11, SchoolID: 2, QRCode: "SLWC_1_abc"},
					SchoolName: "Scuola Roma",
				}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"qrCode":"SLWC_1_abc"`,
		},
		{
			name:           "no principal",
			body:           validInput(),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `Non autorizzato`,
		},
		{
			name: "short fiscal code",
			body: func() models.SubscriberInput {
				in := validInput()
				in.FiscalCode = "RSSMRA"
				return in
			}(),
			principal:      instructor,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field FiscalCode must be 16 characters long`,
		},
		{
			name:           "broken json",
			body:           `{"firstName":`,
			principal:      instructor,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name:      "duplicate",
			body:      validInput(),
			principal: instructor,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, *instructor, validInput()).
					Return(nil, models.NewError(models.ErrConflict, "Un iscritto con questa email o codice fiscale esiste già"))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `esiste già`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, newRequest(t, tt.body, tt.principal))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
