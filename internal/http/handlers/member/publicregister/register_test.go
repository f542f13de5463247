package publicregister

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

	"github.com/slwc/membership/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) RegisterPublic(ctx context.Context, in models.PublicRegistrationInput) (*models.RegistrationResult, error) {
	args := m.Called(ctx, in)
	if res := args.Get(0); res != nil {
		return res.(*models.RegistrationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func validInput() models.PublicRegistrationInput {
	return models.PublicRegistrationInput{
		SubscriberInput: models.SubscriberInput{
			FirstName: "Anna", LastName: "Verdi", BirthDate: "1995-02-01", BirthPlace: "Roma",
			BirthCap: "00100", FiscalCode: "VRDNNA95B41H501Z", Residence: "Via Po 2",
			ResidenceCity: "Roma", ResidenceCap: "00100", Email: "anna@example.com",
			Phone: "3331112222", Duan: 1,
		},
		Slug: "roma",
	}
}

func post(t *testing.T, body any) *http.Request {
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/v1/public/register", bytes.NewReader(raw))
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("registered", func(t *testing.T) {
		svc := new(MockService)
		svc.On("RegisterPublic", mock.Anything, validInput()).
			Return(&models.RegistrationResult{ID: 7, Name: "Anna Verdi", School: "Scuola Roma"}, nil).Once()

		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, post(t, validInput()))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"status":"OK","data":{"id":7,"name":"Anna Verdi","school":"Scuola Roma"}}`, rec.Body.String())
	})

	t.Run("unknown slug", func(t *testing.T) {
		svc := new(MockService)
		svc.On("RegisterPublic", mock.Anything, validInput()).
			Return(nil, models.NewError(models.ErrNotFound, "Scuola non trovata")).Once()

		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, post(t, validInput()))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := new(MockService)
		in := validInput()
		in.FirstName = ""
		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, post(t, in))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "field FirstName is a required field")
		svc.AssertNotCalled(t, "RegisterPublic", mock.Anything, mock.Anything)
	})
}
