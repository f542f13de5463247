package schoollist

import (
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

func (m *MockService) List(ctx context.Context) ([]models.SchoolWithCounts, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]models.SchoolWithCounts), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("List", mock.Anything).Return([]models.SchoolWithCounts{
		{School: models.School{ID: 2, Name: "Scuola Roma"}, SubscriberCount: 4, InstructorCount: 1},
		{School: models.School{ID: 1, Name: "Scuola Milano"}},
	}, nil).Once()

	rec := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/schools", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Schools []models.SchoolWithCounts `json:"schools"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Schools, 2)
	assert.Equal(t, 4, resp.Data.Schools[0].SubscriberCount)
}
