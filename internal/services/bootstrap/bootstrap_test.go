package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/slwc/membership/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetSchoolBySlug(ctx context.Context, slug string) (*models.School, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.School), args.Error(1)
}

func (m *RepoMock) CreateSchool(ctx context.Context, school models.School) (*models.School, error) {
	args := m.Called(ctx, school)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.School), args.Error(1)
}

func (m *RepoMock) InstructorExists(ctx context.Context, email string, subscriberID int) (bool, error) {
	args := m.Called(ctx, email, subscriberID)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) CreateInstructor(ctx context.Context, ins models.Instructor) (int, error) {
	args := m.Called(ctx, ins)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) UpdateInstructorPassword(ctx context.Context, email, passwordHash string) error {
	return m.Called(ctx, email, passwordHash).Error(0)
}

func newService(repo Repository) *BootstrapService {
	return NewBootstrapService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBootstrapService_CreateAdmin_SeedsMainSchool(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo)

	repo.On("InstructorExists", mock.Anything, "admin@slwc.it", 0).Return(false, nil).Once()
	repo.On("GetSchoolBySlug", mock.Anything, MainSchoolSlug).Return(nil, models.ErrNotFound).Once()
	repo.On("CreateSchool", mock.Anything, models.School{Name: MainSchoolName, Slug: MainSchoolSlug}).
		Return(&models.School{ID: 1, Slug: MainSchoolSlug}, nil).Once()
	repo.On("CreateInstructor", mock.Anything, mock.MatchedBy(func(ins models.Instructor) bool {
		return ins.Role == models.RoleAdmin && ins.SchoolID == 1 && ins.Email == "admin@slwc.it" &&
			bcrypt.CompareHashAndPassword([]byte(ins.PasswordHash), []byte("password123")) == nil
	})).Return(1, nil).Once()

	id, err := svc.CreateAdmin(context.Background(), "Admin", " Admin@SLWC.it ", "password123")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	repo.AssertExpectations(t)
}

func TestBootstrapService_CreateAdmin_ReusesMainSchool(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo)

	repo.On("InstructorExists", mock.Anything, "second@slwc.it", 0).Return(false, nil).Once()
	repo.On("GetSchoolBySlug", mock.Anything, MainSchoolSlug).Return(&models.School{ID: 4}, nil).Once()
	repo.On("CreateInstructor", mock.Anything, mock.MatchedBy(func(ins models.Instructor) bool {
		return ins.SchoolID == 4
	})).Return(9, nil).Once()

	_, err := svc.CreateAdmin(context.Background(), "Second", "second@slwc.it", "password123")
	require.NoError(t, err)
	repo.AssertNotCalled(t, "CreateSchool", mock.Anything, mock.Anything)
}

func TestBootstrapService_CreateAdmin_Errors(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo)

	_, err := svc.CreateAdmin(context.Background(), "Admin", "admin@slwc.it", "short")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateAdmin(context.Background(), "Admin", "admin@slwc.it", strings.Repeat("x", 73))
	assert.ErrorIs(t, err, models.ErrValidation)

	repo.On("InstructorExists", mock.Anything, "admin@slwc.it", 0).Return(true, nil).Once()
	_, err = svc.CreateAdmin(context.Background(), "Admin", "admin@slwc.it", "password123")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestBootstrapService_ResetPassword(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo)

	repo.On("UpdateInstructorPassword", mock.Anything, "admin@slwc.it", mock.MatchedBy(func(h string) bool {
		return bcrypt.CompareHashAndPassword([]byte(h), []byte("newpassword")) == nil
	})).Return(nil).Once()
	require.NoError(t, svc.ResetPassword(context.Background(), "ADMIN@slwc.it", "newpassword"))

	repo.On("UpdateInstructorPassword", mock.Anything, "ghost@slwc.it", mock.Anything).Return(models.ErrNotFound).Once()
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), "ghost@slwc.it", "newpassword"), models.ErrNotFound)

	assert.ErrorIs(t, svc.ResetPassword(context.Background(), "admin@slwc.it", "x"), models.ErrValidation)
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), "admin@slwc.it", strings.Repeat("x", 73)), models.ErrValidation)
	repo.AssertExpectations(t)
}
