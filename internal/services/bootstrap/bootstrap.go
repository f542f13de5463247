// Package services содержит операции оператора: первичный администратор и сброс пароля.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slwc/membership/internal/lib/password"
	"github.com/slwc/membership/internal/models"
)

// Головная школа, к которой привязывается первый администратор.
const (
	MainSchoolSlug = "slwc-main"
	MainSchoolName = "SLWC Sede Centrale"
)

// Repository методы хранилища, нужные оператору.
type Repository interface {
	GetSchoolBySlug(ctx context.Context, slug string) (*models.School, error)
	CreateSchool(ctx context.Context, school models.School) (*models.School, error)
	InstructorExists(ctx context.Context, email string, subscriberID int) (bool, error)
	CreateInstructor(ctx context.Context, ins models.Instructor) (int, error)
	UpdateInstructorPassword(ctx context.Context, email, passwordHash string) error
}

// BootstrapService операции командной строки.
type BootstrapService struct {
	repo Repository
	log  *slog.Logger
}

// NewBootstrapService создает новый экземпляр BootstrapService.
func NewBootstrapService(repo Repository, log *slog.Logger) *BootstrapService {
	return &BootstrapService{repo: repo, log: log}
}

// CreateAdmin создаёт головную школу, если её нет, и учётную запись ADMIN в ней.
func (s *BootstrapService) CreateAdmin(ctx context.Context, name, email, pw string) (int, error) {
	const op = "services.bootstrap.CreateAdmin"
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if name == "" || email == "" {
		return 0, models.NewError(models.ErrValidation, "name and email are required")
	}
	if len(pw) < password.MinLength {
		return 0, models.NewError(models.ErrValidation, "password must be at least 8 characters")
	}
	if len(pw) > password.MaxLength {
		return 0, models.NewError(models.ErrValidation, "password must be at most 72 bytes")
	}

	exists, err := s.repo.InstructorExists(ctx, email, 0)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return 0, models.NewError(models.ErrConflict, "account already exists")
	}

	school, err := s.mainSchool(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(pw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreateInstructor(ctx, models.Instructor{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		SchoolID:     school.ID,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("admin created", slog.Int("id", id), slog.String("email", email), slog.Int("school_id", school.ID))
	return id, nil
}

// ResetPassword задаёт новый пароль учётной записи с данным email.
func (s *BootstrapService) ResetPassword(ctx context.Context, email, pw string) error {
	const op = "services.bootstrap.ResetPassword"
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.NewError(models.ErrValidation, "email is required")
	}
	if len(pw) < password.MinLength {
		return models.NewError(models.ErrValidation, "password must be at least 8 characters")
	}
	if len(pw) > password.MaxLength {
		return models.NewError(models.ErrValidation, "password must be at most 72 bytes")
	}

	hash, err := password.GetHash(pw)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateInstructorPassword(ctx, email, hash); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewError(models.ErrNotFound, "account not found")
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("password reset", slog.String("email", email))
	return nil
}

func (s *BootstrapService) mainSchool(ctx context.Context) (*models.School, error) {
	school, err := s.repo.GetSchoolBySlug(ctx, MainSchoolSlug)
	if err == nil {
		return school, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	return s.repo.CreateSchool(ctx, models.School{Name: MainSchoolName, Slug: MainSchoolSlug})
}
