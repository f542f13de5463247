// Package services содержит логику входа персонала и проверки JWT.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slwc/membership/internal/lib/jwt"
	"github.com/slwc/membership/internal/lib/password"
	"github.com/slwc/membership/internal/models"
)

const invalidCredentials = "invalid credentials"

// InstructorRepository описывает чтение учётных записей персонала.
type InstructorRepository interface {
	// GetInstructorByEmail возвращает инструктора по email или ErrNotFound.
	GetInstructorByEmail(ctx context.Context, email string) (*models.InstructorView, error)
}

// AuthService отвечает за вход и валидацию JWT.
type AuthService struct {
	instructors InstructorRepository
	jwtMaker    jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(instructors InstructorRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		instructors: instructors,
		jwtMaker:    jwtMaker,
	}
}

// Login проверяет пароль и выпускает JWT. Неизвестный email и неверный пароль
// неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, models.Principal, error) {
	const op = "services.auth.Login"
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || rawPassword == "" {
		return "", models.Principal{}, models.NewError(models.ErrUnauthorized, invalidCredentials)
	}

	instructor, err := s.instructors.GetInstructorByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.Principal{}, models.NewError(models.ErrUnauthorized, invalidCredentials)
		}
		return "", models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(instructor.PasswordHash, rawPassword); err != nil {
		return "", models.Principal{}, models.NewError(models.ErrUnauthorized, invalidCredentials)
	}

	principal := models.Principal{
		InstructorID: instructor.ID,
		Email:        instructor.Email,
		Role:         instructor.Role,
		SchoolID:     instructor.SchoolID,
		SchoolName:   instructor.SchoolName,
	}
	token, err := s.jwtMaker.GenerateToken(principal)
	if err != nil {
		return "", models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	return token, principal, nil
}

// ValidateToken проверяет JWT и возвращает пользователя запроса.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.Principal, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, models.NewError(models.ErrUnauthorized, "invalid token")
	}
	p := claims.Principal()
	return &p, nil
}
