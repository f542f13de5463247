// Package services содержит реестр инструкторов и перевод членов федерации в инструкторы.
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

const (
	msgNotFound        = "Istruttore non trovato"
	msgSchoolNotFound  = "Scuola non trovata"
	msgEmailTaken      = "Un istruttore con questa email esiste già"
	msgAlreadyPromoted = "Questo iscritto è già un istruttore"
)

// InstructorRepository определяет методы хранилища для реестра инструкторов.
type InstructorRepository interface {
	ListInstructors(ctx context.Context) ([]models.InstructorView, error)
	GetInstructor(ctx context.Context, id int) (*models.InstructorView, error)
	// InstructorExists ищет инструктора по email или по связи с членом subscriberID.
	InstructorExists(ctx context.Context, email string, subscriberID int) (bool, error)
	CreateInstructor(ctx context.Context, ins models.Instructor) (int, error)
	DeleteInstructor(ctx context.Context, id int) error
	GetSchool(ctx context.Context, id int) (*models.School, error)
	GetSubscriber(ctx context.Context, id int) (*models.SubscriberView, error)
	ListPromotable(ctx context.Context) ([]models.SubscriberView, error)
}

// InstructorService реализует реестр инструкторов.
type InstructorService struct {
	repo InstructorRepository
	log  *slog.Logger
}

// NewInstructorService создает новый экземпляр InstructorService.
func NewInstructorService(repo InstructorRepository, log *slog.Logger) *InstructorService {
	return &InstructorService{repo: repo, log: log}
}

// List возвращает всех инструкторов, новые первыми.
func (s *InstructorService) List(ctx context.Context) ([]models.InstructorView, error) {
	const op = "services.instructor.List"
	list, err := s.repo.ListInstructors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []models.InstructorView{}
	}
	return list, nil
}

// Create создает учётную запись персонала.
func (s *InstructorService) Create(ctx context.Context, in models.InstructorInput) (*models.InstructorView, error) {
	const op = "services.instructor.Create"
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if name == "" || email == "" {
		return nil, models.NewError(models.ErrValidation, "Nome ed email sono richiesti")
	}
	if in.Role != models.RoleAdmin && in.Role != models.RoleInstructor {
		return nil, models.NewError(models.ErrValidation, "Ruolo non valido")
	}
	if len(in.Password) < password.MinLength {
		return nil, models.NewError(models.ErrValidation, "La password deve contenere almeno 8 caratteri")
	}
	if len(in.Password) > password.MaxLength {
		return nil, models.NewError(models.ErrValidation, "La password non può superare 72 byte")
	}

	exists, err := s.repo.InstructorExists(ctx, email, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, models.NewError(models.ErrConflict, msgEmailTaken)
	}
	if err := s.checkSchool(ctx, in.SchoolID); err != nil {
		return nil, err
	}

	hash, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreateInstructor(ctx, models.Instructor{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		SchoolID:     in.SchoolID,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.NewError(models.ErrConflict, msgEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("instructor created", slog.Int("id", id), slog.String("role", in.Role))
	return s.get(ctx, id)
}

// Delete удаляет инструктора. Удалить собственную учётную запись нельзя.
func (s *InstructorService) Delete(ctx context.Context, p models.Principal, id int) error {
	const op = "services.instructor.Delete"
	if id == p.InstructorID {
		return models.NewError(models.ErrConflict, "Non è possibile eliminare il proprio account")
	}
	if err := s.repo.DeleteInstructor(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewError(models.ErrNotFound, msgNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("instructor deleted", slog.Int("id", id), slog.Int("by", p.InstructorID))
	return nil
}

// Promote выдаёт члену федерации учётную запись инструктора в школе in.SchoolID.
// Анкета члена не меняется.
func (s *InstructorService) Promote(ctx context.Context, in models.PromoteInput) (*models.InstructorView, error) {
	const op = "services.instructor.Promote"
	if len(in.Password) < password.MinLength {
		return nil, models.NewError(models.ErrValidation, "La password deve contenere almeno 8 caratteri")
	}
	if len(in.Password) > password.MaxLength {
		return nil, models.NewError(models.ErrValidation, "La password non può superare 72 byte")
	}

	sub, err := s.repo.GetSubscriber(ctx, in.SubscriberID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewError(models.ErrNotFound, "Iscritto non trovato")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.repo.InstructorExists(ctx, sub.Email, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, models.NewError(models.ErrConflict, msgAlreadyPromoted)
	}
	if err := s.checkSchool(ctx, in.SchoolID); err != nil {
		return nil, err
	}

	hash, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	subscriberID := sub.ID
	id, err := s.repo.CreateInstructor(ctx, models.Instructor{
		Name:         sub.FirstName + " " + sub.LastName,
		Email:        sub.Email,
		PasswordHash: hash,
		Role:         models.RoleInstructor,
		SchoolID:     in.SchoolID,
		SubscriberID: &subscriberID,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.NewError(models.ErrConflict, msgAlreadyPromoted)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscriber promoted", slog.Int("subscriber_id", sub.ID), slog.Int("instructor_id", id))
	return s.get(ctx, id)
}

// ListPromotable возвращает членов федерации без учётной записи инструктора.
func (s *InstructorService) ListPromotable(ctx context.Context) ([]models.SubscriberView, error) {
	const op = "services.instructor.ListPromotable"
	list, err := s.repo.ListPromotable(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []models.SubscriberView{}
	}
	return list, nil
}

func (s *InstructorService) get(ctx context.Context, id int) (*models.InstructorView, error) {
	const op = "services.instructor.get"
	ins, err := s.repo.GetInstructor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ins, nil
}

func (s *InstructorService) checkSchool(ctx context.Context, id int) error {
	const op = "services.instructor.checkSchool"
	if _, err := s.repo.GetSchool(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewError(models.ErrNotFound, msgSchoolNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
