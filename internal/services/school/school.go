// Package services содержит бизнес-логику реестра школ и публичной карточки школы.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/slwc/membership/internal/lib/sl"
	"github.com/slwc/membership/internal/models"
)

const (
	publicCacheTTL = time.Hour
	qrSize         = 256
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// SchoolRepository определяет методы для работы со школами в хранилище.
type SchoolRepository interface {
	ListSchools(ctx context.Context) ([]models.SchoolWithCounts, error)
	GetSchool(ctx context.Context, id int) (*models.School, error)
	GetSchoolBySlug(ctx context.Context, slug string) (*models.School, error)
	// SlugTaken сообщает, занят ли slug школой с ID, отличным от excludeID.
	SlugTaken(ctx context.Context, slug string, excludeID int) (bool, error)
	CreateSchool(ctx context.Context, school models.School) (*models.School, error)
	UpdateSchool(ctx context.Context, school models.School) (*models.School, error)
	DeleteSchool(ctx context.Context, id int) error
	// CountSchoolMembers возвращает количество членов и инструкторов школы.
	CountSchoolMembers(ctx context.Context, id int) (int, int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// SchoolService реализует реестр школ с кэшированием публичных карточек.
type SchoolService struct {
	repo          SchoolRepository
	cache         Cache
	log           *slog.Logger
	publicBaseURL string
}

// NewSchoolService создает новый экземпляр SchoolService.
func NewSchoolService(repo SchoolRepository, cache Cache, log *slog.Logger, publicBaseURL string) *SchoolService {
	return &SchoolService{
		repo:          repo,
		cache:         cache,
		log:           log,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func slugCacheKey(slug string) string {
	return "school:slug:" + slug
}

func notFound() error {
	return models.NewError(models.ErrNotFound, "Scuola non trovata")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// List возвращает все школы с количеством членов и инструкторов.
func (s *SchoolService) List(ctx context.Context) ([]models.SchoolWithCounts, error) {
	const op = "services.school.List"
	schools, err := s.repo.ListSchools(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if schools == nil {
		schools = []models.SchoolWithCounts{}
	}
	return schools, nil
}

// Get возвращает школу по ID.
func (s *SchoolService) Get(ctx context.Context, id int) (*models.School, error) {
	const op = "services.school.Get"
	school, err := s.repo.GetSchool(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, notFound()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return school, nil
}

func (s *SchoolService) prepare(ctx context.Context, in models.SchoolInput, excludeID int) (models.School, error) {
	name := strings.TrimSpace(in.Name)
	slug := strings.TrimSpace(in.Slug)
	if name == "" || slug == "" {
		return models.School{}, models.NewError(models.ErrValidation, "Nome e slug sono richiesti")
	}
	if !slugPattern.MatchString(slug) {
		return models.School{}, models.NewError(models.ErrValidation,
			"Slug non valido: usa solo lettere minuscole, numeri e trattini")
	}
	taken, err := s.repo.SlugTaken(ctx, slug, excludeID)
	if err != nil {
		return models.School{}, err
	}
	if taken {
		return models.School{}, models.NewError(models.ErrConflict, "Uno slug con questo nome esiste già")
	}
	return models.School{
		ID:      excludeID,
		Name:    name,
		GymName: optional(in.GymName),
		Slug:    slug,
		Address: optional(in.Address),
	}, nil
}

// Create создает школу. Slug проверяется на формат и уникальность.
func (s *SchoolService) Create(ctx context.Context, in models.SchoolInput) (*models.School, error) {
	const op = "services.school.Create"
	school, err := s.prepare(ctx, in, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.CreateSchool(ctx, school)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("school created", slog.Int("id", created.ID), slog.String("slug", created.Slug))
	return created, nil
}

// Update изменяет школу и сбрасывает кэш старого и нового slug.
func (s *SchoolService) Update(ctx context.Context, id int, in models.SchoolInput) (*models.School, error) {
	const op = "services.school.Update"
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	school, err := s.prepare(ctx, in, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := s.repo.UpdateSchool(ctx, school)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, notFound()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, current.Slug, updated.Slug)
	return updated, nil
}

// Delete удаляет школу без членов и инструкторов.
func (s *SchoolService) Delete(ctx context.Context, id int) error {
	const op = "services.school.Delete"
	school, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	subscribers, instructors, err := s.repo.CountSchoolMembers(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if subscribers > 0 || instructors > 0 {
		return models.NewError(models.ErrConflict, "Non è possibile eliminare una scuola con membri o istruttori associati")
	}
	if err := s.repo.DeleteSchool(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return notFound()
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, school.Slug)
	s.log.Info("school deleted", slog.Int("id", id))
	return nil
}

// GetPublicBySlug возвращает публичную карточку школы для страницы регистрации.
func (s *SchoolService) GetPublicBySlug(ctx context.Context, slug string) (*models.PublicSchool, error) {
	const op = "services.school.GetPublicBySlug"
	key := slugCacheKey(slug)

	var cached models.PublicSchool
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read school from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	school, err := s.repo.GetSchoolBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, notFound()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	public := school.Public()
	if err := s.cache.Set(ctx, key, public, publicCacheTTL); err != nil {
		s.log.Warn("failed to cache school", slog.String("key", key), sl.Err(err))
	}
	return &public, nil
}

// OwnSchool возвращает школу инструктора.
func (s *SchoolService) OwnSchool(ctx context.Context, p models.Principal) (*models.SchoolSummary, error) {
	school, err := s.Get(ctx, p.SchoolID)
	if err != nil {
		return nil, err
	}
	return &models.SchoolSummary{ID: school.ID, Name: school.Name}, nil
}

// RegistrationURL возвращает ссылку на страницу самостоятельной регистрации школы.
func (s *SchoolService) RegistrationURL(slug string) string {
	return s.publicBaseURL + "/register/" + url.PathEscape(slug)
}

// QRCode возвращает PNG с QR-кодом ссылки регистрации школы.
func (s *SchoolService) QRCode(ctx context.Context, id int) ([]byte, error) {
	const op = "services.school.QRCode"
	school, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(s.RegistrationURL(school.Slug), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return png, nil
}

func (s *SchoolService) invalidate(ctx context.Context, slugs ...string) {
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		keys = append(keys, slugCacheKey(slug))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to invalidate school cache", slog.Any("keys", keys), sl.Err(err))
	}
}
