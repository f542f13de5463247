// Package services содержит бизнес-логику реестра членов федерации:
// анкеты, права инструктора на свою школу и публичную регистрацию.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slwc/membership/internal/lib/date"
	"github.com/slwc/membership/internal/lib/sl"
	"github.com/slwc/membership/internal/models"
)

const (
	msgNotFound       = "Iscritto non trovato"
	msgSchoolNotFound = "Scuola non trovata"
	msgDuplicate      = "Un iscritto con questa email o codice fiscale esiste già"
	msgIsInstructor   = "Non è possibile eliminare un iscritto che è anche istruttore. Elimina prima l'istruttore."
	maxDuan           = 18
	fiscalCodeLength  = 16
)

// SubscriberRepository определяет методы хранилища, нужные реестру членов.
type SubscriberRepository interface {
	// ListSubscribers возвращает членов школы schoolID, 0 означает все школы.
	ListSubscribers(ctx context.Context, schoolID int) ([]models.SubscriberView, error)
	GetSubscriber(ctx context.Context, id int) (*models.SubscriberView, error)
	// SubscriberExists ищет другого члена с тем же email или кодом фискале.
	SubscriberExists(ctx context.Context, email, fiscalCode string, excludeID int) (bool, error)
	CreateSubscriber(ctx context.Context, sub models.Subscriber) (int, error)
	UpdateSubscriber(ctx context.Context, sub models.Subscriber) error
	DeleteSubscriber(ctx context.Context, id int) error
	InstructorExists(ctx context.Context, email string, subscriberID int) (bool, error)
	GetSchool(ctx context.Context, id int) (*models.School, error)
	GetSchoolBySlug(ctx context.Context, slug string) (*models.School, error)
}

// Publisher отправляет события о новых регистрациях.
type Publisher interface {
	PublishRegistration(ctx context.Context, event models.RegistrationEvent) error
}

// SubscriberService реализует реестр членов федерации.
type SubscriberService struct {
	repo      SubscriberRepository
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewSubscriberService создает новый экземпляр SubscriberService.
func NewSubscriberService(repo SubscriberRepository, publisher Publisher, log *slog.Logger) *SubscriberService {
	return &SubscriberService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// List возвращает членов федерации: администратору всех, инструктору только своей школы.
func (s *SubscriberService) List(ctx context.Context, p models.Principal) ([]models.SubscriberView, error) {
	const op = "services.subscriber.List"
	schoolID := p.SchoolID
	if p.IsAdmin() {
		schoolID = 0
	}
	subs, err := s.repo.ListSubscribers(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if subs == nil {
		subs = []models.SubscriberView{}
	}
	return subs, nil
}

// Get возвращает члена федерации. Член чужой школы для инструктора не существует.
func (s *SubscriberService) Get(ctx context.Context, p models.Principal, id int) (*models.SubscriberView, error) {
	const op = "services.subscriber.Get"
	sub, err := s.repo.GetSubscriber(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewError(models.ErrNotFound, msgNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !p.IsAdmin() && sub.SchoolID != p.SchoolID {
		return nil, models.NewError(models.ErrNotFound, msgNotFound)
	}
	return sub, nil
}

// Create записывает нового члена. Инструктор записывает только в свою школу.
func (s *SubscriberService) Create(ctx context.Context, p models.Principal, in models.SubscriberInput) (*models.SubscriberView, error) {
	const op = "services.subscriber.Create"
	if !p.IsAdmin() {
		in.SchoolID = p.SchoolID
	}
	if _, err := s.school(ctx, in.SchoolID); err != nil {
		return nil, err
	}

	id, err := s.insert(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscriber created", slog.Int("id", id), slog.Int("school_id", in.SchoolID),
		slog.Int("by", p.InstructorID))
	return s.Get(ctx, p, id)
}

// Update изменяет анкету. Инструктор не может переводить члена в другую школу.
func (s *SubscriberService) Update(ctx context.Context, p models.Principal, id int, in models.SubscriberInput) (*models.SubscriberView, error) {
	const op = "services.subscriber.Update"
	current, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	switch {
	case !p.IsAdmin() && in.SchoolID != 0 && in.SchoolID != p.SchoolID:
		return nil, models.NewError(models.ErrForbidden, "Non puoi spostare un iscritto in un'altra scuola")
	case !p.IsAdmin():
		in.SchoolID = p.SchoolID
	case in.SchoolID == 0:
		in.SchoolID = current.SchoolID
	}
	if _, err := s.school(ctx, in.SchoolID); err != nil {
		return nil, err
	}

	sub, err := s.build(in)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.SLWCJoinDate) == "" {
		sub.SLWCJoinDate = current.SLWCJoinDate
	}
	sub.ID = id
	sub.QRCode = current.QRCode

	exists, err := s.repo.SubscriberExists(ctx, sub.Email, sub.FiscalCode, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, models.NewError(models.ErrConflict, msgDuplicate)
	}
	if err := s.repo.UpdateSubscriber(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.Get(ctx, p, id)
}

// Delete удаляет члена, если он не связан с учётной записью инструктора.
func (s *SubscriberService) Delete(ctx context.Context, id int) error {
	const op = "services.subscriber.Delete"
	sub, err := s.repo.GetSubscriber(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewError(models.ErrNotFound, msgNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	linked, err := s.repo.InstructorExists(ctx, sub.Email, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if linked {
		return models.NewError(models.ErrConflict, msgIsInstructor)
	}
	if err := s.repo.DeleteSubscriber(ctx, id); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.NewError(models.ErrConflict, msgIsInstructor)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscriber deleted", slog.Int("id", id))
	return nil
}

// RegisterPublic записывает члена по ссылке школы. Поля EPS и оплата взносов
// всегда сбрасываются, их заполняет персонал.
func (s *SubscriberService) RegisterPublic(ctx context.Context, in models.PublicRegistrationInput) (*models.RegistrationResult, error) {
	const op = "services.subscriber.RegisterPublic"
	var school *models.School
	var err error
	switch {
	case strings.TrimSpace(in.Slug) != "":
		school, err = s.repo.GetSchoolBySlug(ctx, strings.TrimSpace(in.Slug))
		if errors.Is(err, models.ErrNotFound) {
			err = models.NewError(models.ErrNotFound, msgSchoolNotFound)
		}
	case in.SchoolID > 0:
		school, err = s.school(ctx, in.SchoolID)
	default:
		err = models.NewError(models.ErrValidation, "Scuola richiesta")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	form := in.SubscriberInput
	form.SchoolID = school.ID
	form.AnnualPayment = false
	form.IsEPSMember = false
	form.EPSCardNumber = ""
	form.EPSJoinDate = ""

	id, err := s.insert(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &models.RegistrationResult{
		ID:     id,
		Name:   strings.TrimSpace(form.FirstName) + " " + strings.TrimSpace(form.LastName),
		School: school.Name,
	}
	s.log.Info("public registration", slog.Int("id", id), slog.String("school", school.Slug))

	event := models.RegistrationEvent{
		SubscriberID: id,
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
		Email:        normaliseEmail(form.Email),
		SchoolID:     school.ID,
		SchoolName:   school.Name,
	}
	if err := s.publisher.PublishRegistration(ctx, event); err != nil {
		s.log.Warn("failed to publish registration event", slog.Int("id", id), sl.Err(err))
	}
	return result, nil
}

func (s *SubscriberService) school(ctx context.Context, id int) (*models.School, error) {
	const op = "services.subscriber.school"
	if id <= 0 {
		return nil, models.NewError(models.ErrValidation, "Scuola richiesta")
	}
	school, err := s.repo.GetSchool(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewError(models.ErrNotFound, msgSchoolNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return school, nil
}

// insert проверяет дубликаты и вставляет нового члена с новым QR-кодом.
func (s *SubscriberService) insert(ctx context.Context, in models.SubscriberInput) (int, error) {
	sub, err := s.build(in)
	if err != nil {
		return 0, err
	}
	exists, err := s.repo.SubscriberExists(ctx, sub.Email, sub.FiscalCode, 0)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, models.NewError(models.ErrConflict, msgDuplicate)
	}
	sub.QRCode = newQRCode(s.now())

	id, err := s.repo.CreateSubscriber(ctx, sub)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return 0, models.NewError(models.ErrConflict, msgDuplicate)
		}
		return 0, err
	}
	return id, nil
}

// build нормализует форму и выводит производные поля.
func (s *SubscriberService) build(in models.SubscriberInput) (models.Subscriber, error) {
	fiscal := strings.ToUpper(strings.TrimSpace(in.FiscalCode))
	if len(fiscal) != fiscalCodeLength {
		return models.Subscriber{}, models.NewError(models.ErrValidation, "Il codice fiscale deve essere di 16 caratteri")
	}
	if in.Duan < 0 || in.Duan > maxDuan {
		return models.Subscriber{}, models.NewError(models.ErrValidation, "Duan deve essere compreso tra 0 e 18")
	}

	docType := optional(strings.ToUpper(in.DocumentType))
	if docType != nil {
		switch *docType {
		case models.DocumentIdentityCard, models.DocumentPassport, models.DocumentDriveLicense:
		default:
			return models.Subscriber{}, models.NewError(models.ErrValidation, "Tipo documento non valido")
		}
	}

	certKey := optional(in.MedicalCertS3Key)
	if certKey != nil && !strings.HasPrefix(*certKey, models.MedicalCertPrefix) {
		return models.Subscriber{}, models.NewError(models.ErrValidation, "Chiave del certificato medico non valida")
	}

	birthDate, err := date.Parse(in.BirthDate)
	if err != nil {
		return models.Subscriber{}, models.NewError(models.ErrValidation, "Data di nascita non valida")
	}
	docExpiry, err := date.ParseOptional(in.DocumentExpiry)
	if err != nil {
		return models.Subscriber{}, models.NewError(models.ErrValidation, "Scadenza documento non valida")
	}
	epsJoin, err := date.ParseOptional(in.EPSJoinDate)
	if err != nil {
		return models.Subscriber{}, models.NewError(models.ErrValidation, "Data iscrizione EPS non valida")
	}
	joinDate, err := date.ParseOptional(in.SLWCJoinDate)
	if err != nil {
		return models.Subscriber{}, models.NewError(models.ErrValidation, "Data iscrizione SLWC non valida")
	}
	if joinDate == nil {
		today := s.now().UTC().Truncate(24 * time.Hour)
		joinDate = &today
	}

	return models.Subscriber{
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		BirthDate:        birthDate,
		BirthPlace:       strings.TrimSpace(in.BirthPlace),
		BirthCap:         strings.TrimSpace(in.BirthCap),
		FiscalCode:       fiscal,
		Residence:        strings.TrimSpace(in.Residence),
		ResidenceCity:    strings.TrimSpace(in.ResidenceCity),
		ResidenceCap:     strings.TrimSpace(in.ResidenceCap),
		Email:            normaliseEmail(in.Email),
		Phone:            strings.TrimSpace(in.Phone),
		Duan:             in.Duan,
		DocumentType:     docType,
		DocumentNumber:   optional(in.DocumentNumber),
		DocumentExpiry:   docExpiry,
		HasMedicalCert:   certKey != nil,
		MedicalCertS3Key: certKey,
		SLWCJoinDate:     *joinDate,
		AnnualPayment:    in.AnnualPayment,
		IsEPSMember:      in.IsEPSMember,
		EPSCardNumber:    optional(in.EPSCardNumber),
		EPSJoinDate:      epsJoin,
		SchoolID:         in.SchoolID,
	}, nil
}

// newQRCode возвращает токен вида SLWC_<unix-ms>_<9 hex-символов случайного UUID>.
func newQRCode(now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("SLWC_%d_%s", now.UnixMilli(), token[:9])
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
