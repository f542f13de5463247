// Package services рассылает письма о новых регистрациях.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/textproto"
	"time"

	"github.com/slwc/membership/internal/lib/rabbitmq"
	"github.com/slwc/membership/internal/lib/sl"
	"github.com/slwc/membership/internal/lib/smtp"
	"github.com/slwc/membership/internal/models"
)

const lookupTimeout = 10 * time.Second

// InstructorRepository отдаёт адреса инструкторов школы.
type InstructorRepository interface {
	ListInstructorEmailsBySchool(ctx context.Context, schoolID int) ([]string, error)
}

// NotificationService обрабатывает события registration.created.
type NotificationService struct {
	mailer smtp.Mailer
	repo   InstructorRepository
	log    *slog.Logger
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(mailer smtp.Mailer, repo InstructorRepository, log *slog.Logger) *NotificationService {
	return &NotificationService{mailer: mailer, repo: repo, log: log}
}

// HandleRegistration отправляет подтверждение новому члену федерации и
// уведомление каждому инструктору школы. Ошибка письма члену возвращает
// сообщение в очередь, ошибки писем инструкторам только логируются.
// Нечитаемое событие и постоянный отказ SMTP (5xx) помечаются rabbitmq.ErrDrop.
func (s *NotificationService) HandleRegistration(body []byte) error {
	const op = "services.notification.HandleRegistration"
	var event models.RegistrationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrDrop, err)
	}
	if event.Email == "" {
		return fmt.Errorf("%s: %w: event without email", op, rabbitmq.ErrDrop)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	recipients, err := s.repo.ListInstructorEmailsBySchool(ctx, event.SchoolID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	subject := "Conferma iscrizione SLWC"
	text := fmt.Sprintf("Ciao %s,\n\nla tua iscrizione alla scuola %s è stata registrata.\n\nBenvenuto nella SLWC!",
		event.FirstName, event.SchoolName)
	if err := s.sendEmail([]string{event.Email}, subject, text); err != nil {
		if permanent(err) {
			return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrDrop, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	subject = "Nuovo iscritto: " + event.FirstName + " " + event.LastName
	text = fmt.Sprintf("Un nuovo iscritto si è registrato alla scuola %s:\n\n%s %s <%s>",
		event.SchoolName, event.FirstName, event.LastName, event.Email)
	for _, addr := range recipients {
		if err := s.sendEmail([]string{addr}, subject, text); err != nil {
			s.log.Warn("instructor notification failed", slog.String("to", addr), sl.Err(err))
		}
	}
	return nil
}

// permanent сообщает, что сервер отклонил письмо окончательно.
func permanent(err error) bool {
	var protoErr *textproto.Error
	return errors.As(err, &protoErr) && protoErr.Code >= 500 && protoErr.Code < 600
}

func (s *NotificationService) sendEmail(to []string, subject, bodyText string) error {
	if err := smtp.Send(s.mailer, smtp.Message{To: to, Subject: subject, Body: bodyText}); err != nil {
		s.log.Error("failed to send email", slog.Any("to", to), sl.Err(err))
		return err
	}
	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
