// Package services выдаёт ссылки на загрузку медицинских справок и отдаёт их администраторам.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slwc/membership/internal/lib/sl"
	"github.com/slwc/membership/internal/models"
)

// DefaultFileName имя файла, если ни запрос, ни ключ его не дают.
const DefaultFileName = "certificato-medico"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".pdf":  "application/pdf",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ObjectStore определяет операции бакета справок.
type ObjectStore interface {
	Bucket() string
	PresignUpload(ctx context.Context, key, contentType string, metadata map[string]string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// CertificateService работает со справками в объектном хранилище.
type CertificateService struct {
	store ObjectStore
	log   *slog.Logger
	now   func() time.Time
}

// NewCertificateService создает новый экземпляр CertificateService.
func NewCertificateService(store ObjectStore, log *slog.Logger) *CertificateService {
	return &CertificateService{store: store, log: log, now: time.Now}
}

// IssueUploadURL возвращает подписанную PUT-ссылку под новым ключом в medical-certificates/.
func (s *CertificateService) IssueUploadURL(ctx context.Context, in models.UploadRequest) (*models.UploadURL, error) {
	const op = "services.certificate.IssueUploadURL"
	fileName := strings.TrimSpace(in.FileName)
	fileType := strings.TrimSpace(in.FileType)
	if fileName == "" || fileType == "" {
		return nil, models.NewError(models.ErrValidation, "Nome file e tipo richiesti")
	}

	now := s.now()
	key := fmt.Sprintf("%s%d-%s-%s", models.MedicalCertPrefix, now.UnixMilli(),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8], sanitise(fileName))
	metadata := map[string]string{
		"uploadedAt": now.UTC().Format(time.RFC3339),
		"purpose":    "medical-certificate",
	}

	signed, err := s.store.PresignUpload(ctx, key, fileType, metadata)
	if err != nil {
		s.log.Error("failed to presign upload", slog.String("key", key), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.UploadURL{SignedURL: signed, Key: key, Bucket: s.store.Bucket()}, nil
}

// Download открывает справку по ключу из medical-certificates/. Вызывающий закрывает Body.
func (s *CertificateService) Download(ctx context.Context, key, fileName string) (*models.Certificate, error) {
	const op = "services.certificate.Download"
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, models.NewError(models.ErrValidation, "Chiave file richiesta")
	}
	if !strings.HasPrefix(key, models.MedicalCertPrefix) {
		return nil, models.NewError(models.ErrValidation, "Chiave file non valida")
	}

	body, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewError(models.ErrNotFound, "File non trovato")
		}
		s.log.Error("failed to fetch certificate", slog.String("key", key), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	name := EffectiveFileName(key, fileName)
	return &models.Certificate{Body: body, ContentType: ContentType(name), FileName: name}, nil
}

// EffectiveFileName выбирает имя файла: переданное, последний сегмент ключа или DefaultFileName.
func EffectiveFileName(key, fileName string) string {
	if name := strings.TrimSpace(fileName); name != "" {
		return name
	}
	if i := strings.LastIndex(key, "/"); i >= 0 {
		key = key[i+1:]
	}
	if key != "" {
		return key
	}
	return DefaultFileName
}

// ContentType определяет MIME-тип по расширению.
func ContentType(fileName string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(fileName))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func sanitise(fileName string) string {
	name := unsafeChars.ReplaceAllString(path.Base(fileName), "_")
	if strings.Trim(name, "._") == "" {
		return "file"
	}
	return name
}
