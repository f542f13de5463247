// Package certdownload отдаёт медицинскую справку из S3 как вложение.
package certdownload

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/slwc/membership/internal/http/response"
	"github.com/slwc/membership/internal/lib/sl"
	"github.com/slwc/membership/internal/models"
)

// Handler обработчик GET /download-medical-cert?key=&filename=.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение справки.
type Service interface {
	Download(ctx context.Context, key, fileName string) (*models.Certificate, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.certificate.download"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	cert, err := h.service.Download(r.Context(), q.Get("key"), q.Get("filename"))
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	defer cert.Body.Close()

	w.Header().Set("Content-Type", cert.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(cert.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, cert.Body); err != nil {
		log.Error("failed to stream certificate", sl.Err(err))
	}
}

// contentDisposition даёт ASCII-имя в filename и, если имя не ASCII, исходное в filename* (RFC 5987).
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '\\':
			return -1
		case r < 0x20 || r > 0x7e:
			return '_'
		}
		return r
	}, name)
	value := `attachment; filename="` + fallback + `"`
	if !hasNonASCII(name) {
		return value
	}
	extended := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if extended == "" {
		return value
	}
	return value + strings.TrimPrefix(extended, "attachment")
}

func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7e {
			return true
		}
	}
	return false
}
