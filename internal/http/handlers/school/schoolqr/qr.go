// Package schoolqr отдаёт PNG с QR-кодом ссылки на регистрацию в школе.
package schoolqr

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slwc/membership/internal/http/response"
	"github.com/slwc/membership/internal/lib/sl"
)

// Handler обработчик GET /schools/{id}/qr.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает генерацию QR-кода.
type Service interface {
	QRCode(ctx context.Context, id int) ([]byte, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.school.qr"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	png, err := h.service.QRCode(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	if _, err := w.Write(png); err != nil {
		log.Error("failed to write qr code", sl.Err(err))
	}
}
