// Package exportsubscribers отдаёт реестр членов федерации в формате xlsx.
package exportsubscribers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/slwc/membership/internal/http/response"
	"github.com/slwc/membership/internal/lib/sl"
)

// ContentType MIME-тип книги Excel.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler обработчик GET /export-subscribers.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает построение выгрузки.
type Service interface {
	Export(ctx context.Context) ([]byte, string, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выгрузка реестра в Excel
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 500 {object} response.ErrorResponse
// @Router /export-subscribers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.export.subscribers"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	data, fileName, err := h.service.Export(r.Context())
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write export", sl.Err(err))
	}
}
