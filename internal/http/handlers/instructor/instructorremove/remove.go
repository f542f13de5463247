// Package instructorremove удаляет учётную запись персонала по ?id=.
package instructorremove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slwc/membership/internal/http/middlewarectx"
	"github.com/slwc/membership/internal/http/response"
	"github.com/slwc/membership/internal/lib/sl"
	"github.com/slwc/membership/internal/models"
)

// Handler обработчик DELETE /instructors?id=.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает удаление инструктора.
type Service interface {
	Delete(ctx context.Context, p models.Principal, id int) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.instructor.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Non autorizzato"))
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("ID istruttore richiesto"))
		return
	}

	if err := h.service.Delete(r.Context(), p, id); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("instructor deleted", slog.Int("id", id))
	render.JSON(w, r, response.OKWithMessage("Istruttore eliminato con successo"))
}
