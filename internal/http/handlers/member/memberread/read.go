// Package memberread возвращает члена федерации по идентификатору.
package memberread

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slwc/membership/internal/http/middlewarectx"
	"github.com/slwc/membership/internal/http/response"
	"github.com/slwc/membership/internal/lib/sl"
	"github.com/slwc/membership/internal/models"
)

// Handler обработчик GET /members/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение члена федерации.
type Service interface {
	Get(ctx context.Context, p models.Principal, id int) (*models.SubscriberView, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.read"

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

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	res, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"member": res,
	}))
}
