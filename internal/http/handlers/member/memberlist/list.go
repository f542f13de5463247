// Package memberlist возвращает членов федерации, видимых текущей учётной записи.
package memberlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slwc/membership/internal/http/middlewarectx"
	"github.com/slwc/membership/internal/http/response"
	"github.com/slwc/membership/internal/models"
)

// Handler обработчик GET /members.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение списка членов.
type Service interface {
	List(ctx context.Context, p models.Principal) ([]models.SubscriberView, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список членов федерации
// @Description Администратор видит всех, инструктор только свою школу.
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /members [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.list"

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

	res, err := h.service.List(r.Context(), p)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("members listed", slog.Int("count", len(res)), slog.String("role", p.Role))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"members": res,
	}))
}
