// Package schoolpublic отдаёт публичную карточку школы для страницы регистрации.
package schoolpublic

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slwc/membership/internal/http/response"
	"github.com/slwc/membership/internal/models"
)

// Handler обработчик GET /public/schools/{slug}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает поиск школы по slug.
type Service interface {
	GetPublicBySlug(ctx context.Context, slug string) (*models.PublicSchool, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Школа по slug
// @Tags Public
// @Produce json
// @Param slug path string true "Slug школы"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Router /public/schools/{slug} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.school.public"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	school, err := h.service.GetPublicBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"school": school,
	}))
}
