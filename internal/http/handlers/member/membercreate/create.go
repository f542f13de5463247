// Package membercreate записывает нового члена федерации от имени персонала.
package membercreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/slwc/membership/internal/http/middlewarectx"
	"github.com/slwc/membership/internal/http/response"
	"github.com/slwc/membership/internal/models"
)

// Handler обработчик POST /members.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает создание члена федерации.
type Service interface {
	Create(ctx context.Context, p models.Principal, in models.SubscriberInput) (*models.SubscriberView, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Записать члена федерации
// @Description Инструктор всегда записывает в свою школу.
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SubscriberInput true "Анкета"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Email или codice fiscale заняты"
// @Failure 422 {object} response.ErrorResponse
// @Router /members [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.create"

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

	var req models.SubscriberInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.DecodeError(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Invalid(w, r, log, err)
		return
	}

	res, err := h.service.Create(r.Context(), p, req)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("member created", slog.Int("id", res.ID), slog.Int("school_id", res.SchoolID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"member": res,
	}))
}
