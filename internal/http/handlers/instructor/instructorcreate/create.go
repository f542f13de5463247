// Package instructorcreate создаёт учётную запись персонала.
package instructorcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/slwc/membership/internal/http/response"
	"github.com/slwc/membership/internal/models"
)

// Handler обработчик POST /instructors.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает создание инструктора.
type Service interface {
	Create(ctx context.Context, in models.InstructorInput) (*models.InstructorView, error)
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
// @Summary Создать инструктора или администратора
// @Tags Instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.InstructorInput true "Учётная запись"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Школа не найдена"
// @Failure 409 {object} response.ErrorResponse "Email занят"
// @Failure 422 {object} response.ErrorResponse
// @Router /instructors [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.instructor.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.InstructorInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.DecodeError(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Invalid(w, r, log, err)
		return
	}

	res, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("instructor created", slog.Int("id", res.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"instructor": res,
	}))
}
