// Package instructorpromote переводит члена федерации в инструкторы.
package instructorpromote

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

// Handler обработчик POST /instructors/promote.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает перевод в инструкторы.
type Service interface {
	Promote(ctx context.Context, in models.PromoteInput) (*models.InstructorView, error)
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
// @Summary Сделать члена федерации инструктором
// @Tags Instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PromoteInput true "Кандидат, пароль и школа"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Уже инструктор"
// @Router /instructors/promote [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.instructor.promote"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.PromoteInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.DecodeError(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Invalid(w, r, log, err)
		return
	}

	res, err := h.service.Promote(r.Context(), req)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("subscriber promoted", slog.Int("subscriber_id", req.SubscriberID), slog.Int("instructor_id", res.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"instructor": res,
	}))
}
