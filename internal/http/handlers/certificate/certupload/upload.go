// Package certupload выдаёт подписанную ссылку для загрузки медицинской справки в S3.
// Один обработчик обслуживает и публичный, и служебный маршрут.
package certupload

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

// Handler обработчик POST /upload-medical-cert и /public/upload-medical-cert.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает выдачу ссылки.
type Service interface {
	IssueUploadURL(ctx context.Context, in models.UploadRequest) (*models.UploadURL, error)
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
// @Summary Ссылка на загрузку справки
// @Tags Certificates
// @Accept json
// @Produce json
// @Param request body models.UploadRequest true "Имя и тип файла"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /upload-medical-cert [post]
// @Router /public/upload-medical-cert [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.certificate.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.DecodeError(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("upload request without file name or type")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Nome file e tipo richiesti"))
		return
	}

	res, err := h.service.IssueUploadURL(r.Context(), req)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("upload url issued", slog.String("key", res.Key))
	render.JSON(w, r, response.StatusOKWithData(res))
}
