// Package me возвращает учётную запись из JWT текущего запроса.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/slwc/membership/internal/http/middlewarectx"
	"github.com/slwc/membership/internal/http/response"
)

// Handler обработчик GET /auth/me.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущая учётная запись
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Non autorizzato"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"user": p}))
}
