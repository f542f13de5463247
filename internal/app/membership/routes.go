// Package membership собирает HTTP-сервис членства: зависимости, маршруты и жизненный цикл сервера.
package membership

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-документа для /docs.
	_ "github.com/slwc/membership/docs"
	"github.com/slwc/membership/internal/http/handlers/auth/login"
	"github.com/slwc/membership/internal/http/handlers/auth/me"
	"github.com/slwc/membership/internal/http/handlers/certificate/certdownload"
	"github.com/slwc/membership/internal/http/handlers/certificate/certupload"
	"github.com/slwc/membership/internal/http/handlers/export/exportsubscribers"
	"github.com/slwc/membership/internal/http/handlers/health"
	"github.com/slwc/membership/internal/http/handlers/instructor/instructorcreate"
	"github.com/slwc/membership/internal/http/handlers/instructor/instructorlist"
	"github.com/slwc/membership/internal/http/handlers/instructor/instructorpromote"
	"github.com/slwc/membership/internal/http/handlers/instructor/instructorremove"
	"github.com/slwc/membership/internal/http/handlers/member/membercreate"
	"github.com/slwc/membership/internal/http/handlers/member/memberlist"
	"github.com/slwc/membership/internal/http/handlers/member/memberpromotable"
	"github.com/slwc/membership/internal/http/handlers/member/memberread"
	"github.com/slwc/membership/internal/http/handlers/member/memberremove"
	"github.com/slwc/membership/internal/http/handlers/member/memberupdate"
	"github.com/slwc/membership/internal/http/handlers/member/publicregister"
	"github.com/slwc/membership/internal/http/handlers/school/schoolcreate"
	"github.com/slwc/membership/internal/http/handlers/school/schoollist"
	"github.com/slwc/membership/internal/http/handlers/school/schoolown"
	"github.com/slwc/membership/internal/http/handlers/school/schoolpublic"
	"github.com/slwc/membership/internal/http/handlers/school/schoolqr"
	"github.com/slwc/membership/internal/http/handlers/school/schoolread"
	"github.com/slwc/membership/internal/http/handlers/school/schoolremove"
	"github.com/slwc/membership/internal/http/handlers/school/schoolupdate"
	"github.com/slwc/membership/internal/http/handlers/stats/statsread"
	"github.com/slwc/membership/internal/http/middlewarectx"
	"github.com/slwc/membership/internal/models"
)

// SchoolService операции школ, нужные маршрутам.
type SchoolService interface {
	schoollist.Service
	schoolcreate.Service
	schoolread.Service
	schoolupdate.Service
	schoolremove.Service
	schoolqr.Service
	schoolown.Service
	schoolpublic.Service
}

// SubscriberService операции iscritti, нужные маршрутам.
type SubscriberService interface {
	memberlist.Service
	membercreate.Service
	memberread.Service
	memberupdate.Service
	memberremove.Service
	publicregister.Service
}

// InstructorService операции istruttori, нужные маршрутам.
type InstructorService interface {
	instructorlist.Service
	instructorcreate.Service
	instructorremove.Service
	instructorpromote.Service
	memberpromotable.Service
}

// CertificateService операции со справками.
type CertificateService interface {
	certupload.Service
	certdownload.Service
}

// Services набор зависимостей для RegisterRoutes.
type Services struct {
	Auth interface {
		login.Service
		middlewarectx.Service
	}
	Schools     SchoolService
	Subscribers SubscriberService
	Instructors InstructorService
	Certificate CertificateService
	Export      exportsubscribers.Service
	Stats       statsread.Service
	Health      health.Checker
	Limiter     *middlewarectx.IPRateLimiter
	Registry    *prometheus.Registry
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	metrics := middlewarectx.NewMetrics(s.Registry)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)

		// Публичная регистрация по ссылке школы
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, s.Limiter))
			r.Get("/public/schools/{slug}", schoolpublic.New(logger, s.Schools).ServeHTTP)
			r.Post("/public/register", publicregister.New(logger, s.Subscribers).ServeHTTP)
			r.Post("/public/upload-medical-cert", certupload.New(logger, s.Certificate).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Authenticate(s.Auth, logger))
			r.Get("/auth/me", me.New(logger).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin, models.RoleInstructor))
				r.Get("/members", memberlist.New(logger, s.Subscribers).ServeHTTP)
				r.Post("/members", membercreate.New(logger, s.Subscribers).ServeHTTP)
				r.Get("/members/{id}", memberread.New(logger, s.Subscribers).ServeHTTP)
				r.Put("/members/{id}", memberupdate.New(logger, s.Subscribers).ServeHTTP)
				r.Post("/upload-medical-cert", certupload.New(logger, s.Certificate).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleInstructor))
				r.Get("/instructor/school", schoolown.New(logger, s.Schools).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin))
				r.Get("/schools", schoollist.New(logger, s.Schools).ServeHTTP)
				r.Post("/schools", schoolcreate.New(logger, s.Schools).ServeHTTP)
				r.Get("/schools/{id}", schoolread.New(logger, s.Schools).ServeHTTP)
				r.Put("/schools/{id}", schoolupdate.New(logger, s.Schools).ServeHTTP)
				r.Delete("/schools/{id}", schoolremove.New(logger, s.Schools).ServeHTTP)
				r.Get("/schools/{id}/qr", schoolqr.New(logger, s.Schools).ServeHTTP)

				r.Delete("/members/{id}", memberremove.New(logger, s.Subscribers).ServeHTTP)
				r.Get("/members/promote", memberpromotable.New(logger, s.Instructors).ServeHTTP)

				r.Get("/instructors", instructorlist.New(logger, s.Instructors).ServeHTTP)
				r.Post("/instructors", instructorcreate.New(logger, s.Instructors).ServeHTTP)
				r.Delete("/instructors", instructorremove.New(logger, s.Instructors).ServeHTTP)
				r.Post("/instructors/promote", instructorpromote.New(logger, s.Instructors).ServeHTTP)

				r.Get("/download-medical-cert", certdownload.New(logger, s.Certificate).ServeHTTP)
				r.Get("/export-subscribers", exportsubscribers.New(logger, s.Export).ServeHTTP)
				r.Get("/stats", statsread.New(logger, s.Stats).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
