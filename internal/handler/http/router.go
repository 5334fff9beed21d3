package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/config"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/device"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Payroll      PayrollHandler
	Schedule     ScheduleHandler
	DeviceUpload DeviceUploadHandler
}

func NewRouter(app config.AppConfig, JWTService jwt.Service, deviceService device.DeviceService, handlers Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll-engine"),
		slog.String("version", app.Version),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.DeviceIDHeader, middleware.DeviceKeyHeader},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Time-clock terminals
		r.Route("/devices", func(r chi.Router) {
			r.Use(middleware.DeviceAuth(deviceService))
			r.Post("/uploads", handlers.DeviceUpload.Submit)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequireCompany)

			r.Route("/payroll", func(r chi.Router) {
				r.Post("/batches", handlers.Payroll.ProcessBatch)
				r.Route("/runs", func(r chi.Router) {
					r.Get("/", handlers.Payroll.ListRuns)
					r.Get("/{id}", handlers.Payroll.GetRun)
				})
			})

			r.Get("/schedules/effective", handlers.Schedule.GetEffectiveShift)
		})
	})
	return r
}
