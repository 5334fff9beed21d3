package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/app"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	app.NewLogger(cfg.App, "api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDBWithOptions(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	services, err := app.NewServices(cfg, db)
	if err != nil {
		slog.Error("Error wiring services", "error", err)
		os.Exit(1)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(cfg.App, JWTService, services.Device, appHTTP.Handlers{
		Payroll:      appHTTP.NewPayrollHandler(services.Payroll),
		Schedule:     appHTTP.NewScheduleHandler(services.Schedule),
		DeviceUpload: appHTTP.NewDeviceUploadHandler(services.Upload),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}
