package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/app"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/config"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/awsconfig"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/queue"
	payrollService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	app.NewLogger(cfg.App, "worker")

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

	// Device uploads are drained on a schedule.
	scheduler := cron.NewScheduler(ctx)
	cron.NewUploadJobs(services.Uploads, cfg.Worker.UploadInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.Worker.QueueURL == "" {
		slog.Info("PAYROLL_QUEUE_URL not set, queue consumer disabled")
		<-ctx.Done()
		slog.Info("Shutting down worker...")
		return
	}

	awsCfg, err := awsconfig.Load(ctx, awsconfig.Options{
		Region:   cfg.Worker.AWSRegion,
		Endpoint: cfg.Worker.AWSEndpoint,
	})
	if err != nil {
		slog.Error("Unable to load AWS config", "error", err)
		return
	}

	processor := payrollService.NewBatchMessageProcessor(services.Payroll)
	worker := queue.NewWorker(sqs.NewFromConfig(awsCfg), cfg.Worker.QueueURL, processor, cfg.Worker.Concurrency)

	// Start blocks until ctx is cancelled and in-flight messages finish.
	worker.Start(ctx)
	slog.Info("Worker exited gracefully")
}
