package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Sam8709/repair-track-25-08/internal/api/http"
	"github.com/Sam8709/repair-track-25-08/internal/api/http/handlers"
	"github.com/Sam8709/repair-track-25-08/internal/auth"
	"github.com/Sam8709/repair-track-25-08/internal/config"
	"github.com/Sam8709/repair-track-25-08/internal/events"
	"github.com/Sam8709/repair-track-25-08/internal/idempotency"
	"github.com/Sam8709/repair-track-25-08/internal/notify"
	"github.com/Sam8709/repair-track-25-08/internal/observability"
	"github.com/Sam8709/repair-track-25-08/internal/persistence"
	"github.com/Sam8709/repair-track-25-08/internal/repository"
	"github.com/Sam8709/repair-track-25-08/internal/service"
	"github.com/Sam8709/repair-track-25-08/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	jobRepo := repository.NewJobRepository(pool, cfg.Jobs.CodePrefix)
	historyRepo := repository.NewJobHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	sender := notify.NewTwilioSender(cfg.WhatsApp)
	requestDedup := idempotency.NewRedisStore(redis.Client, cfg.Jobs.RequestDedupTTL())

	authService := service.NewAuthService(*cfg, userRepo)
	profileService := service.NewProfileService(profileRepo)
	jobService := service.NewJobService(service.JobDependencies{
		JobRepo:      jobRepo,
		HistoryRepo:  historyRepo,
		Dispatcher:   dispatcher,
		RequestDedup: requestDedup,
		Metrics:      metrics,
		Logger:       logger,
	})
	notificationService := service.NewNotificationService(dispatcher, sender, logger, metrics, cfg.WhatsApp)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Jobs:           handlers.NewJobsHandler(jobService),
		Profile:        handlers.NewProfileHandler(profileService),
		Notifications:  handlers.NewNotificationsHandler(sender, cfg.WhatsApp.DefaultCountryCode),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
