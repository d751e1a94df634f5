package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/ayto-digital/events-service/internal/api/http"
	"github.com/ayto-digital/events-service/internal/api/http/handlers"
	"github.com/ayto-digital/events-service/internal/auth"
	"github.com/ayto-digital/events-service/internal/config"
	"github.com/ayto-digital/events-service/internal/events"
	"github.com/ayto-digital/events-service/internal/observability"
	"github.com/ayto-digital/events-service/internal/persistence"
	"github.com/ayto-digital/events-service/internal/repository"
	"github.com/ayto-digital/events-service/internal/service"
	"github.com/ayto-digital/events-service/internal/worker"
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

	pool := pg.PoolHandle()
	personRepo := repository.NewPersonRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	ledger := repository.NewEnrollmentLedger(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	registryService := service.NewRegistryService(*cfg, service.RegistryDependencies{
		PersonRepo: personRepo,
		Dispatcher: dispatcher,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		EventRepo:  eventRepo,
		Ledger:     ledger,
		Cache:      redis,
		Dispatcher: dispatcher,
	})
	enrollmentService := service.NewEnrollmentService(service.EnrollmentDependencies{
		EventRepo:  eventRepo,
		PersonRepo: personRepo,
		Ledger:     ledger,
		Dispatcher: dispatcher,
	})
	authMiddleware := auth.NewAuthMiddleware(registryService.TokenManager(), personRepo)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		People:         handlers.NewPeopleHandler(registryService),
		Events:         handlers.NewEventsHandler(catalogService),
		Enrollments:    handlers.NewEnrollmentsHandler(enrollmentService),
		AuthMiddleware: authMiddleware,
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
