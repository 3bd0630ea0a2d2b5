package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/property-service/internal/api/http"
	"github.com/spec-kit/property-service/internal/api/http/handlers"
	"github.com/spec-kit/property-service/internal/auth"
	"github.com/spec-kit/property-service/internal/config"
	"github.com/spec-kit/property-service/internal/events"
	"github.com/spec-kit/property-service/internal/observability"
	"github.com/spec-kit/property-service/internal/persistence"
	"github.com/spec-kit/property-service/internal/repository"
	"github.com/spec-kit/property-service/internal/service"
	"github.com/spec-kit/property-service/internal/worker"
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
	accountRepo := repository.NewAccountRepository(pool)
	propertyRepo := repository.NewPropertyRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	rentRepo := repository.NewRentRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, historyRepo, logger, cfg.Notification)
	worker.NewNotificationWorker(notificationService, logger).Start()

	resolver := service.NewRoleResolver(service.ResolverDependencies{
		AccountRepo:  accountRepo,
		PropertyRepo: propertyRepo,
		TicketRepo:   ticketRepo,
	})
	workflowService := service.NewWorkflowService(service.WorkflowDependencies{
		Resolver:   resolver,
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Resolver:    resolver,
		Dispatcher:  dispatcher,
	})
	propertyService := service.NewPropertyService(propertyRepo, resolver)
	invitationService := service.NewInvitationService(service.InvitationDependencies{
		Redis:        redis.Client,
		PropertyRepo: propertyRepo,
		AccountRepo:  accountRepo,
		Dispatcher:   dispatcher,
		TTL:          cfg.Invitation.TTL(),
	})
	rentService := service.NewRentService(service.RentDependencies{
		RentRepo:     rentRepo,
		PropertyRepo: propertyRepo,
		Resolver:     resolver,
		Dispatcher:   dispatcher,
	})

	authService := service.NewAuthService(*cfg, accountRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Accounts:       handlers.NewAccountsHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, workflowService),
		Properties:     handlers.NewPropertiesHandler(propertyService, invitationService),
		Rents:          handlers.NewRentsHandler(rentService),
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
