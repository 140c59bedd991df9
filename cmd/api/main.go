package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/voting-service/internal/api/http"
	"github.com/spec-kit/voting-service/internal/api/http/handlers"
	"github.com/spec-kit/voting-service/internal/auth"
	"github.com/spec-kit/voting-service/internal/cache"
	"github.com/spec-kit/voting-service/internal/config"
	"github.com/spec-kit/voting-service/internal/events"
	"github.com/spec-kit/voting-service/internal/observability"
	"github.com/spec-kit/voting-service/internal/persistence"
	"github.com/spec-kit/voting-service/internal/repository"
	"github.com/spec-kit/voting-service/internal/service"
	"github.com/spec-kit/voting-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// stores groups the repositories backing the services.
type stores struct {
	identities repository.IdentityRepository
	candidates repository.CandidateRepository
	ballots    repository.BallotRepository
}

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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := newStores(pg)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.AccessTokenTTL(),
	})

	authService := service.NewAuthService(service.AuthDependencies{
		IdentityRepo: repos.identities,
		Hasher:       auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:       tokens,
		Dispatcher:   dispatcher,
	})
	votingService := service.NewVotingService(service.VotingDependencies{
		IdentityRepo:  repos.identities,
		CandidateRepo: repos.candidates,
		BallotRepo:    repos.ballots,
		TallyCache:    cache.NewTallyCache(redis.Client, cfg.Redis.TallyCacheTTL()),
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	candidateService := service.NewCandidateService(service.CandidateDependencies{
		CandidateRepo: repos.candidates,
		Admins:        authService,
		Dispatcher:    dispatcher,
	})
	auditService := service.NewAuditService(dispatcher, logger.Named("audit"))
	worker.StartEventWorker(dispatcher, auditService, votingService)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Candidates:     handlers.NewCandidatesHandler(candidateService, votingService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Admins:         authService,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// newStores picks the Postgres repositories when a pool is configured and
// the in-memory store otherwise.
func newStores(pg *persistence.Postgres) stores {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return stores{
			identities: repository.NewIdentityRepository(pool),
			candidates: repository.NewCandidateRepository(pool),
			ballots:    repository.NewBallotRepository(pool),
		}
	}
	mem := repository.NewMemoryStore()
	return stores{
		identities: mem.Identities(),
		candidates: mem.Candidates(),
		ballots:    mem.Ballots(),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
