// Package mock assembles the development backend served by autox-mock. It
// answers every gateway path with the marketplace response envelope so the
// client can be exercised without the production API.
package mock

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/autox/marketplace-client/internal/api"
	"github.com/autox/marketplace-client/internal/api/handler"
	"github.com/autox/marketplace-client/internal/api/middleware"
	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
	"github.com/autox/marketplace-client/internal/core/service"
	"github.com/autox/marketplace-client/internal/infrastructure/db/memory"
	mongodb "github.com/autox/marketplace-client/internal/infrastructure/db/mongo"
	redisdb "github.com/autox/marketplace-client/internal/infrastructure/db/redis"
	"github.com/autox/marketplace-client/internal/infrastructure/queue"
	"github.com/autox/marketplace-client/internal/metrics"
	"github.com/autox/marketplace-client/internal/pkg/config"
)

const (
	PersistenceMemory = "memory"
	PersistenceMongo  = "mongo"
	RevocationMemory  = "memory"
	RevocationRedis   = "redis"

	shutdownTimeout = 10 * time.Second
)

// Backend is a wired mock server.
type Backend struct {
	Echo     *echo.Echo
	Registry *prometheus.Registry

	dispatcher *queue.Dispatcher
	closers    []func(context.Context) error
	log        zerolog.Logger
}

type repositories struct {
	users    ports.UserRepository
	revoked  ports.RevocationList
	listings map[domain.Resource]ports.ResourceRepository
	partners ports.ResourceRepository
	requests ports.ResourceRepository
}

// New connects the configured persistence and builds the router. The
// status change dispatcher is started with ctx.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	b := &Backend{Registry: prometheus.NewRegistry(), log: log}
	b.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	checks := map[string]handler.Check{}
	repos, err := b.openRepositories(ctx, cfg, checks)
	if err != nil {
		_ = b.Close(ctx)
		return nil, err
	}

	backendMetrics := metrics.NewBackend(b.Registry)
	b.dispatcher = queue.NewDispatcher(0, func(_ context.Context, change domain.StatusChange) error {
		backendMetrics.StatusTransition(string(change.To))
		log.Info().
			Str("request_id", change.RequestID).
			Str("from", string(change.From)).
			Str("to", string(change.To)).
			Str("actor_id", change.ActorID).
			Time("at", change.At).
			Msg("service request audit")
		return nil
	}, log)
	b.dispatcher.Start(ctx)

	e, err := api.NewRouter(api.Dependencies{
		Auth:      service.NewAuthService(repos.users, repos.revoked, cfg.Mock.JWTSecret, cfg.Mock.TokenTTL),
		Vehicles:  service.NewListingService(repos.listings[domain.ResourceVehicles], domain.ResourceVehicles, domain.VehicleCategories, log),
		Materials: service.NewListingService(repos.listings[domain.ResourceMaterials], domain.ResourceMaterials, domain.MaterialCategories, log),
		Partners:  service.NewPartnerService(repos.partners, log),
		ServiceRequests: service.NewServiceRequestService(
			repos.requests, repos.listings, log, b.dispatcher.Enqueue,
		),
		Checks:       checks,
		LoginLimiter: middleware.NewRateLimiter(cfg.Mock.LoginRate, cfg.Mock.LoginBurst),
		Metrics:      backendMetrics,
		Registry:     b.Registry,
		Logger:       log,
	})
	if err != nil {
		_ = b.Close(ctx)
		return nil, err
	}
	b.Echo = e
	return b, nil
}

func (b *Backend) openRepositories(ctx context.Context, cfg *config.Config, checks map[string]handler.Check) (*repositories, error) {
	repos := &repositories{}

	switch cfg.Mock.Persistence {
	case PersistenceMongo:
		store, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, store.Close)
		checks["mongo"] = store.Ping

		users := mongodb.NewUserRepository(store.DB)
		if err := users.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		repos.users = users
		repos.listings = map[domain.Resource]ports.ResourceRepository{
			domain.ResourceVehicles:  mongodb.NewResourceRepository(store.DB, domain.ResourceVehicles),
			domain.ResourceMaterials: mongodb.NewResourceRepository(store.DB, domain.ResourceMaterials),
		}
		repos.partners = mongodb.NewResourceRepository(store.DB, domain.ResourcePartners)
		repos.requests = mongodb.NewResourceRepository(store.DB, domain.ResourceServiceRequests)
		b.log.Info().Str("database", cfg.Mongo.Database).Msg("mock persistence: mongo")

	case PersistenceMemory, "":
		repos.users = memory.NewUserRepository()
		repos.listings = map[domain.Resource]ports.ResourceRepository{
			domain.ResourceVehicles:  memory.NewResourceRepository(),
			domain.ResourceMaterials: memory.NewResourceRepository(),
		}
		repos.partners = memory.NewResourceRepository()
		repos.requests = memory.NewResourceRepository()
		b.log.Info().Msg("mock persistence: memory")

	default:
		return nil, fmt.Errorf("mock: unknown persistence %q", cfg.Mock.Persistence)
	}

	switch cfg.Mock.Revocation {
	case RevocationRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		checks["redis"] = func(ctx context.Context) error { return redisdb.Ping(ctx, client) }
		repos.revoked = redisdb.NewRevocationList(client, cfg.Storage.Namespace)

	case RevocationMemory, "":
		repos.revoked = memory.NewRevocationList()

	default:
		return nil, fmt.Errorf("mock: unknown revocation store %q", cfg.Mock.Revocation)
	}

	return repos, nil
}

// Serve listens on addr until ctx is cancelled, then shuts the server down
// gracefully.
func (b *Backend) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		b.log.Info().Str("addr", addr).Msg("mock backend listening")
		if err := b.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("mock: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	b.log.Info().Msg("shutting down mock backend")
	if err := b.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mock: shutdown: %w", err)
	}
	return nil
}

// Close drains pending status changes and releases connections.
func (b *Backend) Close(ctx context.Context) error {
	if b.dispatcher != nil {
		b.dispatcher.Close()
		b.dispatcher = nil
	}
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i](ctx))
	}
	b.closers = nil
	return errors.Join(errs...)
}
