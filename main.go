// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"matchcore/app/controllers"
	"matchcore/app/middlewares"
	"matchcore/app/repository"
	"matchcore/app/routes"
	"matchcore/app/services"
	"matchcore/config"
	"matchcore/database"
	"matchcore/logger"
	"matchcore/redis"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	health := map[string]routes.HealthCheck{}

	// Profiles and blocks live in MongoDB
	mongoClient, mongoDB, err := database.InitMongo(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn("failed to disconnect mongodb", zap.Error(err))
		}
	}()

	directory := repository.NewMongoDirectory(mongoDB, log)
	blockStore := repository.NewMongoBlockStore(mongoDB)
	if err := directory.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := blockStore.EnsureIndexes(ctx); err != nil {
		return err
	}
	health["mongodb"] = directory.Ping

	// Match records live in Cassandra unless the memory backend is selected
	var matchStore services.MatchStore
	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Warn("using in-memory match store, records are lost on restart")
		matchStore = repository.NewMemoryMatchStore()
	default:
		session, err := database.InitCassandra(cfg, log)
		if err != nil {
			return err
		}
		defer session.Close()

		if err := database.EnsureSchema(ctx, session, repository.MatchRecordsSchema); err != nil {
			return err
		}
		store := repository.NewCassandraMatchStore(session, log)
		health["cassandra"] = store.Ping
		matchStore = store
	}

	socketService := services.NewSocketService(log)
	sink := services.MultiSink{services.LogSink{Log: log}}
	var profiles services.ProfileStore = directory

	// Redis adds the profile cache and the cross-instance event bus
	redisService, err := redis.NewService(redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, log)
	if err != nil {
		log.Warn("redis unavailable, running without profile cache and event bus", zap.Error(err))
		sink = append(sink, socketService)
	} else {
		defer redisService.Close()

		profiles = repository.NewCachedDirectory(directory, redisService, cfg.ProfileCacheTTL, log)
		health["redis"] = redisService.Ping

		if err := redisService.Subscribe(ctx, cfg.RedisEventsChannel, socketService.HandleBusMessage); err != nil {
			log.Warn("event bus subscription failed, delivering to local sockets only", zap.Error(err))
			sink = append(sink, socketService)
		} else {
			sink = append(sink, services.NewEventNotifier(redisService, cfg.RedisEventsChannel, log))
		}
	}

	engine := services.NewMatchEngine(matchStore, profiles, blockStore, sink, log)
	filter := services.NewCandidateFilter(profiles, blockStore, matchStore, cfg.DiscoverScanLimit, log)
	preferences := services.NewPreferenceService(profiles, log)
	blocks := services.NewBlockService(blockStore, profiles, log)

	app := routes.NewApp(log)

	// Socket.IO routes go before the API routes
	socketHandler := config.NewSocketHandler(socketService, cfg.JWTSecret, log)
	socketHandler.SetupSocketRoutes(app)

	routes.SetupRoutes(app, routes.Handlers{
		Auth:        middlewares.JWTMiddleware(cfg.JWTSecret, log),
		Matches:     controllers.NewMatchController(engine, filter, log),
		Preferences: controllers.NewPreferenceController(preferences, log),
		Blocks:      controllers.NewBlockController(blocks, log),
		Health:      health,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		log.Info("server starting", zap.String("addr", addr), zap.String("store", cfg.StoreBackend))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
