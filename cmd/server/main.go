package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/oggyb/devmatch/internal/app"
	"github.com/oggyb/devmatch/internal/cache"
	"github.com/oggyb/devmatch/internal/config"
	"github.com/oggyb/devmatch/internal/db"
	"github.com/oggyb/devmatch/internal/logger"
	"github.com/oggyb/devmatch/internal/server"
	"github.com/oggyb/devmatch/internal/service/account"
	"github.com/oggyb/devmatch/internal/service/chat"
	"github.com/oggyb/devmatch/internal/service/explore"
	"github.com/oggyb/devmatch/internal/service/media"
	"github.com/oggyb/devmatch/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}

	// Init photo bucket
	blobs, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to init storage", "err", err)
		os.Exit(1)
	}

	appCtx := app.New(database, redisCache, log, cfg).WithBlobs(blobs)

	if cfg.App.Env == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	limiter := server.NewRateLimiter(cfg.Limits.SwipesPerMinute, cfg.Limits.SwipeBurst)

	accountReg := account.NewRegistrar(appCtx)
	exploreReg := explore.NewRegistrar(appCtx, limiter)
	chatReg := chat.NewRegistrar(appCtx)
	mediaReg := media.NewRegistrar(appCtx)

	grpcOpts := server.GRPCOptions{
		Verifier:      appCtx.Auth,
		PublicMethods: account.PublicMethods,
		Limiter:       limiter,
		LimitMethods:  []string{explore.RecordSwipeMethod},
		Logger:        log,
	}
	router := server.NewRouter(
		server.HTTPOptions{Verifier: appCtx.Auth, Logger: log},
		accountReg, exploreReg, chatReg, mediaReg,
	)

	// either server failing takes the other one down
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				log.Error(name+" server failed", "err", err)
				errs <- err
			}
			cancel()
		}()
	}

	run("gRPC", func() error {
		return server.StartGRPCServer(ctx, cfg, grpcOpts, accountReg, exploreReg, chatReg, mediaReg)
	})
	run("HTTP", func() error {
		return server.StartHTTPServer(ctx, cfg, router)
	})

	wg.Wait()
	close(errs)
	if len(errs) > 0 {
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
