package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cowork-allocator/internal/allocation"
	"cowork-allocator/internal/catalog"
	"cowork-allocator/internal/client"
	"cowork-allocator/internal/config"
	"cowork-allocator/internal/draft"
	"cowork-allocator/internal/events"
	"cowork-allocator/internal/httpapi"
	"cowork-allocator/internal/logger"
	"cowork-allocator/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "cowork-allocator")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	bookingAPI := client.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, log)
	drafts := draft.NewStore(kv, cfg.Draft.TTL, log)
	catalogSvc := catalog.NewService(bookingAPI, log)
	publisher := events.NewPublisher(redisClient, cfg.Events.Stream, log)

	commits := allocation.NewCommitService(bookingAPI, catalogSvc, publisher, log)
	removals := allocation.NewRemovalService(bookingAPI, catalogSvc, publisher, log)

	handler := httpapi.NewAllocationHandler(catalogSvc, drafts, commits, removals, bookingAPI, log)
	router := httpapi.NewRouter(log)
	router.RegisterAllocationRoutes(handler)

	srv := httpapi.NewServer(cfg.HTTP.Addr, router, log)

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("HTTP server exited", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
}
