package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	eventHandler "spacetravelling/cmd/api/event/handler"
	"spacetravelling/cmd/api/pagecache"
	"spacetravelling/cmd/api/router"
	"spacetravelling/cmd/internal/app"
	"spacetravelling/cmd/internal/eventbus"
	"spacetravelling/cmd/internal/logger"
	"spacetravelling/config"
	_ "spacetravelling/docs"
)

const slowRequestThreshold = 2 * time.Second

// @title           spacetravelling API
// @version         1.0
// @description     Page view models of the spacetravelling blog
// @BasePath        /
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pages, err := app.NewPages(cfg)
	if err != nil {
		logger.Log.Errorf("failed to build page services: %v", err)
		os.Exit(1)
	}

	// page snapshot store 초기화
	store, err := app.OpenStore(ctx, cfg.Cache)
	if err != nil {
		logger.Log.Errorf("failed to open snapshot store: %v", err)
		os.Exit(1)
	}
	cache := pagecache.New(store)

	// EventBus 초기화
	bus, err := app.OpenBus(ctx, cfg.EventBus)
	if err != nil {
		logger.Log.Errorf("failed to open event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()
	topic := eventbus.NewTopic(cfg.EventBus.Topic)

	engine := router.New(router.Deps{
		Health:           pages.Client,
		Renderer:         pages.Renderer,
		Listing:          pages.Listing,
		Posts:            pages.Posts,
		Paths:            pages.Paths,
		Cache:            cache,
		Bus:              bus,
		Topic:            topic,
		ListingTTL:       time.Duration(cfg.Revalidate.ListingSeconds) * time.Second,
		PostTTL:          time.Duration(cfg.Revalidate.PostSeconds) * time.Second,
		PreviewCookie:    cfg.Preview.CookieName,
		RevalidateSecret: cfg.Revalidate.Secret,
		SlowRequest:      slowRequestThreshold,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.WithCORS(engine, cfg.Server.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup

	// revalidation 구독 러너
	wg.Add(1)
	go func() {
		defer wg.Done()
		h := eventHandler.NewEventHandler(cache)
		if err := h.Run(ctx, bus, cfg.EventBus.GroupID, topic); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Errorf("eventbus subscribe error: %v", err)
		}
	}()

	// 재주입기 시작 (지연 토픽 -> 기본 토픽)
	if kb, ok := bus.(*eventbus.KafkaEventBus); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := kb.StartRetryReinjector(ctx, cfg.EventBus.GroupID+"-retry", topic); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Errorf("retry reinjector error: %v", err)
			}
		}()
	}

	go func() {
		logger.InfoWithFields("starting api server", logger.Fields{"addr": srv.Addr, "cache_backend": cfg.Cache.Backend})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("api server error: %v", err)
			cancel()
		}
	}()

	// Graceful shutdown 설정
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Log.Info("received shutdown signal, shutting down api server...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("api server shutdown error: %v", err)
	}

	cancel()
	wg.Wait()
	app.CloseCache(shutdownCtx, cache)

	logger.Log.Info("api server stopped")
}
