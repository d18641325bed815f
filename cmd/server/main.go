package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/storefront/cart/internal/application/cart"
	"github.com/storefront/cart/internal/infrastructure/config"
	"github.com/storefront/cart/internal/infrastructure/event"
	"github.com/storefront/cart/internal/infrastructure/logger"
	"github.com/storefront/cart/internal/infrastructure/storage"
	"github.com/storefront/cart/internal/interfaces/http/handler"
	"github.com/storefront/cart/internal/interfaces/http/router"
	"github.com/storefront/cart/internal/interfaces/view"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logCfg := logger.ForEnvironment(cfg.App.Env)
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	logCfg.Service = cfg.App.Name
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting cart service",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Open cart storage
	openCtx, cancelOpen := context.WithTimeout(context.Background(), 15*time.Second)
	backend, err := storage.NewFactory(cfg, storage.WithLogger(logger.Component(log, "storage"))).Open(openCtx)
	cancelOpen()
	if err != nil {
		log.Fatal("Failed to open cart storage", zap.Error(err))
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("Error closing cart storage", zap.Error(err))
		}
	}()
	log.Info("Cart storage ready",
		zap.String("driver", backend.Driver),
		zap.Bool("fallback", backend.Fallback),
	)

	// Event bus
	eventBus := event.NewInMemoryEventBus(logger.Component(log, "events"))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Cart store
	store := cartapp.NewStore(backend,
		cartapp.WithStorageKey(cfg.Storage.Key),
		cartapp.WithEventPublisher(eventBus),
		cartapp.WithLogger(logger.Component(log, "store")),
	)

	// Cart view
	formatter, err := view.NewCurrencyFormatter(cfg.View.Locale, cfg.View.CurrencySuffix)
	if err != nil {
		log.Fatal("Invalid view locale", zap.String("locale", cfg.View.Locale), zap.Error(err))
	}
	projector := view.NewProjector(formatter,
		view.WithPlaceholderImage(cfg.View.PlaceholderImage),
		view.WithEmptyMessage(cfg.View.EmptyMessage),
	)
	surface := view.NewSnapshotSurface()
	controller := view.NewController(store, projector, surface,
		view.WithControllerLogger(logger.Component(log, "view")),
	)
	dispatcher := view.NewDispatcher()
	controller.Bind(dispatcher)
	eventBus.Subscribe(controller)
	log.Info("Cart view bound", zap.Strings("refresh_events", controller.EventTypes()))

	if err := dispatcher.Run(context.Background(), controller.Refresh); err != nil {
		log.Fatal("Failed to render cart", zap.Error(err))
	}

	// HTTP
	engine := router.NewEngine(
		logger.Component(log, "http"),
		handler.NewCartHandler(dispatcher, controller, surface, log),
		handler.NewHealthHandler(backend.Driver, backend.Fallback),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
