package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/database"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/handlers"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/storage"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/validation"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting meal orders api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"db_driver", cfg.Database.Driver,
	)

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		log.Error("failed to migrate database", "error", err)
		db.Close()
		os.Exit(1)
	}

	images, err := storage.NewFileStore(cfg.Static.Dir, cfg.Static.ImagePrefix)
	if err != nil {
		log.Error("failed to prepare static directory", "dir", cfg.Static.Dir, "error", err)
		db.Close()
		os.Exit(1)
	}

	// Initialize repositories
	mealRepo := repository.NewMealRepository(db.Gorm)
	orderRepo := repository.NewOrderRepository(db.Gorm)

	// Initialize services
	validator := validation.New()
	mealService := service.NewMealService(mealRepo, images, validator)
	orderService := service.NewOrderService(orderRepo, validator)

	router := handlers.NewRouter(handlers.RouterConfig{
		Meals:          handlers.NewMealHandler(mealService, log),
		Orders:         handlers.NewOrderHandler(orderService, log),
		Health:         handlers.NewHealthHandler(db, log),
		StaticDir:      cfg.Static.Dir,
		StaticMount:    cfg.Static.MountPath,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: 60 * time.Second,
		Logger:         log,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
