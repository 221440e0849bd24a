package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwozniak/mealvault/config"
	"github.com/mwozniak/mealvault/internal/api"
	"github.com/mwozniak/mealvault/internal/catalog"
	"github.com/mwozniak/mealvault/internal/database"
	"github.com/mwozniak/mealvault/internal/middleware"
	"github.com/mwozniak/mealvault/internal/router"
	"github.com/mwozniak/mealvault/internal/server"
	"github.com/mwozniak/mealvault/internal/service"
	"github.com/mwozniak/mealvault/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	catalogClient := catalog.New(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	prefStore := store.New(db)

	authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
	mealService := service.NewMealService(catalogClient, prefStore, cfg.RandomFeedSize)
	shareService := service.NewShareService(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
		cfg.EmailFrom, cfg.EmailName,
	)

	authHandler := api.NewAuthHandler(authService)
	mealHandler := api.NewMealHandler(mealService, shareService, authService)

	var authLimiter *middleware.RateLimiter
	if redisClient != nil {
		authLimiter = middleware.NewAuthRateLimiter(redisClient)
	}

	engine := router.SetupRouter(authHandler, mealHandler, authLimiter, cfg.AllowedOrigins)
	srv := server.New(engine, cfg.ServerHost, cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("starting server on %s:%s", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("received signal: %v", sig)
	}

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}
	log.Println("server stopped")
}
