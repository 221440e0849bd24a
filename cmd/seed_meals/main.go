// Seeds a demo user with a handful of offline meals pulled from the live
// catalog. Useful for exercising degraded mode without a network.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/mwozniak/mealvault/config"
	"github.com/mwozniak/mealvault/internal/catalog"
	"github.com/mwozniak/mealvault/internal/database"
	"github.com/mwozniak/mealvault/internal/model"
	"github.com/mwozniak/mealvault/internal/service"
	"github.com/mwozniak/mealvault/internal/store"
)

func main() {
	email := flag.String("email", "demo@mealvault.local", "demo user email")
	password := flag.String("password", "demo-password", "demo user password")
	count := flag.Int("count", 5, "number of random meals to save offline")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	ctx := context.Background()
	authService := service.NewAuthService(db, nil, cfg.JWTSecret)
	if _, err := authService.Register(ctx, *email, *password); err != nil {
		log.Printf("demo user: %v", err)
	}

	var user model.User
	if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
		log.Fatalf("demo user lookup failed: %v", err)
	}
	userID := user.ID.String()

	catalogClient := catalog.New(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	mealService := service.NewMealService(catalogClient, store.New(db), cfg.RandomFeedSize)

	saved := 0
	for i := 0; i < *count*2 && saved < *count; i++ {
		meal, err := catalogClient.FetchRandom(ctx)
		if err != nil {
			log.Printf("fetch failed: %v", err)
			continue
		}
		if err := mealService.SaveOffline(ctx, userID, *meal); err != nil {
			log.Printf("save failed for %s: %v", meal.ID, err)
			continue
		}
		log.Printf("saved %s (%s) offline", meal.Name, meal.ID)
		saved++
	}

	log.Printf("seeded %d meals for %s", saved, *email)
}
