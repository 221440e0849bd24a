package main

import (
	"log"

	"github.com/mwozniak/mealvault/config"
	"github.com/mwozniak/mealvault/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if _, err := database.New(cfg); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	log.Println("schema is up to date")
}
