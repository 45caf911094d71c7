// Command seed populates the configured database with demo data.
package main

import (
	"log"

	"skillswap/config"
	"skillswap/database"
	"skillswap/seed"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	db := database.Connect(cfg)

	if err := seed.Seed(db); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
