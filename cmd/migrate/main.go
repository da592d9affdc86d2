package main

import (
	"flag"
	"log"

	"chatsync/internal/config"
	"chatsync/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	seed := flag.Bool("seed", false, "populate demo users and conversations after migrating")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrating: %v", err)
	}
	log.Println("migrations applied")

	if *seed {
		if _, err := database.Seed(db, database.DefaultSeedConfig()); err != nil {
			log.Fatalf("seeding: %v", err)
		}
	}
}
