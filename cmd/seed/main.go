// Command main runs the demo data seeder for FetchFolio.
package main

import (
	"flag"
	"log"

	"fetchfolio/internal/bootstrap"
	"fetchfolio/internal/config"
	"fetchfolio/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of demo users to create")
	dogsPerUser := flag.Int("dogs", 3, "Maximum dogs per user")
	shouldClean := flag.Bool("clean", true, "Clean existing demo data before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" || cfg.Env == "prod" {
		log.Fatal("Refusing to seed demo data in production")
	}

	db, _, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(*numUsers, *dogsPerUser); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done")
}
