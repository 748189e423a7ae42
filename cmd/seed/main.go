// Command main runs the database seeder for Pulse.
package main

import (
	"context"
	"flag"
	"log"

	"pulse/internal/cache"
	"pulse/internal/config"
	"pulse/internal/database"
	"pulse/internal/seed"
)

func main() {
	profilePath := flag.String("profile", "", "Path to a YAML seed profile")
	numUsers := flag.Int("users", 0, "Override the number of users")
	numPosts := flag.Int("posts", 0, "Override the number of posts")
	shouldClean := flag.Bool("clean", true, "Clear existing data before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	profile := seed.DefaultProfile()
	if *profilePath != "" {
		profile, err = seed.LoadProfile(*profilePath)
		if err != nil {
			log.Fatalf("Failed to load seed profile: %v", err)
		}
	}
	if *numUsers > 0 {
		profile.Users = *numUsers
	}
	if *numPosts > 0 {
		profile.Posts = *numPosts
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	cache.InitRedis(cfg.RedisURL)

	s := seed.NewSeeder(db, cache.GetClient())
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(context.Background(), profile); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
