// Command seed fills the database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"warbler/internal/bootstrap"
	"warbler/internal/config"
	"warbler/internal/models"
	"warbler/internal/seed"
)

func main() {
	csvDir := flag.String("csv", "", "Directory holding users.csv, messages.csv and follows.csv")
	numUsers := flag.Int("users", 50, "Number of synthetic users (ignored with -csv)")
	messages := flag.Int("messages", 5, "Messages per synthetic user")
	follows := flag.Int("follows", 8, "Follows per synthetic user")
	likes := flag.Int("likes", 10, "Likes per synthetic user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fakeSeed := flag.Int64("seed", 0, "gofakeit seed; 0 picks a random one")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SkipRedis: true, SkipTracing: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	ctx := context.Background()
	defer rt.Close(ctx)

	if *csvDir != "" {
		src, closeFiles, err := seed.OpenCSVDir(*csvDir)
		if err != nil {
			log.Fatalf("Failed to open CSV files: %v", err)
		}
		defer closeFiles()

		summary, err := seed.LoadCSV(ctx, rt.DB, src, seed.CSVOptions{
			Clean:          *shouldClean,
			HeaderImageURL: models.DefaultHeaderImageURL,
		})
		if err != nil {
			log.Fatalf("CSV seeding failed: %v", err)
		}
		log.Printf("Loaded %d users, %d messages, %d follows", summary.Users, summary.Messages, summary.Follows)
		return
	}

	if *shouldClean {
		if err := seed.ClearAll(rt.DB.WithContext(ctx)); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	summary, err := seed.NewFactory(rt.DB, *fakeSeed).SeedSocialGraph(ctx, seed.Options{
		Users:           *numUsers,
		MessagesPerUser: *messages,
		FollowsPerUser:  *follows,
		LikesPerUser:    *likes,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Created %d users, %d messages, %d follows, %d likes",
		summary.Users, summary.Messages, summary.Follows, summary.Likes)
	log.Printf("All synthetic users have the password: %s", seed.DefaultPassword)
}
