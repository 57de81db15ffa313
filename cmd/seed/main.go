// Command seed fills the database with fake users, posts, comments and follows.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 150, "Number of posts to create")
	comments := flag.Int("comments", 3, "Maximum comments per post")
	follows := flag.Int("follows", 4, "Authors each user follows")
	maxDays := flag.Int("days", 90, "Spread post dates over this many past days")
	shouldClean := flag.Bool("clean", false, "Delete users, posts, comments and follows first")
	groupsFile := flag.String("groups", "", "YAML file with group fixtures (default: built-in groups)")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible data")
	flag.Parse()

	log.Printf("Target: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *comments,
		FollowsPerUser:  *follows,
		MaxDays:         *maxDays,
		Clean:           *shouldClean,
	}
	if *groupsFile != "" {
		data, err := os.ReadFile(*groupsFile)
		if err != nil {
			log.Fatalf("Failed to read groups file: %v", err)
		}
		if opts.Groups, err = seed.LoadGroups(data); err != nil {
			log.Fatalf("Invalid groups file: %v", err)
		}
	}

	summary, err := seed.NewSeeder(db, *randSeed).Run(opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d groups, %d users, %d posts, %d comments, %d follows",
		summary.Groups, summary.Users, summary.Posts, summary.Comments, summary.Follows)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
