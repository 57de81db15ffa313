// Package main provides content moderation utilities for Yatube.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

const usageText = `Usage:
  go run ./cmd/admin create-group <slug> <title> [description]  - Create a group
  go run ./cmd/admin delete-group <slug>                        - Delete a group; its posts lose the group
  go run ./cmd/admin list-groups                                - List all groups
  go run ./cmd/admin delete-user <username>                     - Delete a user with their posts, comments and follows
  go run ./cmd/admin list-users                                 - List all users
  go run ./cmd/admin clear-cache                                - Drop every cached feed page`

var errUsage = errors.New(usageText)

// admin holds what the commands operate on.
type admin struct {
	groups repository.GroupRepository
	users  repository.UserRepository
	pages  *cache.PageCache
	out    io.Writer
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usageText)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a := &admin{out: os.Stdout}
	if os.Args[1] == "clear-cache" {
		rdb, err := cache.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		a.pages = cache.NewPageCache(cache.NewStore(rdb))
	} else {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		a.groups = repository.NewGroupRepository(db)
		a.users = repository.NewUserRepository(db)
	}

	if err := a.run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(usageText)
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func (a *admin) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "create-group":
		if len(args) < 3 {
			return errUsage
		}
		description := ""
		if len(args) > 3 {
			description = strings.Join(args[3:], " ")
		}
		return a.createGroup(ctx, args[1], args[2], description)
	case "delete-group":
		if len(args) != 2 {
			return errUsage
		}
		return a.deleteGroup(ctx, args[1])
	case "list-groups":
		return a.listGroups(ctx)
	case "delete-user":
		if len(args) != 2 {
			return errUsage
		}
		return a.deleteUser(ctx, args[1])
	case "list-users":
		return a.listUsers(ctx)
	case "clear-cache":
		return a.clearCache(ctx)
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (a *admin) createGroup(ctx context.Context, slug, title, description string) error {
	slug = strings.TrimSpace(slug)
	title = strings.TrimSpace(title)
	if err := validation.ValidateGroupSlug(slug); err != nil {
		return err
	}
	if err := validation.ValidateGroupTitle(title); err != nil {
		return err
	}

	group := &models.Group{Slug: slug, Title: title, Description: strings.TrimSpace(description)}
	if err := a.groups.Create(ctx, group); err != nil {
		if models.HasCode(err, models.CodeConflict) {
			return fmt.Errorf("group %q already exists", slug)
		}
		return err
	}
	fmt.Fprintf(a.out, "Created group %s (ID: %d)\n", group.Slug, group.ID)
	return nil
}

func (a *admin) deleteGroup(ctx context.Context, slug string) error {
	if err := a.groups.DeleteBySlug(ctx, slug); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted group %s\n", slug)
	return nil
}

func (a *admin) listGroups(ctx context.Context) error {
	groups, err := a.groups.List(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintln(a.out, "No groups found")
		return nil
	}
	for _, g := range groups {
		fmt.Fprintf(a.out, "%-20s %s\n", g.Slug, g.Title)
	}
	return nil
}

func (a *admin) deleteUser(ctx context.Context, username string) error {
	if err := a.users.DeleteByUsername(ctx, username); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted user %s\n", username)
	return nil
}

func (a *admin) listUsers(ctx context.Context) error {
	const batch = 100
	total := 0
	for offset := 0; ; offset += batch {
		users, err := a.users.List(ctx, batch, offset)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Fprintf(a.out, "%6d  %s\n", u.ID, u.Username)
		}
		total += len(users)
		if len(users) < batch {
			break
		}
	}
	fmt.Fprintf(a.out, "Total: %d users\n", total)
	return nil
}

func (a *admin) clearCache(ctx context.Context) error {
	if err := a.pages.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Page cache cleared")
	return nil
}
