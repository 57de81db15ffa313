// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"yatube/internal/database"
	"yatube/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an isolated in-memory SQLite database with the full schema.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// Fixtures creates rows with deterministic, strictly increasing timestamps.
type Fixtures struct {
	t     testing.TB
	db    *gorm.DB
	clock time.Time
}

// NewFixtures returns a fixture builder for db.
func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db, clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *Fixtures) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

// User creates a user with an unusable password hash.
func (f *Fixtures) User(username string) *models.User {
	f.t.Helper()
	u := &models.User{Username: username, Password: "!", CreatedAt: f.tick()}
	if err := f.db.Create(u).Error; err != nil {
		f.t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// Group creates a group.
func (f *Fixtures) Group(title, slug string) *models.Group {
	f.t.Helper()
	g := &models.Group{Title: title, Slug: slug, Description: title + " discussions"}
	if err := f.db.Create(g).Error; err != nil {
		f.t.Fatalf("create group %s: %v", slug, err)
	}
	return g
}

// Post creates a post by author, optionally in group; each call is one minute newer than the last.
func (f *Fixtures) Post(author *models.User, group *models.Group, text string) *models.Post {
	f.t.Helper()
	at := f.tick()
	p := &models.Post{Text: text, UserID: author.ID, CreatedAt: at, UpdatedAt: at}
	if group != nil {
		p.GroupID = &group.ID
	}
	if err := f.db.Create(p).Error; err != nil {
		f.t.Fatalf("create post: %v", err)
	}
	return p
}

// Comment creates a comment on post.
func (f *Fixtures) Comment(author *models.User, post *models.Post, text string) *models.Comment {
	f.t.Helper()
	c := &models.Comment{Text: text, UserID: author.ID, PostID: post.ID, CreatedAt: f.tick()}
	if err := f.db.Create(c).Error; err != nil {
		f.t.Fatalf("create comment: %v", err)
	}
	return c
}

// Follow creates a follow edge.
func (f *Fixtures) Follow(follower, followee *models.User) {
	f.t.Helper()
	if err := f.db.Create(&models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID, CreatedAt: f.tick()}).Error; err != nil {
		f.t.Fatalf("create follow: %v", err)
	}
}
