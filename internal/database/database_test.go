package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"yatube/internal/config"
	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestDialector(t *testing.T) {
	sqliteDialector := Dialector(&config.Config{DBDriver: "sqlite", DBPath: "dev.db"})
	assert.Equal(t, "sqlite", sqliteDialector.Name())

	pg, ok := Dialector(&config.Config{
		DBDriver: "postgres", DBHost: "db", DBPort: "5432",
		DBUser: "u", DBPassword: "p", DBName: "yatube",
	}).(*postgres.Dialector)
	require.True(t, ok)
	assert.Contains(t, pg.Config.DSN, "host=db")
	assert.Contains(t, pg.Config.DSN, "sslmode=disable")
}

func TestPersistentModelsSchema(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	alice := models.User{Username: "alice", Password: "x"}
	require.NoError(t, db.Create(&alice).Error)

	err := db.Create(&models.Follow{FollowerID: alice.ID, FolloweeID: alice.ID}).Error
	assert.Error(t, err, "self follow must violate the check constraint")

	bob := models.User{Username: "bob", Password: "x"}
	require.NoError(t, db.Create(&bob).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}).Error)
	assert.Error(t, db.Create(&models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}).Error)

	group := models.Group{Title: "Tech", Slug: "tech"}
	require.NoError(t, db.Create(&group).Error)
	post := models.Post{Text: "hello", UserID: bob.ID, GroupID: &group.ID}
	require.NoError(t, db.Create(&post).Error)

	require.NoError(t, db.Delete(&group).Error)
	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Nil(t, reloaded.GroupID)

	require.NoError(t, db.Delete(&bob).Error)
	var count int64
	db.Model(&models.Post{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count)
}

func TestQueryLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewQueryLogger(slog.New(slog.NewTextHandler(&buf, nil)), DefaultSlowQuery)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT broken", 0 }, errors.New("syntax error"))
	assert.Contains(t, buf.String(), "query failed")
	assert.Contains(t, buf.String(), "component=gorm")

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "SELECT slow", 0 }, nil)
	assert.Contains(t, buf.String(), "slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("x"))
	assert.Empty(t, buf.String())
}
