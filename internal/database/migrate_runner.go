package database

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"yatube/internal/middleware"

	"gorm.io/gorm"
)

// SchemaMigration is one applied migration as recorded in the database.
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// MigrationStatus reports one migration and whether it is applied.
type MigrationStatus struct {
	Migration Migration
	Applied   bool
}

// Runner applies a fixed, ordered set of migrations against one database.
// Each script runs in the same transaction as its bookkeeping row.
type Runner struct {
	db         *gorm.DB
	migrations []Migration
}

// NewRunner returns a runner over the embedded migrations.
func NewRunner(db *gorm.DB) *Runner {
	return NewRunnerWith(db, GetMigrations())
}

// NewRunnerWith returns a runner over the given migrations.
func NewRunnerWith(db *gorm.DB, list []Migration) *Runner {
	return &Runner{db: db, migrations: list}
}

// applied returns the recorded versions in ascending order. Versions unknown to
// this build are an error: the database is ahead of the code.
func (r *Runner) applied(ctx context.Context) ([]int, error) {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	var versions []int
	if err := db.Model(&SchemaMigration{}).Order("version").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}

	var unknown []string
	for _, v := range versions {
		if !slices.ContainsFunc(r.migrations, func(m Migration) bool { return m.Version == v }) {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("database has migrations this build does not know: %s", strings.Join(unknown, ", "))
	}
	return versions, nil
}

// Up applies all pending migrations and returns how many ran.
func (r *Runner) Up(ctx context.Context) (int, error) {
	done, err := r.applied(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range r.migrations {
		if slices.Contains(done, m.Version) {
			continue
		}
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.UpScript).Error; err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{Version: m.Version, Name: m.Name}).Error
		})
		if err != nil {
			return count, fmt.Errorf("apply %s: %w", m.String(), err)
		}
		middleware.Logger.InfoContext(ctx, "migration applied", "migration", m.String())
		count++
	}
	return count, nil
}

// Down reverts the most recently applied migration. It returns nil, nil when nothing is applied.
func (r *Runner) Down(ctx context.Context) (*Migration, error) {
	done, err := r.applied(ctx)
	if err != nil || len(done) == 0 {
		return nil, err
	}

	last := done[len(done)-1]
	i := slices.IndexFunc(r.migrations, func(m Migration) bool { return m.Version == last })
	m := r.migrations[i]

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return err
		}
		return tx.Delete(&SchemaMigration{}, "version = ?", m.Version).Error
	})
	if err != nil {
		return nil, fmt.Errorf("revert %s: %w", m.String(), err)
	}
	middleware.Logger.InfoContext(ctx, "migration reverted", "migration", m.String())
	return &m, nil
}

// Status lists every known migration with its applied state.
func (r *Runner) Status(ctx context.Context) ([]MigrationStatus, error) {
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, len(r.migrations))
	for i, m := range r.migrations {
		statuses[i] = MigrationStatus{Migration: m, Applied: slices.Contains(done, m.Version)}
	}
	return statuses, nil
}
