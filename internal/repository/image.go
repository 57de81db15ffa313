package repository

import (
	"context"

	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageRepository defines storage operations for uploaded images.
type ImageRepository interface {
	// Save stores the image unless one with the same hash exists.
	Save(ctx context.Context, image *models.Image) error
	GetByHash(ctx context.Context, hash string) (*models.Image, error)
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository returns a repository implementation for stored images.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Save(ctx context.Context, image *models.Image) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "hash"}}, DoNothing: true}).
		Create(image).Error
	return translate(err, "Image", image.Hash)
}

func (r *imageRepository) GetByHash(ctx context.Context, hash string) (*models.Image, error) {
	return firstBy[models.Image](ctx, r.db, "Image", "hash", hash)
}
