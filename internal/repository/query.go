package repository

import (
	"context"

	"gorm.io/gorm"
)

// firstBy loads the row of T whose column equals value, reporting misses as NOT_FOUND for resource.
func firstBy[T any](ctx context.Context, db *gorm.DB, resource, column string, value any) (*T, error) {
	var row T
	if err := db.WithContext(ctx).Where(column+" = ?", value).First(&row).Error; err != nil {
		return nil, translate(err, resource, value)
	}
	return &row, nil
}

// deleteBy removes the rows of T matching column; no match is NOT_FOUND.
func deleteBy[T any](ctx context.Context, db *gorm.DB, resource, column string, value any) error {
	result := db.WithContext(ctx).Where(column+" = ?", value).Delete(new(T))
	if result.Error != nil {
		return translate(result.Error, resource, value)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, resource, value)
	}
	return nil
}
