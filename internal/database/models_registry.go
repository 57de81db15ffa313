package database

import "yatube/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Group{},
		&models.Image{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	}
}
