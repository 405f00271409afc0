package database

import "iforum/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.AuthorProfile{},
		&models.Tag{},
		&models.Post{},
		&models.Gallery{},
		&models.Comment{},
	}
}
