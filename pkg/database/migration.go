package database

import (
	"fmt"

	"github.com/Payphone-Digital/bizsite/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Content{},
		&model.Product{},
		&model.Enquiry{},
		&model.WishlistItem{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		return CreateIndexes(db)
	}
	return nil
}
