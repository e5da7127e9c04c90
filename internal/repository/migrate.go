package repository

import (
	"autoparts-inventory/internal/model"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the application uses
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Contact{},
		&model.Transaction{},
		&model.TransactionItem{},
	)
}
