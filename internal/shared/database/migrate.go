package database

import (
	"fmt"

	"wanderly/internal/cart"
	"wanderly/internal/orders"
	"wanderly/internal/outbox"
	"wanderly/internal/products"
	"wanderly/internal/registrations"
	"wanderly/internal/tickets"
	"wanderly/internal/trips"
	"wanderly/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp: %w", err)
	}

	err := db.AutoMigrate(
		&users.User{},
		&trips.Trip{},
		&tickets.Ticket{},
		&registrations.Registration{},
		&products.Product{},
		&cart.Item{},
		&orders.Order{},
		&orders.OrderItem{},
		&orders.Purchase{},
		&outbox.Event{},
	)
	if err != nil {
		return err
	}
	return MigrateConstraints(db)
}
