package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Partial unique indexes gorm tags cannot express: one held ticket per seat,
// one live registration per user and trip.
var indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_ticket_held_seat
		ON tickets (trip_id, seat_number) WHERE seat_held`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_registration
		ON trip_registrations (user_id, trip_id) WHERE status <> 'rejected'`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_pending
		ON outbox_events (available_at) WHERE status = 'pending'`,
}

type constraint struct {
	table, name, definition string
}

var constraints = []constraint{
	{"trips", "chk_trips_seats_within_allocation", "CHECK (available_seats <= seat_allocation)"},
	{"trips", "chk_trips_end_after_start", "CHECK (end_date >= start_date)"},
	{"tickets", "fk_tickets_trip", "FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE"},
	{"trip_registrations", "fk_registrations_trip", "FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE"},
	{"trip_registrations", "fk_registrations_user", "FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE"},
	{"cart_items", "fk_cart_items_product", "FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE"},
	{"cart_items", "fk_cart_items_user", "FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE"},
	{"order_items", "fk_order_items_order", "FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE"},
	{"purchases", "fk_purchases_order", "FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE"},
}

// MigrateConstraints adds the indexes and constraints AutoMigrate leaves out.
// Each statement is idempotent.
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	for _, c := range constraints {
		var exists bool
		err := db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name).Scan(&exists).Error
		if err != nil {
			return fmt.Errorf("failed to inspect constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD CONSTRAINT %s %s`, c.table, c.name, c.definition)).Error; err != nil {
			return fmt.Errorf("failed to add constraint %s: %w", c.name, err)
		}
	}
	return nil
}
