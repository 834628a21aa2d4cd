// Package migrations creates the MySQL schema.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type migration struct {
	name  string
	query string
}

// Order matters: tables come before the rows seeded into them.
var migrations = []migration{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id CHAR(36) PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			phone_number VARCHAR(32) NOT NULL,
			store_id CHAR(36) NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			deleted_at DATETIME(6) NULL,
			active_email VARCHAR(255) GENERATED ALWAYS AS (IF(deleted_at IS NULL, email, NULL)) STORED,
			UNIQUE KEY users_active_email_idx (active_email),
			KEY users_store_idx (store_id)
		);
	`},
	{"businesses", `
		CREATE TABLE IF NOT EXISTS businesses (
			id CHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			address VARCHAR(255) NULL,
			registration_number VARCHAR(64) NULL,
			owner_id CHAR(36) NOT NULL UNIQUE,
			created_at DATETIME(6) NOT NULL,
			FOREIGN KEY (owner_id) REFERENCES users(id)
		);
	`},
	{"stores", `
		CREATE TABLE IF NOT EXISTS stores (
			id CHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			business_id CHAR(36) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			FOREIGN KEY (business_id) REFERENCES businesses(id)
		);
	`},
	{"products", `
		CREATE TABLE IF NOT EXISTS products (
			id CHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NULL,
			price DECIMAL(12,2) NOT NULL,
			cost_price DECIMAL(12,2) NOT NULL,
			unit VARCHAR(32) NULL,
			category VARCHAR(100) NOT NULL,
			barcode VARCHAR(64) NOT NULL,
			sku VARCHAR(64) NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_by CHAR(36) NULL,
			updated_by CHAR(36) NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			deleted_at DATETIME(6) NULL
		);
	`},
	{"product_inventories", `
		CREATE TABLE IF NOT EXISTS product_inventories (
			id CHAR(36) PRIMARY KEY,
			product_id CHAR(36) NOT NULL,
			store_id CHAR(36) NOT NULL,
			stock INT NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			sku VARCHAR(64) NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			UNIQUE KEY product_store_idx (product_id, store_id),
			KEY inventories_store_idx (store_id),
			CHECK (stock >= 0),
			FOREIGN KEY (product_id) REFERENCES products(id),
			FOREIGN KEY (store_id) REFERENCES stores(id)
		);
	`},
	{"orders", `
		CREATE TABLE IF NOT EXISTS orders (
			id CHAR(36) PRIMARY KEY,
			customer_id CHAR(36) NOT NULL,
			store_id CHAR(36) NOT NULL,
			total DECIMAL(12,2) NOT NULL,
			paid_online BOOLEAN NOT NULL DEFAULT FALSE,
			cashier_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			cashier_id CHAR(36) NULL,
			idempotency_key VARCHAR(255) NULL UNIQUE,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			KEY orders_store_idx (store_id, created_at),
			KEY orders_cashier_idx (cashier_id, created_at),
			FOREIGN KEY (store_id) REFERENCES stores(id)
		);
	`},
	{"order_items", `
		CREATE TABLE IF NOT EXISTS order_items (
			order_id CHAR(36) NOT NULL,
			position INT NOT NULL,
			product_id CHAR(36) NOT NULL,
			quantity INT NOT NULL,
			unit_price DECIMAL(12,2) NOT NULL,
			line_total DECIMAL(12,2) NOT NULL,
			PRIMARY KEY (order_id, position),
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		);
	`},
	{"cashier_sessions", `
		CREATE TABLE IF NOT EXISTS cashier_sessions (
			id CHAR(36) PRIMARY KEY,
			session_code VARCHAR(64) NOT NULL UNIQUE,
			qr_code MEDIUMTEXT NOT NULL,
			cashier_id CHAR(36) NOT NULL,
			store_id CHAR(36) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME(6) NOT NULL,
			KEY sessions_cashier_idx (cashier_id, active)
		);
	`},
	// The walk-in customer is soft-deleted so it can never sign in or hold an email.
	{"walk-in customer", fmt.Sprintf(`
		INSERT IGNORE INTO users (id, email, password, role, first_name, last_name, phone_number, created_at, updated_at, deleted_at)
		VALUES ('%s', 'walk-in@storehive.local', '', '%s', 'Walk-in', 'Customer', '', UTC_TIMESTAMP(6), UTC_TIMESTAMP(6), UTC_TIMESTAMP(6));
	`, entity.WalkInCustomerID, entity.RoleCustomer)},
}

// AutoMigrate applies every migration, retrying each one up to retries times.
func AutoMigrate(ctx context.Context, db *sql.DB, retries int) error {
	for _, m := range migrations {
		if err := apply(ctx, db, m, retries); err != nil {
			return err
		}
		logger.Info().Msgf("Migrated %s", m.name)
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, m migration, retries int) error {
	_, err := db.ExecContext(ctx, m.query)
	for i := 0; err != nil && i < retries; i++ {
		logger.Warn().Err(err).Msgf("Retry %d: migrating %s", i+1, m.name)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
		_, err = db.ExecContext(ctx, m.query)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", m.name, err)
	}
	return nil
}
