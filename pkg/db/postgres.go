package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const productsSchema = `
CREATE TABLE IF NOT EXISTS products (
    id               SERIAL PRIMARY KEY,
    title            TEXT NOT NULL,
    image            TEXT NOT NULL,
    seller_full_name TEXT NOT NULL,
    price            NUMERIC(6,2) NOT NULL CHECK (price >= 0),
    rating           DOUBLE PRECISION NOT NULL CHECK (rating >= 0 AND rating <= 5)
)`

func Connect(databaseURL string) (*sql.DB, error) {

	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	err = db.Ping()
	if err != nil {

		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// CreateSchema brings up the products table on a fresh database. Safe to call
// on every startup.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(productsSchema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}
