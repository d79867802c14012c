package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/webhookrelay/relay/internal/database/schema"
)

// InitializeDatabase creates the subscriptions and delivery_logs tables (and
// their indexes) if they don't already exist.
func InitializeDatabase(db *sql.DB) error {
	for _, query := range schema.TableDefinitions {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

// GetConnectionPoolSettings returns pool sizing appropriate for the running
// environment; test environments get a smaller pool to conserve connections.
func GetConnectionPoolSettings(environment string) (maxOpen, maxIdle int, maxLifetime time.Duration) {
	if environment == "test" {
		return 10, 5, 2 * time.Minute
	}
	return 25, 25, 20 * time.Minute
}
