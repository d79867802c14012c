// Package schema defines the database schema for development.
//
// DEVELOPMENT USE ONLY
// This file contains the current database schema and is used for development and testing.
// Before deploying to production, these table definitions should be converted to proper migrations.
package schema

// TableDefinitions contains all the SQL statements to create the database tables.
// Don't put REFERENCES and don't put CHECK constraints in the CREATE TABLE statements.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id UUID PRIMARY KEY,
		target_url TEXT NOT NULL,
		secret TEXT,
		events TEXT[],
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS delivery_logs (
		id UUID PRIMARY KEY,
		webhook_id UUID NOT NULL,
		subscription_id UUID NOT NULL,
		target_url TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		attempt_number INTEGER NOT NULL,
		outcome VARCHAR(20) NOT NULL,
		status_code INTEGER,
		error TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_logs_webhook_id ON delivery_logs (webhook_id)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_logs_subscription_id_timestamp ON delivery_logs (subscription_id, timestamp DESC)`,
}

// TableNames returns a list of all table names in creation order.
var TableNames = []string{
	"subscriptions",
	"delivery_logs",
}
