package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// A single connection keeps the in-memory database alive and avoids
	// table-missing surprises from pool rotation.
	db.SetMaxOpenConns(1)

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Obligation event table
		CREATE TABLE IF NOT EXISTS obligation_event (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			obligation_id INTEGER NOT NULL,
			obligation_type TEXT NOT NULL,
			event_category TEXT NOT NULL,
			event_date TEXT NOT NULL,
			due_date TEXT,
			competence TEXT,
			installment_number INTEGER,
			installment_count INTEGER,
			amount REAL NOT NULL,
			principal_paid REAL NOT NULL DEFAULT 0,
			interest_paid REAL NOT NULL DEFAULT 0,
			penalty_paid REAL NOT NULL DEFAULT 0,
			discount_applied REAL NOT NULL DEFAULT 0,
			gross_paid REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'OPEN',
			payment_date TEXT,
			creditor TEXT,
			description TEXT,
			payment_method TEXT,
			source TEXT,
			user TEXT,
			external_reference_id INTEGER,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_obligation_event_invoice_competence
			ON obligation_event(creditor, competence)
			WHERE obligation_type = 'CREDIT_CARD_INVOICE'
			  AND event_category = 'CHARGE';

		-- Movement log
		CREATE TABLE IF NOT EXISTS movement_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			account TEXT NOT NULL,
			direction TEXT NOT NULL,
			amount REAL NOT NULL,
			source TEXT NOT NULL,
			note TEXT,
			reference_table TEXT,
			reference_id INTEGER,
			transaction_uid TEXT UNIQUE,
			user TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		-- Cash position snapshot
		CREATE TABLE IF NOT EXISTS cash_position_snapshot (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL UNIQUE,
			till_balance REAL NOT NULL DEFAULT 0,
			secondary_till_balance REAL NOT NULL DEFAULT 0,
			till_sales_balance REAL NOT NULL DEFAULT 0,
			secondary_till_today REAL NOT NULL DEFAULT 0,
			till_total REAL NOT NULL DEFAULT 0,
			secondary_till_total REAL NOT NULL DEFAULT 0
		);

		-- Bank balances
		CREATE TABLE IF NOT EXISTS bank_balance (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			account TEXT NOT NULL,
			balance REAL NOT NULL DEFAULT 0,
			UNIQUE (date, account)
		);
	`

	_, err := db.Exec(schema)
	return err
}
