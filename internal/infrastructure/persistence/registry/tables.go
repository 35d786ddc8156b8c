// Package registry provides sqlite-backed stores for the widget registry:
// extensions, app definitions, and app installations, one database per
// space+environment.
package registry

import (
	"database/sql"
	"fmt"
)

// TableCreator builds the registry schema for a new space database
type TableCreator struct{}

// NewTableCreator creates a new TableCreator
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS extensions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		src TEXT,
		srcdoc TEXT,
		srcdoc_sha256 TEXT,
		field_types TEXT,
		sidebar INTEGER NOT NULL DEFAULT 0,
		parameter_schema TEXT,
		parameter_values TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS app_definitions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		src TEXT,
		locations TEXT,
		instance_parameters TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS app_installations (
		id TEXT PRIMARY KEY,
		app_definition_id TEXT NOT NULL,
		parameters TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (app_definition_id) REFERENCES app_definitions(id)
	)`,
}

var indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_app_installations_definition
		ON app_installations(app_definition_id)`,
	`CREATE INDEX IF NOT EXISTS idx_extensions_updated ON extensions(updated_at)`,
}

// CreateSchema executes all queries building the registry tables and indexes
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}
