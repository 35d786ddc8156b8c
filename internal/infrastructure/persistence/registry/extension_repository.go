package registry

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	entities "github.com/fieldstack/widgethost-go/internal/domain/entities/registry"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
)

// ExtensionRepository stores user extension records
type ExtensionRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

// NewExtensionRepository creates a repository over an open registry database
func NewExtensionRepository(db *sql.DB, logger *logging.ChanneledLogger) *ExtensionRepository {
	return &ExtensionRepository{db: db, logger: logger}
}

// FindByIDs loads the extensions with the given ids; missing ids are absent
// from the result, not errors.
func (r *ExtensionRepository) FindByIDs(ids []string) ([]entities.Extension, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`SELECT id, name, src, srcdoc, srcdoc_sha256, field_types,
		sidebar, parameter_schema, parameter_values, created_at, updated_at
		FROM extensions WHERE id IN (%s)`, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query extensions: %w", err)
	}
	defer rows.Close()

	return scanExtensions(rows)
}

// FindAll loads every extension in the space
func (r *ExtensionRepository) FindAll() ([]entities.Extension, error) {
	rows, err := r.db.Query(`SELECT id, name, src, srcdoc, srcdoc_sha256, field_types,
		sidebar, parameter_schema, parameter_values, created_at, updated_at
		FROM extensions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query extensions: %w", err)
	}
	defer rows.Close()

	return scanExtensions(rows)
}

// Upsert writes an extension record. The srcdoc hash is computed here so a
// stored record is always internally consistent.
func (r *ExtensionRepository) Upsert(ext *entities.Extension) error {
	if ext.Extension.Srcdoc != "" {
		sum := sha256.Sum256([]byte(ext.Extension.Srcdoc))
		ext.Extension.SrcdocSha256 = hex.EncodeToString(sum[:])
	} else {
		ext.Extension.SrcdocSha256 = ""
	}

	fieldTypes, err := json.Marshal(ext.Extension.FieldTypes)
	if err != nil {
		return fmt.Errorf("failed to marshal field types: %w", err)
	}
	var schema []byte
	if ext.Extension.Parameters != nil {
		if schema, err = json.Marshal(ext.Extension.Parameters); err != nil {
			return fmt.Errorf("failed to marshal parameter schema: %w", err)
		}
	}
	values, err := json.Marshal(ext.Parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal parameter values: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.Exec(`INSERT INTO extensions
		(id, name, src, srcdoc, srcdoc_sha256, field_types, sidebar, parameter_schema, parameter_values, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			src = excluded.src,
			srcdoc = excluded.srcdoc,
			srcdoc_sha256 = excluded.srcdoc_sha256,
			field_types = excluded.field_types,
			sidebar = excluded.sidebar,
			parameter_schema = excluded.parameter_schema,
			parameter_values = excluded.parameter_values,
			updated_at = excluded.updated_at`,
		ext.Sys.ID, ext.Extension.Name, ext.Extension.Src, ext.Extension.Srcdoc,
		ext.Extension.SrcdocSha256, string(fieldTypes), boolToInt(ext.Extension.Sidebar),
		nullableJSON(schema), string(values), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert extension %s: %w", ext.Sys.ID, err)
	}

	if r.logger != nil {
		r.logger.Registry().Info("Extension stored", "extensionId", ext.Sys.ID)
	}
	return nil
}

// Delete removes an extension record. Deleting a missing id is not an error.
func (r *ExtensionRepository) Delete(id string) error {
	if _, err := r.db.Exec(`DELETE FROM extensions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete extension %s: %w", id, err)
	}
	if r.logger != nil {
		r.logger.Registry().Info("Extension deleted", "extensionId", id)
	}
	return nil
}

func scanExtensions(rows *sql.Rows) ([]entities.Extension, error) {
	var extensions []entities.Extension
	for rows.Next() {
		var (
			ext                  entities.Extension
			src, srcdoc, srcHash sql.NullString
			fieldTypes, schema   sql.NullString
			values               sql.NullString
			sidebar              int
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&ext.Sys.ID, &ext.Extension.Name, &src, &srcdoc, &srcHash,
			&fieldTypes, &sidebar, &schema, &values, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan extension row: %w", err)
		}

		ext.Extension.Src = src.String
		ext.Extension.Srcdoc = srcdoc.String
		ext.Extension.SrcdocSha256 = srcHash.String
		ext.Extension.Sidebar = sidebar != 0
		ext.Sys.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		ext.Sys.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)

		if fieldTypes.Valid && fieldTypes.String != "" {
			if err := json.Unmarshal([]byte(fieldTypes.String), &ext.Extension.FieldTypes); err != nil {
				return nil, fmt.Errorf("failed to parse field types for %s: %w", ext.Sys.ID, err)
			}
		}
		if schema.Valid && schema.String != "" {
			ext.Extension.Parameters = &entities.ExtensionParameters{}
			if err := json.Unmarshal([]byte(schema.String), ext.Extension.Parameters); err != nil {
				return nil, fmt.Errorf("failed to parse parameter schema for %s: %w", ext.Sys.ID, err)
			}
		}
		if values.Valid && values.String != "" && values.String != "null" {
			if err := json.Unmarshal([]byte(values.String), &ext.Parameters); err != nil {
				return nil, fmt.Errorf("failed to parse parameter values for %s: %w", ext.Sys.ID, err)
			}
		}

		extensions = append(extensions, ext)
	}
	return extensions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
