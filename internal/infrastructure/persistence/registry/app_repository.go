package registry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entities "github.com/fieldstack/widgethost-go/internal/domain/entities/registry"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/security"
)

// AppRepository stores app definitions and their installations
type AppRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

// NewAppRepository creates a repository over an open registry database
func NewAppRepository(db *sql.DB, logger *logging.ChanneledLogger) *AppRepository {
	return &AppRepository{db: db, logger: logger}
}

// FindDefinition loads one app definition, nil when absent
func (r *AppRepository) FindDefinition(id string) (*entities.AppDefinition, error) {
	row := r.db.QueryRow(`SELECT id, name, src, locations, instance_parameters, created_at, updated_at
		FROM app_definitions WHERE id = ?`, id)

	definition, err := scanDefinition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return definition, err
}

// FindAllDefinitions loads every app definition in the space
func (r *AppRepository) FindAllDefinitions() ([]entities.AppDefinition, error) {
	rows, err := r.db.Query(`SELECT id, name, src, locations, instance_parameters, created_at, updated_at
		FROM app_definitions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query app definitions: %w", err)
	}
	defer rows.Close()

	var definitions []entities.AppDefinition
	for rows.Next() {
		definition, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, *definition)
	}
	return definitions, rows.Err()
}

// UpsertDefinition writes an app definition record
func (r *AppRepository) UpsertDefinition(definition *entities.AppDefinition) error {
	locations, err := json.Marshal(definition.Locations)
	if err != nil {
		return fmt.Errorf("failed to marshal locations: %w", err)
	}
	instance, err := json.Marshal(definition.Instance)
	if err != nil {
		return fmt.Errorf("failed to marshal instance parameters: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.Exec(`INSERT INTO app_definitions
		(id, name, src, locations, instance_parameters, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			src = excluded.src,
			locations = excluded.locations,
			instance_parameters = excluded.instance_parameters,
			updated_at = excluded.updated_at`,
		definition.Sys.ID, definition.Name, definition.Src, string(locations), string(instance), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert app definition %s: %w", definition.Sys.ID, err)
	}

	if r.logger != nil {
		r.logger.Registry().Info("App definition stored", "appDefinitionId", definition.Sys.ID)
	}
	return nil
}

// FindInstallations loads every installation together with the definitions
// they reference, ready for the loader's app resolution.
func (r *AppRepository) FindInstallations() ([]entities.AppInstallation, map[string]entities.AppDefinition, error) {
	rows, err := r.db.Query(`SELECT id, app_definition_id, parameters, created_at, updated_at
		FROM app_installations ORDER BY created_at`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query app installations: %w", err)
	}
	defer rows.Close()

	var installations []entities.AppInstallation
	for rows.Next() {
		var (
			installation         entities.AppInstallation
			parameters           sql.NullString
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&installation.Sys.ID, &installation.AppDefinition.ID,
			&parameters, &createdAt, &updatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan installation row: %w", err)
		}
		installation.Sys.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		installation.Sys.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
		if parameters.Valid && parameters.String != "" && parameters.String != "null" {
			if err := json.Unmarshal([]byte(parameters.String), &installation.Parameters); err != nil {
				return nil, nil, fmt.Errorf("failed to parse installation parameters: %w", err)
			}
		}
		installations = append(installations, installation)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	definitions := make(map[string]entities.AppDefinition)
	for _, installation := range installations {
		if _, seen := definitions[installation.AppDefinition.ID]; seen {
			continue
		}
		definition, err := r.FindDefinition(installation.AppDefinition.ID)
		if err != nil {
			return nil, nil, err
		}
		if definition != nil {
			definitions[definition.Sys.ID] = *definition
		}
	}
	return installations, definitions, nil
}

// Install records that an app definition is installed in the space. One
// installation per definition; installing again replaces the parameters.
func (r *AppRepository) Install(appDefinitionID string, parameters map[string]any) (*entities.AppInstallation, error) {
	values, err := json.Marshal(parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal installation parameters: %w", err)
	}

	now := time.Now().UTC()
	id := security.GenerateULID()
	_, err = r.db.Exec(`INSERT INTO app_installations
		(id, app_definition_id, parameters, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(app_definition_id) DO UPDATE SET
			parameters = excluded.parameters,
			updated_at = excluded.updated_at`,
		id, appDefinitionID, string(values), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to install app %s: %w", appDefinitionID, err)
	}

	if r.logger != nil {
		r.logger.Registry().Info("App installed", "appDefinitionId", appDefinitionID)
	}
	return &entities.AppInstallation{
		Sys:           entities.Sys{ID: id, CreatedAt: now.Format(time.RFC3339)},
		AppDefinition: entities.Sys{ID: appDefinitionID},
		Parameters:    parameters,
	}, nil
}

// Uninstall removes an app's installation record
func (r *AppRepository) Uninstall(appDefinitionID string) error {
	if _, err := r.db.Exec(`DELETE FROM app_installations WHERE app_definition_id = ?`, appDefinitionID); err != nil {
		return fmt.Errorf("failed to uninstall app %s: %w", appDefinitionID, err)
	}
	if r.logger != nil {
		r.logger.Registry().Info("App uninstalled", "appDefinitionId", appDefinitionID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (*entities.AppDefinition, error) {
	var (
		definition           entities.AppDefinition
		src                  sql.NullString
		locations, instance  sql.NullString
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&definition.Sys.ID, &definition.Name, &src,
		&locations, &instance, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	definition.Src = src.String
	definition.Sys.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	definition.Sys.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)

	if locations.Valid && locations.String != "" && locations.String != "null" {
		if err := json.Unmarshal([]byte(locations.String), &definition.Locations); err != nil {
			return nil, fmt.Errorf("failed to parse locations for %s: %w", definition.Sys.ID, err)
		}
	}
	if instance.Valid && instance.String != "" && instance.String != "null" {
		if err := json.Unmarshal([]byte(instance.String), &definition.Instance); err != nil {
			return nil, fmt.Errorf("failed to parse instance parameters for %s: %w", definition.Sys.ID, err)
		}
	}
	return &definition, nil
}
