package registry

import (
	"context"

	entities "github.com/fieldstack/widgethost-go/internal/domain/entities/registry"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/loading"
)

// StoreAPI serves the widget loader straight from the space's database,
// bypassing the HTTP registry endpoints when loader and store share a
// process.
type StoreAPI struct {
	extensions *ExtensionRepository
	apps       *AppRepository
}

// NewStoreAPI builds a loader-facing view over the registry repositories
func NewStoreAPI(extensions *ExtensionRepository, apps *AppRepository) *StoreAPI {
	return &StoreAPI{extensions: extensions, apps: apps}
}

// FetchExtensions loads the extensions with the given ids
func (s *StoreAPI) FetchExtensions(ctx context.Context, ids []string) ([]entities.Extension, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.extensions.FindByIDs(ids)
}

// FetchAppInstallations loads every installation with its definitions
func (s *StoreAPI) FetchAppInstallations(ctx context.Context) (*loading.AppInstallationSet, error) {
	items, definitions, err := s.apps.FindInstallations()
	if err != nil {
		return nil, err
	}
	return &loading.AppInstallationSet{Items: items, Definitions: definitions}, nil
}
