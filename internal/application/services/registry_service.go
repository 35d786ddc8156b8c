// Package services provides application-level orchestration services
package services

import (
	"fmt"

	entities "github.com/fieldstack/widgethost-go/internal/domain/entities/registry"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/email"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/space"
)

// RegistryService orchestrates extension and app registry operations.
// Every write also evicts the space's widget loader cache so the next
// render picks the change up.
type RegistryService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	emailSvc    email.Service // nil when notifications are not configured
}

// NewRegistryService creates a new registry service
func NewRegistryService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, emailSvc email.Service) *RegistryService {
	return &RegistryService{
		logger:      logger,
		perfTracker: perfTracker,
		emailSvc:    emailSvc,
	}
}

// ListExtensions returns the space's extensions, optionally filtered to ids
func (s *RegistryService) ListExtensions(spaceCtx *space.Context, ids []string) ([]entities.Extension, error) {
	marker := s.perfTracker.StartOperation("registry_list_extensions", spaceCtx.SpaceID)
	defer marker.Complete()

	repo := spaceCtx.ExtensionRepo()
	if len(ids) > 0 {
		return repo.FindByIDs(ids)
	}
	return repo.FindAll()
}

// SaveExtension stores an extension record and evicts the loader entry
func (s *RegistryService) SaveExtension(spaceCtx *space.Context, ext *entities.Extension) error {
	marker := s.perfTracker.StartOperation("registry_save_extension", spaceCtx.SpaceID)
	defer marker.Complete()

	if ext.Sys.ID == "" {
		return fmt.Errorf("extension id is required")
	}
	if ext.Extension.Src == "" && ext.Extension.Srcdoc == "" {
		return fmt.Errorf("extension requires src or srcdoc")
	}
	if ext.Extension.Src != "" && ext.Extension.Srcdoc != "" {
		return fmt.Errorf("extension src and srcdoc are mutually exclusive")
	}

	if err := spaceCtx.ExtensionRepo().Upsert(ext); err != nil {
		return err
	}

	spaceCtx.Loader.Evict(widget.Ref{Namespace: widget.NamespaceExtension, ID: ext.Sys.ID})
	s.logger.Registry().Info("Extension saved", "spaceId", spaceCtx.SpaceID, "extensionId", ext.Sys.ID)
	return nil
}

// DeleteExtension removes an extension record and evicts the loader entry
func (s *RegistryService) DeleteExtension(spaceCtx *space.Context, id string) error {
	marker := s.perfTracker.StartOperation("registry_delete_extension", spaceCtx.SpaceID)
	defer marker.Complete()

	if err := spaceCtx.ExtensionRepo().Delete(id); err != nil {
		return err
	}

	spaceCtx.Loader.Evict(widget.Ref{Namespace: widget.NamespaceExtension, ID: id})
	s.logger.Registry().Info("Extension deleted", "spaceId", spaceCtx.SpaceID, "extensionId", id)
	return nil
}

// AppInstallationList is one app_installations listing: installations plus
// the definitions they reference.
type AppInstallationList struct {
	Items       []entities.AppInstallation
	Definitions map[string]entities.AppDefinition
}

// ListAppInstallations returns every installation with its definitions
func (s *RegistryService) ListAppInstallations(spaceCtx *space.Context) (*AppInstallationList, error) {
	marker := s.perfTracker.StartOperation("registry_list_installations", spaceCtx.SpaceID)
	defer marker.Complete()

	items, definitions, err := spaceCtx.AppRepo().FindInstallations()
	if err != nil {
		return nil, err
	}
	return &AppInstallationList{Items: items, Definitions: definitions}, nil
}

// SaveAppDefinition stores an app definition record
func (s *RegistryService) SaveAppDefinition(spaceCtx *space.Context, definition *entities.AppDefinition) error {
	marker := s.perfTracker.StartOperation("registry_save_definition", spaceCtx.SpaceID)
	defer marker.Complete()

	if definition.Sys.ID == "" {
		return fmt.Errorf("app definition id is required")
	}

	if err := spaceCtx.AppRepo().UpsertDefinition(definition); err != nil {
		return err
	}

	spaceCtx.Loader.Evict(widget.Ref{Namespace: widget.NamespaceApp, ID: definition.Sys.ID})
	s.logger.Registry().Info("App definition saved", "spaceId", spaceCtx.SpaceID, "appDefinitionId", definition.Sys.ID)
	return nil
}

// InstallApp records an app installation, evicts the loader entry, and
// notifies the space admin when notifications are configured.
func (s *RegistryService) InstallApp(spaceCtx *space.Context, appDefinitionID string, parameters map[string]any) (*entities.AppInstallation, error) {
	marker := s.perfTracker.StartOperation("registry_install_app", spaceCtx.SpaceID)
	defer marker.Complete()

	definition, err := spaceCtx.AppRepo().FindDefinition(appDefinitionID)
	if err != nil {
		return nil, err
	}
	if definition == nil {
		return nil, fmt.Errorf("unknown app definition: %s", appDefinitionID)
	}

	installation, err := spaceCtx.AppRepo().Install(appDefinitionID, parameters)
	if err != nil {
		return nil, err
	}

	spaceCtx.Loader.Evict(widget.Ref{Namespace: widget.NamespaceApp, ID: appDefinitionID})
	s.notifyAdmin(spaceCtx, definition.Name, true)
	return installation, nil
}

// UninstallApp removes an app installation and evicts the loader entry
func (s *RegistryService) UninstallApp(spaceCtx *space.Context, appDefinitionID string) error {
	marker := s.perfTracker.StartOperation("registry_uninstall_app", spaceCtx.SpaceID)
	defer marker.Complete()

	definition, err := spaceCtx.AppRepo().FindDefinition(appDefinitionID)
	if err != nil {
		return err
	}

	if err := spaceCtx.AppRepo().Uninstall(appDefinitionID); err != nil {
		return err
	}

	spaceCtx.Loader.Evict(widget.Ref{Namespace: widget.NamespaceApp, ID: appDefinitionID})
	spaceCtx.Icons.Evict(appDefinitionID)

	name := appDefinitionID
	if definition != nil {
		name = definition.Name
	}
	s.notifyAdmin(spaceCtx, name, false)
	return nil
}

// notifyAdmin sends the install notification email. Failures are logged,
// never surfaced; registry writes do not depend on email delivery.
func (s *RegistryService) notifyAdmin(spaceCtx *space.Context, appName string, installed bool) {
	if s.emailSvc == nil || spaceCtx.Config.AdminEmail == "" {
		return
	}

	if err := s.emailSvc.SendAppInstallNotification(spaceCtx.Config.AdminEmail, appName, spaceCtx.SpaceID, "", installed); err != nil {
		s.logger.Registry().Warn("Install notification email failed",
			"spaceId", spaceCtx.SpaceID, "app", appName, "error", err)
	}
}
