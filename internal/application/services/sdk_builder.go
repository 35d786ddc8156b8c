// Package services provides application-level orchestration services
package services

import (
	"github.com/fieldstack/widgethost-go/internal/domain/entities/editor"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	domainservices "github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/space"
)

// SDKCapabilities bundles the capability implementations the embedding
// editor supplies for one widget render. Entry, ContentType, EditorInterface
// and FieldControl stay nil for locations that do not edit entries or fields.
type SDKCapabilities struct {
	Space     domainservices.SpaceAPI
	Access    domainservices.AccessAPI
	Notifier  domainservices.Notifier
	Navigator domainservices.Navigator
	Dialogs   domainservices.Dialogs

	Entry           domainservices.EntryAPI
	ContentType     *editor.ContentType
	EditorInterface *widget.EditorInterface
	FieldControl    domainservices.FieldControl

	ContentTypes []editor.ContentType
	CloseDialog  func(data any)
	ReadOnly     bool
}

// BuildSDK assembles the host SDK for one widget on a render session,
// deriving identity and locale data from the space context so every
// connect message carries the space's configured localization set.
func BuildSDK(spaceCtx *space.Context, session *RenderSession, w *widget.Widget, caps SDKCapabilities) *domainservices.HostSDK {
	available := make([]editor.Locale, 0, len(spaceCtx.Config.Locales))
	for _, loc := range spaceCtx.Config.Locales {
		available = append(available, editor.Locale{
			Code:    loc.Code,
			Name:    loc.Name,
			Default: loc.Default,
		})
	}

	return &domainservices.HostSDK{
		IDs: domainservices.IDs{
			Space:       spaceCtx.SpaceID,
			Environment: spaceCtx.EnvironmentID,
			User:        session.User.ID,
		},
		User: session.User,
		Locales: domainservices.Locales{
			Available: available,
			Default:   spaceCtx.Config.DefaultLocale(),
		},
		Parameters:   w.Parameters,
		ContentTypes: caps.ContentTypes,

		Space:     caps.Space,
		Access:    caps.Access,
		Notifier:  caps.Notifier,
		Navigator: caps.Navigator,
		Dialogs:   caps.Dialogs,

		Entry:           caps.Entry,
		ContentType:     caps.ContentType,
		EditorInterface: caps.EditorInterface,
		FieldControl:    caps.FieldControl,

		CloseDialog: caps.CloseDialog,
		ReadOnly:    caps.ReadOnly,
	}
}
