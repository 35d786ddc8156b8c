// Package bridge composes the RPC surface a rendered widget sees: it wires
// handler factories and host event forwarders onto a channel according to
// the widget's rendering location, builds the connect snapshot, and drives
// the frame lifecycle through the renderer.
package bridge

import (
	"github.com/fieldstack/widgethost-go/internal/application/bridge/handlers"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// RPC method names in the widget-facing namespace
const (
	MethodCallSpaceMethod         = "callSpaceMethod"
	MethodSetHeight               = "setHeight"
	MethodNotify                  = "notify"
	MethodNavigateToPage          = "navigateToPage"
	MethodNavigateToPageExtension = "navigateToPageExtension"
	MethodNavigateToBulkEditor    = "navigateToBulkEditor"
	MethodNavigateToContentEntity = "navigateToContentEntity"
	MethodOpenDialog              = "openDialog"
	MethodCloseDialog             = "closeDialog"
	MethodCheckAccess             = "checkAccess"
	MethodSetValue                = "setValue"
	MethodRemoveValue             = "removeValue"
	MethodSetInvalid              = "setInvalid"
)

// SetupHandlers registers the method handlers valid for the given rendering
// location. Field-mutation handlers exist only for field-editing locations
// and the dialog-close handler only inside a dialog; everywhere else those
// methods have no handler at all, so calling them is a dropped no-op rather
// than an error. That gap is the authorization boundary.
func SetupHandlers(channel *messaging.PostChannel, sdk *services.HostSDK, location widget.LocationKind) {
	channel.RegisterHandler(MethodCallSpaceMethod, handlers.NewCallSpaceMethod(sdk.Space, sdk.ReadOnly))
	channel.RegisterHandler(MethodNotify, handlers.NewNotify(sdk.Notifier))
	channel.RegisterHandler(MethodOpenDialog, handlers.NewOpenDialog(sdk.Dialogs))
	channel.RegisterHandler(MethodCheckAccess, handlers.NewCheckAccess(sdk.Access))
	channel.RegisterHandler(MethodNavigateToBulkEditor, handlers.NewNavigateToBulkEditor(sdk.Navigator))
	channel.RegisterHandler(MethodNavigateToContentEntity, handlers.NewNavigateToContentEntity(sdk.Navigator))
	channel.RegisterHandler(MethodNavigateToPage, handlers.NewNavigateToPage(sdk.Navigator))
	channel.RegisterHandler(MethodNavigateToPageExtension, handlers.NewNavigateToPageExtension(sdk.Navigator))

	if widget.IsFieldEditing(location) {
		channel.RegisterHandler(MethodSetValue, handlers.NewSetValue(sdk.Entry))
		channel.RegisterHandler(MethodRemoveValue, handlers.NewRemoveValue(sdk.Entry))
		channel.RegisterHandler(MethodSetInvalid, handlers.NewSetInvalid(sdk.FieldControl))
	}

	if location == widget.LocationDialog {
		channel.RegisterHandler(MethodCloseDialog, handlers.NewCloseDialog(sdk.CloseDialog))
	}
}
