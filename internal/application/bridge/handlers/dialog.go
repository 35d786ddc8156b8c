package handlers

import (
	"context"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// NewOpenDialog builds the openDialog handler. Params are [type, options].
// The dialog type set is closed: the simple dialogs, the entity selector
// (which further dispatches on entityType and multiplicity), and nested
// custom-widget dialogs addressed by namespace.
func NewOpenDialog(dialogs services.Dialogs) messaging.Handler {
	return func(ctx context.Context, params []any) (any, error) {
		dialogType, err := stringArg(params, 0, "type")
		if err != nil {
			return nil, err
		}
		options := map[string]any{}
		if len(params) > 1 && params[1] != nil {
			options, err = mapArg(params, 1, "options")
			if err != nil {
				return nil, err
			}
		}

		switch dialogType {
		case "alert":
			return dialogs.Alert(ctx, options)
		case "confirm":
			return dialogs.Confirm(ctx, options)
		case "prompt":
			return dialogs.Prompt(ctx, options)
		case "entitySelector":
			return openEntitySelector(ctx, dialogs, options)
		case string(widget.NamespaceApp):
			return dialogs.OpenWidgetDialog(ctx, widget.NamespaceApp, options)
		case string(widget.NamespaceExtension):
			return dialogs.OpenWidgetDialog(ctx, widget.NamespaceExtension, options)
		default:
			return nil, messaging.NewChannelError("unexpected dialog type: "+dialogType, nil)
		}
	}
}

func openEntitySelector(ctx context.Context, dialogs services.Dialogs, options map[string]any) (any, error) {
	multiple := optionalBool(options, "multiple")

	switch optionalString(options, "entityType") {
	case "Entry":
		if multiple {
			return dialogs.SelectMultipleEntries(ctx, options)
		}
		return dialogs.SelectSingleEntry(ctx, options)
	case "Asset":
		if multiple {
			return dialogs.SelectMultipleAssets(ctx, options)
		}
		return dialogs.SelectSingleAsset(ctx, options)
	default:
		return nil, messaging.NewChannelError("unsupported entity type", nil)
	}
}

// NewCloseDialog builds the closeDialog handler. The close callback is bound
// only for widgets rendered inside a dialog; a nil callback makes the call a
// no-op.
func NewCloseDialog(close func(data any)) messaging.Handler {
	return func(ctx context.Context, params []any) (any, error) {
		if close == nil {
			return nil, nil
		}
		var data any
		if len(params) > 0 {
			data = params[0]
		}
		close(data)
		return nil, nil
	}
}
