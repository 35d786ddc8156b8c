package handlers

import (
	"context"

	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// NewNavigateToBulkEditor builds the navigateToBulkEditor handler with
// params [entryId, {fieldId, locale, index}].
func NewNavigateToBulkEditor(navigator services.Navigator) messaging.Handler {
	return func(ctx context.Context, params []any) (any, error) {
		entryID, err := stringArg(params, 0, "entryId")
		if err != nil {
			return nil, err
		}
		options, err := mapArg(params, 1, "options")
		if err != nil {
			return nil, err
		}
		return nil, navigator.OpenBulkEditor(ctx,
			entryID,
			optionalString(options, "fieldId"),
			optionalString(options, "locale"),
			optionalInt(options, "index"),
		)
	}
}

// NewNavigateToContentEntity builds the navigateToContentEntity handler; the
// navigator's result (the opened entity) is returned to the widget.
func NewNavigateToContentEntity(navigator services.Navigator) messaging.Handler {
	return func(ctx context.Context, params []any) (any, error) {
		options, err := mapArg(params, 0, "options")
		if err != nil {
			return nil, err
		}
		return navigator.OpenEntity(ctx, options)
	}
}

// NewNavigateToPage builds the navigateToPage handler
func NewNavigateToPage(navigator services.Navigator) messaging.Handler {
	return func(ctx context.Context, params []any) (any, error) {
		options, err := mapArg(params, 0, "options")
		if err != nil {
			return nil, err
		}
		return nil, navigator.OpenPage(ctx, options)
	}
}

// NewNavigateToPageExtension builds the navigateToPageExtension handler
func NewNavigateToPageExtension(navigator services.Navigator) messaging.Handler {
	return func(ctx context.Context, params []any) (any, error) {
		options, err := mapArg(params, 0, "options")
		if err != nil {
			return nil, err
		}
		return nil, navigator.OpenPageExtension(ctx, options)
	}
}
