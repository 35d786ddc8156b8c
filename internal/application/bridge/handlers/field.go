package handlers

import (
	"context"

	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// NewSetValue builds the setValue handler. Params are [fieldId, locale,
// value]; the result echoes the stored value back to the widget.
func NewSetValue(entry services.EntryAPI) messaging.Handler {
	return func(ctx context.Context, params []any) (any, error) {
		fieldID, err := stringArg(params, 0, "fieldId")
		if err != nil {
			return nil, err
		}
		locale, err := stringArg(params, 1, "locale")
		if err != nil {
			return nil, err
		}
		if len(params) < 3 {
			return nil, messaging.NewChannelError("missing argument: value", nil)
		}
		return entry.SetValue(ctx, fieldID, locale, params[2])
	}
}

// NewRemoveValue builds the removeValue handler with params [fieldId, locale]
func NewRemoveValue(entry services.EntryAPI) messaging.Handler {
	return func(ctx context.Context, params []any) (any, error) {
		fieldID, err := stringArg(params, 0, "fieldId")
		if err != nil {
			return nil, err
		}
		locale, err := stringArg(params, 1, "locale")
		if err != nil {
			return nil, err
		}
		return nil, entry.RemoveValue(ctx, fieldID, locale)
	}
}

// NewSetInvalid builds the setInvalid handler. Params are [invalid, locale].
// The handler is bound to one field control; a locale other than the
// control's own is ignored so a stale call cannot invalidate a sibling
// locale's control.
func NewSetInvalid(control services.FieldControl) messaging.Handler {
	return func(ctx context.Context, params []any) (any, error) {
		invalid, err := boolArg(params, 0, "invalid")
		if err != nil {
			return nil, err
		}
		locale, err := stringArg(params, 1, "locale")
		if err != nil {
			return nil, err
		}
		if locale == control.Locale() {
			control.SetInvalid(invalid)
		}
		return nil, nil
	}
}
