package bridge

import (
	"github.com/fieldstack/widgethost-go/internal/domain/entities/editor"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/domain/events"
	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// Event names forwarded host-to-widget. The field-locale variants carry
// [fieldId, localeCode, payload]; the unscoped variants are the legacy
// per-field shape older widget SDKs still listen for.
const (
	EventSysChanged                        = "sysChanged"
	EventLocaleSettingsChanged             = "localeSettingsChanged"
	EventShowDisabledFieldsChanged         = "showDisabledFieldsChanged"
	EventSlideInNavigation                 = "onSlideInNavigation"
	EventValueChanged                      = "valueChanged"
	EventIsDisabledChangedForFieldLocale   = "isDisabledChangedForFieldLocale"
	EventSchemaErrorsChangedForFieldLocale = "schemaErrorsChangedForFieldLocale"
	EventIsDisabledChanged                 = "isDisabledChanged"
	EventSchemaErrorsChanged               = "schemaErrorsChanged"
)

// SetupEventForwarders subscribes the channel to the host-side editor events
// the given location is entitled to and returns a single cleanup releasing
// every subscription. Entry-editing locations get the four document-level
// events; field-editing locations additionally get the per-field and
// per-field-locale change streams. Other locations get nothing and a no-op
// cleanup.
func SetupEventForwarders(channel *messaging.PostChannel, sdk *services.HostSDK, location widget.LocationKind) func() {
	disposer := &events.Disposer{}

	if widget.IsEntryEditing(location) && sdk.Entry != nil {
		disposer.Add(sdk.Entry.OnSysChanged(func(sys editor.EntrySys) {
			channel.Send(EventSysChanged, []any{sys})
		}))
		disposer.Add(sdk.Entry.OnLocaleSettingsChanged(func(settings editor.LocaleSettings) {
			channel.Send(EventLocaleSettingsChanged, []any{settings})
		}))
		disposer.Add(sdk.Entry.OnShowDisabledFieldsChanged(func(show bool) {
			channel.Send(EventShowDisabledFieldsChanged, []any{show})
		}))
		disposer.Add(sdk.Entry.OnSlideInNavigation(func(navigation map[string]any) {
			channel.Send(EventSlideInNavigation, []any{navigation})
		}))
	}

	if widget.IsFieldEditing(location) && sdk.Entry != nil && sdk.ContentType != nil {
		for _, field := range sdk.ContentType.Fields {
			forwardFieldEvents(channel, sdk, disposer, field)
		}
	}

	return disposer.Dispose
}

// forwardFieldEvents wires one content type field: the legacy field-scoped
// pair plus the three field-locale streams for every locale the field
// carries.
func forwardFieldEvents(channel *messaging.PostChannel, sdk *services.HostSDK, disposer *events.Disposer, field editor.ContentTypeField) {
	fieldID := field.ID

	fieldEvents := sdk.Entry.Field(fieldID)
	disposer.Add(fieldEvents.OnIsDisabledChanged(func(disabled bool) {
		channel.Send(EventIsDisabledChanged, []any{fieldID, disabled})
	}))
	disposer.Add(fieldEvents.OnSchemaErrorsChanged(func(errs []any) {
		channel.Send(EventSchemaErrorsChanged, []any{fieldID, errs})
	}))

	for _, code := range fieldLocales(field, sdk.Locales) {
		locale := code
		localeEvents := sdk.Entry.FieldLocale(fieldID, locale)
		disposer.Add(localeEvents.OnValueChanged(func(value any) {
			channel.Send(EventValueChanged, []any{fieldID, locale, value})
		}))
		disposer.Add(localeEvents.OnIsDisabledChanged(func(disabled bool) {
			channel.Send(EventIsDisabledChangedForFieldLocale, []any{fieldID, locale, disabled})
		}))
		disposer.Add(localeEvents.OnSchemaErrorsChanged(func(errs []any) {
			channel.Send(EventSchemaErrorsChangedForFieldLocale, []any{fieldID, locale, errs})
		}))
	}
}

// fieldLocales returns the locale codes a field holds values for: every
// available locale when localized, the space default otherwise.
func fieldLocales(field editor.ContentTypeField, locales services.Locales) []string {
	if !field.Localized {
		return []string{locales.Default}
	}
	codes := make([]string, 0, len(locales.Available))
	for _, loc := range locales.Available {
		codes = append(codes, loc.Code)
	}
	return codes
}
