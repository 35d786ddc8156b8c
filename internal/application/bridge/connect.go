package bridge

import (
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/domain/services"
)

// MakeConnectMessage builds the state snapshot a widget receives at connect
// time. The shape is stable across locations so the widget-side SDK can rely
// on every key being present: locations that carry no entry data get empty
// stubs, not missing keys. Entry and content type data appear only for
// entry-editing locations; per-field info only for field-editing ones.
func MakeConnectMessage(sdk *services.HostSDK, w *widget.Widget, location widget.LocationKind) map[string]any {
	msg := map[string]any{
		"location":            string(location),
		"parameters":          sdk.Parameters,
		"locales":             connectLocales(sdk.Locales),
		"user":                sdk.User,
		"initialContentTypes": sdk.ContentTypes,
		"ids":                 connectIDs(sdk, w, location),
		"entry":               map[string]any{"sys": map[string]any{}},
		"contentType":         map[string]any{"sys": map[string]any{}, "fields": []any{}},
		"editorInterface":     map[string]any{},
		"fieldInfo":           []any{},
	}

	if widget.IsEntryEditing(location) && sdk.Entry != nil {
		msg["entry"] = map[string]any{"sys": sdk.Entry.Sys()}
		if sdk.ContentType != nil {
			msg["contentType"] = sdk.ContentType
		}
		if sdk.EditorInterface != nil {
			msg["editorInterface"] = sdk.EditorInterface
		}
	}

	if widget.IsFieldEditing(location) && sdk.Entry != nil && sdk.ContentType != nil {
		msg["fieldInfo"] = connectFieldInfo(sdk)
		if sdk.FieldControl != nil {
			msg["field"] = connectField(sdk)
		}
	}

	return msg
}

func connectLocales(locales services.Locales) map[string]any {
	codes := make([]string, 0, len(locales.Available))
	names := make(map[string]string, len(locales.Available))
	for _, loc := range locales.Available {
		codes = append(codes, loc.Code)
		names[loc.Code] = loc.Name
	}
	return map[string]any{
		"available": codes,
		"default":   locales.Default,
		"names":     names,
	}
}

// connectIDs assembles the composite id block: host identities plus the
// widget's own id keyed by its namespace.
func connectIDs(sdk *services.HostSDK, w *widget.Widget, location widget.LocationKind) map[string]any {
	ids := map[string]any{
		"space":       sdk.IDs.Space,
		"environment": sdk.IDs.Environment,
		"user":        sdk.IDs.User,
	}
	if widget.IsEntryEditing(location) {
		ids["entry"] = sdk.IDs.Entry
		ids["contentType"] = sdk.IDs.ContentType
	}
	if widget.IsFieldEditing(location) {
		ids["field"] = sdk.IDs.Field
	}
	ids[string(w.Namespace)] = w.ID
	return ids
}

// connectFieldInfo describes every field of the content type with its
// locales and current localized values.
func connectFieldInfo(sdk *services.HostSDK) []any {
	values := sdk.Entry.Fields()
	info := make([]any, 0, len(sdk.ContentType.Fields))
	for _, field := range sdk.ContentType.Fields {
		info = append(info, map[string]any{
			"id":        field.ID,
			"type":      field.Type,
			"localized": field.Localized,
			"required":  field.Required,
			"locales":   fieldLocales(field, sdk.Locales),
			"values":    values[field.ID],
		})
	}
	return info
}

// connectField describes the single control this widget is bound to
func connectField(sdk *services.HostSDK) map[string]any {
	control := sdk.FieldControl
	field := map[string]any{
		"id":     control.FieldID(),
		"locale": control.Locale(),
		"type":   control.Type(),
	}
	if values, ok := sdk.Entry.Fields()[control.FieldID()]; ok {
		field["value"] = values[control.Locale()]
	}
	if ctField, ok := sdk.ContentType.Field(control.FieldID()); ok {
		field["validations"] = ctField.Validations
		if field["type"] == "" {
			field["type"] = ctField.Type
		}
	}
	return field
}
