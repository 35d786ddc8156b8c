package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
)

func testWidget() *widget.Widget {
	return &widget.Widget{
		Namespace: widget.NamespaceExtension,
		ID:        "color-picker",
		Name:      "Color Picker",
		Hosting:   widget.Hosting{Type: widget.HostingSrc, Value: "https://widgets.example.com/color-picker"},
		Locations: []widget.Location{
			{Location: widget.LocationEntryField, FieldTypes: []string{"Symbol"}},
			{Location: widget.LocationDialog},
		},
	}
}

func TestConnectMessageAlwaysHasStableShape(t *testing.T) {
	sdk := testSDK()

	for _, location := range []widget.LocationKind{
		widget.LocationPage, widget.LocationDialog, widget.LocationAppConfig,
		widget.LocationEntryEditor, widget.LocationEntryField,
	} {
		msg := MakeConnectMessage(sdk, testWidget(), location)

		for _, key := range []string{
			"location", "parameters", "locales", "user",
			"initialContentTypes", "ids", "entry", "contentType",
			"editorInterface", "fieldInfo",
		} {
			assert.Contains(t, msg, key, "key %s for %s", key, location)
		}
		assert.Equal(t, string(location), msg["location"])
	}
}

func TestConnectMessageStubsForNonEditingLocations(t *testing.T) {
	msg := MakeConnectMessage(testSDK(), testWidget(), widget.LocationPage)

	assert.Equal(t, map[string]any{"sys": map[string]any{}}, msg["entry"])
	assert.Equal(t, map[string]any{"sys": map[string]any{}, "fields": []any{}}, msg["contentType"])
	assert.Equal(t, []any{}, msg["fieldInfo"])
	assert.NotContains(t, msg, "field")

	ids, ok := msg["ids"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, ids, "entry")
	assert.NotContains(t, ids, "field")
}

func TestConnectMessageEntryEditingData(t *testing.T) {
	sdk := testSDK()
	msg := MakeConnectMessage(sdk, testWidget(), widget.LocationEntrySidebar)

	entry, ok := msg["entry"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, sdk.Entry.Sys(), entry["sys"])
	assert.Equal(t, sdk.ContentType, msg["contentType"])

	ids, ok := msg["ids"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "entry-1", ids["entry"])
	assert.Equal(t, "blogPost", ids["contentType"])
	assert.NotContains(t, ids, "field", "field id is reserved for field-editing locations")
}

func TestConnectMessageFieldEditingData(t *testing.T) {
	sdk := testSDK()
	msg := MakeConnectMessage(sdk, testWidget(), widget.LocationEntryField)

	fieldInfo, ok := msg["fieldInfo"].([]any)
	require.True(t, ok)
	require.Len(t, fieldInfo, 2)

	title, ok := fieldInfo[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "title", title["id"])
	assert.Equal(t, []string{"en-US", "de-DE"}, title["locales"])

	slug, ok := fieldInfo[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"en-US"}, slug["locales"], "non-localized fields carry only the default locale")

	field, ok := msg["field"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "title", field["id"])
	assert.Equal(t, "en-US", field["locale"])
	assert.Equal(t, "Hello", field["value"])

	ids, ok := msg["ids"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "title", ids["field"])
}

func TestConnectMessageIDsCarryWidgetNamespaceKey(t *testing.T) {
	sdk := testSDK()

	extMsg := MakeConnectMessage(sdk, testWidget(), widget.LocationPage)
	ids := extMsg["ids"].(map[string]any)
	assert.Equal(t, "color-picker", ids["extension"])

	app := testWidget()
	app.Namespace = widget.NamespaceApp
	app.ID = "my-app"
	appMsg := MakeConnectMessage(sdk, app, widget.LocationPage)
	ids = appMsg["ids"].(map[string]any)
	assert.Equal(t, "my-app", ids["app"])
	assert.NotContains(t, ids, "extension")
}
