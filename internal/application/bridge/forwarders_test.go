package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/editor"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/domain/events"
	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// countingEntry wraps a Document and counts subscriptions and disposals so
// cleanup completeness can be checked exactly.
type countingEntry struct {
	services.EntryAPI
	subscribed int
	disposed   int
}

func (c *countingEntry) wrap(d events.Disposable) events.Disposable {
	c.subscribed++
	return func() {
		c.disposed++
		d()
	}
}

func (c *countingEntry) OnSysChanged(fn func(editor.EntrySys)) events.Disposable {
	return c.wrap(c.EntryAPI.OnSysChanged(fn))
}

func (c *countingEntry) OnLocaleSettingsChanged(fn func(editor.LocaleSettings)) events.Disposable {
	return c.wrap(c.EntryAPI.OnLocaleSettingsChanged(fn))
}

func (c *countingEntry) OnShowDisabledFieldsChanged(fn func(bool)) events.Disposable {
	return c.wrap(c.EntryAPI.OnShowDisabledFieldsChanged(fn))
}

func (c *countingEntry) OnSlideInNavigation(fn func(map[string]any)) events.Disposable {
	return c.wrap(c.EntryAPI.OnSlideInNavigation(fn))
}

func (c *countingEntry) Field(fieldID string) editor.FieldEvents {
	return &countingFieldEvents{inner: c.EntryAPI.Field(fieldID), entry: c}
}

func (c *countingEntry) FieldLocale(fieldID, locale string) editor.FieldLocaleEvents {
	return &countingFieldLocaleEvents{inner: c.EntryAPI.FieldLocale(fieldID, locale), entry: c}
}

type countingFieldEvents struct {
	inner editor.FieldEvents
	entry *countingEntry
}

func (c *countingFieldEvents) OnIsDisabledChanged(fn func(bool)) events.Disposable {
	return c.entry.wrap(c.inner.OnIsDisabledChanged(fn))
}

func (c *countingFieldEvents) OnSchemaErrorsChanged(fn func([]any)) events.Disposable {
	return c.entry.wrap(c.inner.OnSchemaErrorsChanged(fn))
}

type countingFieldLocaleEvents struct {
	inner editor.FieldLocaleEvents
	entry *countingEntry
}

func (c *countingFieldLocaleEvents) OnValueChanged(fn func(any)) events.Disposable {
	return c.entry.wrap(c.inner.OnValueChanged(fn))
}

func (c *countingFieldLocaleEvents) OnIsDisabledChanged(fn func(bool)) events.Disposable {
	return c.entry.wrap(c.inner.OnIsDisabledChanged(fn))
}

func (c *countingFieldLocaleEvents) OnSchemaErrorsChanged(fn func([]any)) events.Disposable {
	return c.entry.wrap(c.inner.OnSchemaErrorsChanged(fn))
}

func TestForwarderSubscriptionCounts(t *testing.T) {
	// testSDK has two fields: "title" localized over two locales, "slug"
	// default-only. Field-editing locations subscribe 4 document events,
	// 2 legacy events per field, and 3 events per field-locale pair.
	fieldLocalePairs := 2 + 1
	wantFieldEditing := 4 + 2*2 + 3*fieldLocalePairs

	cases := []struct {
		location widget.LocationKind
		want     int
	}{
		{widget.LocationEntryField, wantFieldEditing},
		{widget.LocationEntryFieldSidebar, wantFieldEditing},
		{widget.LocationEntrySidebar, 4},
		{widget.LocationEntryEditor, 4},
		{widget.LocationPage, 0},
		{widget.LocationDialog, 0},
		{widget.LocationAppConfig, 0},
	}

	for _, tc := range cases {
		sdk := testSDK()
		entry := &countingEntry{EntryAPI: sdk.Entry}
		sdk.Entry = entry

		bus := newTestBus()
		channel := messaging.NewPostChannel(bus, nil)
		cleanup := SetupEventForwarders(channel, sdk, tc.location)

		assert.Equal(t, tc.want, entry.subscribed, "subscriptions for %s", tc.location)

		cleanup()
		assert.Equal(t, entry.subscribed, entry.disposed, "cleanup must release every subscription for %s", tc.location)

		channel.Destroy()
	}
}

func TestForwardersSendFieldLocaleEvents(t *testing.T) {
	sdk := testSDK()
	doc := sdk.Entry.(*editor.Document)

	bus := newTestBus()
	channel := messaging.NewPostChannel(bus, nil)
	defer channel.Destroy()
	channel.Connect(map[string]any{})

	cleanup := SetupEventForwarders(channel, sdk, widget.LocationEntryField)
	defer cleanup()

	before := len(bus.postedMessages())
	doc.SetFieldDisabled("title", "de-DE", true)

	posted := bus.postedMessages()[before:]
	require.Len(t, posted, 2, "one field-locale event and one legacy field event")

	var sawScoped, sawLegacy bool
	for _, p := range posted {
		msg, ok := p.(messaging.OutgoingMessage)
		require.True(t, ok)
		switch msg.Method {
		case EventIsDisabledChangedForFieldLocale:
			sawScoped = true
			assert.Equal(t, []any{"title", "de-DE", true}, msg.Params)
		case EventIsDisabledChanged:
			sawLegacy = true
			assert.Equal(t, []any{"title", true}, msg.Params)
		}
	}
	assert.True(t, sawScoped)
	assert.True(t, sawLegacy)
}

func TestForwardersStopAfterCleanup(t *testing.T) {
	sdk := testSDK()
	doc := sdk.Entry.(*editor.Document)

	bus := newTestBus()
	channel := messaging.NewPostChannel(bus, nil)
	defer channel.Destroy()
	channel.Connect(map[string]any{})

	cleanup := SetupEventForwarders(channel, sdk, widget.LocationEntrySidebar)

	before := len(bus.postedMessages())
	doc.SetLocaleSettings(editor.LocaleSettings{Mode: "multi"})
	require.Len(t, bus.postedMessages()[before:], 1)

	cleanup()
	doc.SetLocaleSettings(editor.LocaleSettings{Mode: "single"})
	assert.Len(t, bus.postedMessages()[before:], 1, "no sends after cleanup")
}
