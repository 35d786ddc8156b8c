package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/editor"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// testBus is an in-process Bus; tests inspect what the bridge posts and
// inject widget-to-host messages.
type testBus struct {
	mu          sync.Mutex
	posted      []any
	subscribers map[int]func([]byte)
	seq         int
}

func newTestBus() *testBus {
	return &testBus{subscribers: make(map[int]func([]byte))}
}

func (b *testBus) Post(payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posted = append(b.posted, payload)
	return nil
}

func (b *testBus) Subscribe(fn func(data []byte)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.seq
	b.seq++
	b.subscribers[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

func (b *testBus) deliver(t *testing.T, msg messaging.IncomingMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	b.mu.Lock()
	fns := make([]func([]byte), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(data)
	}
}

func (b *testBus) postedMessages() []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]any, len(b.posted))
	copy(out, b.posted)
	return out
}

type stubNotifier struct{}

func (stubNotifier) Success(string) error { return nil }
func (stubNotifier) Error(string) error   { return nil }

type stubAccess struct{}

func (stubAccess) Can(context.Context, string, string) (bool, error) { return true, nil }

type stubNavigator struct{}

func (stubNavigator) OpenBulkEditor(context.Context, string, string, string, int) error { return nil }
func (stubNavigator) OpenEntity(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (stubNavigator) OpenPage(context.Context, map[string]any) error          { return nil }
func (stubNavigator) OpenPageExtension(context.Context, map[string]any) error { return nil }

type stubDialogs struct{}

func (stubDialogs) Alert(context.Context, map[string]any) (any, error)                 { return nil, nil }
func (stubDialogs) Confirm(context.Context, map[string]any) (any, error)               { return nil, nil }
func (stubDialogs) Prompt(context.Context, map[string]any) (any, error)                { return nil, nil }
func (stubDialogs) SelectSingleEntry(context.Context, map[string]any) (any, error)     { return nil, nil }
func (stubDialogs) SelectMultipleEntries(context.Context, map[string]any) (any, error) { return nil, nil }
func (stubDialogs) SelectSingleAsset(context.Context, map[string]any) (any, error)     { return nil, nil }
func (stubDialogs) SelectMultipleAssets(context.Context, map[string]any) (any, error)  { return nil, nil }
func (stubDialogs) OpenWidgetDialog(context.Context, widget.Namespace, map[string]any) (any, error) {
	return nil, nil
}

type stubSpaceAPI struct{}

func (stubSpaceAPI) GetEntry(context.Context, string) (map[string]any, error)       { return nil, nil }
func (stubSpaceAPI) GetEntries(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (stubSpaceAPI) GetAsset(context.Context, string) (map[string]any, error) { return nil, nil }
func (stubSpaceAPI) GetAssets(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (stubSpaceAPI) GetContentType(context.Context, string) (map[string]any, error) { return nil, nil }
func (stubSpaceAPI) GetContentTypes(context.Context) (map[string]any, error)        { return nil, nil }
func (stubSpaceAPI) GetEditorInterface(context.Context, string) (map[string]any, error) {
	return nil, nil
}
func (stubSpaceAPI) CreateEntry(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (stubSpaceAPI) UpdateEntry(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (stubSpaceAPI) DeleteEntry(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (stubSpaceAPI) PublishEntry(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (stubSpaceAPI) UnpublishEntry(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (stubSpaceAPI) CreateAsset(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (stubSpaceAPI) UpdateAsset(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}
func (stubSpaceAPI) DeleteAsset(context.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}

type stubFieldControl struct{}

func (stubFieldControl) FieldID() string { return "title" }
func (stubFieldControl) Locale() string  { return "en-US" }
func (stubFieldControl) Type() string    { return "Symbol" }
func (stubFieldControl) SetInvalid(bool) {}

func testSDK() *services.HostSDK {
	contentType := &editor.ContentType{
		ID:   "blogPost",
		Name: "Blog Post",
		Fields: []editor.ContentTypeField{
			{ID: "title", Type: "Symbol", Localized: true},
			{ID: "slug", Type: "Symbol"},
		},
	}
	doc := editor.NewDocument(editor.EntrySys{ID: "entry-1", ContentTypeID: "blogPost", Version: 3}, map[string]map[string]any{
		"title": {"en-US": "Hello", "de-DE": "Hallo"},
		"slug":  {"en-US": "hello"},
	})
	return &services.HostSDK{
		IDs: services.IDs{
			Space:       "space-1",
			Environment: "master",
			User:        "user-1",
			Entry:       "entry-1",
			ContentType: "blogPost",
			Field:       "title",
		},
		User: editor.User{ID: "user-1", FirstName: "Alex"},
		Locales: services.Locales{
			Available: []editor.Locale{
				{Code: "en-US", Name: "English (US)", Default: true},
				{Code: "de-DE", Name: "German"},
			},
			Default: "en-US",
		},
		ContentTypes: []editor.ContentType{*contentType},
		Space:        stubSpaceAPI{},
		Access:       stubAccess{},
		Notifier:     stubNotifier{},
		Navigator:    stubNavigator{},
		Dialogs:      stubDialogs{},
		Entry:        doc,
		ContentType:  contentType,
		FieldControl: stubFieldControl{},
		CloseDialog:  func(any) {},
	}
}

// handlerRegistered checks the channel's write-once registry: registering a
// throwaway handler panics exactly when the method is already taken.
func handlerRegistered(channel *messaging.PostChannel, method string) (taken bool) {
	defer func() {
		if recover() != nil {
			taken = true
		}
	}()
	channel.RegisterHandler(method, func(context.Context, []any) (any, error) { return nil, nil })
	return false
}

func TestSetupHandlersLocationGating(t *testing.T) {
	allLocations := []widget.LocationKind{
		widget.LocationEntryField,
		widget.LocationPage,
		widget.LocationEntrySidebar,
		widget.LocationEntryEditor,
		widget.LocationDialog,
		widget.LocationAppConfig,
		widget.LocationEntryFieldSidebar,
	}

	for _, location := range allLocations {
		bus := newTestBus()
		channel := messaging.NewPostChannel(bus, nil)
		SetupHandlers(channel, testSDK(), location)

		for _, method := range []string{
			MethodCallSpaceMethod, MethodNotify, MethodOpenDialog, MethodCheckAccess,
			MethodNavigateToBulkEditor, MethodNavigateToContentEntity,
			MethodNavigateToPage, MethodNavigateToPageExtension,
		} {
			assert.True(t, handlerRegistered(channel, method), "%s must be registered for %s", method, location)
		}

		fieldEditing := widget.IsFieldEditing(location)
		for _, method := range []string{MethodSetValue, MethodRemoveValue, MethodSetInvalid} {
			assert.Equal(t, fieldEditing, handlerRegistered(channel, method),
				"%s registration for %s", method, location)
		}

		assert.Equal(t, location == widget.LocationDialog, handlerRegistered(channel, MethodCloseDialog),
			"closeDialog registration for %s", location)

		channel.Destroy()
	}
}
