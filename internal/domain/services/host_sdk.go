// Package services defines the host SDK contracts a sandboxed widget is
// bridged onto. Each interface is a narrow capability slice; the bridge
// registers RPC handlers over these and never hands a widget anything wider.
package services

import (
	"context"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/editor"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/domain/events"
)

// SpaceAPI is the closed set of space methods a widget may call. The
// callSpaceMethod handler maps RPC method names onto these at registration
// time; there is no dynamic dispatch.
type SpaceAPI interface {
	GetEntry(ctx context.Context, id string) (map[string]any, error)
	GetEntries(ctx context.Context, query map[string]any) (map[string]any, error)
	GetAsset(ctx context.Context, id string) (map[string]any, error)
	GetAssets(ctx context.Context, query map[string]any) (map[string]any, error)
	GetContentType(ctx context.Context, id string) (map[string]any, error)
	GetContentTypes(ctx context.Context) (map[string]any, error)
	GetEditorInterface(ctx context.Context, contentTypeID string) (map[string]any, error)
	CreateEntry(ctx context.Context, data map[string]any) (map[string]any, error)
	UpdateEntry(ctx context.Context, data map[string]any) (map[string]any, error)
	DeleteEntry(ctx context.Context, data map[string]any) (map[string]any, error)
	PublishEntry(ctx context.Context, data map[string]any) (map[string]any, error)
	UnpublishEntry(ctx context.Context, data map[string]any) (map[string]any, error)
	CreateAsset(ctx context.Context, data map[string]any) (map[string]any, error)
	UpdateAsset(ctx context.Context, data map[string]any) (map[string]any, error)
	DeleteAsset(ctx context.Context, data map[string]any) (map[string]any, error)
}

// AccessAPI answers capability checks on behalf of a widget
type AccessAPI interface {
	Can(ctx context.Context, action, entityType string) (bool, error)
}

// Notifier surfaces user-visible notifications from a widget
type Notifier interface {
	Success(message string) error
	Error(message string) error
}

// Navigator translates widget navigation requests into host navigation
type Navigator interface {
	OpenBulkEditor(ctx context.Context, entryID, fieldID, locale string, index int) error
	OpenEntity(ctx context.Context, options map[string]any) (map[string]any, error)
	OpenPage(ctx context.Context, options map[string]any) error
	OpenPageExtension(ctx context.Context, options map[string]any) error
}

// Dialogs opens host dialog surfaces on behalf of a widget
type Dialogs interface {
	Alert(ctx context.Context, options map[string]any) (any, error)
	Confirm(ctx context.Context, options map[string]any) (any, error)
	Prompt(ctx context.Context, options map[string]any) (any, error)
	SelectSingleEntry(ctx context.Context, options map[string]any) (any, error)
	SelectMultipleEntries(ctx context.Context, options map[string]any) (any, error)
	SelectSingleAsset(ctx context.Context, options map[string]any) (any, error)
	SelectMultipleAssets(ctx context.Context, options map[string]any) (any, error)
	OpenWidgetDialog(ctx context.Context, namespace widget.Namespace, options map[string]any) (any, error)
}

// EntryAPI is the host entry document a widget reads and, in field-editing
// locations, mutates.
type EntryAPI interface {
	Sys() editor.EntrySys
	Fields() map[string]map[string]any // fieldID -> locale -> value

	SetValue(ctx context.Context, fieldID, locale string, value any) (any, error)
	RemoveValue(ctx context.Context, fieldID, locale string) error

	OnSysChanged(fn func(sys editor.EntrySys)) events.Disposable
	OnLocaleSettingsChanged(fn func(settings editor.LocaleSettings)) events.Disposable
	OnShowDisabledFieldsChanged(fn func(show bool)) events.Disposable
	OnSlideInNavigation(fn func(navigation map[string]any)) events.Disposable

	FieldLocale(fieldID, locale string) editor.FieldLocaleEvents
	Field(fieldID string) editor.FieldEvents
}

// FieldControl is the single field control a field-editing widget is bound
// to. SetInvalid marks the control's validation state in the host UI.
type FieldControl interface {
	FieldID() string
	Locale() string
	Type() string
	SetInvalid(invalid bool)
}

// IDs is the composite identity block shared with a widget at connect time
type IDs struct {
	Space       string `json:"space"`
	Environment string `json:"environment"`
	User        string `json:"user"`
	Entry       string `json:"entry,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Field       string `json:"field,omitempty"`
	App         string `json:"app,omitempty"`
	Extension   string `json:"extension,omitempty"`
}

// Locales describes the localization set available to a render session
type Locales struct {
	Available []editor.Locale `json:"available"`
	Default   string          `json:"default"`
}

// HostSDK aggregates every capability slice a render session exposes to one
// widget. Entry, ContentType, EditorInterface, and FieldControl are nil for
// locations that do not edit entries or fields.
type HostSDK struct {
	IDs          IDs
	User         editor.User
	Locales      Locales
	Parameters   widget.Parameters
	ContentTypes []editor.ContentType // cached, sent at connect time

	Space     SpaceAPI
	Access    AccessAPI
	Notifier  Notifier
	Navigator Navigator
	Dialogs   Dialogs

	Entry           EntryAPI
	ContentType     *editor.ContentType
	EditorInterface *widget.EditorInterface
	FieldControl    FieldControl

	// CloseDialog is set only for widgets rendered in the dialog location
	CloseDialog func(data any)

	// ReadOnly restricts callSpaceMethod to read methods
	ReadOnly bool
}
