package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/fieldstack/widgethost-go/internal/domain/events"
)

// Document is the host-side entry document a render session edits. It keeps
// the localized field values and fans out change signals to subscribers;
// every mutation goes through SetValue/RemoveValue so subscribers stay
// consistent with the stored values.
type Document struct {
	mu     sync.RWMutex
	sys    EntrySys
	fields map[string]map[string]any // fieldID -> locale -> value

	sysChanged                *events.Emitter
	localeSettingsChanged     *events.Emitter
	showDisabledFieldsChanged *events.Emitter
	slideInNavigation         *events.Emitter

	fieldLocale map[string]*fieldLocaleSignals // "fieldID,locale"
	field       map[string]*fieldSignals
}

// NewDocument creates a document for the given entry
func NewDocument(sys EntrySys, fields map[string]map[string]any) *Document {
	if fields == nil {
		fields = make(map[string]map[string]any)
	}
	return &Document{
		sys:                       sys,
		fields:                    fields,
		sysChanged:                events.NewEmitter(),
		localeSettingsChanged:     events.NewEmitter(),
		showDisabledFieldsChanged: events.NewEmitter(),
		slideInNavigation:         events.NewEmitter(),
		fieldLocale:               make(map[string]*fieldLocaleSignals),
		field:                     make(map[string]*fieldSignals),
	}
}

type fieldLocaleSignals struct {
	valueChanged        *events.Emitter
	isDisabledChanged   *events.Emitter
	schemaErrorsChanged *events.Emitter
}

type fieldSignals struct {
	isDisabledChanged   *events.Emitter
	schemaErrorsChanged *events.Emitter
}

// Sys returns the entry's identity block
func (d *Document) Sys() EntrySys {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sys
}

// Fields returns a copy of the localized field values
func (d *Document) Fields() map[string]map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]map[string]any, len(d.fields))
	for fieldID, locales := range d.fields {
		values := make(map[string]any, len(locales))
		for locale, value := range locales {
			values[locale] = value
		}
		out[fieldID] = values
	}
	return out
}

// SetValue stores a field value and notifies field-locale subscribers.
// Returns the stored value.
func (d *Document) SetValue(_ context.Context, fieldID, locale string, value any) (any, error) {
	if fieldID == "" || locale == "" {
		return nil, fmt.Errorf("setValue requires a field id and locale")
	}

	d.mu.Lock()
	if d.fields[fieldID] == nil {
		d.fields[fieldID] = make(map[string]any)
	}
	d.fields[fieldID][locale] = value
	d.sys.Version++
	sys := d.sys
	d.mu.Unlock()

	d.signalsFor(fieldID, locale).valueChanged.Emit(value)
	d.sysChanged.Emit(sys)
	return value, nil
}

// RemoveValue deletes a field value and notifies field-locale subscribers
func (d *Document) RemoveValue(_ context.Context, fieldID, locale string) error {
	if fieldID == "" || locale == "" {
		return fmt.Errorf("removeValue requires a field id and locale")
	}

	d.mu.Lock()
	if locales, ok := d.fields[fieldID]; ok {
		delete(locales, locale)
	}
	d.sys.Version++
	sys := d.sys
	d.mu.Unlock()

	d.signalsFor(fieldID, locale).valueChanged.Emit(nil)
	d.sysChanged.Emit(sys)
	return nil
}

// UpdateSys replaces the sys block and notifies subscribers
func (d *Document) UpdateSys(sys EntrySys) {
	d.mu.Lock()
	d.sys = sys
	d.mu.Unlock()
	d.sysChanged.Emit(sys)
}

// SetLocaleSettings notifies subscribers of a locale display change
func (d *Document) SetLocaleSettings(settings LocaleSettings) {
	d.localeSettingsChanged.Emit(settings)
}

// SetShowDisabledFields notifies subscribers of a disabled-fields toggle
func (d *Document) SetShowDisabledFields(show bool) {
	d.showDisabledFieldsChanged.Emit(show)
}

// NavigateSlideIn notifies subscribers of a slide-in editor navigation
func (d *Document) NavigateSlideIn(navigation map[string]any) {
	d.slideInNavigation.Emit(navigation)
}

// SetFieldDisabled notifies both the field-locale and legacy field signals
func (d *Document) SetFieldDisabled(fieldID, locale string, disabled bool) {
	d.signalsFor(fieldID, locale).isDisabledChanged.Emit(disabled)
	d.fieldSignalsFor(fieldID).isDisabledChanged.Emit(disabled)
}

// SetSchemaErrors notifies both the field-locale and legacy field signals
func (d *Document) SetSchemaErrors(fieldID, locale string, errs []any) {
	d.signalsFor(fieldID, locale).schemaErrorsChanged.Emit(errs)
	d.fieldSignalsFor(fieldID).schemaErrorsChanged.Emit(errs)
}

func (d *Document) OnSysChanged(fn func(sys EntrySys)) events.Disposable {
	return d.sysChanged.Subscribe(func(payload any) {
		fn(payload.(EntrySys))
	})
}

func (d *Document) OnLocaleSettingsChanged(fn func(settings LocaleSettings)) events.Disposable {
	return d.localeSettingsChanged.Subscribe(func(payload any) {
		fn(payload.(LocaleSettings))
	})
}

func (d *Document) OnShowDisabledFieldsChanged(fn func(show bool)) events.Disposable {
	return d.showDisabledFieldsChanged.Subscribe(func(payload any) {
		fn(payload.(bool))
	})
}

func (d *Document) OnSlideInNavigation(fn func(navigation map[string]any)) events.Disposable {
	return d.slideInNavigation.Subscribe(func(payload any) {
		fn(payload.(map[string]any))
	})
}

// FieldLocaleEvents exposes the change signals for a single field+locale pair
type FieldLocaleEvents interface {
	OnValueChanged(fn func(value any)) events.Disposable
	OnIsDisabledChanged(fn func(disabled bool)) events.Disposable
	OnSchemaErrorsChanged(fn func(errors []any)) events.Disposable
}

// FieldEvents exposes the legacy field-scoped change signals kept for
// backward compatibility with older widget SDKs
type FieldEvents interface {
	OnIsDisabledChanged(fn func(disabled bool)) events.Disposable
	OnSchemaErrorsChanged(fn func(errors []any)) events.Disposable
}

// FieldLocale returns the change signals for one field+locale pair
func (d *Document) FieldLocale(fieldID, locale string) FieldLocaleEvents {
	return &FieldLocaleHandle{signals: d.signalsFor(fieldID, locale)}
}

// Field returns the legacy field-scoped change signals
func (d *Document) Field(fieldID string) FieldEvents {
	return &FieldHandle{signals: d.fieldSignalsFor(fieldID)}
}

func (d *Document) signalsFor(fieldID, locale string) *fieldLocaleSignals {
	key := fieldID + "," + locale
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.fieldLocale[key]; ok {
		return s
	}
	s := &fieldLocaleSignals{
		valueChanged:        events.NewEmitter(),
		isDisabledChanged:   events.NewEmitter(),
		schemaErrorsChanged: events.NewEmitter(),
	}
	d.fieldLocale[key] = s
	return s
}

func (d *Document) fieldSignalsFor(fieldID string) *fieldSignals {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.field[fieldID]; ok {
		return s
	}
	s := &fieldSignals{
		isDisabledChanged:   events.NewEmitter(),
		schemaErrorsChanged: events.NewEmitter(),
	}
	d.field[fieldID] = s
	return s
}

// FieldLocaleHandle adapts a field-locale signal set to the subscription API
type FieldLocaleHandle struct {
	signals *fieldLocaleSignals
}

func (h *FieldLocaleHandle) OnValueChanged(fn func(value any)) events.Disposable {
	return h.signals.valueChanged.Subscribe(func(payload any) { fn(payload) })
}

func (h *FieldLocaleHandle) OnIsDisabledChanged(fn func(disabled bool)) events.Disposable {
	return h.signals.isDisabledChanged.Subscribe(func(payload any) { fn(payload.(bool)) })
}

func (h *FieldLocaleHandle) OnSchemaErrorsChanged(fn func(errors []any)) events.Disposable {
	return h.signals.schemaErrorsChanged.Subscribe(func(payload any) { fn(payload.([]any)) })
}

// FieldHandle adapts the legacy field signal set to the subscription API
type FieldHandle struct {
	signals *fieldSignals
}

func (h *FieldHandle) OnIsDisabledChanged(fn func(disabled bool)) events.Disposable {
	return h.signals.isDisabledChanged.Subscribe(func(payload any) { fn(payload.(bool)) })
}

func (h *FieldHandle) OnSchemaErrorsChanged(fn func(errors []any)) events.Disposable {
	return h.signals.schemaErrorsChanged.Subscribe(func(payload any) { fn(payload.([]any)) })
}
