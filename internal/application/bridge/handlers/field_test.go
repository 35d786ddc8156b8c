package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/editor"
)

type fakeFieldControl struct {
	fieldID string
	locale  string
	invalid *bool
}

func (f *fakeFieldControl) FieldID() string { return f.fieldID }
func (f *fakeFieldControl) Locale() string  { return f.locale }
func (f *fakeFieldControl) Type() string    { return "Symbol" }
func (f *fakeFieldControl) SetInvalid(invalid bool) {
	f.invalid = &invalid
}

func TestSetValueWritesThroughEntry(t *testing.T) {
	doc := editor.NewDocument(editor.EntrySys{ID: "entry-1", Version: 1}, map[string]map[string]any{
		"title": {"en-US": "old"},
	})
	handler := NewSetValue(doc)

	result, err := handler(context.Background(), []any{"title", "en-US", "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", result)
	assert.Equal(t, "new", doc.Fields()["title"]["en-US"])
}

func TestRemoveValueDeletesLocaleValue(t *testing.T) {
	doc := editor.NewDocument(editor.EntrySys{ID: "entry-1", Version: 1}, map[string]map[string]any{
		"title": {"en-US": "old", "de-DE": "alt"},
	})
	handler := NewRemoveValue(doc)

	_, err := handler(context.Background(), []any{"title", "en-US"})
	require.NoError(t, err)
	_, exists := doc.Fields()["title"]["en-US"]
	assert.False(t, exists)
	assert.Equal(t, "alt", doc.Fields()["title"]["de-DE"])
}

func TestSetInvalidOnlyForBoundLocale(t *testing.T) {
	control := &fakeFieldControl{fieldID: "title", locale: "en-US"}
	handler := NewSetInvalid(control)

	_, err := handler(context.Background(), []any{true, "de-DE"})
	require.NoError(t, err)
	assert.Nil(t, control.invalid, "a foreign locale must not touch the control")

	_, err = handler(context.Background(), []any{true, "en-US"})
	require.NoError(t, err)
	require.NotNil(t, control.invalid)
	assert.True(t, *control.invalid)
}
