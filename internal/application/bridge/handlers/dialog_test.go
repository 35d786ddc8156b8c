package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
)

type fakeDialogs struct {
	calls         []string
	lastNamespace widget.Namespace
}

func (f *fakeDialogs) call(name string) (any, error) {
	f.calls = append(f.calls, name)
	return map[string]any{"opened": name}, nil
}

func (f *fakeDialogs) Alert(_ context.Context, _ map[string]any) (any, error) {
	return f.call("alert")
}
func (f *fakeDialogs) Confirm(_ context.Context, _ map[string]any) (any, error) {
	return f.call("confirm")
}
func (f *fakeDialogs) Prompt(_ context.Context, _ map[string]any) (any, error) {
	return f.call("prompt")
}
func (f *fakeDialogs) SelectSingleEntry(_ context.Context, _ map[string]any) (any, error) {
	return f.call("selectSingleEntry")
}
func (f *fakeDialogs) SelectMultipleEntries(_ context.Context, _ map[string]any) (any, error) {
	return f.call("selectMultipleEntries")
}
func (f *fakeDialogs) SelectSingleAsset(_ context.Context, _ map[string]any) (any, error) {
	return f.call("selectSingleAsset")
}
func (f *fakeDialogs) SelectMultipleAssets(_ context.Context, _ map[string]any) (any, error) {
	return f.call("selectMultipleAssets")
}
func (f *fakeDialogs) OpenWidgetDialog(_ context.Context, ns widget.Namespace, _ map[string]any) (any, error) {
	f.lastNamespace = ns
	return f.call("openWidgetDialog")
}

func TestOpenDialogSimpleTypes(t *testing.T) {
	for _, dialogType := range []string{"alert", "confirm", "prompt"} {
		dialogs := &fakeDialogs{}
		handler := NewOpenDialog(dialogs)

		_, err := handler(context.Background(), []any{dialogType, map[string]any{"title": "hi"}})
		require.NoError(t, err)
		assert.Equal(t, []string{dialogType}, dialogs.calls)
	}
}

func TestEntitySelectorDispatch(t *testing.T) {
	cases := []struct {
		entityType string
		multiple   bool
		want       string
	}{
		{"Entry", false, "selectSingleEntry"},
		{"Entry", true, "selectMultipleEntries"},
		{"Asset", false, "selectSingleAsset"},
		{"Asset", true, "selectMultipleAssets"},
	}

	for _, tc := range cases {
		dialogs := &fakeDialogs{}
		handler := NewOpenDialog(dialogs)

		_, err := handler(context.Background(), []any{"entitySelector", map[string]any{
			"entityType": tc.entityType,
			"multiple":   tc.multiple,
		}})
		require.NoError(t, err)
		assert.Equal(t, []string{tc.want}, dialogs.calls, "entityType=%s multiple=%v", tc.entityType, tc.multiple)
	}
}

func TestEntitySelectorUnknownEntityType(t *testing.T) {
	handler := NewOpenDialog(&fakeDialogs{})

	_, err := handler(context.Background(), []any{"entitySelector", map[string]any{"entityType": "Space"}})
	assert.Error(t, err)
}

func TestOpenDialogWidgetNamespaces(t *testing.T) {
	dialogs := &fakeDialogs{}
	handler := NewOpenDialog(dialogs)

	_, err := handler(context.Background(), []any{"app", map[string]any{"id": "my-app"}})
	require.NoError(t, err)
	assert.Equal(t, widget.NamespaceApp, dialogs.lastNamespace)

	_, err = handler(context.Background(), []any{"extension", map[string]any{"id": "my-ext"}})
	require.NoError(t, err)
	assert.Equal(t, widget.NamespaceExtension, dialogs.lastNamespace)
}

func TestOpenDialogUnknownType(t *testing.T) {
	handler := NewOpenDialog(&fakeDialogs{})

	_, err := handler(context.Background(), []any{"toast", map[string]any{}})
	assert.Error(t, err)
}

func TestCloseDialogWithoutCallbackIsNoOp(t *testing.T) {
	handler := NewCloseDialog(nil)

	result, err := handler(context.Background(), []any{map[string]any{"picked": true}})
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestCloseDialogInvokesCallback(t *testing.T) {
	var got any
	handler := NewCloseDialog(func(data any) { got = data })

	_, err := handler(context.Background(), []any{map[string]any{"picked": true}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"picked": true}, got)
}
