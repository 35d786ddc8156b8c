package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

type fakeSpaceAPI struct {
	calls   []string
	lastArg any
	err     error
}

func (f *fakeSpaceAPI) record(name string, arg any) (map[string]any, error) {
	f.calls = append(f.calls, name)
	f.lastArg = arg
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"sys": map[string]any{"id": "result"}}, nil
}

func (f *fakeSpaceAPI) GetEntry(_ context.Context, id string) (map[string]any, error) {
	return f.record("getEntry", id)
}
func (f *fakeSpaceAPI) GetEntries(_ context.Context, q map[string]any) (map[string]any, error) {
	return f.record("getEntries", q)
}
func (f *fakeSpaceAPI) GetAsset(_ context.Context, id string) (map[string]any, error) {
	return f.record("getAsset", id)
}
func (f *fakeSpaceAPI) GetAssets(_ context.Context, q map[string]any) (map[string]any, error) {
	return f.record("getAssets", q)
}
func (f *fakeSpaceAPI) GetContentType(_ context.Context, id string) (map[string]any, error) {
	return f.record("getContentType", id)
}
func (f *fakeSpaceAPI) GetContentTypes(_ context.Context) (map[string]any, error) {
	return f.record("getContentTypes", nil)
}
func (f *fakeSpaceAPI) GetEditorInterface(_ context.Context, id string) (map[string]any, error) {
	return f.record("getEditorInterface", id)
}
func (f *fakeSpaceAPI) CreateEntry(_ context.Context, d map[string]any) (map[string]any, error) {
	return f.record("createEntry", d)
}
func (f *fakeSpaceAPI) UpdateEntry(_ context.Context, d map[string]any) (map[string]any, error) {
	return f.record("updateEntry", d)
}
func (f *fakeSpaceAPI) DeleteEntry(_ context.Context, d map[string]any) (map[string]any, error) {
	return f.record("deleteEntry", d)
}
func (f *fakeSpaceAPI) PublishEntry(_ context.Context, d map[string]any) (map[string]any, error) {
	return f.record("publishEntry", d)
}
func (f *fakeSpaceAPI) UnpublishEntry(_ context.Context, d map[string]any) (map[string]any, error) {
	return f.record("unpublishEntry", d)
}
func (f *fakeSpaceAPI) CreateAsset(_ context.Context, d map[string]any) (map[string]any, error) {
	return f.record("createAsset", d)
}
func (f *fakeSpaceAPI) UpdateAsset(_ context.Context, d map[string]any) (map[string]any, error) {
	return f.record("updateAsset", d)
}
func (f *fakeSpaceAPI) DeleteAsset(_ context.Context, d map[string]any) (map[string]any, error) {
	return f.record("deleteAsset", d)
}

func TestCallSpaceMethodDispatchesAllowedMethod(t *testing.T) {
	api := &fakeSpaceAPI{}
	handler := NewCallSpaceMethod(api, false)

	result, err := handler(context.Background(), []any{"getEntry", "entry-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"getEntry"}, api.calls)
	assert.Equal(t, "entry-1", api.lastArg)
	assert.NotNil(t, result)
}

func TestCallSpaceMethodUnknownMethodIsRangeError(t *testing.T) {
	handler := NewCallSpaceMethod(&fakeSpaceAPI{}, false)

	_, err := handler(context.Background(), []any{"deleteSpace"})
	require.Error(t, err)

	chErr, ok := err.(*messaging.ChannelError)
	require.True(t, ok)
	assert.Equal(t, messaging.CodeRangeError, chErr.Code)
}

func TestCallSpaceMethodReadOnlyRejectsMutations(t *testing.T) {
	api := &fakeSpaceAPI{}
	handler := NewCallSpaceMethod(api, true)

	_, err := handler(context.Background(), []any{"createEntry", map[string]any{}})
	require.Error(t, err)
	assert.Empty(t, api.calls)

	_, err = handler(context.Background(), []any{"getEntry", "entry-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"getEntry"}, api.calls)
}

func TestCallSpaceMethodWrapsAPIFailure(t *testing.T) {
	api := &fakeSpaceAPI{err: &services.APIError{Code: 422, Body: map[string]any{"message": "validation failed"}}}
	handler := NewCallSpaceMethod(api, false)

	_, err := handler(context.Background(), []any{"createEntry", map[string]any{"fields": map[string]any{}}})
	require.Error(t, err)

	chErr, ok := err.(*messaging.ChannelError)
	require.True(t, ok)
	assert.Equal(t, messaging.CodeError, chErr.Code)
	data, ok := chErr.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 422, data["code"])
	assert.Equal(t, map[string]any{"message": "validation failed"}, data["body"])
}
