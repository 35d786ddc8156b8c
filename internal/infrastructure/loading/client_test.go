package loading

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchExtensionsQueryAndAuth(t *testing.T) {
	var gotPath, gotFilter, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFilter = r.URL.Query().Get("sys.id[in]")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"sys":{"id":"ext-a"},"extension":{"name":"A","src":"https://a.example.com"}}]}`))
	}))
	defer server.Close()

	client := NewRegistryClient(server.URL, "space-1", "master", "token-123")
	extensions, err := client.FetchExtensions(context.Background(), []string{"ext-a", "ext-b"})
	require.NoError(t, err)

	assert.Equal(t, "/spaces/space-1/environments/master/extensions", gotPath)
	assert.Equal(t, "ext-a,ext-b", gotFilter)
	assert.Equal(t, "Bearer token-123", gotAuth)
	require.Len(t, extensions, 1)
	assert.Equal(t, "ext-a", extensions[0].Sys.ID)
	assert.Equal(t, "A", extensions[0].Extension.Name)
}

func TestFetchExtensionsEmptyIDsSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewRegistryClient(server.URL, "space-1", "master", "")
	extensions, err := client.FetchExtensions(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, extensions)
	assert.False(t, called)
}

func TestFetchAppInstallationsIndexesDefinitions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spaces/space-1/environments/master/app_installations", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items":[{"sys":{"id":"i-1"},"appDefinition":{"id":"app-a"}}],
			"includes":{"AppDefinition":[{"sys":{"id":"app-a"},"name":"App A","src":"https://apps.example.com/a"}]}
		}`))
	}))
	defer server.Close()

	client := NewRegistryClient(server.URL, "space-1", "master", "")
	set, err := client.FetchAppInstallations(context.Background())
	require.NoError(t, err)

	require.Len(t, set.Items, 1)
	assert.Equal(t, "app-a", set.Items[0].AppDefinition.ID)
	definition, ok := set.Definitions["app-a"]
	require.True(t, ok)
	assert.Equal(t, "https://apps.example.com/a", definition.Src)
}

func TestFetchErrorCarriesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"nope"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewRegistryClient(server.URL, "space-1", "master", "bad-token")
	_, err := client.FetchExtensions(context.Background(), []string{"ext-a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
