package loading

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstack/widgethost-go/pkg/config"
)

func catalogProvider(t *testing.T, handler http.HandlerFunc) (*MarketplaceProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewMarketplaceProvider(nil)
	provider.baseURL = server.URL
	return provider, server
}

func TestPrefetchIsMemoizedAfterSuccess(t *testing.T) {
	var calls int32
	provider, _ := catalogProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{
			"items":[{"fields":{"slug":"image-tools","appDefinitionId":"app-a","icon":{"sys":{"id":"asset-1"}}}}],
			"includes":{"Asset":[{"sys":{"id":"asset-1"},"fields":{"file":{"url":"https://images.example.com/a.png"}}}]}
		}`))
	})

	require.NoError(t, provider.Prefetch(context.Background()))
	require.NoError(t, provider.Prefetch(context.Background()))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	assert.Equal(t, "image-tools", provider.GetSlug("app-a"))
	assert.Equal(t, "https://images.example.com/a.png", provider.GetIconURL("app-a"))
}

func TestPrefetchFailureSurfacesAndRetries(t *testing.T) {
	var calls int32
	provider, _ := catalogProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"items":[],"includes":{}}`))
	})

	err := provider.Prefetch(context.Background())
	require.Error(t, err)

	require.NoError(t, provider.Prefetch(context.Background()))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestLookupFallbacksNeverFail(t *testing.T) {
	provider := NewMarketplaceProvider(nil)
	provider.loaded = true

	assert.Equal(t, "unknown-app", provider.GetSlug("unknown-app"))
	assert.Equal(t, config.DefaultAppIconURL, provider.GetIconURL("unknown-app"))
}
