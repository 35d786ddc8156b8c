package loading

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/pkg/config"
)

// MarketplaceProvider is a read-through cache of marketplace listing
// metadata (slug and icon per app definition). The catalog lives in a fixed
// public delivery space; its absence only degrades display metadata, so the
// lookup methods never fail: they fall back to the raw id and the default
// icon.
type MarketplaceProvider struct {
	baseURL    string
	spaceID    string
	token      string
	httpClient *http.Client
	logger     *logging.ChanneledLogger

	mu     sync.Mutex
	loaded bool
	slugs  map[string]string
	icons  map[string]string
}

// NewMarketplaceProvider builds a provider against the configured catalog
func NewMarketplaceProvider(logger *logging.ChanneledLogger) *MarketplaceProvider {
	return &MarketplaceProvider{
		baseURL:    strings.TrimSuffix(config.MarketplaceBaseURL, "/"),
		spaceID:    config.MarketplaceSpaceID,
		token:      config.MarketplaceAccessToken,
		httpClient: &http.Client{Timeout: config.MarketplaceTimeout},
		logger:     logger,
		slugs:      make(map[string]string),
		icons:      make(map[string]string),
	}
}

type catalogResponse struct {
	Items []struct {
		Fields struct {
			Slug            string `json:"slug"`
			AppDefinitionID string `json:"appDefinitionId"`
			Icon            struct {
				Sys struct {
					ID string `json:"id"`
				} `json:"sys"`
			} `json:"icon"`
		} `json:"fields"`
	} `json:"items"`
	Includes struct {
		Asset []struct {
			Sys struct {
				ID string `json:"id"`
			} `json:"sys"`
			Fields struct {
				File struct {
					URL string `json:"url"`
				} `json:"file"`
			} `json:"fields"`
		} `json:"Asset"`
	} `json:"includes"`
}

// Prefetch loads the catalog once. After the first success further calls
// return immediately; a failure is returned to the caller and the next call
// retries.
func (p *MarketplaceProvider) Prefetch(ctx context.Context) error {
	p.mu.Lock()
	if p.loaded {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	endpoint := fmt.Sprintf("%s/spaces/%s/entries?content_type=app&include=2&access_token=%s",
		p.baseURL, p.spaceID, p.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build marketplace request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch marketplace catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("marketplace catalog returned status %d", resp.StatusCode)
	}

	var catalog catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return fmt.Errorf("failed to decode marketplace catalog: %w", err)
	}

	iconsByAsset := make(map[string]string, len(catalog.Includes.Asset))
	for _, asset := range catalog.Includes.Asset {
		iconsByAsset[asset.Sys.ID] = asset.Fields.File.URL
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, item := range catalog.Items {
		appID := item.Fields.AppDefinitionID
		if appID == "" {
			continue
		}
		if item.Fields.Slug != "" {
			p.slugs[appID] = item.Fields.Slug
		}
		if iconURL, ok := iconsByAsset[item.Fields.Icon.Sys.ID]; ok {
			p.icons[appID] = iconURL
		}
	}
	p.loaded = true

	if p.logger != nil {
		p.logger.Marketplace().Info("Marketplace catalog loaded", "listings", len(catalog.Items))
	}
	return nil
}

// GetSlug returns the marketplace slug for an app definition, falling back
// to the definition id for unlisted apps.
func (p *MarketplaceProvider) GetSlug(appDefinitionID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if slug, ok := p.slugs[appDefinitionID]; ok {
		return slug
	}
	return appDefinitionID
}

// GetIconURL returns the marketplace icon for an app definition, falling
// back to the default app icon for unlisted apps.
func (p *MarketplaceProvider) GetIconURL(appDefinitionID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if iconURL, ok := p.icons[appDefinitionID]; ok {
		return iconURL
	}
	return config.DefaultAppIconURL
}
