// Package loading resolves widget references into renderable descriptors:
// an HTTP client against the registry API, a marketplace metadata provider,
// and the batching, caching widget loader built on both.
package loading

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/registry"
	"github.com/fieldstack/widgethost-go/pkg/config"
)

// RegistryAPI is the registry surface the widget loader consumes
type RegistryAPI interface {
	FetchExtensions(ctx context.Context, ids []string) ([]registry.Extension, error)
	FetchAppInstallations(ctx context.Context) (*AppInstallationSet, error)
}

// AppInstallationSet is one app_installations response: the installation
// records plus the app definitions they reference, keyed by definition id.
type AppInstallationSet struct {
	Items       []registry.AppInstallation
	Definitions map[string]registry.AppDefinition
}

// RegistryClient talks to the registry HTTP API for one space+environment
type RegistryClient struct {
	baseURL     string
	spaceID     string
	environment string
	token       string
	httpClient  *http.Client
}

// NewRegistryClient builds a client scoped to one space and environment
func NewRegistryClient(baseURL, spaceID, environment, token string) *RegistryClient {
	return &RegistryClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		spaceID:     spaceID,
		environment: environment,
		token:       token,
		httpClient:  &http.Client{Timeout: config.LoaderFetchTimeout},
	}
}

type extensionsResponse struct {
	Items []registry.Extension `json:"items"`
}

type appInstallationsResponse struct {
	Items    []registry.AppInstallation `json:"items"`
	Includes struct {
		AppDefinition []registry.AppDefinition `json:"AppDefinition"`
	} `json:"includes"`
}

// FetchExtensions retrieves the extensions with the given ids in one request
func (c *RegistryClient) FetchExtensions(ctx context.Context, ids []string) ([]registry.Extension, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := url.Values{}
	query.Set("sys.id[in]", strings.Join(ids, ","))
	endpoint := fmt.Sprintf("%s/spaces/%s/environments/%s/extensions?%s",
		c.baseURL, c.spaceID, c.environment, query.Encode())

	var response extensionsResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch extensions: %w", err)
	}
	return response.Items, nil
}

// FetchAppInstallations retrieves every installation in the environment
// together with the definitions they resolve to.
func (c *RegistryClient) FetchAppInstallations(ctx context.Context) (*AppInstallationSet, error) {
	endpoint := fmt.Sprintf("%s/spaces/%s/environments/%s/app_installations",
		c.baseURL, c.spaceID, c.environment)

	var response appInstallationsResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch app installations: %w", err)
	}

	set := &AppInstallationSet{
		Items:       response.Items,
		Definitions: make(map[string]registry.AppDefinition, len(response.Includes.AppDefinition)),
	}
	for _, definition := range response.Includes.AppDefinition {
		set.Definitions[definition.Sys.ID] = definition
	}
	return set, nil
}

func (c *RegistryClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("registry returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
