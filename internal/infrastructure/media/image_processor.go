// Package media provides icon processing for marketplace app icons
package media

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/fieldstack/widgethost-go/pkg/config"
)

// IconCache downloads marketplace icons once and serves downscaled webp
// variants from local disk.
type IconCache struct {
	basePath   string // {spaceDir}/icons
	httpClient *http.Client
}

// NewIconCache creates an icon cache rooted at basePath
func NewIconCache(basePath string) *IconCache {
	return &IconCache{
		basePath:   basePath,
		httpClient: &http.Client{Timeout: config.MarketplaceTimeout},
	}
}

// Thumbnail returns the local path of a cached webp thumbnail for the
// given icon URL, fetching and converting on first use. The key is the
// app definition id the icon belongs to.
func (c *IconCache) Thumbnail(key, iconURL string) (string, error) {
	if key == "" || iconURL == "" {
		return "", fmt.Errorf("icon key and url are required")
	}

	thumbPath := filepath.Join(c.basePath, fmt.Sprintf("%s_%dpx.webp", key, config.IconThumbnailSize))
	if _, err := os.Stat(thumbPath); err == nil {
		return thumbPath, nil
	}

	if err := os.MkdirAll(c.basePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create icon cache directory: %w", err)
	}

	original, err := c.download(iconURL)
	if err != nil {
		return "", err
	}
	defer os.Remove(original)

	if err := c.generateThumbnail(original, thumbPath); err != nil {
		return "", err
	}
	return thumbPath, nil
}

// Evict removes all cached variants for a key
func (c *IconCache) Evict(key string) {
	matches, err := filepath.Glob(filepath.Join(c.basePath, key+"_*px.webp"))
	if err != nil {
		return
	}
	for _, path := range matches {
		os.Remove(path)
	}
}

// download fetches the icon to a temp file next to the cache
func (c *IconCache) download(iconURL string) (string, error) {
	if !strings.HasPrefix(iconURL, "http://") && !strings.HasPrefix(iconURL, "https://") {
		return "", fmt.Errorf("unsupported icon url scheme: %s", iconURL)
	}

	resp, err := c.httpClient.Get(iconURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch icon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("icon fetch returned status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(c.basePath, fmt.Sprintf("icon-%d-*", time.Now().UnixMilli()))
	if err != nil {
		return "", fmt.Errorf("failed to create temp icon file: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, io.LimitReader(resp.Body, 10<<20)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write icon file: %w", err)
	}
	return tmp.Name(), nil
}

// generateThumbnail resizes the original and encodes it as webp
func (c *IconCache) generateThumbnail(originalPath, thumbPath string) error {
	originalFile, err := os.Open(originalPath)
	if err != nil {
		return fmt.Errorf("failed to open original icon: %w", err)
	}
	defer originalFile.Close()

	img, err := imaging.Decode(originalFile)
	if err != nil {
		return fmt.Errorf("failed to decode icon: %w", err)
	}

	resized := imaging.Fit(img, config.IconThumbnailSize, config.IconThumbnailSize, imaging.Lanczos)
	if err := webp.Save(thumbPath, resized, &webp.Options{Quality: 85}); err != nil {
		os.Remove(thumbPath)
		return fmt.Errorf("failed to save webp thumbnail: %w", err)
	}
	return nil
}
