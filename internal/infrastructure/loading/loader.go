package loading

import (
	"context"
	"sync"
	"time"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/registry"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/pkg/config"
)

// WidgetLoader resolves widget references against the registry with request
// coalescing: every reference requested inside one batching window rides a
// single extensions fetch and a single app_installations fetch. Results are
// cached per reference, including negative ones, until evicted. One loader
// serves one space+environment and dies with it.
type WidgetLoader struct {
	spaceID     string
	client      RegistryAPI
	marketplace *MarketplaceProvider
	logger      *logging.ChanneledLogger
	perf        *performance.Tracker
	batchWindow time.Duration

	mu      sync.Mutex
	cache   map[string]*loadEntry
	pending []*loadEntry
	timer   *time.Timer
}

// loadEntry is one cache slot. ready closes when resolution finishes;
// widget stays nil for references that could not be resolved. evicted marks
// an entry whose resolution was outdated by a registry write while the batch
// was in flight; it is dropped from the cache as the batch completes.
type loadEntry struct {
	ref     widget.Ref
	ready   chan struct{}
	widget  *widget.Widget
	evicted bool
}

// NewWidgetLoader builds a loader for one space+environment
func NewWidgetLoader(spaceID string, client RegistryAPI, marketplace *MarketplaceProvider, logger *logging.ChanneledLogger, perf *performance.Tracker) *WidgetLoader {
	return &WidgetLoader{
		spaceID:     spaceID,
		client:      client,
		marketplace: marketplace,
		logger:      logger,
		perf:        perf,
		batchWindow: config.LoaderBatchWindow,
		cache:       make(map[string]*loadEntry),
	}
}

// GetOne resolves a single reference. Returns nil without error when the
// reference does not resolve to a renderable widget.
func (l *WidgetLoader) GetOne(ctx context.Context, ref widget.Ref) (*widget.Widget, error) {
	entry := l.enqueue(ref)

	select {
	case <-entry.ready:
		return entry.widget, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetMultiple resolves many references, dropping the unresolvable ones.
// All references join the same batch.
func (l *WidgetLoader) GetMultiple(ctx context.Context, refs []widget.Ref) ([]*widget.Widget, error) {
	entries := make([]*loadEntry, len(refs))
	for i, ref := range refs {
		entries[i] = l.enqueue(ref)
	}

	widgets := make([]*widget.Widget, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		select {
		case <-entry.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if entry.widget != nil && !seen[entry.ref.Key()] {
			seen[entry.ref.Key()] = true
			widgets = append(widgets, entry.widget)
		}
	}
	return widgets, nil
}

// GetWithEditorInterface resolves every widget an editor interface document
// references.
func (l *WidgetLoader) GetWithEditorInterface(ctx context.Context, ei *widget.EditorInterface) ([]*widget.Widget, error) {
	return l.GetMultiple(ctx, RefsFromEditorInterface(ei))
}

// WarmUp preloads one reference into the cache
func (l *WidgetLoader) WarmUp(ctx context.Context, ref widget.Ref) error {
	_, err := l.GetOne(ctx, ref)
	return err
}

// WarmUpWithEditorInterface preloads every widget an editor interface
// references, so the editor can render without per-widget round trips.
func (l *WidgetLoader) WarmUpWithEditorInterface(ctx context.Context, ei *widget.EditorInterface) error {
	_, err := l.GetWithEditorInterface(ctx, ei)
	return err
}

// Evict removes a single reference from the cache. The next request for it
// goes back to the registry. An entry still resolving keeps serving its
// in-flight waiters but is dropped the moment the batch completes.
func (l *WidgetLoader) Evict(ref widget.Ref) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.cache[ref.Key()]
	if !ok {
		return
	}
	if isResolved(entry) {
		delete(l.cache, ref.Key())
		return
	}
	entry.evicted = true
}

// Purge drops the entire cache. Entries still resolving are dropped as their
// batch completes.
func (l *WidgetLoader) Purge() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, entry := range l.cache {
		if isResolved(entry) {
			delete(l.cache, key)
			continue
		}
		entry.evicted = true
	}
}

func isResolved(entry *loadEntry) bool {
	select {
	case <-entry.ready:
		return true
	default:
		return false
	}
}

// enqueue returns the cache entry for a reference, creating it and arming
// the batch timer when the reference is new. Concurrent requests for one
// key share a single entry and therefore a single upstream resolution.
func (l *WidgetLoader) enqueue(ref widget.Ref) *loadEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.cache[ref.Key()]; ok {
		return entry
	}

	entry := &loadEntry{ref: ref, ready: make(chan struct{})}
	l.cache[ref.Key()] = entry
	l.pending = append(l.pending, entry)

	if l.timer == nil {
		l.timer = time.AfterFunc(l.batchWindow, l.flush)
	}
	return entry
}

// flush resolves everything collected during the batching window with at
// most two registry calls plus the one-time marketplace prefetch.
func (l *WidgetLoader) flush() {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.timer = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.LoaderFetchTimeout)
	defer cancel()

	var marker *performance.Marker
	if l.perf != nil {
		marker = l.perf.StartOperation("widget_batch_fetch", l.spaceID)
		defer marker.Complete()
	}

	if err := l.marketplace.Prefetch(ctx); err != nil && l.logger != nil {
		// Display metadata only; resolution proceeds with default slugs
		// and icons.
		l.logger.Loader().Warn("Marketplace prefetch failed", "spaceId", l.spaceID, "error", err)
	}

	var extensionBatch, appBatch, unknownBatch []*loadEntry
	for _, entry := range batch {
		switch entry.ref.Namespace {
		case widget.NamespaceExtension:
			extensionBatch = append(extensionBatch, entry)
		case widget.NamespaceApp:
			appBatch = append(appBatch, entry)
		default:
			unknownBatch = append(unknownBatch, entry)
		}
	}
	l.complete(unknownBatch)

	l.resolveExtensions(ctx, extensionBatch)
	l.resolveApps(ctx, appBatch)

	if marker != nil {
		marker.AddMetadata("batch_size", len(batch))
		marker.SetSuccess(true)
	}
	if l.logger != nil {
		l.logger.Loader().Debug("Widget batch resolved", "spaceId", l.spaceID, "batchSize", len(batch))
	}
}

func (l *WidgetLoader) resolveExtensions(ctx context.Context, entries []*loadEntry) {
	if len(entries) == 0 {
		return
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ref.ID)
	}

	extensions, err := l.client.FetchExtensions(ctx, ids)
	if err != nil {
		if l.logger != nil {
			l.logger.Loader().Error("Extension fetch failed", "spaceId", l.spaceID, "error", err)
		}
		l.failBatch(entries)
		return
	}

	byID := make(map[string]registry.Extension, len(extensions))
	for _, ext := range extensions {
		byID[ext.Sys.ID] = ext
	}

	for _, entry := range entries {
		if ext, ok := byID[entry.ref.ID]; ok {
			entry.widget = buildFromExtension(ext)
		}
	}
	l.complete(entries)
}

func (l *WidgetLoader) resolveApps(ctx context.Context, entries []*loadEntry) {
	if len(entries) == 0 {
		return
	}

	set, err := l.client.FetchAppInstallations(ctx)
	if err != nil {
		if l.logger != nil {
			l.logger.Loader().Error("App installation fetch failed", "spaceId", l.spaceID, "error", err)
		}
		l.failBatch(entries)
		return
	}

	installed := make(map[string]registry.AppInstallation, len(set.Items))
	for _, installation := range set.Items {
		installed[installation.AppDefinition.ID] = installation
	}

	for _, entry := range entries {
		installation, isInstalled := installed[entry.ref.ID]
		definition, hasDefinition := set.Definitions[entry.ref.ID]
		// An app renders only when installed, defined, and carrying code.
		if isInstalled && hasDefinition && definition.Src != "" {
			entry.widget = buildFromApp(installation, definition, l.marketplace)
		}
	}
	l.complete(entries)
}

// complete publishes a resolved batch. Entries evicted while the batch was
// in flight leave the cache before any waiter is released, so the result is
// delivered once and never served again.
func (l *WidgetLoader) complete(entries []*loadEntry) {
	l.mu.Lock()
	for _, entry := range entries {
		if entry.evicted && l.cache[entry.ref.Key()] == entry {
			delete(l.cache, entry.ref.Key())
		}
	}
	l.mu.Unlock()

	for _, entry := range entries {
		close(entry.ready)
	}
}

// failBatch completes entries unresolved and removes them from the cache so
// a later request retries instead of pinning the failure.
func (l *WidgetLoader) failBatch(entries []*loadEntry) {
	l.mu.Lock()
	for _, entry := range entries {
		if l.cache[entry.ref.Key()] == entry {
			delete(l.cache, entry.ref.Key())
		}
	}
	l.mu.Unlock()

	for _, entry := range entries {
		close(entry.ready)
	}
}

// RefsFromEditorInterface collects every widget reference an editor
// interface document names: sidebar items, the main editor, the editor
// list, and field controls. A control with no explicit namespace is
// ambiguous between apps and extensions, so both references are returned
// and the unresolvable one drops out during loading.
func RefsFromEditorInterface(ei *widget.EditorInterface) []widget.Ref {
	if ei == nil {
		return nil
	}

	var refs []widget.Ref
	add := func(namespace widget.Namespace, id string) {
		if id != "" {
			refs = append(refs, widget.Ref{Namespace: namespace, ID: id})
		}
	}

	for _, item := range ei.Sidebar {
		add(item.WidgetNamespace, item.WidgetID)
	}
	if ei.Editor != nil {
		add(ei.Editor.WidgetNamespace, ei.Editor.WidgetID)
	}
	for _, layout := range ei.Editors {
		add(layout.WidgetNamespace, layout.WidgetID)
	}
	for _, control := range ei.Controls {
		if control.WidgetID == "" {
			continue
		}
		if control.WidgetNamespace != "" {
			add(control.WidgetNamespace, control.WidgetID)
			continue
		}
		add(widget.NamespaceApp, control.WidgetID)
		add(widget.NamespaceExtension, control.WidgetID)
	}
	return refs
}
