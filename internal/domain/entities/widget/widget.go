// Package widget provides domain entities for renderable widget descriptors.
// A Ref identifies a widget without describing how to render it; a Widget is
// the fully resolved descriptor built from registry and marketplace data.
package widget

// Namespace identifies which registry a widget reference belongs to
type Namespace string

const (
	NamespaceApp       Namespace = "app"
	NamespaceExtension Namespace = "extension"
	NamespaceBuiltin   Namespace = "builtin"
)

// Ref identifies a widget without yet describing how to render it.
// Transient; never persisted.
type Ref struct {
	Namespace Namespace `json:"namespace"`
	ID        string    `json:"id"`
}

// Key returns the cache key for this reference
func (r Ref) Key() string {
	return string(r.Namespace) + "," + r.ID
}

// HostingType distinguishes URL-hosted widgets from inline HTML widgets
type HostingType string

const (
	HostingSrc    HostingType = "src"    // Value is a URL
	HostingSrcdoc HostingType = "srcdoc" // Value is inline HTML
)

// Hosting describes where the widget's front-end code comes from.
// Value is either a URL or inline HTML, never both.
type Hosting struct {
	Type  HostingType `json:"type"`
	Value string      `json:"value"`
}

// ParameterDefinition describes one configurable parameter, supplied by the
// widget author and read-only to the host.
type ParameterDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Options     []any    `json:"options,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// ParameterDefinitions groups parameter schemas by scope
type ParameterDefinitions struct {
	Instance     []ParameterDefinition `json:"instance"`
	Installation []ParameterDefinition `json:"installation"`
}

// ParameterValues holds the concrete values for installation parameters
type ParameterValues struct {
	Installation map[string]any `json:"installation"`
}

// Parameters bundles definitions and values for a widget
type Parameters struct {
	Definitions ParameterDefinitions `json:"definitions"`
	Values      ParameterValues      `json:"values"`
}

// LocationKind is one of the closed set of rendering slots
type LocationKind string

const (
	LocationEntryField        LocationKind = "entry-field"
	LocationPage              LocationKind = "page"
	LocationEntrySidebar      LocationKind = "entry-sidebar"
	LocationEntryEditor       LocationKind = "entry-editor"
	LocationDialog            LocationKind = "dialog"
	LocationAppConfig         LocationKind = "app-config"
	LocationEntryFieldSidebar LocationKind = "entry-field-sidebar"
)

// Location describes one rendering slot a widget supports; entry-field
// additionally carries the set of field types it is compatible with.
type Location struct {
	Location   LocationKind `json:"location"`
	FieldTypes []string     `json:"fieldTypes,omitempty"`
}

// Widget is a resolved, renderable descriptor built once per (namespace, id)
// pair from registry records and marketplace metadata.
type Widget struct {
	Namespace  Namespace  `json:"namespace"`
	ID         string     `json:"id"`
	Slug       string     `json:"slug"`
	IconURL    string     `json:"iconUrl"`
	Name       string     `json:"name"`
	Hosting    Hosting    `json:"hosting"`
	Parameters Parameters `json:"parameters"`
	Locations  []Location `json:"locations"`
}

// Ref returns the reference identifying this widget
func (w *Widget) Ref() Ref {
	return Ref{Namespace: w.Namespace, ID: w.ID}
}

// HasLocation reports whether the widget supports the given rendering slot
func (w *Widget) HasLocation(kind LocationKind) bool {
	for _, loc := range w.Locations {
		if loc.Location == kind {
			return true
		}
	}
	return false
}

// IsFieldEditing reports whether a location grants field mutation capability
func IsFieldEditing(kind LocationKind) bool {
	return kind == LocationEntryField || kind == LocationEntryFieldSidebar
}

// IsEntryEditing reports whether a location renders inside an entry editor
func IsEntryEditing(kind LocationKind) bool {
	switch kind {
	case LocationEntryField, LocationEntryFieldSidebar, LocationEntrySidebar, LocationEntryEditor:
		return true
	}
	return false
}
