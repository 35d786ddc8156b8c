package widget

// EditorInterface describes which widgets an editor document references:
// per-field controls, sidebar items, and editor layouts.
type EditorInterface struct {
	ContentTypeID string           `json:"contentTypeId"`
	Controls      []Control        `json:"controls,omitempty"`
	Sidebar       []SidebarItem    `json:"sidebar,omitempty"`
	Editor        *EditorLayout    `json:"editor,omitempty"`
	Editors       []EditorLayout   `json:"editors,omitempty"`
	Settings      map[string]any   `json:"settings,omitempty"`
}

// Control binds a widget to a single field. WidgetNamespace may be empty for
// legacy documents, in which case the namespace is ambiguous and both app and
// extension lookups must be issued.
type Control struct {
	FieldID         string    `json:"fieldId"`
	WidgetNamespace Namespace `json:"widgetNamespace,omitempty"`
	WidgetID        string    `json:"widgetId"`
}

// SidebarItem places a widget in the entry sidebar
type SidebarItem struct {
	WidgetNamespace Namespace `json:"widgetNamespace"`
	WidgetID        string    `json:"widgetId"`
	Disabled        bool      `json:"disabled,omitempty"`
}

// EditorLayout replaces or augments the default entry editor
type EditorLayout struct {
	WidgetNamespace Namespace `json:"widgetNamespace"`
	WidgetID        string    `json:"widgetId"`
	Disabled        bool      `json:"disabled,omitempty"`
}
