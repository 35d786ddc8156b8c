// Package registry provides domain entities for the extension and app
// installation records the widget loader resolves references against.
package registry

// Sys carries record identity metadata
type Sys struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ExtensionData is the author-supplied body of an extension record.
// Src and Srcdoc are mutually exclusive; SrcdocSha256 is set iff the
// extension ships inline HTML.
type ExtensionData struct {
	Name         string                `json:"name"`
	Src          string                `json:"src,omitempty"`
	Srcdoc       string                `json:"srcdoc,omitempty"`
	SrcdocSha256 string                `json:"srcdocSha256,omitempty"`
	FieldTypes   []string              `json:"fieldTypes,omitempty"`
	Sidebar      bool                  `json:"sidebar,omitempty"`
	Parameters   *ExtensionParameters  `json:"parameters,omitempty"`
}

// ExtensionParameters holds the parameter schema declared by an extension
type ExtensionParameters struct {
	Instance     []map[string]any `json:"instance,omitempty"`
	Installation []map[string]any `json:"installation,omitempty"`
}

// Extension is a stored user extension record
type Extension struct {
	Sys        Sys            `json:"sys"`
	Extension  ExtensionData  `json:"extension"`
	Parameters map[string]any `json:"parameters,omitempty"` // installation values
}

// AppDefinition describes an app's code location and supported slots
type AppDefinition struct {
	Sys       Sys              `json:"sys"`
	Name      string           `json:"name"`
	Src       string           `json:"src,omitempty"`
	Locations []AppLocation    `json:"locations,omitempty"`
	Instance  []map[string]any `json:"instanceParameters,omitempty"`
}

// AppLocation mirrors widget.Location on the definition record
type AppLocation struct {
	Location   string   `json:"location"`
	FieldTypes []string `json:"fieldTypes,omitempty"`
}

// AppInstallation records that an app definition is installed into a space
type AppInstallation struct {
	Sys           Sys            `json:"sys"`
	AppDefinition Sys            `json:"appDefinition"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}
