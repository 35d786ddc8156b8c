// Package editor provides domain entities for the entry-editing surface a
// widget is mounted into: locales, content types, entry identity, and the
// user on whose behalf the host operates.
package editor

// Locale describes one localization the space supports
type Locale struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Default      bool   `json:"default"`
	FallbackCode string `json:"fallbackCode,omitempty"`
	Optional     bool   `json:"optional,omitempty"`
}

// LocaleSettings captures the editor's current locale display state
type LocaleSettings struct {
	Mode    string   `json:"mode"` // "single" or "multi"
	Focused string   `json:"focused,omitempty"`
	Active  []string `json:"active,omitempty"`
}

// ContentTypeField describes one field of a content type
type ContentTypeField struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Localized   bool   `json:"localized"`
	Required    bool   `json:"required"`
	Disabled    bool   `json:"disabled,omitempty"`
	Validations []any  `json:"validations,omitempty"`
}

// ContentType describes the shape of entries a widget may edit
type ContentType struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	DisplayField string             `json:"displayField,omitempty"`
	Fields       []ContentTypeField `json:"fields"`
}

// Field returns the content type field with the given id
func (ct *ContentType) Field(id string) (*ContentTypeField, bool) {
	for i := range ct.Fields {
		if ct.Fields[i].ID == id {
			return &ct.Fields[i], true
		}
	}
	return nil, false
}

// EntrySys carries entry identity and version metadata
type EntrySys struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	ContentTypeID string `json:"contentTypeId"`
	Version       int    `json:"version"`
	PublishedAt   string `json:"publishedAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}

// User identifies the editor-side user a render session belongs to
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
