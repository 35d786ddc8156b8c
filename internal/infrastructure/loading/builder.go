package loading

import (
	"github.com/fieldstack/widgethost-go/internal/domain/entities/registry"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/pkg/config"
)

// buildFromExtension turns a stored extension record into a renderable
// widget. The hosting kind follows the srcdoc hash: only extensions that
// shipped inline HTML render via srcdoc, everything else loads its src URL.
func buildFromExtension(ext registry.Extension) *widget.Widget {
	hosting := widget.Hosting{Type: widget.HostingSrc, Value: ext.Extension.Src}
	if ext.Extension.SrcdocSha256 != "" {
		hosting = widget.Hosting{Type: widget.HostingSrcdoc, Value: ext.Extension.Srcdoc}
	}

	locations := []widget.Location{
		{Location: widget.LocationEntryField, FieldTypes: ext.Extension.FieldTypes},
		{Location: widget.LocationEntryFieldSidebar, FieldTypes: ext.Extension.FieldTypes},
		{Location: widget.LocationPage},
		{Location: widget.LocationDialog},
	}
	if ext.Extension.Sidebar {
		locations = append(locations, widget.Location{Location: widget.LocationEntrySidebar})
	}

	return &widget.Widget{
		Namespace:  widget.NamespaceExtension,
		ID:         ext.Sys.ID,
		Slug:       ext.Sys.ID,
		IconURL:    config.DefaultExtensionIcon,
		Name:       ext.Extension.Name,
		Hosting:    hosting,
		Parameters: extensionParameters(ext),
		Locations:  locations,
	}
}

func extensionParameters(ext registry.Extension) widget.Parameters {
	params := widget.Parameters{
		Values: widget.ParameterValues{Installation: ext.Parameters},
	}
	if ext.Extension.Parameters != nil {
		params.Definitions = widget.ParameterDefinitions{
			Instance:     parameterDefinitions(ext.Extension.Parameters.Instance),
			Installation: parameterDefinitions(ext.Extension.Parameters.Installation),
		}
	}
	return params
}

// buildFromApp turns an installation plus its definition into a renderable
// widget. Callers guarantee the definition declares a src; a definition
// without one is unrenderable and never reaches here.
func buildFromApp(installation registry.AppInstallation, definition registry.AppDefinition, marketplace *MarketplaceProvider) *widget.Widget {
	locations := make([]widget.Location, 0, len(definition.Locations))
	for _, loc := range definition.Locations {
		locations = append(locations, widget.Location{
			Location:   widget.LocationKind(loc.Location),
			FieldTypes: loc.FieldTypes,
		})
	}

	return &widget.Widget{
		Namespace: widget.NamespaceApp,
		ID:        definition.Sys.ID,
		Slug:      marketplace.GetSlug(definition.Sys.ID),
		IconURL:   marketplace.GetIconURL(definition.Sys.ID),
		Name:      definition.Name,
		Hosting:   widget.Hosting{Type: widget.HostingSrc, Value: definition.Src},
		Parameters: widget.Parameters{
			Definitions: widget.ParameterDefinitions{
				Instance: parameterDefinitions(definition.Instance),
			},
			Values: widget.ParameterValues{Installation: installation.Parameters},
		},
		Locations: locations,
	}
}

// parameterDefinitions maps raw schema maps onto typed definitions
func parameterDefinitions(raw []map[string]any) []widget.ParameterDefinition {
	if len(raw) == 0 {
		return nil
	}
	defs := make([]widget.ParameterDefinition, 0, len(raw))
	for _, item := range raw {
		def := widget.ParameterDefinition{
			ID:      asString(item["id"]),
			Name:    asString(item["name"]),
			Type:    asString(item["type"]),
			Default: item["default"],
		}
		def.Description = asString(item["description"])
		if required, ok := item["required"].(bool); ok {
			def.Required = required
		}
		if options, ok := item["options"].([]any); ok {
			def.Options = options
		}
		if labels, ok := item["labels"].([]any); ok {
			for _, label := range labels {
				def.Labels = append(def.Labels, asString(label))
			}
		}
		defs = append(defs, def)
	}
	return defs
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
