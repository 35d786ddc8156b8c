package bridge

import (
	"strings"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/domain/events"
)

// Frame is the sandboxed surface a widget renders into. Production frames
// live in the browser page attached to a render session; the host drives
// them through this interface and learns about (re)loads through OnLoad,
// which fires on the initial load and again after any in-frame reload or
// navigation.
type Frame interface {
	SetSrc(url string)
	SetSrcDoc(html string)
	SetHeight(px int)
	SetSandbox(attributes string)
	OnLoad(fn func()) events.Disposable
}

// baseSandboxAttributes are granted to every widget frame. Same-origin
// access is added only for URL-hosted widgets; inline HTML must never
// share the host origin.
var baseSandboxAttributes = []string{
	"allow-scripts",
	"allow-popups",
	"allow-popups-to-escape-sandbox",
	"allow-forms",
	"allow-downloads",
}

// SandboxAttributes returns the sandbox attribute value for a hosting type
func SandboxAttributes(hosting widget.HostingType) string {
	attrs := baseSandboxAttributes
	if hosting == widget.HostingSrc {
		attrs = append(append([]string{}, attrs...), "allow-same-origin")
	}
	return strings.Join(attrs, " ")
}
