package notify

import (
	"net/url"
	"strings"
)

// DefaultWhatsAppBaseURL is the click-to-chat host.
const DefaultWhatsAppBaseURL = "https://wa.me"

// WhatsAppLinker builds click-to-chat deep links.
type WhatsAppLinker struct {
	BaseURL     string
	CountryCode string
}

// Link returns <base>/<countryCode><phone>?text=<message>. The phone is used
// exactly as the client typed it, trimmed of surrounding whitespace.
func (l WhatsAppLinker) Link(phone, message string) string {
	base := strings.TrimRight(strings.TrimSpace(l.BaseURL), "/")
	if base == "" {
		base = DefaultWhatsAppBaseURL
	}
	return base + "/" + l.CountryCode + strings.TrimSpace(phone) + "?text=" + encodeText(message)
}

// encodeText percent-encodes message with spaces as %20, which chat clients
// render more reliably than '+'.
func encodeText(message string) string {
	return strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}
