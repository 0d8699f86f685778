package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

// Template names understood by DefaultRenderer.
const (
	TemplateEventTitle       = "event_title"
	TemplateEventDescription = "event_description"
	TemplateBarberNotice     = "barber_notice"
	TemplateEmailSubject     = "email_subject"
	TemplateEmailBody        = "email_body"
)

// BookingDetails is the data every booking text is rendered from.
type BookingDetails struct {
	ShopName      string
	ClientName    string
	WhatsApp      string
	Email         string
	Service       string
	Price         string
	Barber        string
	Note          string
	PaymentStatus string
	Date          string
	Time          string
}

var defaultTemplates = map[string]string{
	TemplateEventTitle: `Reserva: {{.Service}} con {{.Barber}} - {{.ClientName}}`,
	TemplateEventDescription: `Cliente: {{.ClientName}}
WhatsApp: {{.WhatsApp}}
{{- if .Email}}
Email: {{.Email}}
{{- end}}
Servicio: {{.Service}}
Precio: {{.Price}}
Barbero: {{.Barber}}
Nota: {{.Note}}
Pago: {{.PaymentStatus}}`,
	TemplateBarberNotice: `Hola {{.Barber}}, tienes una nueva reserva:
Cliente: {{.ClientName}}
Servicio: {{.Service}}
Hora: {{.Time}}
Fecha: {{.Date}}
WhatsApp: {{.WhatsApp}}`,
	TemplateEmailSubject: `Tu reserva en {{.ShopName}}: {{.Date}} {{.Time}}`,
	TemplateEmailBody: `Hola {{.ClientName}},

Tu reserva está confirmada.
Servicio: {{.Service}} ({{.Price}})
Barbero: {{.Barber}}
Fecha: {{.Date}}
Hora: {{.Time}}

{{.ShopName}}`,
}

// Renderer renders the small set of booking texts. Templates are parsed once
// with strict missing-key semantics.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses the given templates. Names missing from overrides use the
// built-in text.
func NewRenderer(overrides map[string]string) (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(defaultTemplates))}
	for name, text := range defaultTemplates {
		if o, ok := overrides[name]; ok && o != "" {
			text = o
		}
		t, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("notify: parse %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// DefaultRenderer returns a renderer with the built-in texts.
func DefaultRenderer() *Renderer {
	r, err := NewRenderer(nil)
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the named template against data.
func (r *Renderer) Render(name string, data any) (string, error) {
	t, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("notify: unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("notify: execute %s: %w", name, err)
	}
	return buf.String(), nil
}
