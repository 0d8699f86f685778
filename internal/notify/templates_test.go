package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDetails() BookingDetails {
	return BookingDetails{
		ShopName:      "Seven Barber Club",
		ClientName:    "Juan",
		WhatsApp:      "0991234567",
		Service:       "Corte Clásico tijera",
		Price:         "5.00 USD",
		Barber:        "Josué",
		Note:          "sin prisa",
		PaymentStatus: "PAID",
		Date:          "2024-06-10",
		Time:          "10:00",
	}
}

func TestRenderEventTexts(t *testing.T) {
	r := DefaultRenderer()

	title, err := r.Render(TemplateEventTitle, sampleDetails())
	require.NoError(t, err)
	assert.Equal(t, "Reserva: Corte Clásico tijera con Josué - Juan", title)

	desc, err := r.Render(TemplateEventDescription, sampleDetails())
	require.NoError(t, err)
	assert.Equal(t, "Cliente: Juan\nWhatsApp: 0991234567\nServicio: Corte Clásico tijera\nPrecio: 5.00 USD\nBarbero: Josué\nNota: sin prisa\nPago: PAID", desc)
}

func TestRenderDescriptionIncludesEmailWhenPresent(t *testing.T) {
	d := sampleDetails()
	d.Email = "juan@example.com"
	desc, err := DefaultRenderer().Render(TemplateEventDescription, d)
	require.NoError(t, err)
	assert.Contains(t, desc, "WhatsApp: 0991234567\nEmail: juan@example.com\nServicio:")
}

func TestRenderBarberNotice(t *testing.T) {
	msg, err := DefaultRenderer().Render(TemplateBarberNotice, sampleDetails())
	require.NoError(t, err)
	assert.Equal(t, "Hola Josué, tienes una nueva reserva:\nCliente: Juan\nServicio: Corte Clásico tijera\nHora: 10:00\nFecha: 2024-06-10\nWhatsApp: 0991234567", msg)
}

func TestRendererOverridesAndErrors(t *testing.T) {
	r, err := NewRenderer(map[string]string{TemplateEventTitle: "{{.ClientName}} @ {{.Time}}"})
	require.NoError(t, err)
	title, err := r.Render(TemplateEventTitle, sampleDetails())
	require.NoError(t, err)
	assert.Equal(t, "Juan @ 10:00", title)

	_, err = r.Render("missing", sampleDetails())
	assert.Error(t, err)

	_, err = NewRenderer(map[string]string{TemplateEventTitle: "{{.ClientName"})
	assert.Error(t, err)

	bad, err := NewRenderer(map[string]string{TemplateEventTitle: "{{.Unknown}}"})
	require.NoError(t, err)
	_, err = bad.Render(TemplateEventTitle, sampleDetails())
	assert.Error(t, err)
}
