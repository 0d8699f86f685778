package receipts

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenbarberclub/booking/internal/booking"
)

func TestRenderProducesPDF(t *testing.T) {
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.FixedZone("ECT", -5*3600))
	conf := &booking.Confirmation{
		EventID:       "evt-1",
		ClientName:    "Juan",
		WhatsApp:      "0991234567",
		Email:         "juan@example.com",
		Service:       "Corte Clásico tijera",
		Barber:        "Josué",
		Note:          "sin prisa",
		Date:          "2024-06-10",
		Time:          "10:00",
		Price:         "5.00 USD",
		PaymentStatus: booking.PaymentStatusPaid,
		Start:         start,
		End:           start.Add(time.Hour),
		WhatsAppURL:   "https://wa.me/5930991234567?text=Hola",
	}

	out, err := Renderer{ShopName: "Seven Barber Club", Address: "Av. Unidad Nacional"}.Render(conf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 1000)
}

func TestRenderWithoutLink(t *testing.T) {
	out, err := Renderer{ShopName: "Seven Barber Club"}.Render(&booking.Confirmation{EventID: "evt-2", ClientName: "Ana"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderRequiresConfirmation(t *testing.T) {
	_, err := Renderer{}.Render(nil)
	assert.Error(t, err)
}
