// Package receipts renders a one-page PDF for a confirmed appointment.
package receipts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/sevenbarberclub/booking/internal/booking"
)

// Renderer builds receipts for one shop.
type Renderer struct {
	ShopName string
	Address  string
}

// Render returns the receipt PDF for conf. The QR code opens the WhatsApp
// notice for the barber.
func (r Renderer) Render(conf *booking.Confirmation) ([]byte, error) {
	if conf == nil {
		return nil, errors.New("receipts: confirmation required")
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("Reserva "+conf.EventID, true)
	pdf.SetAuthor(r.ShopName, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(r.ShopName), "", 1, "C", false, 0, "")
	if r.Address != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, tr(r.Address), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Comprobante de reserva"), "B", 1, "L", false, 0, "")
	pdf.Ln(2)

	rows := [][2]string{
		{"Cliente", conf.ClientName},
		{"WhatsApp", conf.WhatsApp},
		{"Servicio", conf.Service},
		{"Barbero", conf.Barber},
		{"Fecha", conf.Date},
		{"Hora", fmt.Sprintf("%s - %s", conf.Start.Format("15:04"), conf.End.Format("15:04"))},
		{"Precio", conf.Price},
		{"Pago", conf.PaymentStatus},
	}
	if conf.Email != "" {
		rows = append(rows, [2]string{"Email", conf.Email})
	}
	if conf.Note != "" {
		rows = append(rows, [2]string{"Nota", conf.Note})
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 7, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, tr(row[1]), "", 1, "L", false, 0, "")
	}

	if conf.WhatsAppURL != "" {
		qr, err := qrcode.Encode(conf.WhatsAppURL, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("receipts: encode qr: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "png"}
		pdf.RegisterImageOptionsReader("whatsapp", opts, bytes.NewReader(qr))
		y := pdf.GetY() + 4
		pdf.ImageOptions("whatsapp", 49, y, 50, 0, false, opts, 0, "")
		pdf.SetY(y + 52)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, tr("Escanea para avisar a tu barbero por WhatsApp."), "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipts: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
