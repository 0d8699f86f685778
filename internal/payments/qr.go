package payments

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the edge length in pixels of generated codes.
const DefaultQRSize = 256

// QRCode is the payment code shown at the payment gate. It is the same for
// every booking: the client pays the quoted amount through it and then
// acknowledges. Scanning it proves nothing to the server.
type QRCode struct {
	png []byte
}

// QRConfig selects where the code comes from. ImagePath wins over Payload.
type QRConfig struct {
	// ImagePath points at a PNG exported from the bank or wallet app.
	ImagePath string
	// Payload is encoded into a fresh code, e.g. a payment link.
	Payload string
	Size    int
}

// LoadQR prepares the payment code once at start-up.
func LoadQR(cfg QRConfig) (*QRCode, error) {
	if cfg.ImagePath != "" {
		data, err := os.ReadFile(cfg.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("payments: read qr image: %w", err)
		}
		if ct := http.DetectContentType(data); ct != "image/png" {
			return nil, fmt.Errorf("payments: qr image must be png, got %s", ct)
		}
		return &QRCode{png: data}, nil
	}
	if cfg.Payload == "" {
		return nil, errors.New("payments: qr image path or payload required")
	}
	size := cfg.Size
	if size <= 0 {
		size = DefaultQRSize
	}
	data, err := qrcode.Encode(cfg.Payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("payments: encode qr: %w", err)
	}
	return &QRCode{png: data}, nil
}

// PNG returns the image bytes.
func (q *QRCode) PNG() []byte {
	if q == nil {
		return nil
	}
	return q.png
}
