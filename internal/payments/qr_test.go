package payments

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadQRFromPayload(t *testing.T) {
	qr, err := LoadQR(QRConfig{Payload: "https://pay.example.com/sevenbarber", Size: 128})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(qr.PNG()))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestLoadQRFromImagePrefersFile(t *testing.T) {
	generated, err := LoadQR(QRConfig{Payload: "bank-transfer"})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "qr.png")
	require.NoError(t, os.WriteFile(path, generated.PNG(), 0o600))

	qr, err := LoadQR(QRConfig{ImagePath: path, Payload: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, generated.PNG(), qr.PNG())
}

func TestLoadQRRejectsNonPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))
	_, err := LoadQR(QRConfig{ImagePath: path})
	assert.ErrorContains(t, err, "must be png")
}

func TestLoadQRNeedsASource(t *testing.T) {
	_, err := LoadQR(QRConfig{})
	assert.Error(t, err)

	_, err = LoadQR(QRConfig{ImagePath: filepath.Join(t.TempDir(), "missing.png")})
	assert.Error(t, err)
}

func TestNilQRCode(t *testing.T) {
	var qr *QRCode
	assert.Nil(t, qr.PNG())
}
