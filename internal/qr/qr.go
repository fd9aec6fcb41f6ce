package qr

import (
	"errors"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Fixed rendering parameters so identical payloads always produce
// bit-identical images.
const (
	errorCorrection = qrcode.Medium
	imageSizePixels = 256
)

var ErrPayloadTooLarge = errors.New("payload too large for qr encoding")

// Render encodes payload as a QR code PNG. Pure: no I/O, deterministic output.
// Payloads beyond the encoding's capacity are rejected, never truncated.
func Render(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, errorCorrection, imageSizePixels)
	if err != nil {
		if strings.Contains(err.Error(), "too long") {
			return nil, ErrPayloadTooLarge
		}
		return nil, err
	}
	return png, nil
}
