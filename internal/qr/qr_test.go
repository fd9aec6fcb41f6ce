package qr

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Deterministic(t *testing.T) {
	payload := "weixin://wxpay/bizpayurl?pr=a1b2c3d4"

	first, err := Render(payload)
	assert.NoError(t, err)
	second, err := Render(payload)
	assert.NoError(t, err)

	assert.Equal(t, first, second, "same payload must yield a bit-identical image")
}

func TestRender_ValidPNGWithFixedSize(t *testing.T) {
	data, err := Render("weixin://wxpay/bizpayurl?pr=a1b2c3d4")
	assert.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, imageSizePixels, img.Bounds().Dx())
	assert.Equal(t, imageSizePixels, img.Bounds().Dy())
}

func TestRender_DifferentPayloadsDiffer(t *testing.T) {
	a, err := Render("payload-a")
	assert.NoError(t, err)
	b, err := Render("payload-b")
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRender_PayloadTooLarge(t *testing.T) {
	// byte-mode capacity at medium error correction tops out under 3KB
	_, err := Render(strings.Repeat("x", 5000))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}
