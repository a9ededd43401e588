// Package fixtures renders test images: QR codes and plain backgrounds.
package fixtures

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	goqrcode "github.com/skip2/go-qrcode"
)

// QRCodePNG renders text as a 256px QR code PNG.
func QRCodePNG(tb testing.TB, text string) []byte {
	tb.Helper()
	data, err := goqrcode.Encode(text, goqrcode.Medium, 256)
	if err != nil {
		tb.Fatalf("failed to encode QR code: %v", err)
	}
	return data
}

// QRCodeJPEG renders text as a QR code and re-encodes it as JPEG.
func QRCodeJPEG(tb testing.TB, text string) []byte {
	tb.Helper()
	img, err := png.Decode(bytes.NewReader(QRCodePNG(tb, text)))
	if err != nil {
		tb.Fatalf("failed to decode generated QR code: %v", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		tb.Fatalf("failed to encode JPEG: %v", err)
	}
	return buf.Bytes()
}

// BlankPNG renders a uniform white image.
func BlankPNG(tb testing.TB, width, height int) []byte {
	tb.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// WriteFile stores data under the test's temp dir and returns the path.
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("failed to write fixture: %v", err)
	}
	return path
}
