package decoder

import (
	"image"
	"image/color"
	"testing"

	"github.com/anime-shed/qr-decoder-go/internal/fixtures"
)

func createTestImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func loadFixture(t *testing.T, name string, data []byte) image.Image {
	t.Helper()
	img, err := NewImagingLoader().Load(fixtures.WriteFile(t, name, data))
	if err != nil {
		t.Fatalf("Failed to load fixture %s: %v", name, err)
	}
	return img
}

func TestDetectAndDecode_PNG(t *testing.T) {
	img := loadFixture(t, "qr_hello.png", fixtures.QRCodePNG(t, "HELLO"))

	texts, err := NewZXingDecoder().DetectAndDecode(img)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(texts) != 1 || texts[0] != "HELLO" {
		t.Errorf("Expected [HELLO], got %v", texts)
	}
}

func TestDetectAndDecode_JPEG(t *testing.T) {
	img := loadFixture(t, "qr_hello.jpg", fixtures.QRCodeJPEG(t, "https://example.com/menu?table=7"))

	texts, err := NewZXingDecoder().DetectAndDecode(img)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(texts) != 1 || texts[0] != "https://example.com/menu?table=7" {
		t.Errorf("Unexpected decode result %v", texts)
	}
}

func TestDetectAndDecode_EmptyImage(t *testing.T) {
	img := createTestImage(200, 200, color.RGBA{255, 255, 255, 255})

	texts, err := NewZXingDecoder().DetectAndDecode(img)
	if err != nil {
		t.Fatalf("Expected no error for uniform image, got %v", err)
	}
	if len(texts) != 0 {
		t.Errorf("Expected no QR codes in uniform white image, got %v", texts)
	}
}

func TestDetectAndDecode_InvalidInput(t *testing.T) {
	d := NewZXingDecoder()

	if _, err := d.DetectAndDecode(nil); err == nil {
		t.Error("Expected error for nil image")
	}
	if _, err := d.DetectAndDecode(image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("Expected error for empty image")
	}
}
