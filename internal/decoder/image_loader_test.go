package decoder

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/anime-shed/qr-decoder-go/internal/fixtures"
)

func TestImagingLoader_ReturnsNRGBA(t *testing.T) {
	path := fixtures.WriteFile(t, "blank.png", fixtures.BlankPNG(t, 40, 30))

	img, err := NewImagingLoader().Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("Expected *image.NRGBA, got %T", img)
	}
	if nrgba.Bounds().Dx() != 40 || nrgba.Bounds().Dy() != 30 {
		t.Errorf("Unexpected bounds %v", nrgba.Bounds())
	}
}

func TestImagingLoader_JPEG(t *testing.T) {
	path := fixtures.WriteFile(t, "qr.jpg", fixtures.QRCodeJPEG(t, "HELLO"))

	img, err := NewImagingLoader().Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Errorf("Expected width 256, got %d", img.Bounds().Dx())
	}
}

func TestImagingLoader_CorruptData(t *testing.T) {
	tests := map[string][]byte{
		"html page":     []byte("<html><body>404 page not found</body></html>"),
		"empty file":    {},
		"truncated png": fixtures.QRCodePNG(t, "HELLO")[:40],
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := fixtures.WriteFile(t, "download.img", data)
			if _, err := NewImagingLoader().Load(path); err == nil {
				t.Error("Expected error for non-image content")
			}
		})
	}
}

func TestImagingLoader_MissingFile(t *testing.T) {
	if _, err := NewImagingLoader().Load(filepath.Join(t.TempDir(), "gone.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}
