package decoder

import "image"

// Loader reads an image file into a pixel buffer the Decoder accepts.
type Loader interface {
	Load(path string) (image.Image, error)
}

// Decoder finds QR codes in an image and returns their decoded text.
// An empty slice with a nil error means no code was found.
type Decoder interface {
	DetectAndDecode(img image.Image) ([]string, error)
}
