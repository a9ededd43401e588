package decoder

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anime-shed/qr-decoder-go/internal/logger"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"
)

// ImagingLoader opens image files with EXIF orientation applied and returns
// them as NRGBA, the layout ZXingDecoder reads luminance from.
type ImagingLoader struct{}

func NewImagingLoader() *ImagingLoader {
	return &ImagingLoader{}
}

func (l *ImagingLoader) Load(path string) (image.Image, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect image file: %w", err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s content as an image: %w", mtype.String(), err)
	}

	bounds := img.Bounds()
	logger.WithFields(logrus.Fields{
		"content_type": mtype.String(),
		"width":        bounds.Dx(),
		"height":       bounds.Dy(),
	}).Debug("Image loaded")

	return imaging.Clone(img), nil
}
