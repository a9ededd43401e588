package strategy

import (
	"image"

	"github.com/anime-shed/qr-decoder-go/internal/decoder"
	"github.com/anime-shed/qr-decoder-go/internal/logger"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// maxDecodeDimension bounds the longest side handed to the reader by the
// downscale pass. Phone photos are often several times larger than needed.
const maxDecodeDimension = 1600

// DecodeStrategy prepares an image for one decode attempt
type DecodeStrategy interface {
	// Prepare returns the image to decode, or false when the pass does not
	// apply to img.
	Prepare(img image.Image) (image.Image, bool)
	GetStrategyName() string
}

// OriginalStrategy decodes the image as loaded
type OriginalStrategy struct{}

func (OriginalStrategy) Prepare(img image.Image) (image.Image, bool) {
	return img, true
}

func (OriginalStrategy) GetStrategyName() string {
	return "original"
}

// ContrastStrategy converts to grayscale and stretches contrast, which helps
// with washed out or low light captures.
type ContrastStrategy struct {
	Percentage float64
}

func (s ContrastStrategy) Prepare(img image.Image) (image.Image, bool) {
	return imaging.AdjustContrast(imaging.Grayscale(img), s.Percentage), true
}

func (ContrastStrategy) GetStrategyName() string {
	return "grayscale_contrast"
}

// DownscaleStrategy shrinks images whose longest side exceeds MaxDimension.
type DownscaleStrategy struct {
	MaxDimension int
}

func (s DownscaleStrategy) Prepare(img image.Image) (image.Image, bool) {
	b := img.Bounds()
	if b.Dx() <= s.MaxDimension && b.Dy() <= s.MaxDimension {
		return nil, false
	}
	return imaging.Fit(img, s.MaxDimension, s.MaxDimension, imaging.Lanczos), true
}

func (DownscaleStrategy) GetStrategyName() string {
	return "downscale"
}

// SharpenStrategy recovers slightly out of focus module edges.
type SharpenStrategy struct {
	Sigma float64
}

func (s SharpenStrategy) Prepare(img image.Image) (image.Image, bool) {
	return imaging.Sharpen(img, s.Sigma), true
}

func (SharpenStrategy) GetStrategyName() string {
	return "sharpen"
}

// DefaultStrategies returns the passes tried in order by NewFallbackDecoder
// when none are given.
func DefaultStrategies() []DecodeStrategy {
	return []DecodeStrategy{
		OriginalStrategy{},
		ContrastStrategy{Percentage: 40},
		DownscaleStrategy{MaxDimension: maxDecodeDimension},
		SharpenStrategy{Sigma: 1.5},
	}
}

// FallbackDecoder runs the wrapped decoder over each strategy in turn and
// stops at the first pass that finds a code. A decoder error ends the run.
type FallbackDecoder struct {
	decoder    decoder.Decoder
	strategies []DecodeStrategy
}

// NewFallbackDecoder wraps d. With no strategies, DefaultStrategies is used.
func NewFallbackDecoder(d decoder.Decoder, strategies ...DecodeStrategy) *FallbackDecoder {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &FallbackDecoder{decoder: d, strategies: strategies}
}

func (f *FallbackDecoder) DetectAndDecode(img image.Image) ([]string, error) {
	for i, s := range f.strategies {
		prepared, ok := s.Prepare(img)
		if !ok {
			continue
		}

		texts, err := f.decoder.DetectAndDecode(prepared)
		if err != nil {
			return nil, err
		}
		if len(texts) > 0 {
			if i > 0 {
				logger.WithFields(logrus.Fields{
					"strategy": s.GetStrategyName(),
					"attempt":  i + 1,
				}).Debug("QR code decoded after preprocessing")
			}
			return texts, nil
		}
	}
	return []string{}, nil
}

// Strategies returns the configured pass names in order.
func (f *FallbackDecoder) Strategies() []string {
	names := make([]string, len(f.strategies))
	for i, s := range f.strategies {
		names[i] = s.GetStrategyName()
	}
	return names
}
