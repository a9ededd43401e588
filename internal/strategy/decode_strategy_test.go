package strategy

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/anime-shed/qr-decoder-go/internal/decoder"
	"github.com/anime-shed/qr-decoder-go/internal/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedDecoder returns results[i] on the i-th call and records the size
// of every image it receives.
type scriptedDecoder struct {
	results [][]string
	err     error
	sizes   []image.Point
}

func (d *scriptedDecoder) DetectAndDecode(img image.Image) ([]string, error) {
	d.sizes = append(d.sizes, img.Bounds().Size())
	if d.err != nil {
		return nil, d.err
	}
	i := len(d.sizes) - 1
	if i < len(d.results) {
		return d.results[i], nil
	}
	return []string{}, nil
}

func solidImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 180, B: 160, A: 255})
		}
	}
	return img
}

func TestFallbackDecoder_StopsAtFirstHit(t *testing.T) {
	d := &scriptedDecoder{results: [][]string{{}, {"HELLO"}}}
	f := NewFallbackDecoder(d)

	texts, err := f.DetectAndDecode(solidImage(32, 32))
	require.NoError(t, err)
	assert.Equal(t, []string{"HELLO"}, texts)
	assert.Len(t, d.sizes, 2)
}

func TestFallbackDecoder_SkipsInapplicablePasses(t *testing.T) {
	d := &scriptedDecoder{}
	f := NewFallbackDecoder(d)

	texts, err := f.DetectAndDecode(solidImage(32, 32))
	require.NoError(t, err)
	assert.Empty(t, texts)
	assert.NotNil(t, texts)
	// downscale does not apply to a 32px image
	assert.Len(t, d.sizes, len(DefaultStrategies())-1)
}

func TestFallbackDecoder_Downscale(t *testing.T) {
	d := &scriptedDecoder{}
	f := NewFallbackDecoder(d, DownscaleStrategy{MaxDimension: 100})

	_, err := f.DetectAndDecode(solidImage(400, 200))
	require.NoError(t, err)
	require.Len(t, d.sizes, 1)
	assert.Equal(t, image.Pt(100, 50), d.sizes[0])
}

func TestFallbackDecoder_ErrorStopsRun(t *testing.T) {
	d := &scriptedDecoder{err: errors.New("reader exploded")}
	f := NewFallbackDecoder(d)

	_, err := f.DetectAndDecode(solidImage(16, 16))
	assert.EqualError(t, err, "reader exploded")
	assert.Len(t, d.sizes, 1)
}

func TestFallbackDecoder_Strategies(t *testing.T) {
	f := NewFallbackDecoder(&scriptedDecoder{})
	assert.Equal(t, []string{"original", "grayscale_contrast", "downscale", "sharpen"}, f.Strategies())

	f = NewFallbackDecoder(&scriptedDecoder{}, SharpenStrategy{Sigma: 1})
	assert.Equal(t, []string{"sharpen"}, f.Strategies())
}

func TestFallbackDecoder_RealReader(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(fixtures.QRCodePNG(t, "HELLO")))
	require.NoError(t, err)

	f := NewFallbackDecoder(decoder.NewZXingDecoder())

	texts, err := f.DetectAndDecode(img)
	require.NoError(t, err)
	assert.Equal(t, []string{"HELLO"}, texts)

	texts, err = f.DetectAndDecode(solidImage(64, 64))
	require.NoError(t, err)
	assert.Empty(t, texts)
}
