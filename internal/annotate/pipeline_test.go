package annotate

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipcam/shipcam/internal/model"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodePhoto(t *testing.T, p model.Photo) image.Image {
	t.Helper()
	raw, err := DecodeDataURI(p.Data)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

var testContext = Context{Date: "2026-01-02", Customer: "ACME", Destination: "Tokyo", Category: "盒子 Box"}

func TestAnnotateScalesLongestSide(t *testing.T) {
	p := New(Options{MaxDimension: 600, Quality: 80})
	fixed := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	photo, err := p.Annotate(context.Background(), File{Name: "wide.png", Data: solidPNG(t, 1200, 400, color.White)}, testContext)
	require.NoError(t, err)

	assert.Equal(t, "wide.png", photo.OriginalName)
	assert.True(t, photo.Timestamp.Equal(fixed))
	assert.Contains(t, photo.Data, "data:image/jpeg;base64,")

	b := decodePhoto(t, photo).Bounds()
	assert.Equal(t, 600, b.Dx())
	assert.Equal(t, 200, b.Dy())
}

func TestAnnotateKeepsSmallImages(t *testing.T) {
	p := New(Options{})
	photo, err := p.Annotate(context.Background(), File{Name: "small.png", Data: solidPNG(t, 320, 240, color.White)}, testContext)
	require.NoError(t, err)

	b := decodePhoto(t, photo).Bounds()
	assert.Equal(t, 320, b.Dx())
	assert.Equal(t, 240, b.Dy())
}

func TestAnnotateDarkensLowerBand(t *testing.T) {
	p := New(Options{MaxDimension: 800, Quality: 95})
	photo, err := p.Annotate(context.Background(), File{Name: "a.png", Data: solidPNG(t, 800, 600, color.White)}, testContext)
	require.NoError(t, err)

	img := decodePhoto(t, photo)
	top, _, _, _ := img.At(400, 5).RGBA()
	band, _, _, _ := img.At(2, 597).RGBA()
	assert.Greater(t, top>>8, uint32(200), "area above the band stays bright")
	assert.Less(t, band>>8, uint32(128), "band is darkened")
}

func TestAnnotateRejectsUndecodable(t *testing.T) {
	p := New(Options{})
	_, err := p.Annotate(context.Background(), File{Name: "notes.txt", Data: []byte("hello")}, testContext)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAnnotation))

	var ae *model.AnnotationError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "notes.txt", ae.File)
}

func TestBatchKeepsOrderAndCollectsFailures(t *testing.T) {
	p := New(Options{MaxDimension: 200})
	files := []File{
		{Name: "1.png", Data: solidPNG(t, 100, 100, color.White)},
		{Name: "bad.jpg", Data: []byte{0xff, 0xd8, 0x00}},
		{Name: "2.png", Data: solidPNG(t, 50, 80, color.Black)},
	}

	photos, errs := Batch(context.Background(), p, files, testContext)
	require.Len(t, photos, 2)
	assert.Equal(t, "1.png", photos[0].OriginalName)
	assert.Equal(t, "2.png", photos[1].OriginalName)

	require.Len(t, errs, 1)
	var ae *model.AnnotationError
	require.True(t, errors.As(errs[0], &ae))
	assert.Equal(t, "bad.jpg", ae.File)
}

func TestBatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	photos, errs := Batch(ctx, New(Options{}), []File{{Name: "1.png", Data: solidPNG(t, 10, 10, color.White)}}, testContext)
	assert.Empty(t, photos)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestDecodeDataURI(t *testing.T) {
	raw, err := DecodeDataURI("data:image/jpeg;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(raw))

	_, err = DecodeDataURI("aGk=")
	assert.Error(t, err)
}
