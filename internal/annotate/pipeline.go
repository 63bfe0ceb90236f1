// Package annotate re-encodes captured images with a burned-in context
// watermark.
package annotate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/shipcam/shipcam/internal/model"
)

const dataURIPrefix = "data:image/jpeg;base64,"

// File is a raw image as captured.
type File struct {
	Name string
	Data []byte
}

// Context is the text burned into the lower region of each photo.
type Context struct {
	Date        string
	Time        string // filled per photo when empty
	Customer    string
	Destination string
	Category    string
}

// Lines returns the overlay lines, top to bottom.
func (c Context) Lines() []string {
	return []string{c.Date + " " + c.Time, c.Customer, c.Destination, c.Category}
}

// Annotator turns one raw image into an annotated Photo.
type Annotator interface {
	Annotate(ctx context.Context, f File, c Context) (model.Photo, error)
}

// Options controls re-encoding.
type Options struct {
	MaxDimension int // longest side in pixels
	Quality      int // JPEG quality 1-100
}

// DefaultOptions returns the defaults used by the capture workflow.
func DefaultOptions() Options {
	return Options{MaxDimension: 1200, Quality: 85}
}

// Pipeline is the image-based Annotator.
type Pipeline struct {
	opts Options
	now  func() time.Time
}

// New creates a Pipeline. Zero option fields take defaults.
func New(opts Options) *Pipeline {
	def := DefaultOptions()
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = def.MaxDimension
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = def.Quality
	}
	return &Pipeline{opts: opts, now: time.Now}
}

// Annotate decodes f, bounds its size, draws the context overlay and returns
// the JPEG as a data URI.
func (p *Pipeline) Annotate(ctx context.Context, f File, c Context) (model.Photo, error) {
	if err := ctx.Err(); err != nil {
		return model.Photo{}, err
	}

	src, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return model.Photo{}, &model.AnnotationError{File: f.Name, Err: fmt.Errorf("decode: %w", err)}
	}
	if src.Bounds().Empty() {
		return model.Photo{}, &model.AnnotationError{File: f.Name, Err: errors.New("empty image")}
	}

	now := p.now()
	if c.Time == "" {
		c.Time = now.Format("15:04")
	}

	dst := fit(src, p.opts.MaxDimension)
	drawOverlay(dst, c.Lines())

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.opts.Quality}); err != nil {
		return model.Photo{}, &model.AnnotationError{File: f.Name, Err: fmt.Errorf("encode: %w", err)}
	}

	return model.Photo{
		Data:         dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Timestamp:    now.UTC(),
		OriginalName: f.Name,
	}, nil
}

// fit copies src into an RGBA canvas whose longest side is at most maxDim.
func fit(src image.Image, maxDim int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if longest := max(w, h); longest > maxDim {
		w = max(1, w*maxDim/longest)
		h = max(1, h*maxDim/longest)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// Batch annotates files one at a time so only one decoded image is in
// memory. Successful photos keep input order; each failure is returned as
// an error without stopping the batch. A cancelled ctx stops the batch.
func Batch(ctx context.Context, a Annotator, files []File, c Context) ([]model.Photo, []error) {
	var photos []model.Photo
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		photo, err := a.Annotate(ctx, f, c)
		if err != nil {
			var ae *model.AnnotationError
			if !errors.As(err, &ae) {
				err = &model.AnnotationError{File: f.Name, Err: err}
			}
			errs = append(errs, err)
			continue
		}
		photos = append(photos, photo)
	}
	return photos, errs
}

// DecodeDataURI returns the raw bytes of a photo payload.
func DecodeDataURI(data string) ([]byte, error) {
	meta, payload, ok := strings.Cut(data, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("not a base64 data URI")
	}
	return base64.StdEncoding.DecodeString(payload)
}
