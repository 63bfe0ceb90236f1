package annotate

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var bandColor = color.NRGBA{A: 178}

// drawOverlay darkens the lower band of dst and writes lines into it.
// Glyphs are rendered at the face's native size and scaled up so the text
// height tracks the image width.
func drawOverlay(dst *image.RGBA, lines []string) {
	face := basicfont.Face7x13
	b := dst.Bounds()

	fontSize := max(16, b.Dx()/30)
	padding := fontSize * 4 / 5
	lineHeight := fontSize * 7 / 5
	bandH := min(len(lines)*lineHeight+2*padding, b.Dy())

	band := image.Rect(b.Min.X, b.Max.Y-bandH, b.Max.X, b.Max.Y)
	draw.Draw(dst, band, image.NewUniform(bandColor), image.Point{}, draw.Over)

	scale := float64(fontSize) / float64(face.Height)
	tw := int(math.Ceil(float64(band.Dx()) / scale))
	th := int(math.Ceil(float64(band.Dy()) / scale))
	if tw == 0 || th == 0 {
		return
	}
	text := image.NewRGBA(image.Rect(0, 0, tw, th))

	d := &font.Drawer{Dst: text, Src: image.White, Face: face}
	pad := float64(padding) / scale
	lh := float64(lineHeight) / scale
	for i, line := range lines {
		y := pad + float64(i)*lh + float64(face.Ascent)
		d.Dot = fixed.P(int(pad), int(y))
		d.DrawString(line)
	}

	draw.NearestNeighbor.Scale(dst, band, text, text.Bounds(), draw.Over, nil)
}
