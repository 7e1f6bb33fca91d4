package rlimage

import (
	"image"
	"image/color"
)

// Two-color palette for rendered images: index 0 white, index 1 black.
// Encoders that special-case two-color paletted images (png among them)
// store the result as a 1-bit image.
var palette = color.Palette{color.White, color.Black}

// FromImage quantizes src to a bi-level compressed image. A pixel is black
// when its gray value is below threshold. *image.Gray input is read from
// the pixel buffer directly; anything else goes through the generic At
// path.
func FromImage(src image.Image, threshold uint8) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	rows := make([][]Run, h)
	buf := make([]bool, w)
	for y := 0; y < h; y++ {
		switch s := src.(type) {
		case *image.Gray:
			off := (y+b.Min.Y-s.Rect.Min.Y)*s.Stride + (b.Min.X - s.Rect.Min.X)
			for x := 0; x < w; x++ {
				buf[x] = s.Pix[off+x] < threshold
			}
		default:
			for x := 0; x < w; x++ {
				g := color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
				buf[x] = g.Y < threshold
			}
		}
		rows[y] = collapseRow(buf)
	}
	return &Image{width: w, height: h, rows: rows}
}

// ToImage renders the compressed image as a two-color paletted image,
// painting black run by run over the white default. The dense boolean form
// is never built.
func (img *Image) ToImage() *image.Paletted {
	p := image.NewPaletted(image.Rect(0, 0, img.width, img.height), palette)
	for y, runs := range img.rows {
		off := y * p.Stride
		for _, r := range runs {
			for x := r.Start; x <= r.End; x++ {
				p.Pix[off+x] = 1
			}
		}
	}
	return p
}
