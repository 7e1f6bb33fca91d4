package rlimage

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrDimensionMismatch is returned by binary operations when the two
	// operand images differ in width or height.
	ErrDimensionMismatch = errors.New("rlimage: image dimensions do not match")

	// ErrInvalidDimensions is returned by construction when the supplied
	// grid disagrees with the declared width and height.
	ErrInvalidDimensions = errors.New("rlimage: invalid image dimensions")

	// ErrRowOutOfRange is returned by row accessors for indices outside
	// [0, height).
	ErrRowOutOfRange = errors.New("rlimage: row index out of range")
)

// Image is a fixed-size bi-level raster held in row run-length form. Each
// row owns its run encoding exclusively; dimensions never change after
// construction. An Image must not be the target of two concurrent mutating
// operations; concurrent read-only use is fine.
type Image struct {
	width  int
	height int
	rows   [][]Run
}

// FromGrid compresses a dense grid into an Image. The grid must provide at
// least height rows of exactly width pixels each; a pixel is black when its
// value is zero, white otherwise.
func FromGrid(grid [][]int, width, height int) (*Image, error) {
	if width < 0 || height < 0 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "%dx%d", width, height)
	}
	if len(grid) < height {
		return nil, errors.Wrapf(ErrInvalidDimensions, "grid has %d rows, want %d", len(grid), height)
	}
	rows := make([][]Run, height)
	buf := make([]bool, width)
	for i := 0; i < height; i++ {
		if len(grid[i]) != width {
			return nil, errors.Wrapf(ErrInvalidDimensions, "grid row %d has %d pixels, want %d", i, len(grid[i]), width)
		}
		for j, px := range grid[i] {
			buf[j] = px == 0
		}
		rows[i] = collapseRow(buf)
	}
	return &Image{width: width, height: height, rows: rows}, nil
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// Row returns a copy of the run encoding for row i. The copy keeps row
// ownership with the image; callers may hold or modify the result freely.
func (img *Image) Row(i int) ([]Run, error) {
	if i < 0 || i >= img.height {
		return nil, errors.Wrapf(ErrRowOutOfRange, "row %d, height %d", i, img.height)
	}
	runs := make([]Run, len(img.rows[i]))
	copy(runs, img.rows[i])
	return runs, nil
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	rows := make([][]Run, img.height)
	for i, runs := range img.rows {
		if len(runs) == 0 {
			continue
		}
		rows[i] = make([]Run, len(runs))
		copy(rows[i], runs)
	}
	return &Image{width: img.width, height: img.height, rows: rows}
}

// Combine applies the pointwise boolean function op to the receiver and
// other, storing the result in the receiver. Operand values handed to op
// are ink booleans (true = black). The dimension check happens before any
// row is touched, so on error the receiver is unchanged; other is never
// mutated.
//
// Rows are independent and are processed in parallel stripes.
func (img *Image) Combine(other *Image, op func(a, b bool) bool) error {
	if other == nil {
		return errors.Wrap(ErrDimensionMismatch, "nil operand")
	}
	if img.width != other.width || img.height != other.height {
		return errors.Wrapf(ErrDimensionMismatch, "%dx%d vs %dx%d",
			img.width, img.height, other.width, other.height)
	}
	img.forEachRowStripe(func(y0, y1 int) {
		for i := y0; i < y1; i++ {
			a := expandRow(img.rows[i], img.width)
			b := expandRow(other.rows[i], img.width)
			for j := range a {
				a[j] = op(a[j], b[j])
			}
			img.rows[i] = collapseRow(a)
		}
	})
	return nil
}

// And replaces the receiver with the pixelwise AND of the two images: the
// intersection of their black pixels.
func (img *Image) And(other *Image) error {
	return img.Combine(other, func(a, b bool) bool { return a && b })
}

// Or replaces the receiver with the pixelwise OR of the two images: the
// union of their black pixels.
func (img *Image) Or(other *Image) error {
	return img.Combine(other, func(a, b bool) bool { return a || b })
}

// Xor replaces the receiver with the pixelwise XOR of the two images: the
// symmetric difference of their black pixels.
func (img *Image) Xor(other *Image) error {
	return img.Combine(other, func(a, b bool) bool { return a != b })
}

// Invert flips every pixel of the image in place. This is a direct unary
// pass over the rows; no all-black operand image is built.
func (img *Image) Invert() {
	img.forEachRowStripe(func(y0, y1 int) {
		for i := y0; i < y1; i++ {
			row := expandRow(img.rows[i], img.width)
			for j := range row {
				row[j] = !row[j]
			}
			img.rows[i] = collapseRow(row)
		}
	})
}

// forEachRowStripe splits [0, height) into contiguous stripes and runs fn
// on each, one goroutine per stripe. Each stripe owns a disjoint row range
// of the receiver, so no synchronization beyond the final wait is needed.
func (img *Image) forEachRowStripe(fn func(y0, y1 int)) {
	h := img.height
	workers := runtime.NumCPU()
	if workers > h {
		workers = h
	}
	if workers <= 1 {
		fn(0, h)
		return
	}
	rowsPerWorker := (h + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		y0 := i * rowsPerWorker
		if y0 >= h {
			break
		}
		y1 := y0 + rowsPerWorker
		if y1 > h {
			y1 = h
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}

// String renders the compressed form: width and height, then one segment
// per row in row order, each segment either "/" for an all-white row or the
// row's "(start,end)" runs separated by spaces. The rendering is built from
// the run encodings alone and is canonical, so two images render to the
// same string exactly when their pixel content is identical.
func (img *Image) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %d", img.width, img.height)
	for _, runs := range img.rows {
		sb.WriteString(", ")
		if len(runs) == 0 {
			sb.WriteByte('/')
			continue
		}
		for k, r := range runs {
			if k > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "(%d,%d)", r.Start, r.End)
		}
	}
	return sb.String()
}
