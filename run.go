// Package rlimage implements a run-length compressed representation of
// bi-level (black and white) raster images. Each row is stored as an ordered
// list of black pixel runs; pointwise boolean algebra (AND, OR, XOR, NOT)
// over whole images is done row by row through a decompress / transform /
// recompress pipeline, so two operand images are never held in dense form at
// the same time.
//
// Dense pixel values throughout the package are ink booleans: true = black,
// false = white. The algebra therefore acts on the black pixels - AND is
// their intersection, OR their union, XOR their symmetric difference.
package rlimage

// Run is one maximal span of black pixels in a row, as a closed interval of
// 0-indexed column positions: Start <= End, both inside the row.
type Run struct {
	Start int
	End   int
}

// A row encoding is an ordered []Run with strictly increasing Start and at
// least one white pixel between consecutive runs (next.Start > prev.End+1).
// An empty (or nil) slice is an all-white row. Every boolean row has exactly
// one such encoding, so encodings compare canonically.

// expandRow decompresses a row encoding into a dense row of the given
// width, true for black. Runs are trusted to be in bounds and ordered;
// validation happens where encodings are created or decoded.
func expandRow(runs []Run, width int) []bool {
	row := make([]bool, width)
	for _, r := range runs {
		for j := r.Start; j <= r.End; j++ {
			row[j] = true
		}
	}
	return row
}

// collapseRow compresses a dense row into its canonical run encoding. A run
// opens on the white-to-black transition and closes on the black-to-white
// transition (or at the end of the row), so empty runs never appear and
// touching black pixels always merge.
func collapseRow(row []bool) []Run {
	var runs []Run
	start := -1
	for j, black := range row {
		if black {
			if start < 0 {
				start = j
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, Run{Start: start, End: j - 1})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, End: len(row) - 1})
	}
	return runs
}

// validRuns reports whether runs is a canonical row encoding for the given
// width: in-bounds closed intervals, strictly increasing, separated by at
// least one white pixel.
func validRuns(runs []Run, width int) bool {
	prevEnd := -2
	for _, r := range runs {
		if r.Start < 0 || r.End < r.Start || r.End >= width {
			return false
		}
		if r.Start <= prevEnd+1 {
			return false
		}
		prevEnd = r.End
	}
	return true
}
