package rlimage

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedGrid is returned by ParseGrid for input that is not a valid
// textual pixel grid.
var ErrMalformedGrid = errors.New("rlimage: malformed grid")

// ParseGrid reads a textual dense grid: whitespace-separated tokens giving
// width and height followed by width*height pixel values, row by row. Each
// pixel must be exactly 0 (black) or 1 (white). Trailing tokens are an
// error.
func ParseGrid(s string) (grid [][]int, width, height int, err error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return nil, 0, 0, errors.Wrap(ErrMalformedGrid, "missing dimensions")
	}
	width, err = strconv.Atoi(fields[0])
	if err != nil || width < 0 {
		return nil, 0, 0, errors.Wrapf(ErrMalformedGrid, "bad width %q", fields[0])
	}
	height, err = strconv.Atoi(fields[1])
	if err != nil || height < 0 {
		return nil, 0, 0, errors.Wrapf(ErrMalformedGrid, "bad height %q", fields[1])
	}
	px := fields[2:]
	if len(px) != width*height {
		return nil, 0, 0, errors.Wrapf(ErrMalformedGrid, "have %d pixels, want %d", len(px), width*height)
	}

	grid = make([][]int, height)
	for i := 0; i < height; i++ {
		grid[i] = make([]int, width)
		for j := 0; j < width; j++ {
			switch px[i*width+j] {
			case "0":
				grid[i][j] = 0
			case "1":
				grid[i][j] = 1
			default:
				return nil, 0, 0, errors.Wrapf(ErrMalformedGrid, "pixel (%d,%d) is %q", i, j, px[i*width+j])
			}
		}
	}
	return grid, width, height, nil
}
