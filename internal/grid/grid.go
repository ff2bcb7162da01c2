// Package grid encodes and decodes canvas pixel grids.
//
// A grid is a rectangular array of cells stored row-major: grid[y][x]. Each
// cell is either empty (nil) or an opaque color token such as "#FF0000". The
// codec never interprets colors.
package grid

import (
	"encoding/json"
	"fmt"
)

// Grid is a height×width array of optional color values.
type Grid [][]*string

// MalformedGridError reports a grid whose shape does not match the
// dimensions it is expected to have.
type MalformedGridError struct {
	Width  int
	Height int
	// Row is the offending row index, or -1 when the row count is wrong.
	Row int
	Got int
	// Err is set when the text could not be parsed at all.
	Err error
}

func (e *MalformedGridError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("malformed grid: %v", e.Err)
	case e.Row < 0:
		return fmt.Sprintf("malformed grid: expected %d rows, got %d", e.Height, e.Got)
	default:
		return fmt.Sprintf("malformed grid: row %d has %d cells, expected %d", e.Row, e.Got, e.Width)
	}
}

func (e *MalformedGridError) Unwrap() error {
	return e.Err
}

// Color returns a cell holding c.
func Color(c string) *string {
	return &c
}

// New returns an all-empty grid of the given dimensions.
func New(width, height int) Grid {
	g := make(Grid, height)
	for y := range g {
		g[y] = make([]*string, width)
	}
	return g
}

// Width returns the length of the first row, or 0 for an empty grid.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Height returns the number of rows.
func (g Grid) Height() int {
	return len(g)
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = make([]*string, len(row))
		for x, c := range row {
			if c != nil {
				out[y][x] = Color(*c)
			}
		}
	}
	return out
}

// Empty reports whether no cell holds a color.
func (g Grid) Empty() bool {
	for _, row := range g {
		for _, c := range row {
			if c != nil {
				return false
			}
		}
	}
	return true
}

// Validate checks that g has exactly height rows of width cells.
func Validate(g Grid, width, height int) error {
	if len(g) != height {
		return &MalformedGridError{Width: width, Height: height, Row: -1, Got: len(g)}
	}
	for y, row := range g {
		if len(row) != width {
			return &MalformedGridError{Width: width, Height: height, Row: y, Got: len(row)}
		}
	}
	return nil
}

// Encode serializes g to its storage text. Empty cells become null.
func Encode(g Grid) (string, error) {
	if g == nil {
		return "[]", nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("encode grid: %w", err)
	}
	return string(b), nil
}

// Decode parses text produced by Encode and checks it against the expected
// dimensions.
func Decode(text string, width, height int) (Grid, error) {
	var g Grid
	if err := json.Unmarshal([]byte(text), &g); err != nil {
		return nil, &MalformedGridError{Width: width, Height: height, Row: -1, Err: err}
	}
	if err := Validate(g, width, height); err != nil {
		return nil, err
	}
	return g, nil
}
