package hexgrid

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Offset is a cell position in the graph source's 2D layout.
type Offset struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func (o Offset) String() string { return fmt.Sprintf("[%d,%d]", o.Col, o.Row) }

// Layout is a fixed linear transform between offset and cube coordinates.
type Layout int

const (
	// OddQ: flat-top hexes, odd columns shoved down.
	OddQ Layout = iota
	// EvenQ: flat-top hexes, even columns shoved down.
	EvenQ
	// OddR: pointy-top hexes, odd rows shoved right.
	OddR
	// EvenR: pointy-top hexes, even rows shoved right.
	EvenR
)

var layoutNames = map[Layout]string{OddQ: "odd-q", EvenQ: "even-q", OddR: "odd-r", EvenR: "even-r"}

func (l Layout) String() string {
	if s, ok := layoutNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout maps a layout name such as "odd-q" to a Layout. The empty
// string selects OddQ.
func ParseLayout(s string) (Layout, error) {
	if s == "" {
		return OddQ, nil
	}
	for l, name := range layoutNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("hexgrid: unknown layout %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	if _, ok := layoutNames[l]; !ok {
		return nil, fmt.Errorf("hexgrid: unknown layout %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(b []byte) error {
	parsed, err := ParseLayout(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ToCube converts an offset position to cube coordinates.
func (l Layout) ToCube(o Offset) Cube {
	var x, z int
	switch l {
	case EvenQ:
		x = o.Col
		z = o.Row - (o.Col+(o.Col&1))/2
	case OddR:
		x = o.Col - (o.Row-(o.Row&1))/2
		z = o.Row
	case EvenR:
		x = o.Col - (o.Row+(o.Row&1))/2
		z = o.Row
	default:
		x = o.Col
		z = o.Row - (o.Col-(o.Col&1))/2
	}
	return Cube{X: x, Y: -x - z, Z: z}
}

// ToOffset converts cube coordinates back to the layout's offset position.
func (l Layout) ToOffset(c Cube) Offset {
	switch l {
	case EvenQ:
		return Offset{Col: c.X, Row: c.Z + (c.X+(c.X&1))/2}
	case OddR:
		return Offset{Col: c.X + (c.Z-(c.Z&1))/2, Row: c.Z}
	case EvenR:
		return Offset{Col: c.X + (c.Z+(c.Z&1))/2, Row: c.Z}
	default:
		return Offset{Col: c.X, Row: c.Z + (c.X-(c.X&1))/2}
	}
}

// Center returns the world-space center of the cell at o for hexes with
// the given outer radius.
func (l Layout) Center(o Offset, size float64) orb.Point {
	sqrt3 := math.Sqrt(3)
	switch l {
	case OddQ, EvenQ:
		x := size * 1.5 * float64(o.Col)
		y := size * sqrt3 * float64(o.Row)
		shifted := o.Col&1 == 1
		if l == EvenQ {
			shifted = !shifted
		}
		if shifted {
			y += size * sqrt3 / 2
		}
		return orb.Point{x, y}
	default:
		x := size * sqrt3 * float64(o.Col)
		y := size * 1.5 * float64(o.Row)
		shifted := o.Row&1 == 1
		if l == EvenR {
			shifted = !shifted
		}
		if shifted {
			x += size * sqrt3 / 2
		}
		return orb.Point{x, y}
	}
}

// Rect returns every offset in a cols x rows block, column-major.
func Rect(cols, rows int) []Offset {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	cells := make([]Offset, 0, cols*rows)
	for col := 0; col < cols; col++ {
		for row := 0; row < rows; row++ {
			cells = append(cells, Offset{Col: col, Row: row})
		}
	}
	return cells
}

// Bounds returns the smallest and largest column and row over cells.
// ok is false for an empty set.
func Bounds(cells []Offset) (lo, hi Offset, ok bool) {
	if len(cells) == 0 {
		return Offset{}, Offset{}, false
	}
	lo, hi = cells[0], cells[0]
	for _, c := range cells[1:] {
		lo.Col, lo.Row = min(lo.Col, c.Col), min(lo.Row, c.Row)
		hi.Col, hi.Row = max(hi.Col, c.Col), max(hi.Row, c.Row)
	}
	return lo, hi, true
}
