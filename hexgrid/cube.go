// Package hexgrid turns a sparse set of occupied hex cells into a navigable
// node graph addressed with cube coordinates.
//
// A graph is built in two phases: every occupied cell first becomes a Node
// in a contiguous store, then neighbor links are resolved by coordinate
// lookup. The resulting graph is validated before it is handed out.
package hexgrid

import "fmt"

// Cube is a hex cell in cube coordinates. X+Y+Z is always 0 for a valid cell.
type Cube struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Add returns c+d.
func (c Cube) Add(d Cube) Cube { return Cube{c.X + d.X, c.Y + d.Y, c.Z + d.Z} }

// Sub returns c-d.
func (c Cube) Sub(d Cube) Cube { return Cube{c.X - d.X, c.Y - d.Y, c.Z - d.Z} }

// Scale returns c*k.
func (c Cube) Scale(k int) Cube { return Cube{c.X * k, c.Y * k, c.Z * k} }

// Valid reports whether c satisfies the cube invariant.
func (c Cube) Valid() bool { return c.X+c.Y+c.Z == 0 }

func (c Cube) String() string { return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z) }

// Distance is the Chebyshev distance between two cube coordinates, which is
// the number of unit steps separating the cells.
func Distance(a, b Cube) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y), abs(a.Z-b.Z))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction indexes one of the eight fixed neighbor offsets.
type Direction int

const (
	DirN Direction = iota
	DirNE
	DirSE
	DirS
	DirSW
	DirNW
	// DirEast2 and DirWest2 are the double-step directions: two cells
	// straight along a row, between the two flanking unit directions.
	DirEast2
	DirWest2

	numDirections
)

// Directions lists every direction in a fixed order.
var Directions = [numDirections]Direction{DirN, DirNE, DirSE, DirS, DirSW, DirNW, DirEast2, DirWest2}

var directionVectors = [numDirections]Cube{
	DirN:     {0, -1, 1},
	DirNE:    {1, -1, 0},
	DirSE:    {1, 0, -1},
	DirS:     {0, 1, -1},
	DirSW:    {-1, 1, 0},
	DirNW:    {-1, 0, 1},
	DirEast2: {2, -1, -1},
	DirWest2: {-2, 1, 1},
}

var directionNames = [numDirections]string{"N", "NE", "SE", "S", "SW", "NW", "E2", "W2"}

// Vector returns the cube offset of d.
func (d Direction) Vector() Cube { return directionVectors[d] }

// Cost is the movement cost of a single step in direction d.
func (d Direction) Cost() int {
	if d.DoubleStep() {
		return 2
	}
	return 1
}

// DoubleStep reports whether d spans two cells.
func (d Direction) DoubleStep() bool { return d == DirEast2 || d == DirWest2 }

// Flanks returns the two unit directions whose vectors sum to d. It is only
// meaningful for double-step directions.
func (d Direction) Flanks() (Direction, Direction) {
	switch d {
	case DirEast2:
		return DirNE, DirSE
	case DirWest2:
		return DirSW, DirNW
	}
	return d, d
}

// Opposite returns the direction with the negated vector.
func (d Direction) Opposite() Direction {
	switch d {
	case DirEast2:
		return DirWest2
	case DirWest2:
		return DirEast2
	}
	return (d + 3) % 6
}

func (d Direction) String() string {
	if d < 0 || d >= numDirections {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// DirectionOf returns the direction whose vector equals v.
func DirectionOf(v Cube) (Direction, bool) {
	for _, d := range Directions {
		if directionVectors[d] == v {
			return d, true
		}
	}
	return 0, false
}
