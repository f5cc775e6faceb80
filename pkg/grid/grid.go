// Package grid models the drilled-hole grid of a perfboard or stripboard.
//
// Every drillable hole is addressed by a [Position] (column, row). Components
// are described by a [Footprint] (named pad offsets plus a body rectangle) and
// placed on the board as a [PlacedComponent] with an anchor hole and a
// rotation. The router never mutates placement; it only reads the holes each
// component occupies via [Board.StaticHoles].
//
// Rows grow downward and columns grow to the right, so a 90° rotation is a
// clockwise turn as seen on screen.
package grid

import (
	"fmt"
	"slices"
)

// Position addresses one hole on the board. It is a comparable value and is
// used directly as a map key.
type Position struct {
	Col int `json:"col" toml:"col" bson:"col"`
	Row int `json:"row" toml:"row" bson:"row"`
}

// Pos is shorthand for Position{Col: col, Row: row}.
func Pos(col, row int) Position { return Position{Col: col, Row: row} }

// Add returns p translated by o.
func (p Position) Add(o Position) Position { return Position{p.Col + o.Col, p.Row + o.Row} }

// Sub returns the offset from o to p.
func (p Position) Sub(o Position) Position { return Position{p.Col - o.Col, p.Row - o.Row} }

// Manhattan returns the rectilinear distance between p and o.
func (p Position) Manhattan(o Position) int {
	return abs(p.Col-o.Col) + abs(p.Row-o.Row)
}

// Adjacent reports whether p and o are orthogonal neighbours.
func (p Position) Adjacent(o Position) bool { return p.Manhattan(o) == 1 }

// Collinear reports whether p and o share a row or a column.
func (p Position) Collinear(o Position) bool { return p.Col == o.Col || p.Row == o.Row }

// Neighbors returns the four orthogonal neighbours in N, E, S, W order.
// Neighbours may lie outside the board; callers check bounds.
func (p Position) Neighbors() [4]Position {
	return [4]Position{
		{p.Col, p.Row - 1},
		{p.Col + 1, p.Row},
		{p.Col, p.Row + 1},
		{p.Col - 1, p.Row},
	}
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.Col, p.Row) }

// Less orders positions row-major. Used wherever deterministic output matters.
func (p Position) Less(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

// Compare is the three-way form of [Position.Less] for slices.SortFunc.
func Compare(a, b Position) int {
	switch {
	case a == b:
		return 0
	case a.Less(b):
		return -1
	default:
		return 1
	}
}

// Rect is an inclusive rectangle of holes.
type Rect struct {
	Min Position `json:"min" toml:"min"`
	Max Position `json:"max" toml:"max"`
}

// IsZero reports whether r is the zero rectangle.
func (r Rect) IsZero() bool { return r == Rect{} }

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Position) bool {
	return p.Col >= r.Min.Col && p.Col <= r.Max.Col && p.Row >= r.Min.Row && p.Row <= r.Max.Row
}

// Grow returns r expanded by n holes on every side.
func (r Rect) Grow(n int) Rect {
	return Rect{
		Min: Position{r.Min.Col - n, r.Min.Row - n},
		Max: Position{r.Max.Col + n, r.Max.Row + n},
	}
}

// Bounds returns the smallest rectangle containing all points.
// It returns the zero Rect when points is empty.
func Bounds(points ...Position) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	r := Rect{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.Min.Col = min(r.Min.Col, p.Col)
		r.Min.Row = min(r.Min.Row, p.Row)
		r.Max.Col = max(r.Max.Col, p.Col)
		r.Max.Row = max(r.Max.Row, p.Row)
	}
	return r
}

// Holes lists every position in r, row-major.
func (r Rect) Holes() []Position {
	var out []Position
	for row := r.Min.Row; row <= r.Max.Row; row++ {
		for col := r.Min.Col; col <= r.Max.Col; col++ {
			out = append(out, Position{col, row})
		}
	}
	return out
}

// HoleSet is a set of holes. The zero value is not usable; use [NewHoleSet].
type HoleSet map[Position]struct{}

// NewHoleSet returns a set containing the given holes.
func NewHoleSet(holes ...Position) HoleSet {
	s := make(HoleSet, len(holes))
	for _, h := range holes {
		s[h] = struct{}{}
	}
	return s
}

func (s HoleSet) Add(p Position)    { s[p] = struct{}{} }
func (s HoleSet) Remove(p Position) { delete(s, p) }
func (s HoleSet) Len() int          { return len(s) }

// Has reports whether p is in the set. A nil set contains nothing.
func (s HoleSet) Has(p Position) bool {
	_, ok := s[p]
	return ok
}

// Clone returns an independent copy of s.
func (s HoleSet) Clone() HoleSet {
	out := make(HoleSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Union returns a new set holding every hole of s and the others.
func (s HoleSet) Union(others ...HoleSet) HoleSet {
	out := s.Clone()
	for _, o := range others {
		for p := range o {
			out[p] = struct{}{}
		}
	}
	return out
}

// Sorted returns the holes in row-major order.
func (s HoleSet) Sorted() []Position {
	out := make([]Position, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, Compare)
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
