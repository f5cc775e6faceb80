package router

import "github.com/matzehuels/perfroute/pkg/grid"

// Simplify reduces a cell-by-cell path to its corners: the first hole, every
// hole where the direction changes, and the last hole. Repeated holes are
// collapsed.
func Simplify(cells []grid.Position) []grid.Position {
	var dedup []grid.Position
	for i, p := range cells {
		if i == 0 || p != cells[i-1] {
			dedup = append(dedup, p)
		}
	}
	if len(dedup) <= 2 {
		return dedup
	}
	out := []grid.Position{dedup[0]}
	for i := 1; i < len(dedup)-1; i++ {
		if heading(dedup[i-1], dedup[i]) != heading(dedup[i], dedup[i+1]) {
			out = append(out, dedup[i])
		}
	}
	return append(out, dedup[len(dedup)-1])
}

// Cells expands corner waypoints into every hole crossed, endpoints included.
// Segments must be axis-aligned; see [Valid].
func Cells(corners []grid.Position) []grid.Position {
	if len(corners) == 0 {
		return nil
	}
	out := []grid.Position{corners[0]}
	for i := 1; i < len(corners); i++ {
		out = append(out, segment(corners[i-1], corners[i])[1:]...)
	}
	return out
}

// Interior returns the holes strictly between the path's two endpoints. These
// are the holes a routed wire consumes.
func Interior(corners []grid.Position) []grid.Position {
	cells := Cells(corners)
	if len(cells) <= 2 {
		return nil
	}
	return cells[1 : len(cells)-1]
}

// Valid reports whether every consecutive waypoint pair is exactly
// horizontal or vertical.
func Valid(corners []grid.Position) bool {
	for i := 1; i < len(corners); i++ {
		if !corners[i-1].Collinear(corners[i]) {
			return false
		}
	}
	return len(corners) > 0
}

// Length returns the number of hole-to-hole steps along the path.
func Length(corners []grid.Position) int {
	n := 0
	for i := 1; i < len(corners); i++ {
		n += corners[i-1].Manhattan(corners[i])
	}
	return n
}

// Turns returns the number of direction changes along the path.
func Turns(corners []grid.Position) int {
	if s := Simplify(corners); len(s) > 2 {
		return len(s) - 2
	}
	return 0
}

// PathCost scores a path the way the search does: one per step, the turn
// penalty per corner, and the congestion cost of every interior hole.
func PathCost(corners []grid.Position, turnPenalty float64, cost func(grid.Position) float64) float64 {
	total := float64(Length(corners)) + float64(Turns(corners))*turnPenalty
	if cost != nil {
		for _, p := range Interior(corners) {
			total += max(cost(p), 0)
		}
	}
	return total
}

// segment lists the holes from a to b inclusive. A diagonal pair is walked
// along the column first, then the row.
func segment(a, b grid.Position) []grid.Position {
	out := []grid.Position{a}
	for p := a; p != b; {
		switch {
		case p.Col != b.Col:
			p.Col += sign(b.Col - p.Col)
		default:
			p.Row += sign(b.Row - p.Row)
		}
		out = append(out, p)
	}
	return out
}

func heading(a, b grid.Position) grid.Position {
	return grid.Pos(sign(b.Col-a.Col), sign(b.Row-a.Row))
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
