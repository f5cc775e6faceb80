package router

import "github.com/matzehuels/perfroute/pkg/grid"

// direct returns the two endpoints when they share a row or column and the
// run between them is free.
func direct(r *Request) []grid.Position {
	if !r.Start.Collinear(r.End) || !r.clear(r.Start, r.End) {
		return nil
	}
	return []grid.Position{r.Start, r.End}
}

// lRoute tries the horizontal-first corner, then the vertical-first one.
func lRoute(r *Request) []grid.Position {
	if r.Start.Collinear(r.End) {
		return nil
	}
	for _, corner := range []grid.Position{
		{Col: r.End.Col, Row: r.Start.Row},
		{Col: r.Start.Col, Row: r.End.Row},
	} {
		if r.clear(r.Start, corner) && r.clear(corner, r.End) {
			return []grid.Position{r.Start, corner, r.End}
		}
	}
	return nil
}

// zRoute tries two-corner paths whose middle leg runs through a column (or
// row) strictly between the endpoints, starting at the midpoint and moving
// outward. Middle legs outside the bounding box are left to A*, which keeps
// every shortcut path length-minimal.
func zRoute(r *Request) []grid.Position {
	s, e := r.Start, r.End
	if s.Collinear(e) {
		return nil
	}
	loC, hiC := min(s.Col, e.Col), max(s.Col, e.Col)
	loR, hiR := min(s.Row, e.Row), max(s.Row, e.Row)
	midC, midR := (loC+hiC)/2, (loR+hiR)/2

	reach := max(hiC-loC, hiR-loR)
	for d := 0; d <= reach; d++ {
		for _, off := range offsets(d) {
			if c := midC + off; c > loC && c < hiC {
				a, b := grid.Pos(c, s.Row), grid.Pos(c, e.Row)
				if r.clear(s, a) && r.clear(a, b) && r.clear(b, e) {
					return []grid.Position{s, a, b, e}
				}
			}
			if row := midR + off; row > loR && row < hiR {
				a, b := grid.Pos(s.Col, row), grid.Pos(e.Col, row)
				if r.clear(s, a) && r.clear(a, b) && r.clear(b, e) {
					return []grid.Position{s, a, b, e}
				}
			}
		}
	}
	return nil
}

// offsets returns the signed offsets at distance d from the midpoint.
func offsets(d int) []int {
	if d == 0 {
		return []int{0}
	}
	return []int{d, -d}
}
